package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
	"github.com/NadezhdaSmurova/TaskDigest/internal/pipeline"
)

// WriteArtifacts writes the rendered digest plus the audit artifacts to the
// output directory: report.{md,html,json}, items.json, and the raw
// per-channel event lists.
func WriteArtifacts(outputDir string, r *Report, result *pipeline.Result, log *zap.Logger) error {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	if err := writeJSON(outputDir, "report.json", r); err != nil {
		return err
	}
	if err := writeJSON(outputDir, "items.json", result.Items); err != nil {
		return err
	}

	for _, channel := range []domain.Channel{domain.ChannelEmail, domain.ChannelSlack, domain.ChannelStandup} {
		events := result.Events[channel]
		if events == nil {
			events = []domain.Event{}
		}
		name := fmt.Sprintf("events_%s.json", channel)
		if err := writeJSON(outputDir, name, events); err != nil {
			return err
		}
	}

	md := RenderMarkdown(r)
	if err := os.WriteFile(filepath.Join(outputDir, "report.md"), []byte(md), 0o644); err != nil {
		return fmt.Errorf("failed to write report.md: %w", err)
	}

	html, err := RenderHTML(r)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(outputDir, "report.html"), []byte(html), 0o644); err != nil {
		return fmt.Errorf("failed to write report.html: %w", err)
	}

	log.Info("Artifacts written",
		zap.String("output_dir", outputDir),
		zap.String("run_id", result.RunID))

	return nil
}

func writeJSON(dir, name string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}
