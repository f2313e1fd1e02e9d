package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
	"github.com/NadezhdaSmurova/TaskDigest/internal/pipeline"
)

func sampleResult() *pipeline.Result {
	return &pipeline.Result{
		RunID:       "run-123",
		GeneratedAt: time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC),
		Items: []*domain.Item{
			{ItemID: "email_b", Channel: domain.ChannelEmail, Description: "EMAIL: settlement mismatch", FinalPriority: domain.PriorityP0},
			{ItemID: "slack_a", Channel: domain.ChannelSlack, Description: "SLACK: planning reminder", FinalPriority: domain.PriorityP2},
			{ItemID: "standup_c", Channel: domain.ChannelStandup, Description: "STANDUP: blocked on access", FinalPriority: domain.PriorityP1},
			{ItemID: "email_z", Channel: domain.ChannelEmail, Description: "EMAIL: another incident", FinalPriority: domain.PriorityP0},
		},
		Warnings: []pipeline.Warning{{SourceFile: "notes.txt", Reason: "no channel signature matched"}},
	}
}

func TestBuild_GroupsAndSorts(t *testing.T) {
	r := Build(sampleResult())

	assert.Equal(t, AppTitle, r.App)
	assert.Equal(t, "run-123", r.RunID)
	assert.Equal(t, []string{"P0 - 2 tasks", "P1 - 1 tasks", "P2 - 1 tasks"}, r.Summary)

	require.Len(t, r.Groups, 3)
	assert.Equal(t, domain.PriorityP0, r.Groups[0].Priority)
	require.Len(t, r.Groups[0].Items, 2)
	// Same priority and channel: description order decides.
	assert.Equal(t, "email_z", r.Groups[0].Items[0].ItemID)
	assert.Equal(t, "email_b", r.Groups[0].Items[1].ItemID)
	assert.Equal(t, "standup_c", r.Groups[1].Items[0].ItemID)
	assert.Equal(t, "slack_a", r.Groups[2].Items[0].ItemID)
}

func TestBuild_DropsExactDuplicates(t *testing.T) {
	result := sampleResult()
	result.Items = append(result.Items, &domain.Item{
		ItemID:        "email_dup",
		Channel:       domain.ChannelEmail,
		Description:   "email: Settlement Mismatch",
		FinalPriority: domain.PriorityP0,
	})

	r := Build(result)
	assert.Len(t, r.Groups[0].Items, 2)
}

func TestBuild_EmptyResult(t *testing.T) {
	r := Build(&pipeline.Result{RunID: "empty", GeneratedAt: time.Now()})

	assert.Equal(t, []string{"P0 - 0 tasks", "P1 - 0 tasks", "P2 - 0 tasks"}, r.Summary)
	for _, g := range r.Groups {
		assert.Empty(t, g.Items)
	}
}

func TestRenderMarkdown(t *testing.T) {
	md := RenderMarkdown(Build(sampleResult()))

	assert.Contains(t, md, "# "+AppTitle)
	assert.Contains(t, md, "## Summary")
	assert.Contains(t, md, "## HIGH / P0")
	assert.Contains(t, md, "## MEDIUM / P1")
	assert.Contains(t, md, "## LOW / P2")
	assert.Contains(t, md, "**[EMAIL]** EMAIL: settlement mismatch")
	assert.Contains(t, md, "(src: email_b)")
	assert.Contains(t, md, "## Skipped inputs")
	assert.Contains(t, md, "notes.txt: no channel signature matched")

	// Severity bands appear in order.
	assert.Less(t, strings.Index(md, "HIGH / P0"), strings.Index(md, "MEDIUM / P1"))
}

func TestRenderHTML(t *testing.T) {
	html, err := RenderHTML(Build(sampleResult()))
	require.NoError(t, err)

	assert.Contains(t, html, "<title>"+AppTitle+"</title>")
	assert.Contains(t, html, "HIGH / P0")
	assert.Contains(t, html, "EMAIL: settlement mismatch")
	// html/template escapes content.
	assert.NotContains(t, html, "<script>")
}

func TestWriteArtifacts(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	result := sampleResult()

	require.NoError(t, WriteArtifacts(dir, Build(result), result, zap.NewNop()))

	for _, name := range []string{
		"report.json", "items.json", "report.md", "report.html",
		"events_email.json", "events_slack.json", "events_standup.json",
	} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "run-123", decoded.RunID)

	// Channels with no events still produce a valid empty list.
	data, err = os.ReadFile(filepath.Join(dir, "events_standup.json"))
	require.NoError(t, err)
	assert.Equal(t, "[]", strings.TrimSpace(string(data)))
}
