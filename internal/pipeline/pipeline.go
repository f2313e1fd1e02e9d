package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/NadezhdaSmurova/TaskDigest/internal/aggregate"
	"github.com/NadezhdaSmurova/TaskDigest/internal/chunk"
	"github.com/NadezhdaSmurova/TaskDigest/internal/classify"
	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
	"github.com/NadezhdaSmurova/TaskDigest/internal/extract"
	"github.com/NadezhdaSmurova/TaskDigest/internal/parse"
	"github.com/NadezhdaSmurova/TaskDigest/internal/policy"
)

// Warning records a document the run skipped or degraded, for the audit
// trail. Warnings never abort a run.
type Warning struct {
	SourceFile string `json:"source_file"`
	Reason     string `json:"reason"`
}

// Result is the complete outcome of one batch pass: the prioritized items,
// the raw per-channel event lists for audit, and every recorded degradation.
type Result struct {
	RunID        string                            `json:"run_id"`
	GeneratedAt  time.Time                         `json:"generated_at"`
	Items        []*domain.Item                    `json:"items"`
	Events       map[domain.Channel][]domain.Event `json:"events"`
	Warnings     []Warning                         `json:"warnings,omitempty"`
	Degradations []extract.Degradation             `json:"degradations,omitempty"`
}

// Runner wires the stages into the single deterministic batch pass:
// classify -> parse -> chunk -> extract -> aggregate -> prioritize.
type Runner struct {
	classifier *classify.Classifier
	registry   *parse.Registry
	chunker    *chunk.Chunker
	merger     *extract.Merger
	engine     *policy.Engine
	aggregator *aggregate.Aggregator
	log        *zap.Logger
}

// NewRunner assembles a runner from its stages.
func NewRunner(chunker *chunk.Chunker, merger *extract.Merger, engine *policy.Engine, log *zap.Logger) *Runner {
	return &Runner{
		classifier: classify.New(),
		registry:   parse.NewRegistry(),
		chunker:    chunker,
		merger:     merger,
		engine:     engine,
		aggregator: aggregate.New(engine, log),
		log:        log,
	}
}

// Run executes one batch pass over the documents. Per-run state (ids,
// warnings, degradations) lives in the Result, never in the Runner, so
// concurrent runs do not interfere.
func (r *Runner) Run(ctx context.Context, docs []Document) (*Result, error) {
	result := &Result{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now(),
		Events:      make(map[domain.Channel][]domain.Event),
	}

	var events []domain.Event
	for _, doc := range docs {
		channel, err := r.classifier.Classify(doc.Text)
		if err != nil {
			if errors.Is(err, classify.ErrUnclassified) {
				r.log.Warn("Skipping unclassifiable file", zap.String("file", doc.Name))
				result.Warnings = append(result.Warnings, Warning{
					SourceFile: doc.Name,
					Reason:     "no channel signature matched",
				})
				continue
			}
			return nil, err
		}

		parser, err := r.registry.Parser(channel)
		if err != nil {
			return nil, err
		}

		parsed, err := parser.Parse(doc.Text, doc.Name)
		if err != nil {
			// Structural parse problems degrade the file, not the run.
			r.log.Warn("Failed to parse file",
				zap.String("file", doc.Name),
				zap.String("channel", string(channel)),
				zap.Error(err))
			result.Warnings = append(result.Warnings, Warning{
				SourceFile: doc.Name,
				Reason:     err.Error(),
			})
			continue
		}

		r.log.Debug("Parsed file",
			zap.String("file", doc.Name),
			zap.String("channel", string(channel)),
			zap.Int("event_count", len(parsed)))

		events = append(events, parsed...)
		result.Events[channel] = append(result.Events[channel], parsed...)
	}

	// Email bodies get windowed; slack and standup blocks are bounded by
	// construction and window their raw text, one chunk in practice.
	chunksByEvent := make(map[string][]domain.Chunk)
	var extractionUnits []domain.Chunk
	for i := range events {
		event := &events[i]
		if event.Channel == domain.ChannelEmail {
			chunks := r.chunker.Split(event)
			chunksByEvent[event.EventID] = chunks
			extractionUnits = append(extractionUnits, chunks...)
			continue
		}
		extractionUnits = append(extractionUnits, r.chunker.SplitRaw(event)...)
	}

	hints, degradations := r.merger.Collect(ctx, extractionUnits)
	result.Degradations = degradations

	result.Items = r.aggregator.Build(events, chunksByEvent, hints)
	r.engine.FinalizeAll(result.Items)

	r.log.Info("Run complete",
		zap.String("run_id", result.RunID),
		zap.Int("documents", len(docs)),
		zap.Int("events", len(events)),
		zap.Int("items", len(result.Items)),
		zap.Int("warnings", len(result.Warnings)),
		zap.Int("degradations", len(result.Degradations)))

	return result, nil
}
