package extract

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

// Hints is the accumulated advisory data for one event, folded from its
// chunks in chunk-index order. Hints only ever add to an item's description
// and categories; they never replace a deterministically parsed field.
type Hints struct {
	Notes    []string
	Tags     []string
	Priority domain.Priority
}

// Degradation records a chunk that proceeded without hints because the
// collaborator errored or timed out. Recorded for audit; never fatal.
type Degradation struct {
	EventID    string `json:"event_id"`
	ChunkIndex int    `json:"chunk_index"`
	Reason     string `json:"reason"`
}

// Config bounds the merger's collaborator calls.
type Config struct {
	Timeout     time.Duration
	Concurrency int
}

// Merger submits chunk text to the synthesis collaborator and folds the
// returned hints per event. Calls fan out concurrently with a per-call
// timeout; results are reassembled in deterministic chunk order, so the
// outcome is identical regardless of call completion order.
type Merger struct {
	suggester Suggester
	config    Config
	log       *zap.Logger
}

// NewMerger creates a merger over the given suggester.
func NewMerger(suggester Suggester, config Config, log *zap.Logger) *Merger {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &Merger{
		suggester: suggester,
		config:    config,
		log:       log,
	}
}

// Collect gathers hints for every chunk, keyed by parent event id. A failed
// or timed-out call degrades only that chunk to the deterministic-only path
// and is recorded; the rest of the run is unaffected.
func (m *Merger) Collect(ctx context.Context, chunks []domain.Chunk) (map[string]*Hints, []Degradation) {
	results := make([]*Suggestion, len(chunks))
	failures := make([]error, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.config.Concurrency)

	for i := range chunks {
		g.Go(func() error {
			callCtx := gctx
			if m.config.Timeout > 0 {
				var cancel context.CancelFunc
				callCtx, cancel = context.WithTimeout(gctx, m.config.Timeout)
				defer cancel()
			}

			suggestion, err := m.suggester.Suggest(callCtx, chunks[i].Text)
			if err != nil {
				// Degradation, not failure: never abort the group.
				failures[i] = err
				return nil
			}
			results[i] = suggestion
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()

	hints := make(map[string]*Hints)
	var degradations []Degradation

	// Fold in input order to keep the outcome deterministic.
	for i, ch := range chunks {
		if err := failures[i]; err != nil {
			m.log.Warn("Collaborator call degraded to deterministic-only",
				zap.String("event_id", ch.ParentEventID),
				zap.Int("chunk_index", ch.ChunkIndex),
				zap.String("suggester", m.suggester.Name()),
				zap.Error(err))
			degradations = append(degradations, Degradation{
				EventID:    ch.ParentEventID,
				ChunkIndex: ch.ChunkIndex,
				Reason:     err.Error(),
			})
			continue
		}

		suggestion := results[i]
		if suggestion == nil {
			continue
		}

		h := hints[ch.ParentEventID]
		if h == nil {
			h = &Hints{}
			hints[ch.ParentEventID] = h
		}
		if suggestion.Summary != "" {
			h.Notes = append(h.Notes, suggestion.Summary)
		}
		h.Tags = append(h.Tags, suggestion.Tags...)
		if suggestion.Priority.Valid() {
			if h.Priority == "" {
				h.Priority = suggestion.Priority
			} else {
				h.Priority = domain.MoreSevere(h.Priority, suggestion.Priority)
			}
		}
	}

	return hints, degradations
}
