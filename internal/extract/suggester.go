package extract

import (
	"context"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

// Suggestion is the hint payload the synthesis collaborator may return for a
// piece of raw text: a short summary, candidate category tags, and a
// candidate priority. All fields are advisory; deterministic parser fields
// always win.
type Suggestion struct {
	Summary  string
	Tags     []string
	Priority domain.Priority
}

// Suggester is the synthesis-collaborator capability the merger consumes. A
// (nil, nil) return means "no suggestion" and is not an error. Implementations
// must honor ctx cancellation; the merger applies the per-call timeout.
type Suggester interface {
	Suggest(ctx context.Context, text string) (*Suggestion, error)
	Name() string
}

// Disabled is the null-object Suggester selected when the collaborator is
// turned off: every call returns no suggestion, so the merge step needs no
// enabled/disabled branching.
type Disabled struct{}

// NewDisabled creates the always-empty suggester.
func NewDisabled() *Disabled {
	return &Disabled{}
}

// Suggest always returns no suggestion.
func (d *Disabled) Suggest(ctx context.Context, text string) (*Suggestion, error) {
	return nil, nil
}

// Name identifies the disabled suggester in logs.
func (d *Disabled) Name() string {
	return "none"
}
