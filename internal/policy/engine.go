package policy

import (
	"strings"

	"go.uber.org/zap"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

// Engine assigns deterministic priorities by evaluating the rule table
// top-down with first-match-wins semantics, then reconciles any suggested
// priority under the escalate-only constraint.
type Engine struct {
	table *Table
	log   *zap.Logger
}

// NewEngine creates a policy engine over the given rule table.
func NewEngine(table *Table, log *zap.Logger) *Engine {
	return &Engine{
		table: table,
		log:   log,
	}
}

// Finalize evaluates the rule table against the item's description and
// categories, records the winning rule, and computes the final priority.
// Items with no matching rule fall to the P2 floor; that is not an error.
// After Finalize the item is read-only.
func (e *Engine) Finalize(item *domain.Item) {
	rule := e.evaluate(item)

	if rule != nil {
		item.DeterministicPriority = rule.Priority
		item.PriorityReason = rule.Reason
		item.AddCategory(rule.Category)
	} else {
		item.DeterministicPriority = domain.PriorityP2
		item.PriorityReason = "default"
	}

	// A suggested priority can only escalate severity, never downgrade it.
	item.FinalPriority = item.DeterministicPriority
	if item.SuggestedPriority.Valid() {
		item.FinalPriority = domain.MoreSevere(item.DeterministicPriority, item.SuggestedPriority)
	}

	e.log.Debug("Item prioritized",
		zap.String("item_id", item.ItemID),
		zap.String("deterministic", string(item.DeterministicPriority)),
		zap.String("suggested", string(item.SuggestedPriority)),
		zap.String("final", string(item.FinalPriority)),
		zap.String("reason", item.PriorityReason))
}

// FinalizeAll runs Finalize over every item in order.
func (e *Engine) FinalizeAll(items []*domain.Item) {
	for _, item := range items {
		e.Finalize(item)
	}
}

// Score evaluates the rule table against bare text, for pre-aggregation
// ranking of chunk candidates. Returns the winning rule's priority and
// category, or the P2 floor with no category.
func (e *Engine) Score(text string) (domain.Priority, string) {
	probe := &domain.Item{Description: text}
	if rule := e.evaluate(probe); rule != nil {
		return rule.Priority, rule.Category
	}
	return domain.PriorityP2, ""
}

// evaluate returns the first rule whose required signals all fire, or nil.
func (e *Engine) evaluate(item *domain.Item) *Rule {
	text := strings.ToLower(item.Description)

	for i := range e.table.Rules {
		rule := &e.table.Rules[i]
		if e.matches(rule, text, item) {
			return rule
		}
	}
	return nil
}

func (e *Engine) matches(rule *Rule, text string, item *domain.Item) bool {
	// An item already tagged with this rule's category matched it earlier
	// (chunk-level scoring); the description excerpt may no longer carry the
	// keywords, so the tag itself is the evidence.
	if rule.Category != "" && item.HasCategory(rule.Category) {
		return true
	}
	for _, sig := range rule.Requires {
		if !e.signalFires(sig, text, item) {
			return false
		}
	}
	return true
}

// signalFires checks the signal's keyword list against the item text; an
// extraction hint tag carrying the signal name counts as evidence too.
func (e *Engine) signalFires(name, text string, item *domain.Item) bool {
	if item.HasCategory(name) {
		return true
	}
	for _, keyword := range e.table.Signals[name] {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
