package policy

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
)

// Rule binds a conjunction of signal groups to a target priority. A rule
// matches when every signal it requires fires; the first matching rule wins.
type Rule struct {
	Name     string          `yaml:"name"`
	Priority domain.Priority `yaml:"priority"`
	Category string          `yaml:"category"`
	Reason   string          `yaml:"reason"`
	Requires []string        `yaml:"requires"`
}

// Table is the versioned rule configuration: named keyword groups (signals)
// and the ordered rule list evaluated top-down. Exact keyword sets are policy,
// not algorithm, so they live here rather than in code.
type Table struct {
	Version int                 `yaml:"version"`
	Signals map[string][]string `yaml:"signals"`
	Rules   []Rule              `yaml:"rules"`
}

// DefaultTable returns the built-in rule table. It mirrors the operational
// triage policy: money mismatches and same-day payment risk at P0; SLA
// degradation, fraud/abuse signals, and blocked investigations at P1;
// planning and routine execution at P2.
func DefaultTable() *Table {
	return &Table{
		Version: 1,
		Signals: map[string][]string{
			"financial": {"aed", "usd", "settlement", "ledger", "payout", "payment", "chargeback", "refund", "batch", "merchant"},
			"mismatch":  {"mismatch", "difference", "reconcile", "reconciliation", "ledger totals", "missing-row", "doesn't match", "does not match"},
			"payments":  {"settlement", "ledger", "payout", "merchant", "batch"},
			"urgent":    {"urgent", "eod", "deadline", "today", "before eod", "may delay", "delay"},
			"sla":       {"latency", "spiking", "sla", "response times"},
			"fraud":     {"abnormal", "suspicious", "fraud", "abuse", "incentive", "affiliate", "chargeback spike", "chargeback spikes"},
			"blocked":   {"no production access", "no access", "cannot access", "can't access", "unable to access", "no dashboard", "blockers:"},
			"planning":  {"ui copy", "final qa", "move release", "release to friday", "planning", "fee breakdown", "proposal"},
			"info":      {"fyi", "for awareness", "informational", "monitoring"},
		},
		Rules: []Rule{
			{
				Name:     "settlement_mismatch",
				Priority: domain.PriorityP0,
				Category: "financial-mismatch",
				Reason:   "settlement/ledger mismatch (money)",
				Requires: []string{"financial", "mismatch", "payments"},
			},
			{
				Name:     "urgent_payments_risk",
				Priority: domain.PriorityP0,
				Category: "payment-incident",
				Reason:   "payments risk with same-day impact",
				Requires: []string{"financial", "payments", "urgent"},
			},
			{
				Name:     "sla_degradation",
				Priority: domain.PriorityP1,
				Category: "sla-degradation",
				Reason:   "SLA risk (latency spike)",
				Requires: []string{"sla"},
			},
			{
				Name:     "fraud_signal",
				Priority: domain.PriorityP1,
				Category: "fraud-abuse",
				Reason:   "fraud/abuse risk",
				Requires: []string{"fraud"},
			},
			{
				Name:     "blocked_investigation",
				Priority: domain.PriorityP1,
				Category: "access-blocked",
				Reason:   "investigation blocked (no access)",
				Requires: []string{"blocked"},
			},
			{
				Name:     "planning",
				Priority: domain.PriorityP2,
				Category: "planning",
				Reason:   "planning/routine",
				Requires: []string{"planning"},
			},
			{
				Name:     "informational",
				Priority: domain.PriorityP2,
				Category: "informational",
				Reason:   "informational update",
				Requires: []string{"info"},
			},
		},
	}
}

// LoadTable reads a rule table from a YAML file and validates it.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	var table Table
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("failed to parse rules file: %w", err)
	}

	if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rules file %s: %w", path, err)
	}

	return &table, nil
}

// Validate checks rule references and enforces severity ordering so
// evaluation always runs from P0 down to P2.
func (t *Table) Validate() error {
	if len(t.Rules) == 0 {
		return fmt.Errorf("rule table has no rules")
	}

	for i, rule := range t.Rules {
		if rule.Name == "" {
			return fmt.Errorf("rule %d has no name", i)
		}
		if !rule.Priority.Valid() {
			return fmt.Errorf("rule %q has invalid priority %q", rule.Name, rule.Priority)
		}
		if len(rule.Requires) == 0 {
			return fmt.Errorf("rule %q requires no signals", rule.Name)
		}
		for _, sig := range rule.Requires {
			if _, ok := t.Signals[sig]; !ok {
				return fmt.Errorf("rule %q references unknown signal %q", rule.Name, sig)
			}
		}
	}

	if !sort.SliceIsSorted(t.Rules, func(i, j int) bool {
		return t.Rules[i].Priority.Ordinal() < t.Rules[j].Priority.Ordinal()
	}) {
		return fmt.Errorf("rules must be ordered from P0 down to P2")
	}

	return nil
}
