package report

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NadezhdaSmurova/TaskDigest/internal/domain"
	"github.com/NadezhdaSmurova/TaskDigest/internal/pipeline"
)

// AppTitle is the display name used across every rendered format.
const AppTitle = "TaskDigest"

// Group is one priority band of the digest, in severity order.
type Group struct {
	Priority domain.Priority `json:"priority"`
	Items    []*domain.Item  `json:"items"`
}

// Report is the renderer-facing digest model: items deduplicated, sorted,
// and grouped by final priority, plus the audit counts.
type Report struct {
	App       string             `json:"app"`
	RunID     string             `json:"run_id"`
	Generated string             `json:"generated"`
	Summary   []string           `json:"summary"`
	Groups    []Group            `json:"groups"`
	Warnings  []pipeline.Warning `json:"warnings,omitempty"`
}

// Build shapes a pipeline result into the report model. Items are sorted by
// (severity, channel label, description) and exact duplicate
// (priority, channel, description) triples are dropped.
func Build(result *pipeline.Result) *Report {
	items := dedupeItems(result.Items)

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.FinalPriority.Ordinal() != b.FinalPriority.Ordinal() {
			return a.FinalPriority.Ordinal() < b.FinalPriority.Ordinal()
		}
		if a.Channel.Label() != b.Channel.Label() {
			return a.Channel.Label() < b.Channel.Label()
		}
		return a.Description < b.Description
	})

	groups := []Group{
		{Priority: domain.PriorityP0, Items: []*domain.Item{}},
		{Priority: domain.PriorityP1, Items: []*domain.Item{}},
		{Priority: domain.PriorityP2, Items: []*domain.Item{}},
	}
	for _, item := range items {
		g := &groups[item.FinalPriority.Ordinal()]
		g.Items = append(g.Items, item)
	}

	summary := make([]string, 0, len(groups))
	for _, g := range groups {
		summary = append(summary, fmt.Sprintf("%s - %d tasks", g.Priority, len(g.Items)))
	}

	return &Report{
		App:       AppTitle,
		RunID:     result.RunID,
		Generated: result.GeneratedAt.Format(time.RFC3339),
		Summary:   summary,
		Groups:    groups,
		Warnings:  result.Warnings,
	}
}

func dedupeItems(items []*domain.Item) []*domain.Item {
	seen := make(map[string]bool, len(items))
	out := make([]*domain.Item, 0, len(items))
	for _, item := range items {
		key := string(item.FinalPriority) + "|" + string(item.Channel) + "|" + strings.ToLower(strings.TrimSpace(item.Description))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, item)
	}
	return out
}

func headerFor(p domain.Priority) string {
	switch p {
	case domain.PriorityP0:
		return "HIGH / P0"
	case domain.PriorityP1:
		return "MEDIUM / P1"
	}
	return "LOW / P2"
}
