package domain

import "strings"

// Priority is the policy-assigned severity class. P0 is the most severe.
type Priority string

const (
	PriorityP0 Priority = "P0"
	PriorityP1 Priority = "P1"
	PriorityP2 Priority = "P2"
)

// Ordinal encodes severity as a number where lower means more severe
// (P0=0, P1=1, P2=2). Unknown values rank as P2.
func (p Priority) Ordinal() int {
	switch p {
	case PriorityP0:
		return 0
	case PriorityP1:
		return 1
	}
	return 2
}

// Valid reports whether p is one of the three known priority classes.
func (p Priority) Valid() bool {
	return p == PriorityP0 || p == PriorityP1 || p == PriorityP2
}

// MoreSevere returns the more severe of two priorities.
func MoreSevere(a, b Priority) Priority {
	if a.Ordinal() <= b.Ordinal() {
		return a
	}
	return b
}

// ParsePriority normalizes loose priority spellings ("p0", "P1 - urgent")
// to a Priority, defaulting to P2.
func ParsePriority(s string) Priority {
	u := strings.ToUpper(strings.TrimSpace(s))
	switch {
	case strings.Contains(u, "P0"):
		return PriorityP0
	case strings.Contains(u, "P1"):
		return PriorityP1
	}
	return PriorityP2
}
