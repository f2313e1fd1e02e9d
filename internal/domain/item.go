package domain

// Item is the unit the policy engine and reporting operate on: exactly one
// per originating Event after aggregation. FinalPriority is computed once by
// the policy engine; Items are read-only afterwards.
type Item struct {
	ItemID                string    `json:"item_id"`
	Channel               Channel   `json:"channel"`
	Description           string    `json:"description"`
	SourceRef             SourceRef `json:"source_ref"`
	MatchedCategories     []string  `json:"matched_categories,omitempty"`
	DeterministicPriority Priority  `json:"deterministic_priority"`
	SuggestedPriority     Priority  `json:"suggested_priority,omitempty"`
	FinalPriority         Priority  `json:"final_priority"`
	PriorityReason        string    `json:"priority_reason,omitempty"`
}

// HasCategory reports whether the item carries the given policy category tag.
func (it *Item) HasCategory(cat string) bool {
	for _, c := range it.MatchedCategories {
		if c == cat {
			return true
		}
	}
	return false
}

// AddCategory appends a category tag unless it is already present.
func (it *Item) AddCategory(cat string) {
	if cat == "" || it.HasCategory(cat) {
		return
	}
	it.MatchedCategories = append(it.MatchedCategories, cat)
}
