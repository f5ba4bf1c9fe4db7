// Package announce decides which order lines are spoken and renders the
// phrases for order numbers and line items.
package announce

import (
	"strings"

	"github.com/joseph-ayodele/order-assistant/internal/entity"
)

// FilteredReason is reported for items suppressed by a filter word.
const FilteredReason = "Содержит фильтруемое слово"

// ShouldAnnounce reports whether name contains none of words. Matching is a
// case-insensitive substring test, so an empty word suppresses everything.
func ShouldAnnounce(name string, words []string) bool {
	_, matched := MatchFilter(name, words)
	return !matched
}

// MatchFilter returns the first word found in name.
func MatchFilter(name string, words []string) (string, bool) {
	if len(words) == 0 {
		return "", false
	}
	lower := strings.ToLower(name)
	for _, w := range words {
		if strings.Contains(lower, strings.ToLower(w)) {
			return w, true
		}
	}
	return "", false
}

// Words flattens stored filter words.
func Words(fw []entity.FilterWord) []string {
	out := make([]string, 0, len(fw))
	for _, f := range fw {
		out = append(out, f.Word)
	}
	return out
}

// PreparedItem is an order line annotated for assembly.
type PreparedItem struct {
	entity.OrderItem
	ShouldAnnounce bool   `json:"should_announce"`
	FilteredReason string `json:"filtered_reason,omitempty"`
	MatchedWord    string `json:"matched_word,omitempty"`
}

// PrepareItems annotates every item, keeping input order.
func PrepareItems(items []entity.OrderItem, words []string) []PreparedItem {
	out := make([]PreparedItem, 0, len(items))
	for _, it := range items {
		p := PreparedItem{OrderItem: it, ShouldAnnounce: true}
		if w, ok := MatchFilter(it.Name, words); ok {
			p.ShouldAnnounce = false
			p.FilteredReason = FilteredReason
			p.MatchedWord = w
		}
		out = append(out, p)
	}
	return out
}
