// Package classify maps transaction descriptions to spending categories
// with deterministic keyword matching. There is no learned model: the rule
// set is the ordered category list, and ambiguity resolves by explicit
// comparison, never by map iteration order.
package classify

import (
	"sort"
	"strings"

	"github.com/sarthakgup/personal-finance-copilot/internal/core"
)

// Match is the outcome of classifying one description.
type Match struct {
	CategoryID int64
	Keyword    string
}

// Classify returns the category for a description, or nil when no keyword
// matches ("Uncategorized"). Matching is case-insensitive substring
// containment. When several categories match, the longest matching keyword
// wins; a remaining tie goes to the lowest category id. Both steps are
// total orders, so identical inputs always classify identically.
func Classify(description string, categories []core.Category) *Match {
	normalized := strings.ToLower(description)

	ordered := make([]core.Category, len(categories))
	copy(ordered, categories)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	var best *Match
	for _, cat := range ordered {
		for _, kw := range cat.Keywords {
			kw = strings.ToLower(kw)
			if kw == "" || !strings.Contains(normalized, kw) {
				continue
			}
			// Strictly longer replaces; equal length keeps the earlier
			// (lower-id) category because of the iteration order.
			if best == nil || len(kw) > len(best.Keyword) {
				best = &Match{CategoryID: cat.ID, Keyword: kw}
			}
		}
	}
	return best
}

// CategoryID is a convenience wrapper returning just the winning id.
func CategoryID(description string, categories []core.Category) *int64 {
	m := Classify(description, categories)
	if m == nil {
		return nil
	}
	id := m.CategoryID
	return &id
}
