package chat

import (
	"sort"
	"strings"

	"github.com/samber/lo"
)

// SortNames orders display names case-insensitively for presentation. The
// registry itself makes no ordering promise, so display layers call this
// before rendering a roster.
func SortNames(names []string) []string {
	sorted := make([]string, len(names))
	copy(sorted, names)
	sort.SliceStable(sorted, func(i, j int) bool {
		return strings.ToLower(sorted[i]) < strings.ToLower(sorted[j])
	})
	return sorted
}

// SearchLines filters a transcript (or a drained queue snapshot) down to
// lines containing query, case-insensitively. Order is preserved.
func SearchLines(lines []string, query string) []string {
	q := strings.ToLower(query)
	return lo.Filter(lines, func(line string, _ int) bool {
		return strings.Contains(strings.ToLower(line), q)
	})
}
