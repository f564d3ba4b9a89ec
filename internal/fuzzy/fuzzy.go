// Package fuzzy ranks identifiers by edit distance for "did you mean" help.
package fuzzy

import (
	"fmt"
	"sort"
	"strings"
)

// MaxCandidates bounds how many names a suggestion lists
const MaxCandidates = 8

type candidate struct {
	value    string
	distance int
	index    int
}

// Closest returns up to limit names nearest to target by Levenshtein
// distance. Ties keep the order of names. When names has at most limit
// entries, all of them are returned.
//
// Example:
//
//	Closest("ONE", []string{"ZERO", "TWO"}, 8)
//	// Returns: ["ZERO", "TWO"]
func Closest(target string, names []string, limit int) []string {
	if limit <= 0 {
		limit = MaxCandidates
	}
	if len(names) <= limit {
		out := make([]string, len(names))
		copy(out, names)
		return out
	}

	ranked := make([]candidate, len(names))
	for i, name := range names {
		ranked[i] = candidate{value: name, distance: LevenshteinDistance(target, name), index: i}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].distance < ranked[j].distance
	})

	out := make([]string, 0, limit)
	for _, c := range ranked[:limit] {
		out = append(out, c.value)
	}
	return out
}

// PossibleValues builds the help text listing the valid names for target,
// sorted lexically: "possible values are 'TWO' and 'ZERO'". Returns "" when
// there are no names.
func PossibleValues(target string, names []string) string {
	picked := Closest(target, names, MaxCandidates)
	if len(picked) == 0 {
		return ""
	}
	sort.Strings(picked)
	return "possible values are " + JoinQuoted(picked)
}

// JoinQuoted joins names as 'A', 'B' and 'C'
func JoinQuoted(names []string) string {
	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = fmt.Sprintf("'%s'", n)
	}
	return JoinAnd(quoted)
}

// JoinAnd joins items with ", " and a final " and "
func JoinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
}

// LevenshteinDistance calculates the minimum number of single-character
// edits needed to turn s1 into s2.
//
// Example:
//
//	LevenshteinDistance("kitten", "sitting") // Returns: 3
func LevenshteinDistance(s1, s2 string) int {
	a, b := []rune(s1), []rune(s2)
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}
