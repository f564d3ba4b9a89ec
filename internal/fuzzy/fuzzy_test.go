package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1       string
		s2       string
		expected int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"ONE", "ZERO", 4},
		{"ONE", "TWO", 3},
	}

	for _, tt := range tests {
		t.Run(tt.s1+"_"+tt.s2, func(t *testing.T) {
			assert.Equal(t, tt.expected, LevenshteinDistance(tt.s1, tt.s2))
		})
	}
}

func TestPossibleValues(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		names    []string
		expected string
	}{
		{"none", "X", nil, ""},
		{"single", "FALSE", []string{"ZERO"}, "possible values are 'ZERO'"},
		{"two sorted", "ONE", []string{"ZERO", "TWO"}, "possible values are 'TWO' and 'ZERO'"},
		{"three", "D", []string{"C", "A", "B"}, "possible values are 'A', 'B' and 'C'"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PossibleValues(tt.target, tt.names))
		})
	}
}

func TestClosestBoundsCandidates(t *testing.T) {
	names := []string{"ALPHA", "BRAVO", "CHARLIE", "DELTA", "ECHO", "FOXTROT", "GOLF", "HOTEL", "INDIA", "JULIET", "VALUE_ONE"}

	got := Closest("VALUE_ONE", names, MaxCandidates)
	assert.Len(t, got, MaxCandidates)
	assert.Equal(t, "VALUE_ONE", got[0])
	assert.NotContains(t, got, "INDIA")
}

func TestJoinAnd(t *testing.T) {
	assert.Equal(t, "", JoinAnd(nil))
	assert.Equal(t, "1", JoinAnd([]string{"1"}))
	assert.Equal(t, "1 and 2 to 5", JoinAnd([]string{"1", "2 to 5"}))
	assert.Equal(t, "1, 3 and 7", JoinAnd([]string{"1", "3", "7"}))
}
