package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"uber trip", "uber trip", 0},
		{"netflix", "net flix", 1},
		{"carrefour", "carefour", 1},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Levenshtein(tc.a, tc.b), "Levenshtein(%q, %q)", tc.a, tc.b)
	}
}

func TestSimilarity(t *testing.T) {
	assert.Equal(t, 1.0, Similarity("uber trip", "uber trip"), "identical strings")
	assert.Equal(t, 1.0, Similarity("", ""), "both empty are identical")
	assert.Equal(t, 0.0, Similarity("abc", ""), "empty vs non-empty")

	// symmetry
	ab := Similarity("netflix", "net flix")
	ba := Similarity("net flix", "netflix")
	assert.Equal(t, ab, ba)
	assert.InDelta(t, 0.875, ab, 0.0001)

	// case-folded defensively
	assert.Equal(t, 1.0, Similarity("UBER TRIP", "uber trip"))

	// always within [0, 1]
	pairs := [][2]string{
		{"a", "zzzzzzzzzz"}, {"totally", "different"}, {"x", "y"},
	}
	for _, p := range pairs {
		s := Similarity(p[0], p[1])
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}
