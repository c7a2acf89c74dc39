package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a        []float64
		b        []float64
		expected float64
	}{
		{
			name:     "identical vectors score 1",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 2, 3},
			expected: 1,
		},
		{
			name:     "orthogonal vectors score 0",
			a:        []float64{1, 0},
			b:        []float64{0, 1},
			expected: 0,
		},
		{
			name:     "opposite vectors score -1",
			a:        []float64{1, 0},
			b:        []float64{-1, 0},
			expected: -1,
		},
		{
			name:     "mismatched lengths score 0",
			a:        []float64{1, 2, 3},
			b:        []float64{1, 2},
			expected: 0,
		},
		{
			name:     "empty vectors score 0",
			a:        []float64{},
			b:        []float64{},
			expected: 0,
		},
		{
			name:     "zero-norm vector scores 0",
			a:        []float64{0, 0, 0},
			b:        []float64{1, 2, 3},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Cosine(tt.a, tt.b), 1e-9)
		})
	}
}

func TestCosineIsSymmetric(t *testing.T) {
	a := []float64{0.3, 0.7, 0.1, 0.9}
	b := []float64{0.8, 0.2, 0.5, 0.4}

	assert.InDelta(t, Cosine(a, b), Cosine(b, a), 1e-12)
}

func TestRank(t *testing.T) {
	query := []float64{1, 0}
	candidates := []Candidate{
		{ID: "orthogonal", Vector: []float64{0, 1}},
		{ID: "aligned", Vector: []float64{1, 0}},
		{ID: "diagonal", Vector: []float64{1, 1}},
	}

	ids := Rank(query, candidates, 1)
	assert.Equal(t, []string{"aligned"}, ids)

	ids = Rank(query, candidates, 3)
	assert.Equal(t, []string{"aligned", "diagonal", "orthogonal"}, ids)
}

func TestRankNeverExceedsK(t *testing.T) {
	query := []float64{1, 0}
	candidates := []Candidate{
		{ID: "a", Vector: []float64{1, 0}},
		{ID: "b", Vector: []float64{0.9, 0.1}},
	}

	assert.Len(t, Rank(query, candidates, 1), 1)
	assert.Len(t, Rank(query, candidates, 5), 2)
	assert.Nil(t, Rank(query, candidates, 0))
	assert.Nil(t, Rank(query, nil, 3))
}

func TestRankIsStableForEqualScores(t *testing.T) {
	query := []float64{1, 0}
	// Both candidates are orthogonal to the query, so both score 0 and input
	// order must be preserved
	candidates := []Candidate{
		{ID: "first", Vector: []float64{0, 1}},
		{ID: "second", Vector: []float64{0, 2}},
	}

	assert.Equal(t, []string{"first", "second"}, Rank(query, candidates, 2))
}
