// Package similarity ranks embedding vectors by cosine similarity. It is the
// default retrieval path when no external vector index is configured, so it
// must never fail: degenerate inputs score zero instead of erroring.
package similarity

import (
	"math"
	"sort"
)

// Candidate pairs an item id with its stored embedding vector
type Candidate struct {
	ID     string
	Vector []float64
}

// Cosine returns the cosine similarity of a and b. Mismatched lengths, empty
// vectors, and zero-norm vectors all score 0 rather than erroring or dividing
// by zero.
func Cosine(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank returns the ids of the top k candidates by descending cosine
// similarity to query. The sort is stable: candidates with equal scores keep
// their input order. Never returns more than k ids.
func Rank(query []float64, candidates []Candidate, k int) []string {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}

	type scored struct {
		id    string
		score float64
	}
	ranked := make([]scored, len(candidates))
	for i, c := range candidates {
		ranked[i] = scored{id: c.ID, score: Cosine(query, c.Vector)}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	if k > len(ranked) {
		k = len(ranked)
	}
	ids := make([]string, 0, k)
	for i := 0; i < k; i++ {
		ids = append(ids, ranked[i].id)
	}
	return ids
}
