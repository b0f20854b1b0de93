// Package recommend selects the nearest catalogue items to a target in
// descriptor space, one ranked list per genre.
package recommend

import (
	"container/heap"
	"slices"

	"gonum.org/v1/gonum/floats"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
)

// CosineDistance is 1 - cosine similarity over the seven bounded descriptors.
// A zero-norm vector has similarity 0.
func CosineDistance(a, b domain.FeatureVector) float64 {
	x, y := a.Descriptors(), b.Descriptors()
	na, nb := floats.Norm(x[:], 2), floats.Norm(y[:], 2)
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - floats.Dot(x[:], y[:])/(na*nb)
}

// Candidate is an item eligible for recommendation.
type Candidate struct {
	ID       int64
	Features domain.FeatureVector
}

// Match is a ranked candidate.
type Match struct {
	ID       int64   `json:"id" yaml:"id"`
	Distance float64 `json:"distance" yaml:"distance"`
}

func less(a, b Match) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.ID < b.ID
}

// worstFirst keeps the weakest retained match at the root.
type worstFirst []Match

func (h worstFirst) Len() int           { return len(h) }
func (h worstFirst) Less(i, j int) bool { return less(h[j], h[i]) }
func (h worstFirst) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *worstFirst) Push(x any)        { *h = append(*h, x.(Match)) }
func (h *worstFirst) Pop() any {
	old := *h
	n := len(old)
	m := old[n-1]
	*h = old[:n-1]
	return m
}

// TopK returns the k smallest matches ordered by distance then id. Matches
// rejected by skip are never considered. Fewer than k eligible matches are
// returned as is.
func TopK(matches []Match, k int, skip func(id int64) bool) []Match {
	if k <= 0 {
		return []Match{}
	}
	h := make(worstFirst, 0, k)
	for _, m := range matches {
		if skip != nil && skip(m.ID) {
			continue
		}
		if h.Len() < k {
			heap.Push(&h, m)
			continue
		}
		if less(m, h[0]) {
			h[0] = m
			heap.Fix(&h, 0)
		}
	}
	out := []Match(h)
	slices.SortFunc(out, func(a, b Match) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		}
		return 0
	})
	return out
}

// Distances scores every candidate against target, dropping repeated ids.
func Distances(target domain.FeatureVector, candidates []Candidate) []Match {
	out := make([]Match, 0, len(candidates))
	seen := make(map[int64]struct{}, len(candidates))
	for _, c := range candidates {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		out = append(out, Match{ID: c.ID, Distance: CosineDistance(target, c.Features)})
	}
	return out
}
