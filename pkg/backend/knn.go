package backend

import (
	"errors"
	"math"
	"sort"
)

// knn is a lazy k-nearest-neighbors learner: classification takes the
// majority vote of neighbor labels, regression their mean.
type knn struct {
	k          int
	regression bool
	x          [][]float64
	y          []float64
}

func newKNN(params Params, regression bool) *knn {
	k := int(params["k"])
	if k <= 0 {
		k = 5
	}
	return &knn{k: k, regression: regression}
}

func (m *knn) Fit(X [][]float64, y []float64) error {
	if len(X) != len(y) {
		return errors.New("knn: feature rows must match labels")
	}
	if len(X) == 0 {
		return errors.New("knn: empty training set")
	}
	m.x = X
	m.y = y
	return nil
}

func (m *knn) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	k := m.k
	if k > len(m.x) {
		k = len(m.x)
	}
	type neighbor struct {
		dist  float64
		label float64
	}
	for i, row := range X {
		neighbors := make([]neighbor, len(m.x))
		for j, train := range m.x {
			neighbors[j] = neighbor{dist: euclidean(row, train), label: m.y[j]}
		}
		sort.Slice(neighbors, func(a, b int) bool { return neighbors[a].dist < neighbors[b].dist })

		if m.regression {
			var sum float64
			for _, n := range neighbors[:k] {
				sum += n.label
			}
			out[i] = sum / float64(k)
			continue
		}
		votes := make(map[float64]int, k)
		for _, n := range neighbors[:k] {
			votes[n.label]++
		}
		best, bestCount := 0.0, -1
		for label, count := range votes {
			if count > bestCount || (count == bestCount && label < best) {
				best, bestCount = label, count
			}
		}
		out[i] = best
	}
	return out
}

func euclidean(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}
