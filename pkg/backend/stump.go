package backend

import (
	"errors"
	"sort"
)

// stump is a one-split decision tree over a single feature, picked to
// minimize training misclassification. Labels must be 0/1.
type stump struct {
	feature   int
	threshold float64
	left      float64
	right     float64
}

func newStump() *stump { return &stump{} }

func (m *stump) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("stump: feature rows must match labels")
	}
	bestErr := len(y) + 1
	for f := range X[0] {
		values := make([]float64, len(X))
		for i, row := range X {
			values[i] = row[f]
		}
		candidates := thresholds(values)
		for _, t := range candidates {
			for _, left := range []float64{0, 1} {
				right := 1 - left
				mis := 0
				for i, row := range X {
					pred := right
					if row[f] <= t {
						pred = left
					}
					if pred != y[i] {
						mis++
					}
				}
				if mis < bestErr {
					bestErr = mis
					m.feature, m.threshold, m.left, m.right = f, t, left, right
				}
			}
		}
	}
	return nil
}

func (m *stump) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		if row[m.feature] <= m.threshold {
			out[i] = m.left
		} else {
			out[i] = m.right
		}
	}
	return out
}

func thresholds(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	var out []float64
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			out = append(out, (sorted[i]+sorted[i-1])/2)
		}
	}
	if len(out) == 0 {
		out = []float64{sorted[0]}
	}
	return out
}
