package backend

import (
	"errors"
	"math"
	"math/rand"
)

// logistic is binary logistic regression trained with SGD. Labels must be
// 0/1; Predict returns p(y=1).
type logistic struct {
	w      []float64
	b      float64
	lr     float64
	epochs int
	rng    *rand.Rand
}

func newLogistic(params Params, seed int64) *logistic {
	lr := params["lr"]
	if lr <= 0 {
		lr = 0.1
	}
	epochs := int(params["epochs"])
	if epochs <= 0 {
		epochs = 50
	}
	return &logistic{lr: lr, epochs: epochs, rng: rand.New(rand.NewSource(seed))}
}

func (m *logistic) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 || len(X) != len(y) {
		return errors.New("logistic: feature rows must match labels")
	}
	nFeatures := len(X[0])
	m.w = make([]float64, nFeatures)
	// Small random init to break symmetry; seeded for reproducibility.
	for i := range m.w {
		m.w[i] = m.rng.NormFloat64() * 0.01
	}
	m.b = 0

	order := make([]int, len(X))
	for i := range order {
		order[i] = i
	}
	for epoch := 0; epoch < m.epochs; epoch++ {
		m.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		for _, idx := range order {
			row := X[idx]
			p := sigmoid(dot(m.w, row) + m.b)
			grad := p - y[idx]
			for j, v := range row {
				m.w[j] -= m.lr * grad * v
			}
			m.b -= m.lr * grad
		}
	}
	return nil
}

func (m *logistic) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = sigmoid(dot(m.w, row) + m.b)
	}
	return out
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func dot(w, x []float64) float64 {
	var sum float64
	for i := range w {
		sum += w[i] * x[i]
	}
	return sum
}
