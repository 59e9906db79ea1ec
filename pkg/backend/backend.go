// Package backend holds the pluggable model strategies a trial configuration
// selects. The execution engine only sees the Model interface; concrete
// learners here are deliberately small baselines.
package backend

import "fmt"

// Model is a supervised learning strategy.
type Model interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) []float64
}

// Params are a candidate's hyperparameters.
type Params map[string]float64

// Candidate selects a model family plus hyperparameters for one trial.
type Candidate struct {
	Model  string `json:"model"`
	Params Params `json:"params"`
}

// Config renders the candidate as a leaderboard config map.
func (c Candidate) Config() map[string]any {
	out := map[string]any{"model": c.Model}
	for k, v := range c.Params {
		out[k] = v
	}
	return out
}

// New constructs the model a candidate names. The seed feeds any stochastic
// initialization so identical candidates train identically.
func New(c Candidate, seed int64) (Model, error) {
	switch c.Model {
	case "logistic":
		return newLogistic(c.Params, seed), nil
	case "knn":
		return newKNN(c.Params, false), nil
	case "knn-regressor":
		return newKNN(c.Params, true), nil
	case "stump":
		return newStump(), nil
	case "ols":
		return newOLS(c.Params), nil
	default:
		return nil, fmt.Errorf("backend: unknown model %q", c.Model)
	}
}
