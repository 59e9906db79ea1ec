package tasks

import (
	"math/rand"

	"autolytics/pkg/backend"
	"autolytics/pkg/core"
)

// classificationSpace enumerates up to n candidates cycling through the
// binary classification model families, with hyperparameters sampled from an
// RNG derived from the root seed. The same seed always yields the same space.
func classificationSpace(n int, rootSeed int64) []backend.Candidate {
	rng := rand.New(rand.NewSource(core.DeriveSeed(rootSeed, -1)))
	families := []string{"logistic", "knn", "stump"}
	out := make([]backend.Candidate, 0, n)
	for i := 0; i < n; i++ {
		family := families[i%len(families)]
		var params backend.Params
		switch family {
		case "logistic":
			params = backend.Params{
				"lr":     0.01 * float64(1+rng.Intn(20)),
				"epochs": float64(20 + rng.Intn(80)),
			}
		case "knn":
			params = backend.Params{"k": float64(1 + 2*rng.Intn(8))}
		case "stump":
			params = backend.Params{}
		}
		out = append(out, backend.Candidate{Model: family, Params: params})
	}
	return out
}

// regressionSpace enumerates candidates over the regression families.
func regressionSpace(n int, rootSeed int64) []backend.Candidate {
	rng := rand.New(rand.NewSource(core.DeriveSeed(rootSeed, -2)))
	families := []string{"ols", "knn-regressor"}
	out := make([]backend.Candidate, 0, n)
	for i := 0; i < n; i++ {
		family := families[i%len(families)]
		var params backend.Params
		switch family {
		case "ols":
			params = backend.Params{"ridge": []float64{0, 0.1, 1, 10}[rng.Intn(4)]}
		case "knn-regressor":
			params = backend.Params{"k": float64(1 + 2*rng.Intn(8))}
		}
		out = append(out, backend.Candidate{Model: family, Params: params})
	}
	return out
}
