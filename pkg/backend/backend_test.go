package backend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// linearly separable: class is 1 when x0 > 0
func separableData() (X [][]float64, y []float64) {
	for i := -10; i < 10; i++ {
		v := float64(i) + 0.5
		X = append(X, []float64{v, -v * 0.5})
		if v > 0 {
			y = append(y, 1)
		} else {
			y = append(y, 0)
		}
	}
	return X, y
}

func TestNewUnknownModel(t *testing.T) {
	_, err := New(Candidate{Model: "forest"}, 1)
	require.Error(t, err)
}

func TestCandidateConfig(t *testing.T) {
	c := Candidate{Model: "knn", Params: Params{"k": 3}}
	cfg := c.Config()
	require.Equal(t, "knn", cfg["model"])
	require.Equal(t, 3.0, cfg["k"])
}

func TestLogisticSeparable(t *testing.T) {
	X, y := separableData()

	model, err := New(Candidate{Model: "logistic"}, 42)
	require.NoError(t, err)
	require.NoError(t, model.Fit(X, y))

	pred := model.Predict(X)
	require.GreaterOrEqual(t, Accuracy(y, pred), 0.95)
}

func TestLogisticDeterministicBySeed(t *testing.T) {
	X, y := separableData()

	a, _ := New(Candidate{Model: "logistic"}, 7)
	b, _ := New(Candidate{Model: "logistic"}, 7)
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	require.Equal(t, a.Predict(X), b.Predict(X))
}

func TestLogisticRejectsBadShape(t *testing.T) {
	model, _ := New(Candidate{Model: "logistic"}, 1)
	require.Error(t, model.Fit(nil, nil))
	require.Error(t, model.Fit([][]float64{{1}}, []float64{1, 0}))
}

func TestKNNClassifier(t *testing.T) {
	X, y := separableData()

	model, err := New(Candidate{Model: "knn", Params: Params{"k": 3}}, 1)
	require.NoError(t, err)
	require.NoError(t, model.Fit(X, y))

	pred := model.Predict([][]float64{{5, -2.5}, {-5, 2.5}})
	require.Equal(t, 1.0, pred[0])
	require.Equal(t, 0.0, pred[1])
}

func TestKNNRegressor(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}, {4}}
	y := []float64{0, 10, 20, 30, 40}

	model, err := New(Candidate{Model: "knn-regressor", Params: Params{"k": 2}}, 1)
	require.NoError(t, err)
	require.NoError(t, model.Fit(X, y))

	pred := model.Predict([][]float64{{0.4}})
	require.InDelta(t, 5, pred[0], 1e-9)
}

func TestStump(t *testing.T) {
	X, y := separableData()

	model, err := New(Candidate{Model: "stump"}, 1)
	require.NoError(t, err)
	require.NoError(t, model.Fit(X, y))

	pred := model.Predict(X)
	require.GreaterOrEqual(t, Accuracy(y, pred), 0.95)
}

func TestOLSRecoversLine(t *testing.T) {
	// y = 3x + 2
	X := [][]float64{{0}, {1}, {2}, {3}, {4}, {5}}
	y := []float64{2, 5, 8, 11, 14, 17}

	model, err := New(Candidate{Model: "ols"}, 1)
	require.NoError(t, err)
	require.NoError(t, model.Fit(X, y))

	pred := model.Predict([][]float64{{10}})
	require.InDelta(t, 32, pred[0], 1e-6)
}

func TestOLSRidgeShrinks(t *testing.T) {
	X := [][]float64{{0}, {1}, {2}, {3}}
	y := []float64{0, 1, 2, 3}

	plain, _ := New(Candidate{Model: "ols"}, 1)
	require.NoError(t, plain.Fit(X, y))
	ridge, _ := New(Candidate{Model: "ols", Params: Params{"ridge": 10}}, 1)
	require.NoError(t, ridge.Fit(X, y))

	p := plain.Predict([][]float64{{100}})
	r := ridge.Predict([][]float64{{100}})
	require.Less(t, r[0], p[0])
}

func TestAccuracy(t *testing.T) {
	require.Equal(t, 0.75, Accuracy([]float64{1, 0, 1, 0}, []float64{0.9, 0.1, 0.8, 0.6}))
	require.Equal(t, 0.0, Accuracy(nil, nil))
}

func TestRMSE(t *testing.T) {
	require.InDelta(t, 0, RMSE([]float64{1, 2}, []float64{1, 2}), 1e-12)
	require.InDelta(t, 1, RMSE([]float64{1, 2}, []float64{2, 3}), 1e-12)
}

func TestR2(t *testing.T) {
	yTrue := []float64{1, 2, 3, 4}
	require.InDelta(t, 1, R2(yTrue, yTrue), 1e-12)

	mean := []float64{2.5, 2.5, 2.5, 2.5}
	require.InDelta(t, 0, R2(yTrue, mean), 1e-12)

	require.Equal(t, 0.0, R2([]float64{2, 2}, []float64{1, 3}))
}
