package tasks

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"autolytics/pkg/core"
	"autolytics/pkg/dataset"
)

// linearFrame builds n rows with y = 2*x0 - x1 + noise.
func linearFrame(t *testing.T, n int) *dataset.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(17))
	x0 := make([]float64, n)
	x1 := make([]float64, n)
	y := make([]float64, n)
	for i := 0; i < n; i++ {
		x0[i] = rng.NormFloat64()
		x1[i] = rng.NormFloat64()
		y[i] = 2*x0[i] - x1[i] + rng.NormFloat64()*0.05
	}
	ds, err := dataset.New(
		dataset.NumericColumn("x0", x0),
		dataset.NumericColumn("x1", x1),
		dataset.NumericColumn("y", y),
	)
	require.NoError(t, err)
	return ds
}

func TestRegressionRun(t *testing.T) {
	ds := linearFrame(t, 80)
	task := &Regression{}

	result, err := task.Run(context.Background(), ds, "y", core.RunConfig{MaxTrials: 4, Seed: 11})
	require.NoError(t, err)

	require.Equal(t, "regression", result.TaskName)
	require.Len(t, result.Leaderboard, 4)

	// ascending rmse
	for i := 1; i < len(result.Leaderboard); i++ {
		require.LessOrEqual(t,
			result.Leaderboard[i-1].Metrics["rmse"],
			result.Leaderboard[i].Metrics["rmse"])
	}
	require.Equal(t, result.Leaderboard[0].TrialID, result.BestTrialID)

	// linear data, linear model in the space: the winner fits tightly
	require.Less(t, result.Leaderboard[0].Metrics["rmse"], 0.5)
	require.Contains(t, result.Leaderboard[0].Metrics, "r2")

	require.NotNil(t, result.Predictions)
	require.Len(t, result.Predictions.Values, 16)
	require.Nil(t, result.Predictions.Labels)

	require.NotNil(t, result.Summary)
	require.Equal(t, "rmse", result.Summary.Metric)
}

func TestRegressionReproducible(t *testing.T) {
	ds := linearFrame(t, 60)
	task := &Regression{}
	cfg := core.RunConfig{MaxTrials: 3, Seed: 21, Parallelism: 2}

	a, err := task.Run(context.Background(), ds, "y", cfg)
	require.NoError(t, err)
	b, err := task.Run(context.Background(), ds, "y", cfg)
	require.NoError(t, err)

	for i := range a.Leaderboard {
		require.Equal(t, a.Leaderboard[i].Index, b.Leaderboard[i].Index)
		require.Equal(t, a.Leaderboard[i].Metrics, b.Leaderboard[i].Metrics)
	}
}

func TestRegressionValidation(t *testing.T) {
	task := &Regression{}
	var verr *core.ValidationError

	// categorical target
	n := 20
	x := make([]float64, n)
	label := make([]string, n)
	for i := range x {
		x[i] = float64(i)
		label[i] = "a"
	}
	ds, err := dataset.New(
		dataset.NumericColumn("x", x),
		dataset.CategoricalColumn("y", label),
	)
	require.NoError(t, err)
	require.True(t, errors.As(task.Validate(ds, "y", core.RunConfig{}), &verr))
	require.Equal(t, "target-type", verr.Checks[0].Name)

	// missing values in the target are critical
	yGap := make([]float64, n)
	for i := range yGap {
		yGap[i] = float64(i)
	}
	yGap[3] = math.NaN()
	ds2, err := dataset.New(
		dataset.NumericColumn("x", x),
		dataset.NumericColumn("y", yGap),
	)
	require.NoError(t, err)
	require.True(t, errors.As(task.Validate(ds2, "y", core.RunConfig{}), &verr))

	// too few rows
	small := linearFrame(t, 5)
	require.True(t, errors.As(task.Validate(small, "y", core.RunConfig{}), &verr))
	require.Equal(t, "row-count", verr.Checks[0].Name)
}
