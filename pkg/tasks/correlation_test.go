package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"autolytics/pkg/core"
	"autolytics/pkg/dataset"
)

func correlationFrame(t *testing.T) *dataset.Dataset {
	t.Helper()
	a := []float64{1, 2, 3, 4, 5, 6}
	b := []float64{2, 4, 6, 8, 10, 12} // perfectly correlated with a
	c := []float64{6, 5, 4, 3, 2, 1}   // perfectly anti-correlated
	d := []float64{3, 1, 4, 1, 5, 9}   // unrelated
	ds, err := dataset.New(
		dataset.NumericColumn("a", a),
		dataset.NumericColumn("b", b),
		dataset.NumericColumn("c", c),
		dataset.NumericColumn("d", d),
	)
	require.NoError(t, err)
	return ds
}

func TestCorrelationRun(t *testing.T) {
	ds := correlationFrame(t)
	task := &Correlation{}

	result, err := task.Run(context.Background(), ds, "", core.RunConfig{})
	require.NoError(t, err)

	require.Equal(t, "correlation", result.TaskName)
	require.NotNil(t, result.Leaderboard)
	require.Empty(t, result.Leaderboard)
	require.Empty(t, result.BestTrialID)

	columns := result.Details["columns"].([]string)
	require.Equal(t, []string{"a", "b", "c", "d"}, columns)

	pearson := result.Details["pearson"].([][]float64)
	require.Len(t, pearson, 4)
	for i := range pearson {
		require.Equal(t, 1.0, pearson[i][i])
		for j := range pearson[i] {
			require.InDelta(t, pearson[j][i], pearson[i][j], 1e-12)
		}
	}
	require.InDelta(t, 1.0, pearson[0][1], 1e-12)
	require.InDelta(t, -1.0, pearson[0][2], 1e-12)

	spearman := result.Details["spearman"].([][]float64)
	require.InDelta(t, 1.0, spearman[0][1], 1e-12)
	require.InDelta(t, -1.0, spearman[0][2], 1e-12)
}

func TestCorrelationSpearmanMonotonic(t *testing.T) {
	// y is a nonlinear but monotone function of x: Spearman sees a perfect
	// relationship where Pearson does not
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{1, 8, 27, 64, 125}
	ds, err := dataset.New(
		dataset.NumericColumn("x", x),
		dataset.NumericColumn("y", y),
	)
	require.NoError(t, err)

	result, err := (&Correlation{}).Run(context.Background(), ds, "", core.RunConfig{})
	require.NoError(t, err)

	pearson := result.Details["pearson"].([][]float64)
	spearman := result.Details["spearman"].([][]float64)
	require.InDelta(t, 1.0, spearman[0][1], 1e-12)
	require.Less(t, pearson[0][1], 1.0)
}

func TestCorrelationWithTarget(t *testing.T) {
	ds := correlationFrame(t)
	task := &Correlation{}

	result, err := task.Run(context.Background(), ds, "a", core.RunConfig{})
	require.NoError(t, err)

	target := result.Details["target_correlations"].([]TargetCorrelation)
	require.Len(t, target, 3)
	// strongest absolute correlation first, names break ties
	require.Equal(t, "b", target[0].Column)
	require.Equal(t, "c", target[1].Column)
	require.Equal(t, "d", target[2].Column)
	require.InDelta(t, 1.0, target[0].Pearson, 1e-12)
	require.InDelta(t, -1.0, target[1].Pearson, 1e-12)
}

func TestCorrelationValidation(t *testing.T) {
	task := &Correlation{}
	var verr *core.ValidationError

	one, err := dataset.New(dataset.NumericColumn("only", []float64{1, 2, 3}))
	require.NoError(t, err)
	require.True(t, errors.As(task.Validate(one, "", core.RunConfig{}), &verr))
	require.Equal(t, "numeric-columns", verr.Checks[0].Name)

	ds := correlationFrame(t)
	require.True(t, errors.As(task.Validate(ds, "nope", core.RunConfig{}), &verr))
	require.Equal(t, "target-present", verr.Checks[0].Name)

	tiny, err := dataset.New(
		dataset.NumericColumn("a", []float64{1, 2}),
		dataset.NumericColumn("b", []float64{2, 1}),
	)
	require.NoError(t, err)
	require.True(t, errors.As(task.Validate(tiny, "", core.RunConfig{}), &verr))
	require.Equal(t, "row-count", verr.Checks[0].Name)
}

func TestCorrelationContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := (&Correlation{}).Run(ctx, correlationFrame(t), "", core.RunConfig{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRanks(t *testing.T) {
	require.Equal(t, []float64{2, 1, 3}, ranks([]float64{5, 1, 9}))
	// ties share the average rank
	require.Equal(t, []float64{1.5, 1.5, 3}, ranks([]float64{2, 2, 7}))
}
