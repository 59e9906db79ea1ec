package tasks

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"autolytics/pkg/core"
	"autolytics/pkg/dataset"
	"autolytics/pkg/runlog"
)

// binaryFrame builds n rows where the label follows the sign of x0 plus a
// categorical segment column, so every model family has signal to find.
func binaryFrame(t *testing.T, n int) *dataset.Dataset {
	t.Helper()
	rng := rand.New(rand.NewSource(99))
	x0 := make([]float64, n)
	x1 := make([]float64, n)
	segment := make([]string, n)
	label := make([]string, n)
	for i := 0; i < n; i++ {
		x0[i] = rng.NormFloat64()
		x1[i] = rng.NormFloat64() * 0.1
		if i%3 == 0 {
			segment[i] = "a"
		} else {
			segment[i] = "b"
		}
		if x0[i] > 0 {
			label[i] = "yes"
		} else {
			label[i] = "no"
		}
	}
	ds, err := dataset.New(
		dataset.NumericColumn("x0", x0),
		dataset.NumericColumn("x1", x1),
		dataset.CategoricalColumn("segment", segment),
		dataset.CategoricalColumn("label", label),
	)
	require.NoError(t, err)
	return ds
}

func TestClassificationRun(t *testing.T) {
	ds := binaryFrame(t, 100)
	task := &Classification{}

	cfg := core.RunConfig{MaxTrials: 3, Seed: 42, Parallelism: 2}
	result, err := task.Run(context.Background(), ds, "label", cfg)
	require.NoError(t, err)

	require.Equal(t, "classification", result.TaskName)
	require.NotEmpty(t, result.RunID)
	require.Len(t, result.Leaderboard, 3)
	require.Empty(t, result.Failures)

	// descending accuracy
	for i := 1; i < len(result.Leaderboard); i++ {
		require.GreaterOrEqual(t,
			result.Leaderboard[i-1].Metrics["accuracy"],
			result.Leaderboard[i].Metrics["accuracy"])
	}
	require.Equal(t, result.Leaderboard[0].TrialID, result.BestTrialID)

	// the winner should comfortably beat chance on separable data
	require.Greater(t, result.Leaderboard[0].Metrics["accuracy"], 0.7)

	require.NotNil(t, result.Summary)
	require.Equal(t, "accuracy", result.Summary.Metric)
	require.LessOrEqual(t, result.Summary.Lower, result.Summary.Upper)

	require.NotNil(t, result.Predictions)
	require.Len(t, result.Predictions.Labels, 20)
	for _, label := range result.Predictions.Labels {
		require.Contains(t, []string{"yes", "no"}, label)
	}
	require.Greater(t, result.Runtime.Nanoseconds(), int64(0))
}

func TestClassificationReproducible(t *testing.T) {
	ds := binaryFrame(t, 60)
	task := &Classification{}
	cfg := core.RunConfig{MaxTrials: 3, Seed: 7, Parallelism: 3}

	a, err := task.Run(context.Background(), ds, "label", cfg)
	require.NoError(t, err)
	b, err := task.Run(context.Background(), ds, "label", cfg)
	require.NoError(t, err)

	require.Len(t, b.Leaderboard, len(a.Leaderboard))
	for i := range a.Leaderboard {
		require.Equal(t, a.Leaderboard[i].Index, b.Leaderboard[i].Index)
		require.Equal(t, a.Leaderboard[i].Metrics, b.Leaderboard[i].Metrics)
	}
	require.Equal(t, a.Predictions, b.Predictions)
}

func TestClassificationEnsemble(t *testing.T) {
	ds := binaryFrame(t, 60)
	task := &Classification{}

	result, err := task.Run(context.Background(), ds, "label", core.RunConfig{
		MaxTrials: 4, Seed: 3, Ensemble: true, TopK: 2,
	})
	require.NoError(t, err)
	require.NotNil(t, result.Ensemble)
	require.Len(t, result.Ensemble.TrialIDs, 2)

	var sum float64
	for _, w := range result.Ensemble.Weights {
		sum += w
	}
	require.InDelta(t, 1.0, sum, 1e-9)
}

func TestClassificationProgressCallback(t *testing.T) {
	ds := binaryFrame(t, 60)
	task := &Classification{}

	var mu sync.Mutex
	var calls []int
	cfg := core.RunConfig{
		MaxTrials: 3,
		Seed:      1,
		Progress: func(completed, total int) {
			mu.Lock()
			calls = append(calls, completed)
			require.Equal(t, 3, total)
			mu.Unlock()
		},
	}

	_, err := task.Run(context.Background(), ds, "label", cfg)
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, calls)
}

func TestClassificationPersistsRunState(t *testing.T) {
	ds := binaryFrame(t, 60)
	store := &runlog.Store{Dir: t.TempDir()}
	task := &Classification{Store: store}

	result, err := task.Run(context.Background(), ds, "label", core.RunConfig{MaxTrials: 2, Seed: 5})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		config, err := store.ReadTrialConfig(result.RunID, i)
		require.NoError(t, err)
		require.Equal(t, core.DeriveSeed(5, i), config.Seed)
		require.NotEmpty(t, config.Config["model"])

		metrics, err := store.ReadTrialMetrics(result.RunID, i)
		require.NoError(t, err)
		require.Equal(t, "succeeded", metrics.State)
	}
	_, err = os.Stat(filepath.Join(store.Dir, result.RunID, "result.json"))
	require.NoError(t, err)
}

func TestClassificationValidation(t *testing.T) {
	task := &Classification{}

	small := binaryFrame(t, 10)
	err := task.Validate(small, "label", core.RunConfig{})
	var verr *core.ValidationError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "row-count", verr.Checks[0].Name)

	ds := binaryFrame(t, 60)
	err = task.Validate(ds, "nope", core.RunConfig{})
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "target-present", verr.Checks[0].Name)

	_, err = task.Run(context.Background(), ds, "nope", core.RunConfig{})
	require.True(t, errors.As(err, &verr))
}

func TestClassificationEmptyDataset(t *testing.T) {
	empty, err := dataset.New(
		dataset.NumericColumn("x", nil),
		dataset.CategoricalColumn("label", nil),
	)
	require.NoError(t, err)

	store := &runlog.Store{Dir: t.TempDir()}
	task := &Classification{Store: store}
	var verr *core.ValidationError
	require.True(t, errors.As(task.Validate(empty, "label", core.RunConfig{}), &verr))

	_, err = task.Run(context.Background(), empty, "label", core.RunConfig{})
	require.True(t, errors.As(err, &verr))

	// the rejection happens before any trial is dispatched or persisted
	entries, err := os.ReadDir(store.Dir)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestClassificationRejectsNonBinaryTarget(t *testing.T) {
	n := 30
	x := make([]float64, n)
	label := make([]string, n)
	for i := range x {
		x[i] = float64(i)
		label[i] = fmt.Sprintf("class-%d", i%3)
	}
	ds, err := dataset.New(
		dataset.NumericColumn("x", x),
		dataset.CategoricalColumn("label", label),
	)
	require.NoError(t, err)

	task := &Classification{}
	var verr *core.ValidationError
	require.True(t, errors.As(task.Validate(ds, "label", core.RunConfig{}), &verr))
	require.Equal(t, "target-type", verr.Checks[0].Name)
}

func TestClassificationWarningsSurfaceInDiagnostics(t *testing.T) {
	ds := binaryFrame(t, 60)
	withGap, err := ds.WithColumns(dataset.NumericColumn("gappy", func() []float64 {
		values := make([]float64, 60)
		for i := range values {
			values[i] = float64(i)
		}
		values[0] = math.NaN()
		return values
	}()))
	require.NoError(t, err)

	task := &Classification{}
	require.NoError(t, task.Validate(withGap, "label", core.RunConfig{}))

	result, err := task.Run(context.Background(), withGap, "label", core.RunConfig{MaxTrials: 2, Seed: 1})
	require.NoError(t, err)

	found := false
	for _, check := range result.Diagnostics.ValidationReport {
		if check.Name == "missing-values" {
			require.Equal(t, core.CheckWarning, check.Level)
			found = true
		}
	}
	require.True(t, found)
}
