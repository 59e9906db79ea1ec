package dataset

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func sequentialFrame(t *testing.T, n int) *Dataset {
	t.Helper()
	values := make([]float64, n)
	for i := range values {
		values[i] = float64(i)
	}
	ds, err := New(NumericColumn("x", values))
	require.NoError(t, err)
	return ds
}

func TestTrainTestSplitDeterministic(t *testing.T) {
	ds := sequentialFrame(t, 50)

	train1, test1, err := TrainTestSplit(ds, 0.2, 42)
	require.NoError(t, err)
	train2, test2, err := TrainTestSplit(ds, 0.2, 42)
	require.NoError(t, err)

	require.Equal(t, 40, train1.Rows())
	require.Equal(t, 10, test1.Rows())

	a, _ := train1.Floats("x")
	b, _ := train2.Floats("x")
	require.Equal(t, a, b)
	c, _ := test1.Floats("x")
	d, _ := test2.Floats("x")
	require.Equal(t, c, d)
}

func TestTrainTestSplitCoversAllRows(t *testing.T) {
	ds := sequentialFrame(t, 30)
	train, test, err := TrainTestSplit(ds, 0.25, 7)
	require.NoError(t, err)

	seen := map[float64]bool{}
	for _, part := range []*Dataset{train, test} {
		values, err := part.Floats("x")
		require.NoError(t, err)
		for _, v := range values {
			require.False(t, seen[v], fmt.Sprintf("row %v appears twice", v))
			seen[v] = true
		}
	}
	require.Len(t, seen, 30)
}

func TestTrainTestSplitSmallDataset(t *testing.T) {
	ds := sequentialFrame(t, 5)
	_, test, err := TrainTestSplit(ds, 0.1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, test.Rows())

	_, _, err = TrainTestSplit(ds, 0, 1)
	require.Error(t, err)
	_, _, err = TrainTestSplit(ds, 1, 1)
	require.Error(t, err)
}

func TestKFold(t *testing.T) {
	folds, err := KFold(23, 5, 11)
	require.NoError(t, err)
	require.Len(t, folds, 5)

	seen := map[int]bool{}
	for _, fold := range folds {
		for _, idx := range fold {
			require.False(t, seen[idx])
			seen[idx] = true
		}
	}
	require.Len(t, seen, 23)

	again, err := KFold(23, 5, 11)
	require.NoError(t, err)
	require.Equal(t, folds, again)

	_, err = KFold(10, 1, 0)
	require.Error(t, err)
	_, err = KFold(3, 5, 0)
	require.Error(t, err)
}

func TestFoldSplit(t *testing.T) {
	folds := [][]int{{0, 1}, {2, 3}, {4}}
	train, holdout := FoldSplit(folds, 1)
	require.Equal(t, []int{0, 1, 4}, train)
	require.Equal(t, []int{2, 3}, holdout)
}
