package tasks

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"autolytics/pkg/core"
)

func TestDefaultRegistry(t *testing.T) {
	registry := DefaultRegistry(zap.NewNop(), nil)

	require.Equal(t, []string{"classification", "correlation", "regression"}, registry.List())

	for _, name := range registry.List() {
		factory, err := registry.Lookup(name)
		require.NoError(t, err)
		task := factory()
		require.Equal(t, name, task.Name())
	}

	// frozen after construction
	err := registry.Register("extra", func() core.Task { return nil })
	require.Error(t, err)
}

func TestSearchSpacesDeterministic(t *testing.T) {
	a := classificationSpace(6, 42)
	b := classificationSpace(6, 42)
	require.Equal(t, a, b)
	require.Len(t, a, 6)
	require.Equal(t, "logistic", a[0].Model)
	require.Equal(t, "knn", a[1].Model)
	require.Equal(t, "stump", a[2].Model)

	c := classificationSpace(6, 43)
	require.NotEqual(t, a, c)

	r := regressionSpace(4, 42)
	require.Equal(t, "ols", r[0].Model)
	require.Equal(t, "knn-regressor", r[1].Model)
	require.Equal(t, r, regressionSpace(4, 42))
}
