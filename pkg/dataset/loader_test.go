package dataset

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCSVInfersTypes(t *testing.T) {
	path := writeCSV(t, "age,city,income\n21,oslo,100.5\n34,lima,200\n")

	ds, err := LoadCSV(path)
	require.NoError(t, err)
	require.Equal(t, 2, ds.Rows())
	require.Equal(t, []string{"age", "city", "income"}, ds.Columns())

	kind, err := ds.KindOf("age")
	require.NoError(t, err)
	require.Equal(t, Numeric, kind)

	kind, err = ds.KindOf("city")
	require.NoError(t, err)
	require.Equal(t, Categorical, kind)

	income, err := ds.Floats("income")
	require.NoError(t, err)
	require.Equal(t, []float64{100.5, 200}, income)
}

func TestLoadCSVMissingValues(t *testing.T) {
	path := writeCSV(t, "x,label\n1,\n,yes\n3,no\n")

	ds, err := LoadCSV(path)
	require.NoError(t, err)

	x, err := ds.Floats("x")
	require.NoError(t, err)
	require.True(t, math.IsNaN(x[1]))

	labels, err := ds.Labels("label")
	require.NoError(t, err)
	require.Equal(t, "", labels[0])

	n, err := ds.MissingCount("x")
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func TestLoadCSVMixedColumnIsCategorical(t *testing.T) {
	path := writeCSV(t, "code\n12\nA7\n9\n")

	ds, err := LoadCSV(path)
	require.NoError(t, err)
	kind, err := ds.KindOf("code")
	require.NoError(t, err)
	require.Equal(t, Categorical, kind)
}

func TestLoadCSVErrors(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)

	_, err = LoadCSV(writeCSV(t, ""))
	require.Error(t, err)

	_, err = LoadCSV(writeCSV(t, "a,,c\n1,2,3\n"))
	require.Error(t, err)
}
