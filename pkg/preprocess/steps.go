package preprocess

import (
	"fmt"
	"math"
	"sort"

	"autolytics/pkg/core"
	"autolytics/pkg/dataset"
)

// Impute fills missing values with constants: 0 for numerics, "NA" for
// categoricals, matching the engine's default imputation policy.
type Impute struct {
	NumericFill     float64
	CategoricalFill string
}

func (Impute) Name() string { return "impute" }

func (s Impute) Fit(train *dataset.Dataset) (Fitted, error) {
	fill := s.CategoricalFill
	if fill == "" {
		fill = "NA"
	}
	var report []string
	for _, name := range append(train.NumericColumns(), train.CategoricalColumns()...) {
		if n, err := train.MissingCount(name); err == nil && n > 0 {
			report = append(report, fmt.Sprintf("impute: column %q had %d missing values", name, n))
		}
	}
	return &fittedImpute{numeric: s.NumericFill, categorical: fill, report: report}, nil
}

type fittedImpute struct {
	numeric     float64
	categorical string
	report      []string
}

func (*fittedImpute) Name() string       { return "impute" }
func (f *fittedImpute) Report() []string { return f.report }

func (f *fittedImpute) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	var replaced []dataset.Column
	for _, name := range ds.NumericColumns() {
		values, err := ds.Floats(name)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(values))
		for i, v := range values {
			if math.IsNaN(v) {
				out[i] = f.numeric
			} else {
				out[i] = v
			}
		}
		replaced = append(replaced, dataset.NumericColumn(name, out))
	}
	for _, name := range ds.CategoricalColumns() {
		values, err := ds.Labels(name)
		if err != nil {
			return nil, err
		}
		out := make([]string, len(values))
		for i, v := range values {
			if v == "" {
				out[i] = f.categorical
			} else {
				out[i] = v
			}
		}
		replaced = append(replaced, dataset.CategoricalColumn(name, out))
	}
	return ds.WithColumns(replaced...)
}

// DropConstant removes feature columns with a single observed value; they
// carry no signal and break scaling.
type DropConstant struct{}

func (DropConstant) Name() string { return "drop-constant" }

func (DropConstant) Fit(train *dataset.Dataset) (Fitted, error) {
	var drop []string
	for _, name := range train.NumericColumns() {
		values, err := train.Floats(name)
		if err != nil {
			return nil, err
		}
		if constantFloats(values) {
			drop = append(drop, name)
		}
	}
	for _, name := range train.CategoricalColumns() {
		values, err := train.Labels(name)
		if err != nil {
			return nil, err
		}
		if constantLabels(values) {
			drop = append(drop, name)
		}
	}
	remaining := len(train.NumericColumns()) + len(train.CategoricalColumns()) - len(drop)
	if remaining <= 0 {
		return nil, &core.PreprocessingError{
			Step:   "drop-constant",
			Reason: "no feature columns left after dropping constants",
		}
	}
	var report []string
	for _, name := range drop {
		report = append(report, fmt.Sprintf("drop-constant: dropped constant column %q", name))
	}
	return &fittedDrop{drop: drop, report: report}, nil
}

type fittedDrop struct {
	drop   []string
	report []string
}

func (*fittedDrop) Name() string       { return "drop-constant" }
func (f *fittedDrop) Report() []string { return f.report }

func (f *fittedDrop) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	if len(f.drop) == 0 {
		return ds, nil
	}
	return ds.Drop(f.drop...)
}

// OneHotEncode expands each categorical feature into indicator columns, one
// per level observed during fitting. Levels are sorted so the expansion is
// deterministic; unseen levels at apply time map to all zeros.
type OneHotEncode struct{}

func (OneHotEncode) Name() string { return "one-hot" }

func (OneHotEncode) Fit(train *dataset.Dataset) (Fitted, error) {
	levels := make(map[string][]string)
	for _, name := range train.CategoricalColumns() {
		values, err := train.Labels(name)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool)
		for _, v := range values {
			if v != "" {
				seen[v] = true
			}
		}
		if len(seen) == 0 {
			return nil, &core.PreprocessingError{
				Step:   "one-hot",
				Reason: fmt.Sprintf("categorical column %q has zero observed levels", name),
			}
		}
		sorted := make([]string, 0, len(seen))
		for v := range seen {
			sorted = append(sorted, v)
		}
		sort.Strings(sorted)
		levels[name] = sorted
	}
	return &fittedOneHot{levels: levels}, nil
}

type fittedOneHot struct {
	levels map[string][]string
}

func (*fittedOneHot) Name() string { return "one-hot" }

func (f *fittedOneHot) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	out := ds
	names := make([]string, 0, len(f.levels))
	for name := range f.levels {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if !out.Has(name) {
			continue
		}
		values, err := out.Labels(name)
		if err != nil {
			return nil, err
		}
		cols := make([]dataset.Column, 0, len(f.levels[name]))
		for _, level := range f.levels[name] {
			indicator := make([]float64, len(values))
			for i, v := range values {
				if v == level {
					indicator[i] = 1
				}
			}
			cols = append(cols, dataset.NumericColumn(name+"="+level, indicator))
		}
		dropped, err := out.Drop(name)
		if err != nil {
			return nil, err
		}
		out, err = dropped.WithColumns(cols...)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// StandardScale centers numeric features to zero mean and unit variance using
// moments captured at fit time. Zero-variance columns pass through unscaled.
type StandardScale struct{}

func (StandardScale) Name() string { return "standard-scale" }

func (StandardScale) Fit(train *dataset.Dataset) (Fitted, error) {
	means := make(map[string]float64)
	stds := make(map[string]float64)
	for _, name := range train.NumericColumns() {
		values, err := train.Floats(name)
		if err != nil {
			return nil, err
		}
		mean, std := moments(values)
		means[name] = mean
		stds[name] = std
	}
	return &fittedScale{means: means, stds: stds}, nil
}

type fittedScale struct {
	means map[string]float64
	stds  map[string]float64
}

func (*fittedScale) Name() string { return "standard-scale" }

func (f *fittedScale) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	var scaled []dataset.Column
	for _, name := range ds.NumericColumns() {
		mean, ok := f.means[name]
		if !ok {
			continue
		}
		std := f.stds[name]
		if std == 0 {
			continue
		}
		values, err := ds.Floats(name)
		if err != nil {
			return nil, err
		}
		out := make([]float64, len(values))
		for i, v := range values {
			out[i] = (v - mean) / std
		}
		scaled = append(scaled, dataset.NumericColumn(name, out))
	}
	return ds.WithColumns(scaled...)
}

func moments(values []float64) (mean, std float64) {
	n := float64(len(values))
	if n == 0 {
		return 0, 0
	}
	var sum, sumSq float64
	for _, v := range values {
		sum += v
		sumSq += v * v
	}
	mean = sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

func constantFloats(values []float64) bool {
	if len(values) == 0 {
		return true
	}
	first := values[0]
	for _, v := range values[1:] {
		if v != first && !(math.IsNaN(v) && math.IsNaN(first)) {
			return false
		}
	}
	return true
}

func constantLabels(values []string) bool {
	if len(values) == 0 {
		return true
	}
	first := values[0]
	for _, v := range values[1:] {
		if v != first {
			return false
		}
	}
	return true
}
