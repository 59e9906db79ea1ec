package tasks

import (
	"fmt"
	"sort"

	"autolytics/pkg/core"
	"autolytics/pkg/dataset"
)

func criticals(checks []core.CheckResult) []core.CheckResult {
	var out []core.CheckResult
	for _, c := range checks {
		if c.Level == core.CheckCritical {
			out = append(out, c)
		}
	}
	return out
}

func warnings(checks []core.CheckResult) []core.CheckResult {
	var out []core.CheckResult
	for _, c := range checks {
		if c.Level == core.CheckWarning {
			out = append(out, c)
		}
	}
	return out
}

func checkRowCount(ds *dataset.Dataset, min int) *core.CheckResult {
	if ds.Rows() < min {
		return &core.CheckResult{
			Name:    "row-count",
			Level:   core.CheckCritical,
			Message: fmt.Sprintf("dataset has %d rows, analytic requires at least %d", ds.Rows(), min),
		}
	}
	return nil
}

func checkTargetPresent(ds *dataset.Dataset, target string) *core.CheckResult {
	if target == "" {
		return &core.CheckResult{
			Name:    "target-present",
			Level:   core.CheckCritical,
			Message: "no target column designated",
		}
	}
	if !ds.Has(target) {
		return &core.CheckResult{
			Name:    "target-present",
			Level:   core.CheckCritical,
			Message: fmt.Sprintf("target column %q is absent", target),
		}
	}
	return nil
}

func checkFeaturesPresent(ds *dataset.Dataset, target string) *core.CheckResult {
	features := 0
	for _, name := range ds.Columns() {
		if name != target {
			features++
		}
	}
	if features == 0 {
		return &core.CheckResult{
			Name:    "features-present",
			Level:   core.CheckCritical,
			Message: "dataset has no feature columns besides the target",
		}
	}
	return nil
}

func checkMissing(ds *dataset.Dataset, target string) []core.CheckResult {
	var out []core.CheckResult
	for _, name := range ds.Columns() {
		if name == target {
			continue
		}
		if n, err := ds.MissingCount(name); err == nil && n > 0 {
			out = append(out, core.CheckResult{
				Name:    "missing-values",
				Level:   core.CheckWarning,
				Message: fmt.Sprintf("column %q has %d missing values; they will be imputed", name, n),
			})
		}
	}
	return out
}

// binaryClasses returns the two sorted class labels of a binary target, or an
// error message when the target is not binary.
func binaryClasses(ds *dataset.Dataset, target string) ([]string, string) {
	kind, err := ds.KindOf(target)
	if err != nil {
		return nil, err.Error()
	}
	seen := make(map[string]bool)
	switch kind {
	case dataset.Categorical:
		values, _ := ds.Labels(target)
		for _, v := range values {
			if v != "" {
				seen[v] = true
			}
		}
	case dataset.Numeric:
		values, _ := ds.Floats(target)
		for _, v := range values {
			seen[fmt.Sprintf("%g", v)] = true
		}
	}
	if len(seen) != 2 {
		return nil, fmt.Sprintf("target %q has %d distinct values, binary classification requires 2", target, len(seen))
	}
	classes := make([]string, 0, 2)
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)
	return classes, ""
}

// encodeTarget maps a binary target column onto 0/1 by sorted class order.
func encodeTarget(ds *dataset.Dataset, target string, classes []string) ([]float64, error) {
	kind, err := ds.KindOf(target)
	if err != nil {
		return nil, err
	}
	n := ds.Rows()
	out := make([]float64, n)
	switch kind {
	case dataset.Categorical:
		values, err := ds.Labels(target)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			if v == classes[1] {
				out[i] = 1
			}
		}
	case dataset.Numeric:
		values, err := ds.Floats(target)
		if err != nil {
			return nil, err
		}
		for i, v := range values {
			if fmt.Sprintf("%g", v) == classes[1] {
				out[i] = 1
			}
		}
	}
	return out, nil
}
