package tasks

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"autolytics/pkg/core"
	"autolytics/pkg/dataset"
	"autolytics/pkg/preprocess"
	"autolytics/pkg/runlog"
)

const correlationMinRows = 3

// Correlation computes pairwise Pearson and Spearman coefficients across the
// numeric columns. It is a single deterministic computation: no search space,
// no scheduler, and an empty trial leaderboard in the Result.
type Correlation struct {
	Logger *zap.Logger
	Store  *runlog.Store
}

func (t *Correlation) Name() string { return "correlation" }

func (t *Correlation) Capabilities() core.Capabilities {
	return core.Capabilities{
		PreprocessingSteps: []string{"impute"},
		NeedsSearch:        false,
		RankingMetric:      core.Metric{Name: "pearson", Direction: core.Maximize},
		MinRows:            correlationMinRows,
	}
}

func (t *Correlation) checks(ds *dataset.Dataset, target string) []core.CheckResult {
	var checks []core.CheckResult
	if c := checkRowCount(ds, correlationMinRows); c != nil {
		checks = append(checks, *c)
	}
	numeric := ds.NumericColumns()
	if target != "" {
		if !ds.Has(target) {
			checks = append(checks, core.CheckResult{
				Name:    "target-present",
				Level:   core.CheckCritical,
				Message: fmt.Sprintf("target column %q is absent", target),
			})
		} else if kind, err := ds.KindOf(target); err == nil && kind != dataset.Numeric {
			checks = append(checks, core.CheckResult{
				Name:    "target-type",
				Level:   core.CheckCritical,
				Message: fmt.Sprintf("target %q is %s, correlation requires numeric", target, kind),
			})
		}
	}
	if len(numeric) < 2 {
		checks = append(checks, core.CheckResult{
			Name:    "numeric-columns",
			Level:   core.CheckCritical,
			Message: fmt.Sprintf("correlation requires at least 2 numeric columns, found %d", len(numeric)),
		})
	}
	checks = append(checks, checkMissing(ds, "")...)
	return checks
}

func (t *Correlation) Validate(ds *dataset.Dataset, target string, _ core.RunConfig) error {
	if critical := criticals(t.checks(ds, target)); len(critical) > 0 {
		return &core.ValidationError{Checks: critical}
	}
	return nil
}

func (t *Correlation) Run(ctx context.Context, ds *dataset.Dataset, target string, cfg core.RunConfig) (*core.Result, error) {
	start := time.Now()
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	checks := t.checks(ds, target)
	if critical := criticals(checks); len(critical) > 0 {
		return nil, &core.ValidationError{Checks: critical}
	}

	runID := runlog.NewRunID()

	targeted := ds
	if target != "" {
		var err error
		targeted, err = ds.WithTarget(target)
		if err != nil {
			return nil, err
		}
	}

	pipeline := preprocess.NewPipeline(preprocess.Impute{})
	fitted, err := pipeline.Fit(targeted)
	if err != nil {
		return nil, err
	}
	imputed, err := fitted.Apply(targeted)
	if err != nil {
		return nil, err
	}

	columns := imputed.NumericColumns()
	if target != "" {
		columns = append(columns, target)
	}

	series := make([][]float64, len(columns))
	for i, name := range columns {
		values, err := imputed.Floats(name)
		if err != nil {
			return nil, err
		}
		series[i] = values
	}

	pearson := make([][]float64, len(columns))
	spearman := make([][]float64, len(columns))
	ranked := make([][]float64, len(columns))
	for i := range series {
		ranked[i] = ranks(series[i])
	}
	for i := range columns {
		pearson[i] = make([]float64, len(columns))
		spearman[i] = make([]float64, len(columns))
		for j := range columns {
			if i == j {
				pearson[i][j] = 1
				spearman[i][j] = 1
				continue
			}
			pearson[i][j] = stat.Correlation(series[i], series[j], nil)
			spearman[i][j] = stat.Correlation(ranked[i], ranked[j], nil)
		}
	}

	details := map[string]any{
		"columns":  columns,
		"pearson":  pearson,
		"spearman": spearman,
	}
	if target != "" {
		details["target_correlations"] = targetCorrelations(columns, pearson, target)
	}

	result := &core.Result{
		TaskName:    t.Name(),
		RunID:       runID,
		Leaderboard: []core.LeaderboardEntry{},
		Diagnostics: core.Diagnostics{
			ValidationReport:    warnings(checks),
			PreprocessingReport: fitted.Report(),
		},
		Details: details,
		Runtime: time.Since(start),
	}
	if t.Store != nil {
		if err := t.Store.WriteResult(result); err != nil {
			logger.Warn("persisting result failed", zap.Error(err))
		}
	}
	logger.Info("correlation run finished",
		zap.String("run_id", runID),
		zap.Int("columns", len(columns)),
		zap.Duration("runtime", result.Runtime))
	return result, nil
}

// TargetCorrelation pairs a column with its Pearson coefficient against the
// target, strongest absolute correlation first.
type TargetCorrelation struct {
	Column  string  `json:"column"`
	Pearson float64 `json:"pearson"`
}

func targetCorrelations(columns []string, pearson [][]float64, target string) []TargetCorrelation {
	ti := -1
	for i, name := range columns {
		if name == target {
			ti = i
		}
	}
	if ti < 0 {
		return nil
	}
	var out []TargetCorrelation
	for i, name := range columns {
		if i == ti {
			continue
		}
		out = append(out, TargetCorrelation{Column: name, Pearson: pearson[ti][i]})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := abs(out[i].Pearson), abs(out[j].Pearson)
		if ai != aj {
			return ai > aj
		}
		return out[i].Column < out[j].Column
	})
	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// ranks assigns average ranks to values, the Spearman prerequisite.
func ranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	out := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

var _ core.Task = (*Correlation)(nil)
