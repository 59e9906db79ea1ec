package tasks

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"autolytics/pkg/backend"
	"autolytics/pkg/core"
	"autolytics/pkg/dataset"
	"autolytics/pkg/preprocess"
	"autolytics/pkg/rank"
	"autolytics/pkg/runlog"
)

const regressionMinRows = 10

// Regression predicts a numeric target with an automated model search,
// ranked by RMSE and reporting r2 on out-of-fold predictions.
type Regression struct {
	Logger *zap.Logger
	Store  *runlog.Store
}

func (t *Regression) Name() string { return "regression" }

func (t *Regression) Capabilities() core.Capabilities {
	return core.Capabilities{
		PreprocessingSteps: []string{"impute", "drop-constant", "one-hot", "standard-scale"},
		NeedsSearch:        true,
		RankingMetric:      core.Metric{Name: "rmse", Direction: core.Minimize},
		MinRows:            regressionMinRows,
	}
}

func (t *Regression) checks(ds *dataset.Dataset, target string) []core.CheckResult {
	var checks []core.CheckResult
	if c := checkTargetPresent(ds, target); c != nil {
		checks = append(checks, *c)
		return checks
	}
	if c := checkRowCount(ds, regressionMinRows); c != nil {
		checks = append(checks, *c)
	}
	if c := checkFeaturesPresent(ds, target); c != nil {
		checks = append(checks, *c)
	}
	if kind, err := ds.KindOf(target); err == nil && kind != dataset.Numeric {
		checks = append(checks, core.CheckResult{
			Name:    "target-type",
			Level:   core.CheckCritical,
			Message: fmt.Sprintf("target %q is %s, regression requires numeric", target, kind),
		})
	}
	if n, err := ds.MissingCount(target); err == nil && n > 0 {
		checks = append(checks, core.CheckResult{
			Name:    "target-type",
			Level:   core.CheckCritical,
			Message: fmt.Sprintf("target %q has %d missing values", target, n),
		})
	}
	checks = append(checks, checkMissing(ds, target)...)
	return checks
}

func (t *Regression) Validate(ds *dataset.Dataset, target string, _ core.RunConfig) error {
	if critical := criticals(t.checks(ds, target)); len(critical) > 0 {
		return &core.ValidationError{Checks: critical}
	}
	return nil
}

func (t *Regression) Run(ctx context.Context, ds *dataset.Dataset, target string, cfg core.RunConfig) (*core.Result, error) {
	start := time.Now()
	logger := t.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg = cfg.Normalized()
	metric := cfg.Metric
	if metric.Name == "" {
		metric = t.Capabilities().RankingMetric
	}

	checks := t.checks(ds, target)
	if critical := criticals(checks); len(critical) > 0 {
		return nil, &core.ValidationError{Checks: critical}
	}

	runID := runlog.NewRunID()
	logger.Info("regression run starting",
		zap.String("run_id", runID),
		zap.Int("rows", ds.Rows()),
		zap.Int("max_trials", cfg.MaxTrials))

	targeted, err := ds.WithTarget(target)
	if err != nil {
		return nil, err
	}
	train, holdout, err := dataset.TrainTestSplit(targeted, cfg.ValidationSplit, core.DeriveSeed(cfg.Seed, -3))
	if err != nil {
		return nil, err
	}

	pipeline := preprocess.NewPipeline(
		preprocess.Impute{},
		preprocess.DropConstant{},
		preprocess.OneHotEncode{},
		preprocess.StandardScale{},
	)
	fitted, err := pipeline.Fit(train)
	if err != nil {
		return nil, err
	}
	trainT, err := fitted.Apply(train)
	if err != nil {
		return nil, err
	}
	holdT, err := fitted.Apply(holdout)
	if err != nil {
		return nil, err
	}

	y, err := trainT.Floats(target)
	if err != nil {
		return nil, err
	}
	features := trainT.NumericColumns()
	x, err := trainT.Matrix(features)
	if err != nil {
		return nil, err
	}
	folds, err := dataset.KFold(trainT.Rows(), cfg.CVFolds, core.DeriveSeed(cfg.Seed, -4))
	if err != nil {
		return nil, &core.ValidationError{Checks: []core.CheckResult{{
			Name: "cv-folds", Level: core.CheckCritical, Message: err.Error(),
		}}}
	}

	agg, err := runTrials(ctx, trialPlan{
		RunID:      runID,
		Logger:     logger,
		Store:      t.Store,
		Cfg:        cfg,
		Metric:     metric,
		X:          x,
		Y:          y,
		Folds:      folds,
		Candidates: regressionSpace(cfg.MaxTrials, cfg.Seed),
		Score:      backend.RMSE,
		Aux: map[string]func(yTrue, yPred []float64) float64{
			"r2": backend.R2,
		},
	})
	if err != nil {
		return nil, err
	}

	board := agg.Leaderboard()
	best, _ := agg.Best()

	result := &core.Result{
		TaskName:    t.Name(),
		RunID:       runID,
		Leaderboard: board,
		BestTrialID: best.ID(),
		Failures:    agg.Failures(),
		Diagnostics: core.Diagnostics{
			ValidationReport:    warnings(checks),
			PreprocessingReport: fitted.Report(),
		},
		Summary: rank.Bootstrap(metric.Name, rank.FoldScores(best), rank.DefaultResamples, cfg.Seed),
	}
	if cfg.Ensemble {
		result.Ensemble = rank.Ensemble(board, metric, cfg.TopK)
	}

	if model, ok := best.Artifact.(backend.Model); ok && holdT.Rows() > 0 {
		if hx, err := holdT.Matrix(features); err == nil {
			result.Predictions = &core.Predictions{Values: model.Predict(hx)}
		}
	}

	result.Runtime = time.Since(start)
	if t.Store != nil {
		if err := t.Store.WriteResult(result); err != nil {
			logger.Warn("persisting result failed", zap.Error(err))
		}
	}
	logger.Info("regression run finished",
		zap.String("run_id", runID),
		zap.Int("succeeded", len(board)),
		zap.Int("failed", len(result.Failures)),
		zap.Duration("runtime", result.Runtime))
	return result, nil
}

var _ core.Task = (*Regression)(nil)
