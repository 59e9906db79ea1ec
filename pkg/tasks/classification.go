package tasks

import (
	"context"
	"time"

	"go.uber.org/zap"

	"autolytics/pkg/backend"
	"autolytics/pkg/core"
	"autolytics/pkg/dataset"
	"autolytics/pkg/preprocess"
	"autolytics/pkg/rank"
	"autolytics/pkg/runlog"
)

const classificationMinRows = 20

// Classification is binary classification with an automated model search.
type Classification struct {
	Logger *zap.Logger
	Store  *runlog.Store
}

func (t *Classification) Name() string { return "classification" }

func (t *Classification) Capabilities() core.Capabilities {
	return core.Capabilities{
		PreprocessingSteps: []string{"impute", "drop-constant", "one-hot", "standard-scale"},
		NeedsSearch:        true,
		RankingMetric:      core.Metric{Name: "accuracy", Direction: core.Maximize},
		MinRows:            classificationMinRows,
	}
}

func (t *Classification) checks(ds *dataset.Dataset, target string) []core.CheckResult {
	var checks []core.CheckResult
	if c := checkTargetPresent(ds, target); c != nil {
		checks = append(checks, *c)
		return checks
	}
	if c := checkRowCount(ds, classificationMinRows); c != nil {
		checks = append(checks, *c)
	}
	if c := checkFeaturesPresent(ds, target); c != nil {
		checks = append(checks, *c)
	}
	if _, msg := binaryClasses(ds, target); msg != "" {
		checks = append(checks, core.CheckResult{
			Name:    "target-type",
			Level:   core.CheckCritical,
			Message: msg,
		})
	}
	checks = append(checks, checkMissing(ds, target)...)
	return checks
}

func (t *Classification) Validate(ds *dataset.Dataset, target string, _ core.RunConfig) error {
	if critical := criticals(t.checks(ds, target)); len(critical) > 0 {
		return &core.ValidationError{Checks: critical}
	}
	return nil
}

func (t *Classification) Run(ctx context.Context, ds *dataset.Dataset, target string, cfg core.RunConfig) (*core.Result, error) {
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
	logger.Info("classification run starting",
		zap.String("run_id", runID),
		zap.Int("rows", ds.Rows()),
		zap.Int("max_trials", cfg.MaxTrials))

	targeted, err := ds.WithTarget(target)
	if err != nil {
		return nil, err
	}
	classes, msg := binaryClasses(targeted, target)
	if msg != "" {
		return nil, &core.ValidationError{Checks: []core.CheckResult{{
			Name: "target-type", Level: core.CheckCritical, Message: msg,
		}}}
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

	y, err := encodeTarget(trainT, target, classes)
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
		Candidates: classificationSpace(cfg.MaxTrials, cfg.Seed),
		Score:      backend.Accuracy,
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
		hx, err := holdT.Matrix(features)
		if err == nil {
			raw := model.Predict(hx)
			labels := make([]string, len(raw))
			for i, v := range raw {
				if v >= 0.5 {
					labels[i] = classes[1]
				} else {
					labels[i] = classes[0]
				}
			}
			result.Predictions = &core.Predictions{Labels: labels}
		}
	}

	result.Runtime = time.Since(start)
	if t.Store != nil {
		if err := t.Store.WriteResult(result); err != nil {
			logger.Warn("persisting result failed", zap.Error(err))
		}
	}
	logger.Info("classification run finished",
		zap.String("run_id", runID),
		zap.Int("succeeded", len(board)),
		zap.Int("failed", len(result.Failures)),
		zap.Duration("runtime", result.Runtime))
	return result, nil
}

var _ core.Task = (*Classification)(nil)
