package tasks

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"autolytics/pkg/backend"
	"autolytics/pkg/core"
	"autolytics/pkg/dataset"
	"autolytics/pkg/rank"
	"autolytics/pkg/runlog"
	"autolytics/pkg/scheduler"
)

// trialPlan is everything a search task hands the shared trial engine: the
// preprocessed feature matrix, the fold layout, the candidate set, and how to
// score a fold. X, Y, and Folds are read-only and shared by every trial.
type trialPlan struct {
	RunID      string
	Logger     *zap.Logger
	Store      *runlog.Store
	Cfg        core.RunConfig
	Metric     core.Metric
	X          [][]float64
	Y          []float64
	Folds      [][]int
	Candidates []backend.Candidate
	Score      func(yTrue, yPred []float64) float64
	Aux        map[string]func(yTrue, yPred []float64) float64
}

// runTrials fans the candidates out across the scheduler's worker pool and
// aggregates completions as they stream in. It returns the aggregator holding
// the leaderboard and failure report; the error is the zero-success
// classification from the aggregator.
func runTrials(ctx context.Context, plan trialPlan) (*rank.Aggregator, error) {
	specs := make([]scheduler.Spec, len(plan.Candidates))
	for i, cand := range plan.Candidates {
		specs[i] = scheduler.Spec{
			Config: cand.Config(),
			Run:    makeRunFunc(plan, cand),
		}
	}

	sched := scheduler.New(
		scheduler.Budget{
			Parallelism: plan.Cfg.Parallelism,
			TimeBudget:  plan.Cfg.TimeBudget,
			MaxTrials:   plan.Cfg.MaxTrials,
			GracePeriod: plan.Cfg.GracePeriod,
		},
		scheduler.RetryPolicy{
			MaxRetries: plan.Cfg.MaxRetries,
			Backoff:    plan.Cfg.RetryBackoff,
		},
		plan.Metric,
		scheduler.WithLogger(plan.Logger),
	)

	total := len(specs)
	if plan.Cfg.MaxTrials > 0 && plan.Cfg.MaxTrials < total {
		total = plan.Cfg.MaxTrials
	}

	agg := rank.NewAggregator(plan.Metric, core.Metric{
		Name:      plan.Cfg.SecondaryMetric,
		Direction: plan.Cfg.SecondaryDirection,
	})
	for ev := range sched.Run(ctx, plan.RunID, plan.Cfg.Seed, specs) {
		if !agg.Observe(ev) {
			continue
		}
		if plan.Store != nil {
			if err := plan.Store.WriteTrial(ev.Trial); err != nil {
				plan.Logger.Warn("persisting trial snapshot failed",
					zap.String("trial", ev.Trial.ID()),
					zap.Error(err))
			}
		}
		if plan.Cfg.Progress != nil {
			plan.Cfg.Progress(agg.Completed(), total)
		}
	}

	return agg, agg.Err()
}

// makeRunFunc builds the per-trial computation: k-fold cross-validation of
// one candidate, then a final fit on the full training split as the trial's
// artifact. The trial's own seed drives every stochastic choice.
func makeRunFunc(plan trialPlan, cand backend.Candidate) scheduler.RunFunc {
	return func(ctx context.Context, trial *scheduler.Trial, h *scheduler.Handle) (map[string]float64, any, error) {
		metrics := make(map[string]float64, len(plan.Folds)+2)
		oofTrue := make([]float64, 0, len(plan.Y))
		oofPred := make([]float64, 0, len(plan.Y))

		var sum float64
		for fi := range plan.Folds {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}

			trainIdx, holdIdx := dataset.FoldSplit(plan.Folds, fi)
			model, err := backend.New(cand, trial.Seed)
			if err != nil {
				return nil, nil, err
			}
			if err := model.Fit(rowsAt(plan.X, trainIdx), valuesAt(plan.Y, trainIdx)); err != nil {
				return nil, nil, err
			}
			pred := model.Predict(rowsAt(plan.X, holdIdx))
			truth := valuesAt(plan.Y, holdIdx)
			score := plan.Score(truth, pred)
			metrics[fmt.Sprintf("fold_%d", fi)] = score
			sum += score
			oofTrue = append(oofTrue, truth...)
			oofPred = append(oofPred, pred...)

			if plan.Cfg.EarlyStop {
				h.Report(fi, sum/float64(fi+1))
				if h.Stopped() {
					return nil, nil, scheduler.ErrPruned
				}
			}
		}

		metrics[plan.Metric.Name] = sum / float64(len(plan.Folds))
		for name, fn := range plan.Aux {
			metrics[name] = fn(oofTrue, oofPred)
		}

		final, err := backend.New(cand, trial.Seed)
		if err != nil {
			return nil, nil, err
		}
		if err := final.Fit(plan.X, plan.Y); err != nil {
			return nil, nil, err
		}
		return metrics, final, nil
	}
}

func rowsAt(x [][]float64, idx []int) [][]float64 {
	out := make([][]float64, len(idx))
	for i, r := range idx {
		out[i] = x[r]
	}
	return out
}

func valuesAt(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, r := range idx {
		out[i] = y[r]
	}
	return out
}
