package rank

import (
	"sort"
	"strings"

	"autolytics/pkg/core"
	"autolytics/pkg/scheduler"
)

// Aggregator consumes trial state-change events as the scheduler emits them
// and incrementally maintains the succeeded set and the failure report. It is
// driven from the task's aggregation loop, so a partial leaderboard exists at
// every point during a run.
type Aggregator struct {
	metric    core.Metric
	secondary core.Metric
	succeeded []scheduler.Trial
	failures  []core.TrialFailure
	failed    int
	completed int
}

// NewAggregator creates an Aggregator ranking by the given objective metric,
// breaking ties by the secondary metric and then by dispatch order. A
// secondary with no direction of its own inherits the primary's.
func NewAggregator(metric core.Metric, secondary core.Metric) *Aggregator {
	if secondary.Direction == "" {
		secondary.Direction = metric.Direction
	}
	return &Aggregator{metric: metric, secondary: secondary}
}

// Observe folds one event into the aggregate and reports whether the trial
// reached a terminal state.
func (a *Aggregator) Observe(ev scheduler.Event) bool {
	trial := ev.Trial
	if !trial.State.Terminal() {
		return false
	}
	a.completed++
	switch trial.State {
	case scheduler.Succeeded:
		a.succeeded = append(a.succeeded, trial)
	case scheduler.Failed:
		a.failed++
		a.failures = append(a.failures, core.TrialFailure{TrialID: trial.ID(), Reason: trial.Reason})
	default:
		a.failures = append(a.failures, core.TrialFailure{
			TrialID: trial.ID(),
			Reason:  string(trial.State) + ": " + trial.Reason,
		})
	}
	return true
}

// Completed returns how many trials have reached a terminal state so far.
func (a *Aggregator) Completed() int { return a.completed }

// Leaderboard returns the succeeded trials ranked by the objective metric
// with the configured direction. Ties fall to the secondary metric, then to
// ascending dispatch order, independent of completion timing.
func (a *Aggregator) Leaderboard() []core.LeaderboardEntry {
	ranked := make([]scheduler.Trial, len(a.succeeded))
	copy(ranked, a.succeeded)
	sort.SliceStable(ranked, func(i, j int) bool {
		vi, vj := ranked[i].Metrics[a.metric.Name], ranked[j].Metrics[a.metric.Name]
		if vi != vj {
			return a.metric.Better(vi, vj)
		}
		if a.secondary.Name != "" {
			si, iok := ranked[i].Metrics[a.secondary.Name]
			sj, jok := ranked[j].Metrics[a.secondary.Name]
			if iok && jok && si != sj {
				return a.secondary.Better(si, sj)
			}
		}
		return ranked[i].Index < ranked[j].Index
	})

	entries := make([]core.LeaderboardEntry, len(ranked))
	for i, trial := range ranked {
		entries[i] = core.LeaderboardEntry{
			TrialID: trial.ID(),
			Index:   trial.Index,
			Config:  trial.Config,
			Metrics: trial.Metrics,
		}
	}
	return entries
}

// Best returns the top-ranked succeeded trial.
func (a *Aggregator) Best() (scheduler.Trial, bool) {
	board := a.Leaderboard()
	if len(board) == 0 {
		return scheduler.Trial{}, false
	}
	for _, trial := range a.succeeded {
		if trial.Index == board[0].Index {
			return trial, true
		}
	}
	return scheduler.Trial{}, false
}

// Failures returns the failure report for trials that did not succeed.
func (a *Aggregator) Failures() []core.TrialFailure { return a.failures }

// Err classifies a run with zero successes: exhausted budgets (every loss a
// timeout or cancellation) surface as ResourceExhaustionError, anything with
// a genuine failure as AggregationError. A run with at least one success
// returns nil.
func (a *Aggregator) Err() error {
	if len(a.succeeded) > 0 {
		return nil
	}
	if a.failed > 0 {
		return &core.AggregationError{Failures: a.failures}
	}
	return &core.ResourceExhaustionError{Failures: a.failures}
}

// FoldScores extracts a trial's per-fold objective values, ordered by fold.
func FoldScores(trial scheduler.Trial) []float64 {
	type fold struct {
		key   string
		value float64
	}
	var folds []fold
	for k, v := range trial.Metrics {
		if strings.HasPrefix(k, "fold_") {
			folds = append(folds, fold{key: k, value: v})
		}
	}
	sort.Slice(folds, func(i, j int) bool { return folds[i].key < folds[j].key })
	values := make([]float64, len(folds))
	for i, f := range folds {
		values[i] = f.value
	}
	return values
}
