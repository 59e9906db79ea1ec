package core

import "time"

// LeaderboardEntry is one succeeded trial in rank order.
type LeaderboardEntry struct {
	TrialID string             `json:"trial_id"`
	Index   int                `json:"trial_index"`
	Config  map[string]any     `json:"config"`
	Metrics map[string]float64 `json:"metrics"`
}

// Predictions carries task output on the holdout split: class labels for
// classification, numeric values for regression.
type Predictions struct {
	Labels []string  `json:"labels,omitempty"`
	Values []float64 `json:"values,omitempty"`
}

// Diagnostics collects non-fatal findings surfaced alongside a Result.
type Diagnostics struct {
	ValidationReport    []CheckResult `json:"validation_schema_report,omitempty"`
	PreprocessingReport []string      `json:"preprocessing_report,omitempty"`
}

// SummaryStats holds bootstrap summary statistics for the winning trial's
// objective metric.
type SummaryStats struct {
	Metric    string  `json:"metric"`
	Mean      float64 `json:"mean"`
	Lower     float64 `json:"lower_95"`
	Upper     float64 `json:"upper_95"`
	Resamples int     `json:"resamples"`
}

// EnsembleRef describes a score-weighted combination of top trials.
type EnsembleRef struct {
	TrialIDs []string  `json:"trial_ids"`
	Weights  []float64 `json:"weights"`
}

// Result is the structured outcome of a task run. A Result with a non-empty
// Failures list is still a success at the task level; the run fails only when
// zero trials succeeded.
type Result struct {
	TaskName    string             `json:"task_name"`
	RunID       string             `json:"run_id"`
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
	BestTrialID string             `json:"best_trial_id,omitempty"`
	Predictions *Predictions       `json:"predictions,omitempty"`
	Diagnostics Diagnostics        `json:"diagnostics"`
	Failures    []TrialFailure     `json:"failures,omitempty"`
	Summary     *SummaryStats      `json:"summary,omitempty"`
	Ensemble    *EnsembleRef       `json:"ensemble,omitempty"`
	Details     map[string]any     `json:"details,omitempty"`
	Runtime     time.Duration      `json:"runtime"`
}
