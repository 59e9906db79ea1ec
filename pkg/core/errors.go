package core

import (
	"fmt"
	"strings"
)

// CheckLevel classifies a validation finding.
type CheckLevel string

const (
	CheckCritical CheckLevel = "CRITICAL"
	CheckWarning  CheckLevel = "WARNING"
)

// CheckResult is one named validation finding.
type CheckResult struct {
	Name    string     `json:"name"`
	Level   CheckLevel `json:"level"`
	Message string     `json:"message"`
}

// ValidationError reports critical input checks that failed before any trial
// was dispatched.
type ValidationError struct {
	Checks []CheckResult
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Checks))
	for _, c := range e.Checks {
		if c.Level == CheckCritical {
			msgs = append(msgs, fmt.Sprintf("%s: %s", c.Name, c.Message))
		}
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// PreprocessingError reports a transform step that could not produce valid
// output. Fitting is deterministic given the data, so it is never retried.
type PreprocessingError struct {
	Step   string
	Reason string
}

func (e *PreprocessingError) Error() string {
	return fmt.Sprintf("preprocessing step %q: %s", e.Step, e.Reason)
}

// TrialExecutionError reports a trial that failed after exhausting retries.
type TrialExecutionError struct {
	TrialID  string
	Attempts int
	Err      error
}

func (e *TrialExecutionError) Error() string {
	return fmt.Sprintf("trial %s failed after %d attempts: %v", e.TrialID, e.Attempts, e.Err)
}

func (e *TrialExecutionError) Unwrap() error { return e.Err }

// TrialFailure names one failed trial in a result or task-level error.
type TrialFailure struct {
	TrialID string `json:"trial_id"`
	Reason  string `json:"reason"`
}

// ResourceExhaustionError reports a run whose time or parallelism budget ran
// out before any trial succeeded.
type ResourceExhaustionError struct {
	Failures []TrialFailure
}

func (e *ResourceExhaustionError) Error() string {
	return fmt.Sprintf("resource budget exhausted before any trial succeeded (%d trials lost)", len(e.Failures))
}

// AggregationError reports a run in which every dispatched trial ended
// Failed, TimedOut, or Cancelled.
type AggregationError struct {
	Failures []TrialFailure
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("all %d trials failed", len(e.Failures))
}
