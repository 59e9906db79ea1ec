package core

import (
	"context"

	"autolytics/pkg/dataset"
)

// Capabilities declares what a task variant needs from the shared execution
// machinery: which preprocessing steps it requires, whether it searches over
// candidate trials at all, and the metric it ranks by.
type Capabilities struct {
	PreprocessingSteps []string
	NeedsSearch        bool
	RankingMetric      Metric
	MinRows            int
}

// Task is a named analytic implementing the shared execution contract.
// Run never returns an error for an expected partial failure; those land in
// the Result's failure report. Errors are reserved for the task-level
// taxonomy: validation, preprocessing, resource exhaustion, aggregation.
type Task interface {
	Name() string
	Capabilities() Capabilities
	Validate(ds *dataset.Dataset, target string, cfg RunConfig) error
	Run(ctx context.Context, ds *dataset.Dataset, target string, cfg RunConfig) (*Result, error)
}

// Factory constructs a task with no required arguments.
type Factory func() Task
