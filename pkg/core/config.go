package core

import "time"

// Direction says whether a metric should be minimized or maximized.
type Direction string

const (
	Maximize Direction = "maximize"
	Minimize Direction = "minimize"
)

// Metric names an objective together with its optimization direction.
type Metric struct {
	Name      string    `json:"name"`
	Direction Direction `json:"direction"`
}

// Better reports whether a beats b under the metric's direction.
func (m Metric) Better(a, b float64) bool {
	if m.Direction == Minimize {
		return a < b
	}
	return a > b
}

// RunConfig holds the options every task recognizes. Analytic-specific
// extensions ride in Extra. Zero values mean "use the task default"; tasks
// call Normalized once up front instead of defaulting at use sites.
type RunConfig struct {
	TimeBudget      time.Duration     `json:"time_budget_s"`
	MaxTrials       int               `json:"max_trials"`
	CVFolds         int               `json:"cv_folds"`
	Metric          Metric            `json:"optimization_metric"`
	SecondaryMetric string            `json:"secondary_metric,omitempty"`
	// SecondaryDirection orients the tie-break metric; empty means it
	// follows the primary metric's direction.
	SecondaryDirection Direction `json:"secondary_direction,omitempty"`
	Ensemble        bool              `json:"ensemble"`
	Seed            int64             `json:"random_seed"`
	Parallelism     int               `json:"parallelism"`
	MaxRetries      int               `json:"max_retries"`
	RetryBackoff    time.Duration     `json:"retry_backoff"`
	GracePeriod     time.Duration     `json:"grace_period"`
	TopK            int               `json:"top_k"`
	ValidationSplit float64           `json:"validation_split"`
	EarlyStop       bool              `json:"early_stop"`
	Extra           map[string]string `json:"extra,omitempty"`

	// Progress, when set, is called after each trial reaches a terminal
	// state. It must be safe for concurrent use.
	Progress func(completed, total int) `json:"-"`
}

// Normalized returns the config with defaults applied.
func (c RunConfig) Normalized() RunConfig {
	if c.MaxTrials <= 0 {
		c.MaxTrials = 10
	}
	if c.CVFolds <= 0 {
		c.CVFolds = 5
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 4
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = 100 * time.Millisecond
	}
	if c.GracePeriod <= 0 {
		c.GracePeriod = 5 * time.Second
	}
	if c.TopK <= 0 {
		c.TopK = 3
	}
	if c.ValidationSplit <= 0 || c.ValidationSplit >= 1 {
		c.ValidationSplit = 0.2
	}
	if c.Metric.Direction == "" {
		c.Metric.Direction = Maximize
	}
	if c.SecondaryMetric != "" && c.SecondaryDirection == "" {
		c.SecondaryDirection = c.Metric.Direction
	}
	return c
}
