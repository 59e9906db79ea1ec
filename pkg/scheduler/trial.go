package scheduler

import "fmt"

// State is a trial's lifecycle state.
type State string

const (
	Queued    State = "queued"
	Running   State = "running"
	Succeeded State = "succeeded"
	Failed    State = "failed"
	TimedOut  State = "timed_out"
	Cancelled State = "cancelled"
)

// Terminal reports whether the state is final.
func (s State) Terminal() bool {
	switch s {
	case Succeeded, Failed, TimedOut, Cancelled:
		return true
	}
	return false
}

// Trial is one candidate computation. Config and Seed are fixed at dispatch;
// only the worker that owns the trial transitions State and fills Metrics.
type Trial struct {
	RunID    string
	Index    int
	Seed     int64
	Config   map[string]any
	State    State
	Metrics  map[string]float64
	Artifact any
	Attempts int
	Reason   string
}

// ID keys the trial by run id and dispatch index.
func (t *Trial) ID() string {
	return fmt.Sprintf("%s/trial-%d", t.RunID, t.Index)
}

func (t *Trial) snapshot() Trial {
	copied := *t
	if t.Metrics != nil {
		copied.Metrics = make(map[string]float64, len(t.Metrics))
		for k, v := range t.Metrics {
			copied.Metrics[k] = v
		}
	}
	return copied
}

// Event is one trial state transition streamed to the aggregator.
type Event struct {
	Trial Trial
}
