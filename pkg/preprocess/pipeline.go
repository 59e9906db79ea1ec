package preprocess

import (
	"autolytics/pkg/core"
	"autolytics/pkg/dataset"
)

// Step is one preprocessing transform. Fit captures parameters from training
// data; the returned Fitted is a pure function over a Dataset.
type Step interface {
	Name() string
	Fit(train *dataset.Dataset) (Fitted, error)
}

// Fitted is an immutable snapshot of a fitted step. Apply derives a new
// Dataset and never mutates its input or the snapshot, so a Fitted may be
// replayed concurrently.
type Fitted interface {
	Name() string
	Apply(ds *dataset.Dataset) (*dataset.Dataset, error)
}

// Pipeline is an ordered sequence of steps fitted once on training data and
// then replayed unchanged, so feature semantics are identical across trials.
type Pipeline struct {
	steps []Step
}

// NewPipeline builds a pipeline from steps, applied in order.
func NewPipeline(steps ...Step) *Pipeline {
	return &Pipeline{steps: steps}
}

// Fit fits each step on the training data in order, feeding each step the
// output of the previous one, and returns the fitted snapshot.
func (p *Pipeline) Fit(train *dataset.Dataset) (*FittedPipeline, error) {
	fitted := make([]Fitted, 0, len(p.steps))
	var report []string
	current := train
	for _, step := range p.steps {
		f, err := step.Fit(current)
		if err != nil {
			return nil, err
		}
		next, err := f.Apply(current)
		if err != nil {
			return nil, &core.PreprocessingError{Step: step.Name(), Reason: err.Error()}
		}
		if r, ok := f.(reporter); ok {
			report = append(report, r.Report()...)
		}
		fitted = append(fitted, f)
		current = next
	}
	return &FittedPipeline{fitted: fitted, report: report}, nil
}

type reporter interface {
	Report() []string
}

// FittedPipeline is the immutable fitted snapshot shared read-only by all
// trials.
type FittedPipeline struct {
	fitted []Fitted
	report []string
}

// Apply replays every fitted step on the dataset.
func (fp *FittedPipeline) Apply(ds *dataset.Dataset) (*dataset.Dataset, error) {
	current := ds
	for _, f := range fp.fitted {
		next, err := f.Apply(current)
		if err != nil {
			return nil, &core.PreprocessingError{Step: f.Name(), Reason: err.Error()}
		}
		current = next
	}
	return current, nil
}

// Report lists notable findings captured while fitting.
func (fp *FittedPipeline) Report() []string { return fp.report }
