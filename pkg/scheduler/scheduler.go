package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"autolytics/pkg/core"
)

// ErrPruned is returned by a run function that stopped early because its
// trajectory was dominated by the current best trial.
var ErrPruned = errors.New("scheduler: trial pruned")

// RunFunc executes one trial attempt. It must observe ctx at safe points and
// may call the handle to report intermediate metrics; it returns the trial's
// final metrics and an optional artifact.
type RunFunc func(ctx context.Context, trial *Trial, h *Handle) (map[string]float64, any, error)

// Spec is one candidate configuration awaiting dispatch.
type Spec struct {
	Config map[string]any
	Run    RunFunc
}

// Budget bounds a run: worker parallelism, wall-clock time (0 means
// unlimited), trial count (0 means all specs), and the grace period running
// trials get after the deadline.
type Budget struct {
	Parallelism int
	TimeBudget  time.Duration
	MaxTrials   int
	GracePeriod time.Duration
}

// RetryPolicy bounds retries of a transiently failing trial.
type RetryPolicy struct {
	MaxRetries int
	Backoff    time.Duration
}

// Scheduler dispatches trials to a bounded worker pool and streams state
// transitions as they happen, so a consumer can build a partial leaderboard
// under a tight budget instead of waiting for the full batch.
type Scheduler struct {
	budget Budget
	retry  RetryPolicy
	metric core.Metric
	logger *zap.Logger
	pacer  *pacer

	cancelMu   sync.Mutex
	cancelFn   context.CancelFunc
	cancelled  atomic.Bool
	dispatched atomic.Int64

	bestMu     sync.Mutex
	bestAtStep map[int]float64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithLogger attaches a logger; the default is a nop logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheduler) { s.logger = logger }
}

// WithDispatchRate paces trial dispatch to at most rps starts per second.
func WithDispatchRate(rps float64, burst int) Option {
	return func(s *Scheduler) { s.pacer = newPacer(rps, burst) }
}

// New creates a Scheduler for one task run.
func New(budget Budget, retry RetryPolicy, metric core.Metric, opts ...Option) *Scheduler {
	if budget.Parallelism <= 0 {
		budget.Parallelism = 1
	}
	if budget.GracePeriod <= 0 {
		budget.GracePeriod = 5 * time.Second
	}
	s := &Scheduler{
		budget:     budget,
		retry:      retry,
		metric:     metric,
		logger:     zap.NewNop(),
		bestAtStep: make(map[int]float64),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatched returns how many trials have been handed to a worker.
func (s *Scheduler) Dispatched() int {
	return int(s.dispatched.Load())
}

// Cancel stops dispatch of queued trials immediately. Running trials observe
// the cancellation cooperatively at their own safe points.
func (s *Scheduler) Cancel() {
	s.cancelled.Store(true)
	s.cancelMu.Lock()
	if s.cancelFn != nil {
		s.cancelFn()
	}
	s.cancelMu.Unlock()
}

// Run derives each trial's seed from the root seed, dispatches the specs to
// the worker pool, and returns the event stream. The stream closes once every
// trial reaches a terminal state.
func (s *Scheduler) Run(ctx context.Context, runID string, rootSeed int64, specs []Spec) <-chan Event {
	if s.budget.MaxTrials > 0 && len(specs) > s.budget.MaxTrials {
		specs = specs[:s.budget.MaxTrials]
	}

	runCtx := ctx
	var cancel context.CancelFunc
	if s.budget.TimeBudget > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.budget.TimeBudget)
	} else {
		runCtx, cancel = context.WithCancel(ctx)
	}
	s.cancelMu.Lock()
	s.cancelFn = cancel
	s.cancelMu.Unlock()

	trials := make([]*Trial, len(specs))
	for i, spec := range specs {
		trials[i] = &Trial{
			RunID:  runID,
			Index:  i,
			Seed:   core.DeriveSeed(rootSeed, i),
			Config: spec.Config,
			State:  Queued,
		}
	}

	events := make(chan Event, 2*len(specs)+1)
	jobs := make(chan int)

	var wg sync.WaitGroup
	workers := s.budget.Parallelism
	if workers > len(specs) {
		workers = len(specs)
	}
	if workers < 1 {
		workers = 1
	}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := range jobs {
				s.executeOne(runCtx, trials[i], specs[i].Run, events)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range specs {
			select {
			case jobs <- i:
			case <-runCtx.Done():
				// Deadline or cancellation: everything still queued is
				// marked Cancelled without dispatch.
				for j := i; j < len(specs); j++ {
					trials[j].State = Cancelled
					trials[j].Reason = "budget exhausted before dispatch"
					events <- Event{Trial: trials[j].snapshot()}
				}
				return
			}
		}
	}()

	go func() {
		wg.Wait()
		cancel()
		close(events)
	}()

	return events
}

func (s *Scheduler) executeOne(ctx context.Context, trial *Trial, run RunFunc, events chan<- Event) {
	if ctx.Err() != nil || s.cancelled.Load() {
		trial.State = Cancelled
		trial.Reason = "cancelled before dispatch"
		events <- Event{Trial: trial.snapshot()}
		return
	}
	if s.pacer != nil {
		if err := s.pacer.wait(ctx); err != nil {
			trial.State = Cancelled
			trial.Reason = "cancelled before dispatch"
			events <- Event{Trial: trial.snapshot()}
			return
		}
	}

	s.dispatched.Add(1)
	maxAttempts := s.retry.MaxRetries + 1

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		trial.Attempts = attempt
		trial.State = Running
		events <- Event{Trial: trial.snapshot()}
		s.logger.Debug("trial running",
			zap.String("trial", trial.ID()),
			zap.Int("attempt", attempt))

		metrics, artifact, err := s.runAttempt(ctx, trial, run)

		switch {
		case err == nil:
			trial.State = Succeeded
			trial.Metrics = metrics
			trial.Artifact = artifact
			s.recordBest(metrics)
			events <- Event{Trial: trial.snapshot()}
			return

		case errors.Is(err, ErrPruned):
			trial.State = Cancelled
			trial.Reason = "pruned: dominated by current best"
			events <- Event{Trial: trial.snapshot()}
			return

		case errors.Is(err, context.DeadlineExceeded):
			trial.State = TimedOut
			trial.Reason = "grace period expired"
			events <- Event{Trial: trial.snapshot()}
			return

		case errors.Is(err, context.Canceled):
			trial.State = Cancelled
			trial.Reason = "cancelled while running"
			events <- Event{Trial: trial.snapshot()}
			return

		default:
			if attempt == maxAttempts {
				trial.State = Failed
				trial.Reason = (&core.TrialExecutionError{
					TrialID:  trial.ID(),
					Attempts: attempt,
					Err:      err,
				}).Error()
				events <- Event{Trial: trial.snapshot()}
				return
			}
			s.logger.Warn("trial attempt failed, retrying",
				zap.String("trial", trial.ID()),
				zap.Int("attempt", attempt),
				zap.Error(err))
			if !sleepCtx(ctx, s.retry.Backoff*time.Duration(attempt)) {
				trial.State = Cancelled
				trial.Reason = "cancelled during retry backoff"
				events <- Event{Trial: trial.snapshot()}
				return
			}
		}
	}
}

type attemptResult struct {
	metrics  map[string]float64
	artifact any
	err      error
}

// runAttempt executes the run function in its own goroutine so the worker can
// grant a grace period once the deadline fires. Cancellation is cooperative:
// a run function that ignores ctx is abandoned after the grace period and its
// trial marked TimedOut.
func (s *Scheduler) runAttempt(ctx context.Context, trial *Trial, run RunFunc) (map[string]float64, any, error) {
	handle := &Handle{scheduler: s}
	done := make(chan attemptResult, 1)
	go func() {
		metrics, artifact, err := run(ctx, trial, handle)
		done <- attemptResult{metrics: metrics, artifact: artifact, err: err}
	}()

	select {
	case res := <-done:
		return res.metrics, res.artifact, res.err
	case <-ctx.Done():
		grace := time.NewTimer(s.budget.GracePeriod)
		defer grace.Stop()
		select {
		case res := <-done:
			// Finished inside the grace window; keep the outcome.
			return res.metrics, res.artifact, res.err
		case <-grace.C:
			return nil, nil, ctx.Err()
		}
	}
}

func (s *Scheduler) recordBest(metrics map[string]float64) {
	value, ok := metrics[s.metric.Name]
	if !ok {
		return
	}
	s.observe(finalStep, value)
}

const finalStep = -1

func (s *Scheduler) observe(step int, value float64) {
	s.bestMu.Lock()
	defer s.bestMu.Unlock()
	best, ok := s.bestAtStep[step]
	if !ok || s.metric.Better(value, best) {
		s.bestAtStep[step] = value
	}
}

func (s *Scheduler) dominated(step int, value float64) bool {
	s.bestMu.Lock()
	defer s.bestMu.Unlock()
	best, ok := s.bestAtStep[step]
	return ok && s.metric.Better(best, value)
}

// Handle lets a running trial report intermediate metrics and learn whether
// it should stop early.
type Handle struct {
	scheduler *Scheduler
	stopped   atomic.Bool
}

// Report records an intermediate objective value at the given step. A trial
// whose value is dominated by the best previously recorded at the same step
// is asked to stop.
func (h *Handle) Report(step int, value float64) {
	if h.scheduler.dominated(step, value) {
		h.stopped.Store(true)
		return
	}
	h.scheduler.observe(step, value)
}

// Stopped reports whether the trial should return ErrPruned at its next safe
// point.
func (h *Handle) Stopped() bool {
	return h.stopped.Load()
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}
