package scheduler

import (
	"context"
	"sync"
	"time"
)

// pacer is a token bucket that limits how fast trials start. Tokens refill
// lazily from elapsed time so no background goroutine is needed.
type pacer struct {
	mu       sync.Mutex
	interval time.Duration
	burst    float64
	tokens   float64
	last     time.Time
}

func newPacer(rps float64, burst int) *pacer {
	if rps <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	return &pacer{
		interval: time.Duration(float64(time.Second) / rps),
		burst:    float64(burst),
		tokens:   float64(burst),
		last:     time.Now(),
	}
}

func (p *pacer) wait(ctx context.Context) error {
	for {
		p.mu.Lock()
		now := time.Now()
		p.tokens += float64(now.Sub(p.last)) / float64(p.interval)
		if p.tokens > p.burst {
			p.tokens = p.burst
		}
		p.last = now
		if p.tokens >= 1 {
			p.tokens--
			p.mu.Unlock()
			return nil
		}
		needed := time.Duration((1 - p.tokens) * float64(p.interval))
		p.mu.Unlock()

		timer := time.NewTimer(needed)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
	}
}
