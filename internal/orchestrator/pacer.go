package orchestrator

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// Pacer enforces the minimum spacing between the start of successive calls
// on one provider instance. A nil Pacer never waits, and the first call on
// a real one passes immediately: only call number two onward is spaced.
//
// The pacer is shared by every run issued against the same provider, so
// concurrent workbook analyses cannot combine to exceed the provider's
// quota between them.
type Pacer struct {
	limiter *rate.Limiter
}

// NewPacer creates a pacer with the given inter-call delay. Delays of zero
// or less return nil, meaning unspaced.
func NewPacer(delay time.Duration) *Pacer {
	if delay <= 0 {
		return nil
	}
	// Burst 1 lets the first call through without waiting.
	return &Pacer{limiter: rate.NewLimiter(rate.Every(delay), 1)}
}

// Wait blocks until the next call slot opens or the context is cancelled.
// A nil pacer still reports cancellation, matching the limiter's contract.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil || p.limiter == nil {
		return ctx.Err()
	}
	return p.limiter.Wait(ctx)
}
