package marketplace

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"

	"github.com/ternarybob/ordersync/internal/interfaces"
)

// RetryPolicy retries a page step after the page context is lost.
// The delay is constant between attempts.
type RetryPolicy struct {
	MaxAttempts int
	Delay       time.Duration
	Logger      arbor.ILogger
}

// Execute runs prepare then step, up to MaxAttempts times. Only ErrContextLost
// (from either function) triggers another attempt; any other error returns at once.
// The number of attempts made is returned alongside the final error.
func (p RetryPolicy) Execute(ctx context.Context, name string, prepare, step func(context.Context) error) (int, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			if err := sleepCtx(ctx, p.Delay); err != nil {
				return attempt - 1, err
			}
		}

		err := prepare(ctx)
		if err == nil {
			err = step(ctx)
		}
		if err == nil {
			return attempt, nil
		}
		if !errors.Is(err, interfaces.ErrContextLost) {
			return attempt, err
		}

		lastErr = err
		if p.Logger != nil {
			p.Logger.Warn().
				Str("step", name).
				Int("attempt", attempt).
				Int("max_attempts", maxAttempts).
				Err(err).
				Msg("Page context lost, re-navigating")
		}
	}

	return maxAttempts, fmt.Errorf("%s: gave up after %d attempts: %w", name, maxAttempts, lastErr)
}
