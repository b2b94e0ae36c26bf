package submit

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-dosimetry/pkg/portal"
)

// Policy bounds retries of a single backend call. The delay before retry n
// (0-based) is BaseDelay * 2^n; no delay follows the last attempt.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultPolicy makes three attempts, waiting 1s then 2s.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: time.Second}
}

// Delay returns the wait before retry n.
func (p Policy) Delay(n int) time.Duration {
	return p.BaseDelay << uint(n)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type retrier struct {
	policy  Policy
	sleep   SleepFunc
	logger  *zap.Logger
	metrics *Metrics
}

// do runs call until it succeeds, fails with a non-retryable error or the
// attempts run out. The last error is returned unchanged.
func (r retrier) do(ctx context.Context, operation string, call func(context.Context) error) error {
	attempts := r.policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = call(ctx); err == nil {
			r.metrics.attempt(operation, "ok")
			return nil
		}
		if !portal.IsRetryable(err) || attempt == attempts-1 || ctx.Err() != nil {
			r.metrics.attempt(operation, "failed")
			return err
		}
		r.metrics.attempt(operation, "retried")
		delay := r.policy.Delay(attempt)
		r.logger.Info("retrying backend call",
			zap.String("operation", operation),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", attempts),
			zap.Duration("delay", delay),
			zap.Error(err))
		if serr := r.sleep(ctx, delay); serr != nil {
			return err
		}
	}
	return err
}
