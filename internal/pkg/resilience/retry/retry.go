// Package retry provides a configurable retry mechanism for operations that may
// fail temporarily. It wraps the retry-go package from Avast behind a small
// interface with functional options.
//
// Exponential backoff is the default delay strategy. Polling style loops, such
// as waiting for a transaction receipt, use WithFixedDelay instead.
//
//	r := retry.New(retry.WithAttempts(5), retry.WithDelay(500*time.Millisecond))
//	err := r.Execute(ctx, func() error {
//	    return someOperation()
//	})
package retry

import (
	"context"
	"time"

	retry "github.com/avast/retry-go/v4"
)

// Retry defines the interface for retry operations.
type Retry interface {
	// Execute runs operation until it succeeds, returns a Permanent error,
	// the attempts are exhausted or ctx is done.
	//
	// The operation should be idempotent. Execute returns nil on success, or
	// the last error otherwise.
	Execute(ctx context.Context, operation func() error) error
}

// config holds internal settings for the retry mechanism.
type config struct {
	attempts   uint          // maximum number of attempts, including the first one
	delay      time.Duration // base delay between attempts
	maxDelay   time.Duration // cap for the backoff delay
	fixedDelay bool          // use a constant delay instead of exponential backoff
}

// Option defines a functional option for configuring the retry mechanism.
type Option func(*config)

// retrier implements the Retry interface using the retry-go package.
type retrier struct {
	cfg config
}

// Compile-time assertion that retrier implements Retry interface
var _ Retry = (*retrier)(nil)

// New creates a Retry configured with the provided options.
//
// Default configuration:
//   - attempts:   3 (1 initial attempt + 2 retries)
//   - delay:      1 second
//   - maxDelay:   5 seconds
//   - delay type: exponential backoff
func New(opts ...Option) Retry {
	cfg := config{
		attempts: 3,
		delay:    1 * time.Second,
		maxDelay: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &retrier{
		cfg: cfg,
	}
}

// Execute implements the Retry interface.
func (r *retrier) Execute(ctx context.Context, operation func() error) error {
	delayType := retry.BackOffDelay
	if r.cfg.fixedDelay {
		delayType = retry.FixedDelay
	}

	options := []retry.Option{
		retry.Attempts(r.cfg.attempts),
		retry.Delay(r.cfg.delay),
		retry.MaxDelay(r.cfg.maxDelay),
		retry.DelayType(delayType),
		retry.LastErrorOnly(true),
		retry.Context(ctx),
	}

	return retry.Do(operation, options...)
}

// Permanent marks err as not worth retrying: Execute stops immediately and
// returns it.
func Permanent(err error) error {
	return retry.Unrecoverable(err)
}

// WithAttempts sets the maximum number of attempts (including the initial attempt).
// Default: 3.
func WithAttempts(n uint) Option {
	return func(c *config) {
		c.attempts = n
	}
}

// WithDelay sets the base delay between retry attempts.
// Default: 1 second.
func WithDelay(d time.Duration) Option {
	return func(c *config) {
		c.delay = d
	}
}

// WithFixedDelay waits exactly the base delay between attempts instead of
// backing off exponentially.
func WithFixedDelay() Option {
	return func(c *config) {
		c.fixedDelay = true
	}
}
