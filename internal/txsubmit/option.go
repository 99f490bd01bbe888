package txsubmit

import (
	"time"

	"github.com/gabapcia/walletfeed/internal/txstore"
)

const (
	// DefaultResetDelay lets the success state be shown before the form clears.
	DefaultResetDelay = 3 * time.Second

	// DefaultReceiptTimeout bounds how long a receipt is waited for.
	DefaultReceiptTimeout = 10 * time.Minute
)

type config struct {
	resetDelay     time.Duration
	receiptTimeout time.Duration
	notifier       Notifier
	onSettled      func(Submission, Outcome)
	now            func() time.Time
}

func defaultConfig() config {
	return config{
		resetDelay:     DefaultResetDelay,
		receiptTimeout: DefaultReceiptTimeout,
		onSettled:      func(Submission, Outcome) {},
		now:            time.Now,
	}
}

// Option customizes the submission flow.
type Option func(*config)

// WithResetDelay sets how long the settled state is kept before clearing.
func WithResetDelay(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.resetDelay = d
		}
	}
}

// WithReceiptTimeout bounds the receipt wait.
func WithReceiptTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.receiptTimeout = d
		}
	}
}

// WithNotifier wakes n after every local register change.
func WithNotifier(n Notifier) Option {
	return func(c *config) {
		c.notifier = n
	}
}

// WithOnSettled runs fn when a submission is cleared.
func WithOnSettled(fn func(Submission, Outcome)) Option {
	return func(c *config) {
		if fn != nil {
			c.onSettled = fn
		}
	}
}

// WithClock overrides the time source used to stamp pending records.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}

var _ Registry = (*txstore.Store)(nil)
