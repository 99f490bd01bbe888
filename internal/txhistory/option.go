package txhistory

import (
	"time"

	"github.com/gabapcia/walletfeed/internal/network"
)

const (
	// DefaultPollInterval keeps the explorers below their free-tier rate limits.
	DefaultPollInterval = 15 * time.Second

	// DefaultFeedLimit is the number of entries kept in the feed.
	DefaultFeedLimit = 30

	// DefaultPendingTimeout is the age after which an unobserved pending
	// transfer is presumed dropped and shown as rejected.
	DefaultPendingTimeout = 24 * time.Hour
)

type config struct {
	chains         []uint64
	pollInterval   time.Duration
	feedLimit      int
	pendingTimeout time.Duration
	now            func() time.Time
}

func defaultConfig() config {
	return config{
		chains:         network.ChainIDs(),
		pollInterval:   DefaultPollInterval,
		feedLimit:      DefaultFeedLimit,
		pendingTimeout: DefaultPendingTimeout,
		now:            time.Now,
	}
}

// Option customizes the reconciler.
type Option func(*config)

// WithChains replaces the chains polled every cycle.
func WithChains(chains ...uint64) Option {
	return func(c *config) {
		c.chains = chains
	}
}

// WithPollInterval sets the delay between background cycles.
func WithPollInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.pollInterval = d
		}
	}
}

// WithFeedLimit caps the number of feed entries.
func WithFeedLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.feedLimit = n
		}
	}
}

// WithPendingTimeout sets when an unobserved pending transfer turns rejected.
func WithPendingTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.pendingTimeout = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}
