package balance

import (
	"time"

	"github.com/gabapcia/walletfeed/internal/network"
)

const (
	// DefaultStaleness is how long a read balance is reused.
	DefaultStaleness = 30 * time.Second

	// maxConcurrentReads bounds the reads in flight per refresh.
	maxConcurrentReads = 8
)

type config struct {
	chains    []uint64
	staleness time.Duration
	now       func() time.Time
}

func defaultConfig() config {
	return config{
		chains:    network.ChainIDs(),
		staleness: DefaultStaleness,
		now:       time.Now,
	}
}

// Option customizes the aggregator.
type Option func(*config)

// WithChains restricts the chains read. Unknown chains are skipped.
func WithChains(ids ...uint64) Option {
	return func(c *config) {
		if len(ids) > 0 {
			c.chains = ids
		}
	}
}

// WithStaleness sets how long a balance is reused before being read again.
// Zero disables reuse.
func WithStaleness(d time.Duration) Option {
	return func(c *config) {
		if d >= 0 {
			c.staleness = d
		}
	}
}

// WithClock overrides the time source used for staleness checks.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}
