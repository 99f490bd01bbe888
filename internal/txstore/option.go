package txstore

import "time"

// DefaultRetention is how long a locally confirmed record is kept when no
// external source indexes it.
const DefaultRetention = time.Hour

type config struct {
	retention time.Duration
	now       func() time.Time
}

func defaultConfig() config {
	return config{
		retention: DefaultRetention,
		now:       time.Now,
	}
}

// Option customizes a Store.
type Option func(*config)

// WithRetention sets the confirmed-record retention window. Non-positive values are ignored.
func WithRetention(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.retention = d
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *config) {
		c.now = now
	}
}
