package priceoracle

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// DefaultAssetID is the price API identifier of the native asset.
	DefaultAssetID = "ethereum"

	// DefaultRefreshInterval is how often the price is refetched.
	DefaultRefreshInterval = 30 * time.Second
)

// DefaultFallbackPrice is used whenever the price source cannot answer.
var DefaultFallbackPrice = decimal.NewFromInt(2500)

type config struct {
	assetID         string
	refreshInterval time.Duration
	fallback        decimal.Decimal
}

func defaultConfig() config {
	return config{
		assetID:         DefaultAssetID,
		refreshInterval: DefaultRefreshInterval,
		fallback:        DefaultFallbackPrice,
	}
}

// Option customizes the oracle.
type Option func(*config)

// WithAssetID sets the asset whose price is tracked.
func WithAssetID(id string) Option {
	return func(c *config) {
		if id != "" {
			c.assetID = id
		}
	}
}

// WithRefreshInterval sets the refresh period of the background loop.
func WithRefreshInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.refreshInterval = d
		}
	}
}

// WithFallbackPrice sets the price reported when the source fails.
// Non-positive prices are ignored.
func WithFallbackPrice(p decimal.Decimal) Option {
	return func(c *config) {
		if p.IsPositive() {
			c.fallback = p
		}
	}
}
