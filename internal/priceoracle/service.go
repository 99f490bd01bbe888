// Package priceoracle tracks the USD price of the native asset.
//
// The oracle never reports an unset price: any failure of the source
// resolves to a fixed fallback, which is logged and counted.
package priceoracle

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"

	"github.com/gabapcia/walletfeed/internal/pkg/logger"
	"github.com/gabapcia/walletfeed/internal/pkg/telemetry"
)

var (
	// ErrServiceAlreadyStarted is returned if Start is called more than once.
	ErrServiceAlreadyStarted = errors.New("service already started")

	// ErrInvalidPrice is reported when the source answers with a non-positive price.
	ErrInvalidPrice = errors.New("invalid price")
)

// PriceSource fetches the current USD price of an asset.
type PriceSource interface {
	FetchUSDPrice(ctx context.Context, assetID string) (decimal.Decimal, error)
}

// Service is the price oracle.
type Service interface {
	// Start refreshes the price immediately and then periodically until
	// Close is called.
	Start(ctx context.Context) error

	// Close stops the refresh loop.
	Close()

	// Refresh fetches the price now and returns the value stored.
	Refresh(ctx context.Context) decimal.Decimal

	// Current returns the last known price, fetching it on first use.
	Current(ctx context.Context) decimal.Decimal
}

type closeFunc func()

type service struct {
	mu        sync.Mutex
	isStarted bool
	closeFunc closeFunc

	priceMu sync.RWMutex
	price   decimal.Decimal
	known   bool

	source PriceSource
	cfg    config

	fallbacks metric.Int64Counter
}

var _ Service = (*service)(nil)

// New creates an oracle over source.
func New(source PriceSource, opts ...Option) *service {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		source:    source,
		cfg:       cfg,
		fallbacks: telemetry.Counter(telemetry.Meter("priceoracle"), "priceoracle.fallbacks", "Price refreshes that used the fallback price"),
	}
}

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		s.run(ctx)
	}()

	s.closeFunc = func() {
		cancel()
		<-done
	}
	s.isStarted = true
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}

	s.closeFunc = nil
	s.isStarted = false
}

func (s *service) run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.refreshInterval)
	defer ticker.Stop()

	for {
		s.Refresh(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *service) Refresh(ctx context.Context) decimal.Decimal {
	price, err := s.source.FetchUSDPrice(ctx, s.cfg.assetID)
	if err == nil && !price.IsPositive() {
		err = ErrInvalidPrice
	}

	if err != nil {
		if ctx.Err() != nil {
			return s.stored()
		}

		logger.Warn(ctx, "price fetch failed, using fallback price",
			"asset.id", s.cfg.assetID,
			"price.fallback", s.cfg.fallback.String(),
			"error", err,
		)
		s.fallbacks.Add(ctx, 1)
		price = s.cfg.fallback
	}

	s.priceMu.Lock()
	defer s.priceMu.Unlock()

	s.price = price
	s.known = true
	return price
}

// stored returns the last known price without fetching, or the fallback.
func (s *service) stored() decimal.Decimal {
	s.priceMu.RLock()
	defer s.priceMu.RUnlock()

	if s.known {
		return s.price
	}
	return s.cfg.fallback
}

func (s *service) Current(ctx context.Context) decimal.Decimal {
	s.priceMu.RLock()
	price, known := s.price, s.known
	s.priceMu.RUnlock()

	if known {
		return price
	}
	return s.Refresh(ctx)
}
