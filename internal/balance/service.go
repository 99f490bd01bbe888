// Package balance values the wallet's holdings across every supported
// {chain x token} pair.
//
// Reads are concurrent and cached per pair for a staleness window. A failed
// read degrades to an empty balance for that pair and is retried on the next
// call. Zero balances are left out of the per-chain holdings.
package balance

import (
	"context"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/gabapcia/walletfeed/internal/network"
	"github.com/gabapcia/walletfeed/internal/pkg/amount"
	"github.com/gabapcia/walletfeed/internal/pkg/logger"
	"github.com/gabapcia/walletfeed/internal/pkg/types"
	"github.com/gabapcia/walletfeed/internal/walletid"
)

// Service is the balance aggregator.
type Service interface {
	// Portfolio reads and values the balances of the connected wallet. A
	// disconnected wallet yields an empty portfolio without any read.
	Portfolio(ctx context.Context) Portfolio

	// Invalidate forgets every cached balance.
	Invalidate()
}

type pairKey struct {
	address string // lower-cased
	chainID uint64
	symbol  string
}

type cachedBalance struct {
	value  *big.Int
	readAt time.Time
}

// read is the outcome of one pair read.
type read struct {
	chain network.Chain
	token network.Token
	value *big.Int
	err   error
}

type service struct {
	mu    sync.Mutex
	cache map[pairKey]cachedBalance

	identity walletid.Service
	source   BalanceSource
	prices   PriceProvider
	cfg      config
}

var _ Service = (*service)(nil)

// New creates an aggregator reading balances from source.
func New(identity walletid.Service, source BalanceSource, prices PriceProvider, opts ...Option) *service {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		cache:    make(map[pairKey]cachedBalance),
		identity: identity,
		source:   source,
		prices:   prices,
		cfg:      cfg,
	}
}

func (s *service) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()

	clear(s.cache)
}

func (s *service) Portfolio(ctx context.Context) Portfolio {
	identity := s.identity.Status(ctx)
	if !identity.Connected {
		return Portfolio{Totals: map[string]decimal.Decimal{}}
	}

	ctx = logger.Derive(ctx, "wallet.address", identity.Address)

	chains := make([]network.Chain, 0, len(s.cfg.chains))
	for _, id := range s.cfg.chains {
		chain, err := network.ChainByID(id)
		if err != nil {
			logger.Warn(ctx, "skipping unsupported chain", "chain.id", id)
			continue
		}
		chains = append(chains, chain)
	}

	reads := s.readAll(ctx, identity.Address, chains)
	return s.value(ctx, identity.Address, chains, reads)
}

// readAll reads every pair concurrently, reusing fresh cached values.
func (s *service) readAll(ctx context.Context, address string, chains []network.Chain) []read {
	var reads []read
	for _, chain := range chains {
		for _, token := range network.Tokens() {
			if token.AvailableOn(chain.ID) {
				reads = append(reads, read{chain: chain, token: token})
			}
		}
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentReads)

	for i := range reads {
		g.Go(func() error {
			r := &reads[i]
			r.value, r.err = s.balance(ctx, address, r.chain.ID, r.token)
			if r.err != nil {
				logger.Warn(ctx, "balance read failed",
					"chain.id", r.chain.ID,
					"token.symbol", r.token.Symbol,
					"error", r.err,
				)
			}
			return nil
		})
	}
	_ = g.Wait()

	return reads
}

func (s *service) balance(ctx context.Context, address string, chainID uint64, token network.Token) (*big.Int, error) {
	key := pairKey{address: strings.ToLower(address), chainID: chainID, symbol: token.Symbol}
	now := s.cfg.now()

	s.mu.Lock()
	cached, ok := s.cache[key]
	s.mu.Unlock()

	if ok && now.Sub(cached.readAt) < s.cfg.staleness {
		return cached.value, nil
	}

	var (
		value *big.Int
		err   error
	)
	if token.Native {
		value, err = s.source.NativeBalance(ctx, chainID, address)
	} else {
		contract, _ := token.AddressOn(chainID)
		value, err = s.source.TokenBalance(ctx, chainID, contract, address)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.cache[key] = cachedBalance{value: value, readAt: now}
	s.mu.Unlock()

	return value, nil
}

// value turns pair reads into a valued portfolio, keeping chain order.
func (s *service) value(ctx context.Context, address string, chains []network.Chain, reads []read) Portfolio {
	nativePrice := s.prices.Current(ctx)

	holdings := types.NewDefaultMap[uint64](func() []Holding { return nil })
	incomplete := types.NewSet[uint64]()
	totals := types.NewDefaultMap[string](func() decimal.Decimal { return decimal.Zero })

	for _, r := range reads {
		if r.err != nil {
			incomplete.Add(r.chain.ID)
			continue
		}

		if r.value == nil || r.value.Sign() <= 0 {
			continue
		}

		h := Holding{
			Symbol: r.token.Symbol,
			Atomic: r.value,
			Amount: amount.FromAtomic(r.value, r.token.Decimals),
		}

		switch {
		case r.token.FixedUSDPrice.Valid:
			h.USDValue = h.Amount.Mul(r.token.FixedUSDPrice.Decimal)
		case r.token.Native:
			h.USDValue = h.Amount.Mul(nativePrice)
		}

		holdings.Set(r.chain.ID, append(holdings.Get(r.chain.ID), h))
		totals.Set(h.Symbol, totals.Get(h.Symbol).Add(h.Amount))
	}

	p := Portfolio{
		Address:     address,
		Connected:   true,
		Chains:      make([]ChainBalance, 0, len(chains)),
		NativePrice: nativePrice,
	}

	for _, chain := range chains {
		cb := ChainBalance{
			ChainID:    chain.ID,
			ChainName:  chain.Name,
			Holdings:   holdings.Get(chain.ID),
			Incomplete: incomplete.Has(chain.ID),
		}
		for _, h := range cb.Holdings {
			cb.USDValue = cb.USDValue.Add(h.USDValue)
		}

		p.USDValue = p.USDValue.Add(cb.USDValue)
		p.Chains = append(p.Chains, cb)
	}

	// every supported symbol is present, zero when nothing is held
	for _, token := range network.Tokens() {
		totals.Get(token.Symbol)
	}
	p.Totals = totals.ToMap()

	return p
}
