package balance

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// BalanceSource reads on-chain balances in base units.
type BalanceSource interface {
	NativeBalance(ctx context.Context, chainID uint64, address string) (*big.Int, error)
	TokenBalance(ctx context.Context, chainID uint64, contract common.Address, address string) (*big.Int, error)
}

// PriceProvider reports the USD price of the native asset.
type PriceProvider interface {
	Current(ctx context.Context) decimal.Decimal
}

// Holding is a non-zero balance of one token on one chain.
type Holding struct {
	Symbol   string
	Atomic   *big.Int
	Amount   decimal.Decimal
	USDValue decimal.Decimal
}

// ChainBalance groups the holdings of one chain.
type ChainBalance struct {
	ChainID   uint64
	ChainName string
	Holdings  []Holding
	USDValue  decimal.Decimal

	// Incomplete is set when at least one read on the chain failed.
	Incomplete bool
}

// Holding returns the holding of symbol on the chain, if any.
func (c ChainBalance) Holding(symbol string) (Holding, bool) {
	for _, h := range c.Holdings {
		if h.Symbol == symbol {
			return h, true
		}
	}
	return Holding{}, false
}

// Portfolio is the valued balance of a wallet across every chain.
type Portfolio struct {
	Address     string
	Connected   bool
	Chains      []ChainBalance
	Totals      map[string]decimal.Decimal // amount per symbol across chains
	USDValue    decimal.Decimal
	NativePrice decimal.Decimal
}

// Total returns the amount of symbol held across every chain.
func (p Portfolio) Total(symbol string) decimal.Decimal {
	return p.Totals[symbol]
}
