package balance

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockBalanceSource struct {
	mock.Mock
}

func (m *mockBalanceSource) NativeBalance(ctx context.Context, chainID uint64, address string) (*big.Int, error) {
	args := m.Called(ctx, chainID, address)

	v, _ := args.Get(0).(*big.Int)
	return v, args.Error(1)
}

func (m *mockBalanceSource) TokenBalance(ctx context.Context, chainID uint64, contract common.Address, address string) (*big.Int, error) {
	args := m.Called(ctx, chainID, contract, address)

	v, _ := args.Get(0).(*big.Int)
	return v, args.Error(1)
}

// fixedPrice always quotes the same native asset price.
type fixedPrice string

func (p fixedPrice) Current(context.Context) decimal.Decimal {
	return decimal.RequireFromString(string(p))
}
