package txsubmit

import (
	"context"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockSubmitter struct {
	mock.Mock
}

func (m *mockSubmitter) SendNative(ctx context.Context, chainID uint64, from, to string, value *big.Int) (string, error) {
	args := m.Called(ctx, chainID, from, to, value)
	return args.String(0), args.Error(1)
}

func (m *mockSubmitter) SendToken(ctx context.Context, chainID uint64, from string, contract common.Address, to string, value *big.Int) (string, error) {
	args := m.Called(ctx, chainID, from, contract, to, value)
	return args.String(0), args.Error(1)
}

func (m *mockSubmitter) WaitForReceipt(ctx context.Context, chainID uint64, hash string) (Receipt, error) {
	args := m.Called(ctx, chainID, hash)
	return args.Get(0).(Receipt), args.Error(1)
}

// fixedPrice always quotes the same native asset price.
type fixedPrice string

func (p fixedPrice) Current(context.Context) decimal.Decimal {
	return decimal.RequireFromString(string(p))
}

// countingNotifier records how often it was woken.
type countingNotifier struct {
	n atomic.Int32
}

func (c *countingNotifier) NotifyNewSubmission() { c.n.Add(1) }

func (c *countingNotifier) count() int { return int(c.n.Load()) }

func wei(s string) any {
	want, _ := new(big.Int).SetString(s, 10)
	return mock.MatchedBy(func(v *big.Int) bool { return v != nil && v.Cmp(want) == 0 })
}
