package priceoracle

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

type mockPriceSource struct {
	mock.Mock
}

func (m *mockPriceSource) FetchUSDPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	args := m.Called(ctx, assetID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
