package cli

import (
	"bytes"
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/gabapcia/walletfeed/internal/balance"
	"github.com/gabapcia/walletfeed/internal/txhistory"
	"github.com/gabapcia/walletfeed/internal/txsubmit"
	"github.com/gabapcia/walletfeed/internal/walletid"
)

type mockIdentity struct{ mock.Mock }

func (m *mockIdentity) Status(ctx context.Context) walletid.Status {
	return m.Called(ctx).Get(0).(walletid.Status)
}

type mockPrices struct{ mock.Mock }

func (m *mockPrices) Start(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockPrices) Close()                          { m.Called() }

func (m *mockPrices) Refresh(ctx context.Context) decimal.Decimal {
	return m.Called(ctx).Get(0).(decimal.Decimal)
}

func (m *mockPrices) Current(ctx context.Context) decimal.Decimal {
	return m.Called(ctx).Get(0).(decimal.Decimal)
}

type mockBalances struct{ mock.Mock }

func (m *mockBalances) Portfolio(ctx context.Context) balance.Portfolio {
	return m.Called(ctx).Get(0).(balance.Portfolio)
}

func (m *mockBalances) Invalidate() { m.Called() }

type mockHistory struct {
	mock.Mock
	updates chan txhistory.Feed
}

func newMockHistory() *mockHistory {
	return &mockHistory{updates: make(chan txhistory.Feed, 1)}
}

func (m *mockHistory) Start(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockHistory) Close()                          { m.Called() }
func (m *mockHistory) NotifyNewSubmission()            { m.Called() }
func (m *mockHistory) Updates() <-chan txhistory.Feed  { return m.updates }

func (m *mockHistory) Reconcile(ctx context.Context) txhistory.Feed {
	return m.Called(ctx).Get(0).(txhistory.Feed)
}

func (m *mockHistory) Feed() txhistory.Feed {
	return m.Called().Get(0).(txhistory.Feed)
}

type mockSubmit struct{ mock.Mock }

func (m *mockSubmit) Quote(ctx context.Context, req txsubmit.Request) (txsubmit.Quote, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(txsubmit.Quote), args.Error(1)
}

func (m *mockSubmit) Submit(ctx context.Context, req txsubmit.Request) (txsubmit.Submission, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(txsubmit.Submission), args.Error(1)
}

func (m *mockSubmit) InFlight() (txsubmit.Submission, bool) {
	args := m.Called()
	return args.Get(0).(txsubmit.Submission), args.Bool(1)
}

// syncBuffer is a bytes.Buffer safe for a writer and a reader on different goroutines.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}
