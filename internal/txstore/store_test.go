package txstore

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	wallet      = "0xABC0000000000000000000000000000000000001"
	otherWallet = "0xDEF0000000000000000000000000000000000002"
)

func pendingTx(hash string, submittedAt int64) PendingTransaction {
	return PendingTransaction{
		Hash:         hash,
		ChainID:      1,
		Counterparty: "0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		Amount:       "0.05",
		Symbol:       "ETH",
		Direction:    DirectionSend,
		SubmittedAt:  submittedAt,
	}
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "pending_transactions_0xabc0000000000000000000000000000000000001", PendingKey(wallet))
	assert.Equal(t, "confirmed_transactions_0xabc0000000000000000000000000000000000001", ConfirmedKey(wallet))
}

func TestStore_AddPending(t *testing.T) {
	t.Run("registering the same hash twice keeps one record", func(t *testing.T) {
		s := New(newMapStorage())

		s.AddPending(t.Context(), wallet, pendingTx("0xh1", 100))
		s.AddPending(t.Context(), wallet, pendingTx("0xh1", 100))
		s.AddPending(t.Context(), wallet, pendingTx("0xH1", 100))

		pending := s.Pending(t.Context(), wallet)
		require.Len(t, pending, 1)
		assert.Equal(t, "0xh1", pending[0].Hash)
	})

	t.Run("keeps wallets isolated and keys them by lower-cased address", func(t *testing.T) {
		s := New(newMapStorage())

		s.AddPending(t.Context(), wallet, pendingTx("0xh1", 100))
		s.AddPending(t.Context(), otherWallet, pendingTx("0xh2", 100))

		assert.Len(t, s.Pending(t.Context(), wallet), 1)
		assert.Len(t, s.Pending(t.Context(), "0xabc0000000000000000000000000000000000001"), 1)
		require.Len(t, s.Pending(t.Context(), otherWallet), 1)
		assert.Equal(t, "0xh2", s.Pending(t.Context(), otherWallet)[0].Hash)
	})

	t.Run("does not re-register a hash that was already confirmed", func(t *testing.T) {
		s := New(newMapStorage())

		s.AddPending(t.Context(), wallet, pendingTx("0xh1", 100))
		s.MarkConfirmed(t.Context(), wallet, "0xh1")
		s.AddPending(t.Context(), wallet, pendingTx("0xh1", 100))

		assert.Empty(t, s.Pending(t.Context(), wallet))
		assert.Len(t, s.Confirmed(t.Context(), wallet), 1)
	})

	t.Run("ignores a missing address or hash", func(t *testing.T) {
		storage := new(mockStorage)
		s := New(storage)

		s.AddPending(t.Context(), "", pendingTx("0xh1", 100))
		s.AddPending(t.Context(), wallet, pendingTx("", 100))

		storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestStore_RemovePending(t *testing.T) {
	t.Run("removes the matching record only", func(t *testing.T) {
		s := New(newMapStorage())
		s.AddPending(t.Context(), wallet, pendingTx("0xh1", 100))
		s.AddPending(t.Context(), wallet, pendingTx("0xh2", 200))

		s.RemovePending(t.Context(), wallet, "0xh1")

		pending := s.Pending(t.Context(), wallet)
		require.Len(t, pending, 1)
		assert.Equal(t, "0xh2", pending[0].Hash)
	})

	t.Run("is a no-op without a write when the hash is unknown", func(t *testing.T) {
		storage := new(mockStorage)
		storage.On("Load", mock.Anything, PendingKey(wallet)).Return([]byte(`[{"hash":"0xh1"}]`), nil)

		New(storage).RemovePending(t.Context(), wallet, "0xmissing")

		storage.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestStore_MarkConfirmed(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)

	t.Run("promotes the pending record", func(t *testing.T) {
		s := New(newMapStorage(), WithClock(fixedClock(now)))
		s.AddPending(t.Context(), wallet, pendingTx("0xh1", 100))

		s.MarkConfirmed(t.Context(), wallet, "0xH1")

		assert.Empty(t, s.Pending(t.Context(), wallet))

		confirmed := s.Confirmed(t.Context(), wallet)
		require.Len(t, confirmed, 1)
		assert.Equal(t, pendingTx("0xh1", 100), confirmed[0].PendingTransaction)
		assert.Equal(t, now.UnixMilli(), confirmed[0].ConfirmedAt)
		assert.False(t, confirmed[0].Failed)
	})

	t.Run("tolerates a hash that is no longer pending", func(t *testing.T) {
		s := New(newMapStorage())
		s.AddPending(t.Context(), wallet, pendingTx("0xh1", 100))
		s.RemovePending(t.Context(), wallet, "0xh1")

		s.MarkConfirmed(t.Context(), wallet, "0xh1")

		assert.Empty(t, s.Pending(t.Context(), wallet))
		assert.Empty(t, s.Confirmed(t.Context(), wallet))
	})

	t.Run("never holds a hash in both registers", func(t *testing.T) {
		storage := newMapStorage()
		storage.data[PendingKey(wallet)] = []byte(`[{"hash":"0xh1","chainId":1,"type":"send","timestamp":100}]`)
		storage.data[ConfirmedKey(wallet)] = []byte(`[{"hash":"0xh1","chainId":1,"type":"send","timestamp":100,"confirmedAt":5}]`)
		s := New(storage)

		s.MarkConfirmed(t.Context(), wallet, "0xh1")

		assert.Empty(t, s.Pending(t.Context(), wallet))
		confirmed := s.Confirmed(t.Context(), wallet)
		require.Len(t, confirmed, 1)
		assert.Equal(t, int64(5), confirmed[0].ConfirmedAt)
	})
}

func TestStore_MarkFailed(t *testing.T) {
	s := New(newMapStorage())
	s.AddPending(t.Context(), wallet, pendingTx("0xh1", 100))

	s.MarkFailed(t.Context(), wallet, "0xh1")

	confirmed := s.Confirmed(t.Context(), wallet)
	require.Len(t, confirmed, 1)
	assert.True(t, confirmed[0].Failed)
	assert.Empty(t, s.Pending(t.Context(), wallet))
}

func TestStore_RemoveConfirmed(t *testing.T) {
	s := New(newMapStorage())
	s.AddPending(t.Context(), wallet, pendingTx("0xh1", 100))
	s.AddPending(t.Context(), wallet, pendingTx("0xh2", 100))
	s.MarkConfirmed(t.Context(), wallet, "0xh1")
	s.MarkConfirmed(t.Context(), wallet, "0xh2")

	s.RemoveConfirmed(t.Context(), wallet, "0xH1")

	confirmed := s.Confirmed(t.Context(), wallet)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "0xh2", confirmed[0].Hash)
}

func TestStore_SweepConfirmed(t *testing.T) {
	start := time.Unix(1_700_000_000, 0)
	clock := start
	s := New(newMapStorage(), WithClock(func() time.Time { return clock }))

	s.AddPending(t.Context(), wallet, pendingTx("0xold", 100))
	s.MarkConfirmed(t.Context(), wallet, "0xold")

	clock = start.Add(30 * time.Minute)
	s.AddPending(t.Context(), wallet, pendingTx("0xyoung", 100))
	s.MarkConfirmed(t.Context(), wallet, "0xyoung")

	clock = start.Add(time.Hour + time.Second)
	s.SweepConfirmed(t.Context(), wallet)

	confirmed := s.Confirmed(t.Context(), wallet)
	require.Len(t, confirmed, 1)
	assert.Equal(t, "0xyoung", confirmed[0].Hash)

	t.Run("honors a custom retention", func(t *testing.T) {
		s := New(newMapStorage(), WithRetention(time.Minute), WithClock(func() time.Time { return clock }))
		s.AddPending(t.Context(), wallet, pendingTx("0xh1", 100))
		s.MarkConfirmed(t.Context(), wallet, "0xh1")

		clock = clock.Add(2 * time.Minute)
		s.SweepConfirmed(t.Context(), wallet)

		assert.Empty(t, s.Confirmed(t.Context(), wallet))
	})
}

func TestStore_DegradedStorage(t *testing.T) {
	t.Run("read failures yield empty registers", func(t *testing.T) {
		storage := new(mockStorage)
		storage.On("Load", mock.Anything, mock.Anything).Return(nil, errors.New("connection refused"))

		s := New(storage)

		assert.Empty(t, s.Pending(t.Context(), wallet))
		assert.Empty(t, s.Confirmed(t.Context(), wallet))
		assert.NotNil(t, s.Pending(t.Context(), wallet))
	})

	t.Run("corrupted data yields empty registers", func(t *testing.T) {
		storage := newMapStorage()
		storage.data[PendingKey(wallet)] = []byte(`{not json`)
		storage.data[ConfirmedKey(wallet)] = []byte(`null`)

		s := New(storage)

		assert.Empty(t, s.Pending(t.Context(), wallet))
		assert.Empty(t, s.Confirmed(t.Context(), wallet))
	})

	t.Run("write failures are swallowed", func(t *testing.T) {
		storage := new(mockStorage)
		storage.On("Load", mock.Anything, mock.Anything).Return(nil, nil)
		storage.On("Save", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("quota exceeded"))

		s := New(storage)

		assert.NotPanics(t, func() {
			s.AddPending(t.Context(), wallet, pendingTx("0xh1", 100))
		})
		storage.AssertCalled(t, "Save", mock.Anything, PendingKey(wallet), mock.Anything)
	})
}
