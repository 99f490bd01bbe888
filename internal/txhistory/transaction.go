package txhistory

import (
	"context"
	"slices"
	"strings"

	"github.com/gabapcia/walletfeed/internal/txstore"
)

// Status is the lifecycle state of a feed entry.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
	StatusRejected  Status = "rejected"
)

// Record is one transaction as reported by an external history source.
// Value is the atomic amount in base-10.
type Record struct {
	Hash      string
	From      string
	To        string
	Value     string
	Timestamp int64 // unix seconds
	Failed    bool
}

// HistorySource lists the most recent transactions of address on one chain.
// Rate-limited answers are reported as an empty list.
type HistorySource interface {
	Transactions(ctx context.Context, chainID uint64, address string) ([]Record, error)
}

// LocalStore is the subset of the local transaction store the reconciler needs.
type LocalStore interface {
	Pending(ctx context.Context, address string) []txstore.PendingTransaction
	Confirmed(ctx context.Context, address string) []txstore.ConfirmedTransaction
	RemovePending(ctx context.Context, address, hash string)
	RemoveConfirmed(ctx context.Context, address, hash string)
	SweepConfirmed(ctx context.Context, address string)
}

// Transaction is one entry of the canonical feed.
type Transaction struct {
	ID           string
	Direction    txstore.Direction
	Amount       string
	Symbol       string
	Counterparty string
	Timestamp    int64 // unix seconds
	Status       Status
	Hash         string
	ChainID      uint64
}

// Feed is the canonical transaction list, newest first.
type Feed []Transaction

// Fingerprint summarizes the (id, status) pairs of f independently of their order.
func (f Feed) Fingerprint() string {
	parts := make([]string, len(f))
	for i, tx := range f {
		parts[i] = tx.ID + ":" + string(tx.Status)
	}
	slices.Sort(parts)

	return strings.Join(parts, "|")
}
