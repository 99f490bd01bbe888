// Package txstore keeps the per-wallet local registers of in-flight and
// just-confirmed transfers.
//
// Every operation is best-effort: storage failures and corrupted data are
// logged and degrade to empty reads and dropped writes, never to errors.
package txstore

import (
	"context"
	"encoding/json"
	"slices"
	"strings"
	"sync"

	"github.com/gabapcia/walletfeed/internal/pkg/logger"
)

// Storage is a durable key/value backend for the JSON-encoded registers.
//
// Load returns nil data and a nil error when the key does not exist.
type Storage interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
}

const (
	pendingKeyPrefix   = "pending_transactions_"
	confirmedKeyPrefix = "confirmed_transactions_"
)

// PendingKey is the storage key of the pending register of address.
func PendingKey(address string) string {
	return pendingKeyPrefix + strings.ToLower(address)
}

// ConfirmedKey is the storage key of the confirmed register of address.
func ConfirmedKey(address string) string {
	return confirmedKeyPrefix + strings.ToLower(address)
}

// Store is the local pending-transaction store.
//
// Read-modify-write cycles are serialized within the process. Separate
// processes sharing a Storage are last-write-wins.
type Store struct {
	mu      sync.Mutex
	storage Storage
	cfg     config
}

// New creates a Store on top of storage.
func New(storage Storage, opts ...Option) *Store {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Store{
		storage: storage,
		cfg:     cfg,
	}
}

func load[T any](ctx context.Context, s Storage, key string) []T {
	data, err := s.Load(ctx, key)
	if err != nil {
		logger.Warn(ctx, "local store read failed", "storage.key", key, "error", err)
		return []T{}
	}

	if len(data) == 0 {
		return []T{}
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		logger.Warn(ctx, "local store holds corrupted data", "storage.key", key, "error", err)
		return []T{}
	}

	if items == nil {
		return []T{}
	}
	return items
}

func save[T any](ctx context.Context, s Storage, key string, items []T) {
	data, err := json.Marshal(items)
	if err != nil {
		logger.Warn(ctx, "local store encode failed", "storage.key", key, "error", err)
		return
	}

	if err := s.Save(ctx, key, data); err != nil {
		logger.Warn(ctx, "local store write failed", "storage.key", key, "error", err)
	}
}

func (s *Store) loadPending(ctx context.Context, address string) []PendingTransaction {
	return load[PendingTransaction](ctx, s.storage, PendingKey(address))
}

func (s *Store) savePending(ctx context.Context, address string, txs []PendingTransaction) {
	save(ctx, s.storage, PendingKey(address), txs)
}

func (s *Store) loadConfirmed(ctx context.Context, address string) []ConfirmedTransaction {
	return load[ConfirmedTransaction](ctx, s.storage, ConfirmedKey(address))
}

func (s *Store) saveConfirmed(ctx context.Context, address string, txs []ConfirmedTransaction) {
	save(ctx, s.storage, ConfirmedKey(address), txs)
}

// Pending returns a fresh snapshot of the pending register of address.
func (s *Store) Pending(ctx context.Context, address string) []PendingTransaction {
	if address == "" {
		return []PendingTransaction{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadPending(ctx, address)
}

// Confirmed returns a fresh snapshot of the confirmed register of address.
func (s *Store) Confirmed(ctx context.Context, address string) []ConfirmedTransaction {
	if address == "" {
		return []ConfirmedTransaction{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.loadConfirmed(ctx, address)
}

// AddPending records tx unless a record with the same hash already exists in
// either register. Repeated calls for one submission leave a single record.
func (s *Store) AddPending(ctx context.Context, address string, tx PendingTransaction) {
	if address == "" || tx.Hash == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.loadPending(ctx, address)
	if slices.ContainsFunc(pending, func(p PendingTransaction) bool { return sameHash(p.Hash, tx.Hash) }) {
		return
	}

	confirmed := s.loadConfirmed(ctx, address)
	if slices.ContainsFunc(confirmed, func(c ConfirmedTransaction) bool { return sameHash(c.Hash, tx.Hash) }) {
		return
	}

	s.savePending(ctx, address, append(pending, tx))
}

// RemovePending deletes the pending record with hash. Missing records are ignored.
func (s *Store) RemovePending(ctx context.Context, address, hash string) {
	if address == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removePending(ctx, address, hash)
}

func (s *Store) removePending(ctx context.Context, address, hash string) {
	pending := s.loadPending(ctx, address)
	filtered := slices.DeleteFunc(slices.Clone(pending), func(p PendingTransaction) bool { return sameHash(p.Hash, hash) })
	if len(filtered) == len(pending) {
		return
	}

	s.savePending(ctx, address, filtered)
}

// MarkConfirmed promotes the pending record with hash into the confirmed
// register, stamped with the current time. A hash that is no longer pending
// is ignored: an external source may already have promoted it.
func (s *Store) MarkConfirmed(ctx context.Context, address, hash string) {
	s.settle(ctx, address, hash, false)
}

// MarkFailed is MarkConfirmed for a transfer whose receipt reported a revert.
func (s *Store) MarkFailed(ctx context.Context, address, hash string) {
	s.settle(ctx, address, hash, true)
}

func (s *Store) settle(ctx context.Context, address, hash string, failed bool) {
	if address == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	pending := s.loadPending(ctx, address)
	idx := slices.IndexFunc(pending, func(p PendingTransaction) bool { return sameHash(p.Hash, hash) })
	if idx < 0 {
		return
	}

	confirmed := s.loadConfirmed(ctx, address)
	if !slices.ContainsFunc(confirmed, func(c ConfirmedTransaction) bool { return sameHash(c.Hash, hash) }) {
		confirmed = append(confirmed, ConfirmedTransaction{
			PendingTransaction: pending[idx],
			ConfirmedAt:        s.cfg.now().UnixMilli(),
			Failed:             failed,
		})
		s.saveConfirmed(ctx, address, confirmed)
	}

	s.removePending(ctx, address, hash)
}

// RemoveConfirmed deletes the confirmed record with hash. Missing records are ignored.
func (s *Store) RemoveConfirmed(ctx context.Context, address, hash string) {
	if address == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	confirmed := s.loadConfirmed(ctx, address)
	filtered := slices.DeleteFunc(slices.Clone(confirmed), func(c ConfirmedTransaction) bool { return sameHash(c.Hash, hash) })
	if len(filtered) == len(confirmed) {
		return
	}

	s.saveConfirmed(ctx, address, filtered)
}

// SweepConfirmed drops confirmed records older than the retention window.
func (s *Store) SweepConfirmed(ctx context.Context, address string) {
	if address == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.cfg.now().Add(-s.cfg.retention).UnixMilli()

	confirmed := s.loadConfirmed(ctx, address)
	kept := slices.DeleteFunc(slices.Clone(confirmed), func(c ConfirmedTransaction) bool { return c.ConfirmedAt <= cutoff })
	if len(kept) == len(confirmed) {
		return
	}

	logger.Debug(ctx, "swept confirmed transactions", "wallet.address", address, "removed", len(confirmed)-len(kept))
	s.saveConfirmed(ctx, address, kept)
}
