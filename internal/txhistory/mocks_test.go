package txhistory

import (
	"context"
	"sync"

	"github.com/gabapcia/walletfeed/internal/walletid"
)

// fakeSource is a HistorySource whose answers can be changed between cycles.
type fakeSource struct {
	mu      sync.Mutex
	records map[uint64][]Record
	errs    map[uint64]error
	calls   map[uint64]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		records: make(map[uint64][]Record),
		errs:    make(map[uint64]error),
		calls:   make(map[uint64]int),
	}
}

func (f *fakeSource) set(chainID uint64, records ...Record) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.records[chainID] = records
	delete(f.errs, chainID)
}

func (f *fakeSource) fail(chainID uint64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.errs[chainID] = err
}

func (f *fakeSource) callsTo(chainID uint64) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.calls[chainID]
}

func (f *fakeSource) Transactions(_ context.Context, chainID uint64, _ string) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[chainID]++
	if err := f.errs[chainID]; err != nil {
		return nil, err
	}
	return f.records[chainID], nil
}

// stubIdentity reports a settable wallet status.
type stubIdentity struct {
	mu     sync.Mutex
	status walletid.Status
}

func connected(address string) *stubIdentity {
	return &stubIdentity{status: walletid.Status{Connected: true, Address: address}}
}

func (s *stubIdentity) switchTo(address string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.status = walletid.Status{Connected: address != "", Address: address}
}

func (s *stubIdentity) Status(context.Context) walletid.Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}
