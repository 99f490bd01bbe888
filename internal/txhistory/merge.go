package txhistory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/gabapcia/walletfeed/internal/network"
	"github.com/gabapcia/walletfeed/internal/pkg/amount"
	"github.com/gabapcia/walletfeed/internal/pkg/logger"
	"github.com/gabapcia/walletfeed/internal/txstore"
)

// externalAmountPlaces is the precision used to display externally observed amounts.
const externalAmountPlaces = 6

// chainRecords is the result of one history fetch. Failed fetches carry no records.
type chainRecords struct {
	chainID uint64
	records []Record
}

// merge builds the feed of one cycle. Local records of any hash an external
// source has reported are deleted before the feed is returned.
func (s *service) merge(ctx context.Context, sess *session, pending []txstore.PendingTransaction, results []chainRecords) Feed {
	feed := make(Feed, 0, len(pending))

	for _, res := range results {
		for _, r := range res.records {
			if r.Failed {
				continue
			}

			sess.observed.Add(strings.ToLower(r.Hash))
			feed = append(feed, externalEntry(res.chainID, sess.address, r))
		}
	}

	now := s.cfg.now()
	for _, p := range pending {
		if sess.observed.Has(strings.ToLower(p.Hash)) {
			logger.Info(ctx, "pending transaction indexed externally", "tx.hash", p.Hash, "chain.id", p.ChainID)
			s.store.RemovePending(ctx, sess.address, p.Hash)
			continue
		}

		feed = append(feed, s.pendingEntry(p, now))
	}

	for _, c := range s.store.Confirmed(ctx, sess.address) {
		if c.Hash == "" || c.Direction == "" {
			continue
		}

		if sess.observed.Has(strings.ToLower(c.Hash)) {
			s.store.RemoveConfirmed(ctx, sess.address, c.Hash)
			continue
		}

		feed = append(feed, confirmedEntry(c, now))
	}

	slices.SortStableFunc(feed, func(a, b Transaction) int {
		return cmp.Compare(b.Timestamp, a.Timestamp)
	})

	if len(feed) > s.cfg.feedLimit {
		feed = feed[:s.cfg.feedLimit]
	}

	return feed
}

func externalEntry(chainID uint64, address string, r Record) Transaction {
	direction, counterparty := txstore.DirectionReceive, r.From
	if strings.EqualFold(r.From, address) {
		direction, counterparty = txstore.DirectionSend, r.To
	}

	symbol := network.NativeToken().Symbol
	if chain, err := network.ChainByID(chainID); err == nil {
		symbol = chain.NativeSymbol
	}

	return Transaction{
		ID:           fmt.Sprintf("%d-%s", chainID, r.Hash),
		Direction:    direction,
		Amount:       amount.Display(amount.FromAtomicString(r.Value, network.NativeDecimals), externalAmountPlaces),
		Symbol:       symbol,
		Counterparty: counterparty,
		Timestamp:    r.Timestamp,
		Status:       StatusConfirmed,
		Hash:         r.Hash,
		ChainID:      chainID,
	}
}

func (s *service) pendingEntry(p txstore.PendingTransaction, now time.Time) Transaction {
	status := StatusPending
	if p.SubmittedAt > 0 && now.Sub(time.Unix(p.SubmittedAt, 0)) > s.cfg.pendingTimeout {
		status = StatusRejected
	}

	return Transaction{
		ID:           "pending-" + p.Hash,
		Direction:    p.Direction,
		Amount:       p.Amount,
		Symbol:       p.Symbol,
		Counterparty: p.Counterparty,
		Timestamp:    p.SubmittedAt,
		Status:       status,
		Hash:         p.Hash,
		ChainID:      p.ChainID,
	}
}

func confirmedEntry(c txstore.ConfirmedTransaction, now time.Time) Transaction {
	tx := Transaction{
		ID:           "confirmed-" + c.Hash,
		Direction:    c.Direction,
		Amount:       cmp.Or(c.Amount, "0"),
		Symbol:       cmp.Or(c.Symbol, network.NativeToken().Symbol),
		Counterparty: c.Counterparty,
		Timestamp:    cmp.Or(c.SubmittedAt, c.ConfirmedAt/1000, now.Unix()),
		Status:       StatusConfirmed,
		Hash:         c.Hash,
		ChainID:      cmp.Or(c.ChainID, network.Ethereum),
	}

	if c.Failed {
		tx.Status = StatusFailed
	}
	return tx
}
