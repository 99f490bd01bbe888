// Package txsubmit turns a user-entered transfer into a wallet provider
// submission and registers it in the local transaction store.
//
// Only one submission is in flight at a time. It stays in flight until its
// receipt settles and the reset delay elapses, or until it fails before a
// transaction hash exists, in which case nothing is recorded locally.
package txsubmit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gabapcia/walletfeed/internal/network"
	"github.com/gabapcia/walletfeed/internal/pkg/amount"
	"github.com/gabapcia/walletfeed/internal/pkg/logger"
	"github.com/gabapcia/walletfeed/internal/pkg/validator"
	"github.com/gabapcia/walletfeed/internal/txstore"
	"github.com/gabapcia/walletfeed/internal/walletid"
)

var (
	ErrWalletNotConnected   = errors.New("wallet not connected")
	ErrUnknownChain         = network.ErrUnknownChain
	ErrAssetNotAvailable    = errors.New("asset not available on this network")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrFiatNotSupported     = errors.New("fiat amounts are only supported for the native asset")
	ErrSubmissionInProgress = errors.New("a submission is already in progress")
	ErrSubmissionFailed     = errors.New("submission failed")
)

// Service is the transaction submission flow.
type Service interface {
	// Quote validates req and resolves its amount into asset units without
	// submitting anything.
	Quote(ctx context.Context, req Request) (Quote, error)

	// Submit validates req, sends it through the wallet provider and records
	// it as pending. The receipt is awaited in the background.
	Submit(ctx context.Context, req Request) (Submission, error)

	// InFlight returns the submission that has not been cleared yet, if any.
	InFlight() (Submission, bool)
}

type service struct {
	mu         sync.Mutex
	submitting bool
	inflight   *Submission

	identity  walletid.Service
	registry  Registry
	submitter Submitter
	prices    PriceProvider
	cfg       config
}

var _ Service = (*service)(nil)

// New creates the submission flow.
func New(identity walletid.Service, registry Registry, submitter Submitter, prices PriceProvider, opts ...Option) *service {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &service{
		identity:  identity,
		registry:  registry,
		submitter: submitter,
		prices:    prices,
		cfg:       cfg,
	}
}

func (s *service) Quote(ctx context.Context, req Request) (Quote, error) {
	if err := validator.Validate(req); err != nil {
		return Quote{}, err
	}

	chain, err := network.ChainByID(req.ChainID)
	if err != nil {
		return Quote{}, err
	}

	token, err := network.TokenBySymbol(req.Asset)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %s", ErrAssetNotAvailable, req.Asset)
	}

	if !token.AvailableOn(chain.ID) {
		return Quote{}, fmt.Errorf("%w: %s on %s", ErrAssetNotAvailable, token.Symbol, chain.Name)
	}

	value, err := amount.Parse(req.Amount)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}

	q := Quote{
		ChainID:   chain.ID,
		Recipient: req.Recipient,
		Asset:     token.Symbol,
		native:    token.Native,
	}

	if req.Denomination == DenominationFiat {
		if !token.Native {
			return Quote{}, fmt.Errorf("%w: %s", ErrFiatNotSupported, token.Symbol)
		}

		q.FiatValue = decimal.NewNullDecimal(value)
		if value, err = amount.FiatToNative(value, s.prices.Current(ctx), token.Decimals); err != nil {
			return Quote{}, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
		}

		if !value.IsPositive() {
			return Quote{}, fmt.Errorf("%w: converts to zero %s", ErrInvalidAmount, token.Symbol)
		}
	} else {
		switch {
		case token.FixedUSDPrice.Valid:
			q.FiatValue = decimal.NewNullDecimal(value.Mul(token.FixedUSDPrice.Decimal))
		case token.Native:
			q.FiatValue = decimal.NewNullDecimal(value.Mul(s.prices.Current(ctx)))
		}
	}

	atomic, err := amount.ToAtomic(value, token.Decimals)
	if err != nil {
		return Quote{}, fmt.Errorf("%w: %w", ErrInvalidAmount, err)
	}

	if contract, ok := token.AddressOn(chain.ID); ok {
		q.contract = contract
	}

	q.Amount = value
	q.Atomic = atomic
	return q, nil
}

func (s *service) Submit(ctx context.Context, req Request) (Submission, error) {
	s.mu.Lock()
	if s.submitting {
		s.mu.Unlock()
		return Submission{}, ErrSubmissionInProgress
	}
	s.submitting = true
	s.mu.Unlock()

	sub, err := s.submit(ctx, req)
	if err != nil {
		s.clear()
		return Submission{}, err
	}

	return sub, nil
}

func (s *service) submit(ctx context.Context, req Request) (Submission, error) {
	q, err := s.Quote(ctx, req)
	if err != nil {
		return Submission{}, err
	}

	identity := s.identity.Status(ctx)
	if !identity.Connected {
		return Submission{}, ErrWalletNotConnected
	}

	ctx = logger.Derive(ctx, "wallet.address", identity.Address, "chain.id", q.ChainID)

	var hash string
	if q.native {
		hash, err = s.submitter.SendNative(ctx, q.ChainID, identity.Address, q.Recipient, q.Atomic)
	} else {
		hash, err = s.submitter.SendToken(ctx, q.ChainID, identity.Address, q.contract, q.Recipient, q.Atomic)
	}

	if err != nil {
		logger.Warn(ctx, "transfer rejected", "error", err)
		return Submission{}, fmt.Errorf("%w: %w", ErrSubmissionFailed, err)
	}

	if hash == "" {
		return Submission{}, fmt.Errorf("%w: provider returned no transaction hash", ErrSubmissionFailed)
	}

	settled := make(chan Outcome, 1)
	sub := Submission{
		Hash:      hash,
		ChainID:   q.ChainID,
		From:      identity.Address,
		Recipient: q.Recipient,
		Amount:    q.Amount.String(),
		Asset:     q.Asset,
		Settled:   settled,
	}

	s.mu.Lock()
	s.inflight = &sub
	s.mu.Unlock()

	s.registry.AddPending(ctx, sub.From, txstore.PendingTransaction{
		Hash:         sub.Hash,
		ChainID:      sub.ChainID,
		Counterparty: sub.Recipient,
		Amount:       sub.Amount,
		Symbol:       sub.Asset,
		Direction:    txstore.DirectionSend,
		SubmittedAt:  s.cfg.now().Unix(),
	})
	s.notify()
	logger.Info(ctx, "transfer submitted", "tx.hash", hash)

	go s.settle(context.WithoutCancel(ctx), sub, settled)

	return sub, nil
}

// settle waits for the receipt, records the outcome and clears the
// submission after the reset delay.
func (s *service) settle(ctx context.Context, sub Submission, settled chan<- Outcome) {
	waitCtx, cancel := context.WithTimeout(ctx, s.cfg.receiptTimeout)
	receipt, err := s.submitter.WaitForReceipt(waitCtx, sub.ChainID, sub.Hash)
	cancel()

	outcome := OutcomeUnknown
	switch {
	case err != nil:
		logger.Warn(ctx, "receipt wait failed", "tx.hash", sub.Hash, "error", err)
	case receipt.Success:
		outcome = OutcomeConfirmed
		s.registry.MarkConfirmed(ctx, sub.From, sub.Hash)
		s.notify()
	default:
		outcome = OutcomeFailed
		logger.Warn(ctx, "transfer reverted", "tx.hash", sub.Hash, "block.number", receipt.BlockNumber)
		s.registry.MarkFailed(ctx, sub.From, sub.Hash)
		s.notify()
	}

	if s.cfg.resetDelay > 0 {
		time.Sleep(s.cfg.resetDelay)
	}

	s.clear()
	s.cfg.onSettled(sub, outcome)

	settled <- outcome
	close(settled)
}

func (s *service) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.submitting = false
	s.inflight = nil
}

func (s *service) notify() {
	if s.cfg.notifier != nil {
		s.cfg.notifier.NotifyNewSubmission()
	}
}

func (s *service) InFlight() (Submission, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.inflight == nil {
		return Submission{}, false
	}
	return *s.inflight, true
}
