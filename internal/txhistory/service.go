// Package txhistory reconciles the wallet's transaction feed.
//
// Every cycle merges three inputs into one canonical, de-duplicated feed:
// the local pending register, the local confirmed register and the history
// reported by an external source for each configured chain. External sources
// are authoritative: once a hash is reported, local records of it are
// deleted and the hash is never shown as pending again.
package txhistory

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/gabapcia/walletfeed/internal/pkg/logger"
	"github.com/gabapcia/walletfeed/internal/pkg/telemetry"
	"github.com/gabapcia/walletfeed/internal/pkg/types"
	"github.com/gabapcia/walletfeed/internal/pkg/x/chflow"
	"github.com/gabapcia/walletfeed/internal/walletid"
)

// ErrServiceAlreadyStarted is returned if Start is called more than once.
var ErrServiceAlreadyStarted = errors.New("service already started")

// Service is the transaction history reconciler.
type Service interface {
	// Start launches the background poll loop. The first cycle runs
	// immediately. Returns ErrServiceAlreadyStarted if already running.
	Start(ctx context.Context) error

	// Close stops the poll loop and waits for the running cycle to finish.
	// It is safe to call Close even if the service was never started.
	Close()

	// Reconcile runs one cycle synchronously and returns the published feed.
	Reconcile(ctx context.Context) Feed

	// NotifyNewSubmission requests an immediate extra cycle. It never blocks;
	// a request already waiting absorbs new ones.
	NotifyNewSubmission()

	// Feed returns the currently published feed.
	Feed() Feed

	// Updates delivers the feed each time a cycle changes it. Only the most
	// recent unread feed is kept.
	Updates() <-chan Feed
}

type closeFunc func()

// session is the reconciliation state of one wallet address.
type session struct {
	address     string
	observed    types.Set[string] // lower-cased hashes reported by an external source
	feed        Feed
	fingerprint string
	published   bool
}

type service struct {
	mu        sync.Mutex // protects lifecycle state
	isStarted bool
	closeFunc closeFunc

	cycleMu sync.Mutex   // serializes cycles
	stateMu sync.RWMutex // protects sess
	sess    *session

	identity walletid.Service
	store    LocalStore
	source   HistorySource
	cfg      config

	wake    chan struct{}
	updates chan Feed

	tracer         trace.Tracer
	cycles         metric.Int64Counter
	feedUpdates    metric.Int64Counter
	sourceFailures metric.Int64Counter
}

var _ Service = (*service)(nil)

// New creates a reconciler for the identity resolved by identity.
func New(identity walletid.Service, store LocalStore, source HistorySource, opts ...Option) *service {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	meter := telemetry.Meter("txhistory")

	return &service{
		identity:       identity,
		store:          store,
		source:         source,
		cfg:            cfg,
		wake:           make(chan struct{}, 1),
		updates:        make(chan Feed, 1),
		tracer:         telemetry.Tracer("txhistory"),
		cycles:         telemetry.Counter(meter, "txhistory.cycles", "Reconciliation cycles run"),
		feedUpdates:    telemetry.Counter(meter, "txhistory.feed.updates", "Cycles that changed the published feed"),
		sourceFailures: telemetry.Counter(meter, "txhistory.source.failures", "History fetches that failed"),
	}
}

func (s *service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isStarted {
		return ErrServiceAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	go func() {
		defer close(done)
		s.run(ctx)
	}()

	s.closeFunc = func() {
		cancel()
		<-done
	}
	s.isStarted = true
	return nil
}

func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closeFunc != nil {
		s.closeFunc()
	}

	s.closeFunc = nil
	s.isStarted = false
}

func (s *service) run(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.pollInterval)
	defer ticker.Stop()

	for {
		s.Reconcile(ctx)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case <-s.wake:
		}
	}
}

func (s *service) NotifyNewSubmission() {
	chflow.Offer(s.wake, struct{}{})
}

func (s *service) Updates() <-chan Feed {
	return s.updates
}

func (s *service) Feed() Feed {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()

	if s.sess == nil || s.sess.feed == nil {
		return Feed{}
	}
	return slices.Clone(s.sess.feed)
}

func (s *service) Reconcile(ctx context.Context) Feed {
	s.cycleMu.Lock()
	defer s.cycleMu.Unlock()

	ctx, span := s.tracer.Start(ctx, "txhistory.reconcile")
	defer span.End()

	s.cycles.Add(ctx, 1)

	identity := s.identity.Status(ctx)
	sess := s.session(identity.Address)

	if !identity.Connected {
		s.publish(ctx, sess, Feed{})
		return s.Feed()
	}

	span.SetAttributes(attribute.String("wallet.address", identity.Address))
	ctx = logger.Derive(ctx, "wallet.address", identity.Address)

	s.store.SweepConfirmed(ctx, sess.address)
	pending := s.store.Pending(ctx, sess.address)
	results := s.fetch(ctx, sess.address)

	if err := ctx.Err(); err != nil {
		span.SetStatus(codes.Error, "cycle abandoned")
		return s.Feed()
	}

	s.publish(ctx, sess, s.merge(ctx, sess, pending, results))
	return s.Feed()
}

// session returns the state of address, starting a fresh one when the
// wallet changed since the previous cycle.
func (s *service) session(address string) *session {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if s.sess == nil || !strings.EqualFold(s.sess.address, address) {
		s.sess = &session{
			address:  address,
			observed: types.NewSet[string](),
		}
	}
	return s.sess
}

// fetch queries every configured chain concurrently. A failing chain
// contributes no records and never aborts the others.
func (s *service) fetch(ctx context.Context, address string) []chainRecords {
	results := make([]chainRecords, len(s.cfg.chains))

	var g errgroup.Group
	for i, chainID := range s.cfg.chains {
		results[i].chainID = chainID

		g.Go(func() error {
			attrs := attribute.Int64("chain.id", int64(chainID))

			ctx, span := s.tracer.Start(ctx, "txhistory.fetch", trace.WithAttributes(attrs))
			defer span.End()

			records, err := s.source.Transactions(ctx, chainID, address)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				s.sourceFailures.Add(ctx, 1, metric.WithAttributes(attrs))
				logger.Warn(ctx, "history source failed", "chain.id", chainID, "error", err)
				return nil
			}

			results[i].records = records
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// publish replaces the session feed and notifies subscribers unless the
// fingerprint is unchanged.
func (s *service) publish(ctx context.Context, sess *session, feed Feed) {
	fingerprint := feed.Fingerprint()

	s.stateMu.Lock()
	if sess.published && sess.fingerprint == fingerprint {
		s.stateMu.Unlock()
		return
	}

	sess.feed = feed
	sess.fingerprint = fingerprint
	sess.published = true
	s.stateMu.Unlock()

	s.feedUpdates.Add(ctx, 1)
	logger.Debug(ctx, "transaction feed updated", "feed.size", len(feed))
	chflow.Replace(s.updates, slices.Clone(feed))
}
