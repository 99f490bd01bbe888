// Package ethereum talks to EVM nodes and to the wallet provider over
// JSON-RPC. Balances and receipts are read from the node of the chain they
// live on; accounts and transaction signing go through the wallet provider.
package ethereum

import (
	"errors"
	"fmt"
	"time"

	"github.com/gabapcia/walletfeed/internal/balance"
	"github.com/gabapcia/walletfeed/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletfeed/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/walletfeed/internal/txsubmit"
	"github.com/gabapcia/walletfeed/internal/walletid"
)

const (
	// defaultReceiptInterval is close to the block time of the slowest supported chain.
	defaultReceiptInterval = 4 * time.Second
)

var (
	// ErrUnsupportedChain is returned when no node is configured for a chain.
	ErrUnsupportedChain = errors.New("no node configured for chain")

	// ErrNoWalletProvider is returned by wallet operations when no provider is configured.
	ErrNoWalletProvider = errors.New("no wallet provider configured")
)

// client implements the balance, submission and account interfaces on top
// of JSON-RPC connections.
type client struct {
	nodes    map[uint64]jsonrpc.Client // chain id -> node connection
	wallet   jsonrpc.Client            // wallet provider, may be nil
	receipts retry.Retry
}

// Ensure client satisfies every consumer at compile time.
var (
	_ balance.BalanceSource  = (*client)(nil)
	_ txsubmit.Submitter     = (*client)(nil)
	_ walletid.AccountSource = (*client)(nil)
)

type config struct {
	wallet          jsonrpc.Client
	receiptInterval time.Duration
}

// Option configures the client.
type Option func(*config)

// WithWalletProvider sets the connection used for accounts and signing.
func WithWalletProvider(conn jsonrpc.Client) Option {
	return func(c *config) {
		c.wallet = conn
	}
}

// WithReceiptInterval sets how often a pending receipt is polled for.
func WithReceiptInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.receiptInterval = d
		}
	}
}

// NewClient creates a client over the given per-chain node connections.
func NewClient(nodes map[uint64]jsonrpc.Client, opts ...Option) *client {
	cfg := config{receiptInterval: defaultReceiptInterval}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &client{
		nodes:  nodes,
		wallet: cfg.wallet,
		receipts: retry.New(
			retry.WithAttempts(0),
			retry.WithDelay(cfg.receiptInterval),
			retry.WithFixedDelay(),
		),
	}
}

func (c *client) node(chainID uint64) (jsonrpc.Client, error) {
	conn, ok := c.nodes[chainID]
	if !ok || conn == nil {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChain, chainID)
	}
	return conn, nil
}
