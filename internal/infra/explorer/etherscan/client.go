// Package etherscan reads account history from Etherscan-compatible block
// explorer APIs (Etherscan, Basescan, Arbiscan and their testnets).
package etherscan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/time/rate"

	"github.com/gabapcia/walletfeed/internal/pkg/logger"
	"github.com/gabapcia/walletfeed/internal/txhistory"
)

var (
	// ErrUnsupportedChain is returned for chains without a configured endpoint.
	ErrUnsupportedChain = errors.New("no explorer configured for chain")

	// ErrExplorer is returned when the explorer answers with an error status.
	ErrExplorer = errors.New("explorer error")
)

const (
	statusOK         = "1"
	defaultPageSize  = 20
	defaultRateLimit = 4
)

// transaction is one entry of the txlist result.
type transaction struct {
	Hash      string `json:"hash"`
	From      string `json:"from"`
	To        string `json:"to"`
	Value     string `json:"value"`
	TimeStamp string `json:"timeStamp"`
	IsError   string `json:"isError"`
}

// response is the envelope of every explorer answer. Result holds either a
// list of transactions or an error string.
type response struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type client struct {
	httpClient *http.Client
	endpoints  map[uint64]string
	limiters   map[uint64]*rate.Limiter
	apiKey     string
	pageSize   int
}

var _ txhistory.HistorySource = (*client)(nil)

// Option configures the client.
type Option func(*client)

// WithAPIKey authenticates requests.
func WithAPIKey(key string) Option {
	return func(c *client) {
		c.apiKey = key
	}
}

// WithPageSize sets how many recent transactions are requested per chain.
func WithPageSize(n int) Option {
	return func(c *client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRateLimit caps the request rate sent to each explorer, in requests per second.
func WithRateLimit(perSecond float64) Option {
	return func(c *client) {
		for id := range c.limiters {
			c.limiters[id] = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// NewClient creates a client for the explorer API endpoints keyed by chain id.
func NewClient(httpClient *http.Client, endpoints map[uint64]string, opts ...Option) *client {
	c := &client{
		httpClient: httpClient,
		endpoints:  endpoints,
		limiters:   make(map[uint64]*rate.Limiter, len(endpoints)),
		pageSize:   defaultPageSize,
	}
	for id := range endpoints {
		c.limiters[id] = rate.NewLimiter(defaultRateLimit, 1)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) requestURL(endpoint, address string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("module", "account")
	q.Set("action", "txlist")
	q.Set("address", address)
	q.Set("startblock", "0")
	q.Set("endblock", "99999999")
	q.Set("sort", "desc")
	q.Set("page", "1")
	q.Set("offset", strconv.Itoa(c.pageSize))
	if c.apiKey != "" {
		q.Set("apikey", c.apiKey)
	}
	u.RawQuery = q.Encode()

	return u.String(), nil
}

// Transactions implements txhistory.HistorySource.
//
// "No transactions found" and rate-limit answers yield an empty list.
func (c *client) Transactions(ctx context.Context, chainID uint64, address string) ([]txhistory.Record, error) {
	endpoint, ok := c.endpoints[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChain, chainID)
	}

	if err := c.limiters[chainID].Wait(ctx); err != nil {
		return nil, err
	}

	reqURL, err := c.requestURL(endpoint, address)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, fmt.Errorf("%w: http status %d", ErrExplorer, res.StatusCode)
	}

	var body response
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, err
	}

	if body.Status != statusOK {
		return c.handleNotOK(ctx, chainID, body)
	}

	var txs []transaction
	if err := json.Unmarshal(body.Result, &txs); err != nil {
		return nil, fmt.Errorf("%w: unexpected result: %w", ErrExplorer, err)
	}

	records := make([]txhistory.Record, 0, len(txs))
	for _, tx := range txs {
		ts, _ := strconv.ParseInt(tx.TimeStamp, 10, 64)
		records = append(records, txhistory.Record{
			Hash:      tx.Hash,
			From:      tx.From,
			To:        tx.To,
			Value:     tx.Value,
			Timestamp: ts,
			Failed:    tx.IsError != "" && tx.IsError != "0",
		})
	}

	return records, nil
}

func (c *client) handleNotOK(ctx context.Context, chainID uint64, body response) ([]txhistory.Record, error) {
	var detail string
	_ = json.Unmarshal(body.Result, &detail)

	switch {
	case strings.Contains(strings.ToLower(body.Message), "rate limit"),
		strings.Contains(strings.ToLower(detail), "rate limit"):
		logger.Warn(ctx, "explorer rate limit reached", "chain.id", chainID)
		return []txhistory.Record{}, nil
	case strings.Contains(strings.ToLower(body.Message), "no transactions found"):
		return []txhistory.Record{}, nil
	}

	return nil, fmt.Errorf("%w: %s: %s", ErrExplorer, body.Message, detail)
}
