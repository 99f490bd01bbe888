// Package coingecko reads spot prices from the CoinGecko simple price API.
package coingecko

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/gabapcia/walletfeed/internal/priceoracle"
)

const (
	currency      = "usd"
	apiKeyHeader  = "x-cg-demo-api-key"
	simplePathFmt = "%s/simple/price"
)

var (
	// ErrUnexpectedStatus is returned for non-2xx answers.
	ErrUnexpectedStatus = errors.New("unexpected http status")

	// ErrPriceNotFound is returned when the answer has no price for the asset.
	ErrPriceNotFound = errors.New("price not found")
)

type client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

var _ priceoracle.PriceSource = (*client)(nil)

// Option configures the client.
type Option func(*client)

// WithAPIKey sends a demo API key with every request.
func WithAPIKey(key string) Option {
	return func(c *client) {
		c.apiKey = key
	}
}

// NewClient creates a client for the API rooted at baseURL,
// e.g. https://api.coingecko.com/api/v3.
func NewClient(httpClient *http.Client, baseURL string, opts ...Option) *client {
	c := &client{
		httpClient: httpClient,
		baseURL:    baseURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchUSDPrice implements priceoracle.PriceSource.
func (c *client) FetchUSDPrice(ctx context.Context, assetID string) (decimal.Decimal, error) {
	u, err := url.Parse(fmt.Sprintf(simplePathFmt, c.baseURL))
	if err != nil {
		return decimal.Zero, err
	}

	q := u.Query()
	q.Set("ids", assetID)
	q.Set("vs_currencies", currency)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return decimal.Zero, err
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(apiKeyHeader, c.apiKey)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrUnexpectedStatus, res.StatusCode)
	}

	// {"ethereum":{"usd":3120.55}}
	var prices map[string]map[string]decimal.Decimal
	if err := json.NewDecoder(res.Body).Decode(&prices); err != nil {
		return decimal.Zero, err
	}

	price, ok := prices[assetID][currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrPriceNotFound, assetID)
	}

	return price, nil
}
