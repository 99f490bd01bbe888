package etherscan

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/walletfeed/internal/txhistory"
)

const address = "0xABC0000000000000000000000000000000000001"

func newServer(t *testing.T, status int, body string, seen *url.Values) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if seen != nil {
			*seen = r.URL.Query()
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestClient_Transactions(t *testing.T) {
	t.Run("maps the txlist result", func(t *testing.T) {
		var query url.Values
		srv := newServer(t, http.StatusOK, `{
			"status": "1",
			"message": "OK",
			"result": [
				{"hash":"0xh1","from":"0xabc0000000000000000000000000000000000001","to":"0xdef","value":"50000000000000000","timeStamp":"1700000000","isError":"0"},
				{"hash":"0xh2","from":"0xdef","to":"0xabc0000000000000000000000000000000000001","value":"1","timeStamp":"1699999999","isError":"1"}
			]
		}`, &query)

		c := NewClient(srv.Client(), map[uint64]string{1: srv.URL + "/api"}, WithAPIKey("secret"))

		records, err := c.Transactions(t.Context(), 1, address)
		require.NoError(t, err)

		assert.Equal(t, []txhistory.Record{
			{Hash: "0xh1", From: "0xabc0000000000000000000000000000000000001", To: "0xdef", Value: "50000000000000000", Timestamp: 1700000000},
			{Hash: "0xh2", From: "0xdef", To: "0xabc0000000000000000000000000000000000001", Value: "1", Timestamp: 1699999999, Failed: true},
		}, records)

		assert.Equal(t, "account", query.Get("module"))
		assert.Equal(t, "txlist", query.Get("action"))
		assert.Equal(t, address, query.Get("address"))
		assert.Equal(t, "desc", query.Get("sort"))
		assert.Equal(t, "20", query.Get("offset"))
		assert.Equal(t, "secret", query.Get("apikey"))
	})

	t.Run("rate limit answers yield an empty list", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"status":"0","message":"NOTOK","result":"Max rate limit reached"}`, nil)
		c := NewClient(srv.Client(), map[uint64]string{1: srv.URL})

		records, err := c.Transactions(t.Context(), 1, address)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("accounts without history yield an empty list", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"status":"0","message":"No transactions found","result":[]}`, nil)
		c := NewClient(srv.Client(), map[uint64]string{1: srv.URL})

		records, err := c.Transactions(t.Context(), 1, address)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("other explorer errors are reported", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"status":"0","message":"NOTOK","result":"Invalid API Key"}`, nil)
		c := NewClient(srv.Client(), map[uint64]string{1: srv.URL})

		_, err := c.Transactions(t.Context(), 1, address)
		assert.ErrorIs(t, err, ErrExplorer)
		assert.Contains(t, err.Error(), "Invalid API Key")
	})

	t.Run("http failures are reported", func(t *testing.T) {
		srv := newServer(t, http.StatusBadGateway, `oops`, nil)
		c := NewClient(srv.Client(), map[uint64]string{1: srv.URL})

		_, err := c.Transactions(t.Context(), 1, address)
		assert.ErrorIs(t, err, ErrExplorer)
	})

	t.Run("unknown chains are refused", func(t *testing.T) {
		c := NewClient(http.DefaultClient, map[uint64]string{})

		_, err := c.Transactions(t.Context(), 56, address)
		assert.ErrorIs(t, err, ErrUnsupportedChain)
	})

	t.Run("waiting for the limiter honors cancellation", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"status":"1","message":"OK","result":[]}`, nil)
		c := NewClient(srv.Client(), map[uint64]string{1: srv.URL}, WithRateLimit(0.001))

		_, err := c.Transactions(t.Context(), 1, address)
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		_, err = c.Transactions(ctx, 1, address)
		assert.Error(t, err)
	})
}
