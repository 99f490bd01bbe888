package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabapcia/walletfeed/internal/network"
	"github.com/gabapcia/walletfeed/internal/pkg/validator"
)

const testAddress = "0x742d35Cc6634C0532925a3b844Bc454e4438f44e"

func TestFromEnv(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("WALLETFEED_WALLET_ADDRESS", testAddress)

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, "info", cfg.LogLevel)
		assert.Equal(t, 15*time.Second, cfg.PollInterval)
		assert.Equal(t, 30*time.Second, cfg.PriceRefresh)
		assert.Equal(t, time.Hour, cfg.ConfirmedRetention)
		assert.Equal(t, 24*time.Hour, cfg.PendingTimeout)
		assert.Equal(t, 3*time.Second, cfg.ResetDelay)
		assert.Equal(t, time.Second, cfg.RetryWaitMin)
		assert.Equal(t, 5*time.Second, cfg.RetryWaitMax)
		assert.False(t, cfg.LogRequests())
		assert.Equal(t, "2500", cfg.FallbackPrice)
		assert.Equal(t, "https://api.etherscan.io/api", cfg.Ethereum.ExplorerURL)
		assert.Equal(t, "walletfeed", cfg.Redis.Prefix)
		assert.False(t, cfg.Telemetry.Enabled)
	})

	t.Run("reads overrides from the environment", func(t *testing.T) {
		t.Setenv("WALLETFEED_WALLET_ADDRESS", testAddress)
		t.Setenv("WALLETFEED_POLL_INTERVAL", "5s")
		t.Setenv("WALLETFEED_BASE_RPC_URL", "http://localhost:8545")
		t.Setenv("WALLETFEED_REDIS_ADDR", "localhost:6379")
		t.Setenv("WALLETFEED_TELEMETRY_ENABLED", "true")

		cfg, err := FromEnv()
		require.NoError(t, err)

		assert.Equal(t, 5*time.Second, cfg.PollInterval)
		assert.Equal(t, "http://localhost:8545", cfg.Base.RPCURL)
		assert.Equal(t, "https://api.basescan.org/api", cfg.Base.ExplorerURL)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
		assert.True(t, cfg.Telemetry.Enabled)
	})

	t.Run("requires an identity source", func(t *testing.T) {
		_, err := FromEnv()
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("accepts a wallet provider instead of an address", func(t *testing.T) {
		t.Setenv("WALLETFEED_WALLET_RPC_URL", "http://localhost:8545")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Empty(t, cfg.WalletAddress)
	})

	t.Run("rejects a malformed address", func(t *testing.T) {
		t.Setenv("WALLETFEED_WALLET_ADDRESS", "0x1234")

		_, err := FromEnv()
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("rejects a non positive fallback price", func(t *testing.T) {
		t.Setenv("WALLETFEED_WALLET_ADDRESS", testAddress)
		t.Setenv("WALLETFEED_FALLBACK_PRICE", "0")

		_, err := FromEnv()
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("rejects a retry wait range that ends before it starts", func(t *testing.T) {
		t.Setenv("WALLETFEED_WALLET_ADDRESS", testAddress)
		t.Setenv("WALLETFEED_RETRY_WAIT_MIN", "10s")
		t.Setenv("WALLETFEED_RETRY_WAIT_MAX", "2s")

		_, err := FromEnv()
		assert.ErrorIs(t, err, validator.ErrValidationFailed)
	})

	t.Run("logs requests at debug level", func(t *testing.T) {
		t.Setenv("WALLETFEED_WALLET_ADDRESS", testAddress)
		t.Setenv("WALLETFEED_LOG_LEVEL", "debug")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.True(t, cfg.LogRequests())
	})

	t.Run("surfaces parse errors", func(t *testing.T) {
		t.Setenv("WALLETFEED_WALLET_ADDRESS", testAddress)
		t.Setenv("WALLETFEED_POLL_INTERVAL", "soon")

		_, err := FromEnv()
		require.Error(t, err)
		assert.NotErrorIs(t, err, validator.ErrValidationFailed)
	})
}

func TestConfig_Chains(t *testing.T) {
	cfg := defaults()

	for _, id := range network.ChainIDs() {
		assert.NotEmpty(t, cfg.RPCURLs()[id], "chain %d", id)
		assert.NotEmpty(t, cfg.ExplorerURLs()[id], "chain %d", id)
	}
	assert.Equal(t, "https://api-sepolia.etherscan.io/api", cfg.ExplorerURLs()[network.Sepolia])
}

func TestConfig_DataFile(t *testing.T) {
	t.Run("defaults to the user config directory", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv("XDG_CONFIG_HOME", dir)
		t.Setenv("HOME", dir)
		t.Setenv("AppData", dir)

		path, err := Config{}.DataFile()
		require.NoError(t, err)

		base, err := os.UserConfigDir()
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(base, "walletfeed", "walletfeed.db"), path)
	})

	t.Run("honors an explicit path", func(t *testing.T) {
		t.Setenv("WALLETFEED_WALLET_ADDRESS", testAddress)
		t.Setenv("WALLETFEED_STORAGE_PATH", "/var/lib/walletfeed/state.db")

		cfg, err := FromEnv()
		require.NoError(t, err)

		path, err := cfg.DataFile()
		require.NoError(t, err)
		assert.Equal(t, "/var/lib/walletfeed/state.db", path)
	})
}
