// Package config loads walletfeed settings from the environment.
//
// Every variable is prefixed with WALLETFEED_. A .env file in the working
// directory is read first when present; real environment variables win.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/gabapcia/walletfeed/internal/network"
	"github.com/gabapcia/walletfeed/internal/pkg/validator"
)

// Prefix is the environment variable prefix shared by every setting.
const Prefix = "WALLETFEED"

// Chain holds the endpoints used for one network.
type Chain struct {
	RPCURL      string `envconfig:"RPC_URL" validate:"required,url"`
	ExplorerURL string `envconfig:"EXPLORER_URL" validate:"required,url"`
}

// Redis enables the Redis storage backend when Addr is set.
type Redis struct {
	Addr     string `envconfig:"ADDR"`
	Username string `envconfig:"USERNAME"`
	Password string `envconfig:"PASSWORD"`
	DB       int    `envconfig:"DB" validate:"gte=0"`
	Prefix   string `envconfig:"PREFIX" default:"walletfeed"`
}

// Telemetry configures the OpenTelemetry exporters.
type Telemetry struct {
	Enabled     bool   `envconfig:"ENABLED" default:"false"`
	ServiceName string `envconfig:"SERVICE_NAME" default:"walletfeed"`
}

// Config is the complete process configuration.
type Config struct {
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	// WalletAddress pins the identity. When empty the wallet provider at
	// WalletRPCURL is asked for its accounts.
	WalletAddress string `envconfig:"WALLET_ADDRESS" validate:"omitempty,eth_addr"`
	WalletRPCURL  string `envconfig:"WALLET_RPC_URL" validate:"required_without=WalletAddress,omitempty,url"`

	Ethereum Chain `envconfig:"ETHEREUM"`
	Base     Chain `envconfig:"BASE"`
	Arbitrum Chain `envconfig:"ARBITRUM"`
	Sepolia  Chain `envconfig:"SEPOLIA"`

	ExplorerAPIKey    string  `envconfig:"EXPLORER_API_KEY"`
	ExplorerRateLimit float64 `envconfig:"EXPLORER_RATE_LIMIT" default:"4" validate:"gt=0"`

	PriceAPIURL   string `envconfig:"PRICE_API_URL" default:"https://api.coingecko.com/api/v3" validate:"url"`
	FallbackPrice string `envconfig:"FALLBACK_PRICE" default:"2500" validate:"positive_decimal"`

	PollInterval       time.Duration `envconfig:"POLL_INTERVAL" default:"15s" validate:"gt=0"`
	PriceRefresh       time.Duration `envconfig:"PRICE_REFRESH" default:"30s" validate:"gt=0"`
	BalanceStaleness   time.Duration `envconfig:"BALANCE_STALENESS" default:"30s" validate:"gte=0"`
	ConfirmedRetention time.Duration `envconfig:"CONFIRMED_RETENTION" default:"1h" validate:"gt=0"`
	PendingTimeout     time.Duration `envconfig:"PENDING_TIMEOUT" default:"24h" validate:"gt=0"`
	ResetDelay         time.Duration `envconfig:"RESET_DELAY" default:"3s" validate:"gte=0"`
	RequestTimeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"10s" validate:"gt=0"`
	RetryWaitMin       time.Duration `envconfig:"RETRY_WAIT_MIN" default:"1s" validate:"gt=0"`
	RetryWaitMax       time.Duration `envconfig:"RETRY_WAIT_MAX" default:"5s" validate:"gtefield=RetryWaitMin"`

	// StoragePath is the local database used when Redis is not configured.
	// Defaults to walletfeed/walletfeed.db under the user configuration directory.
	StoragePath string `envconfig:"STORAGE_PATH"`

	Redis     Redis     `envconfig:"REDIS"`
	Telemetry Telemetry `envconfig:"TELEMETRY"`
}

// defaults fills the per-chain endpoints, which envconfig cannot default on
// nested structs shared by several fields.
func defaults() Config {
	return Config{
		Ethereum: Chain{RPCURL: "https://ethereum-rpc.publicnode.com", ExplorerURL: "https://api.etherscan.io/api"},
		Base:     Chain{RPCURL: "https://mainnet.base.org", ExplorerURL: "https://api.basescan.org/api"},
		Arbitrum: Chain{RPCURL: "https://arb1.arbitrum.io/rpc", ExplorerURL: "https://api.arbiscan.io/api"},
		Sepolia:  Chain{RPCURL: "https://ethereum-sepolia-rpc.publicnode.com", ExplorerURL: "https://api-sepolia.etherscan.io/api"},
	}
}

// Load reads the optional .env file, then the environment, and validates the result.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("reading .env: %w", err)
	}

	return FromEnv()
}

// FromEnv builds the configuration from the process environment only.
func FromEnv() (Config, error) {
	cfg := defaults()
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return Config{}, err
	}

	if err := validator.Validate(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// LogRequests reports whether outgoing HTTP requests are logged.
func (c Config) LogRequests() bool {
	return c.LogLevel == "debug"
}

// DataFile resolves the local database path.
func (c Config) DataFile() (string, error) {
	if c.StoragePath != "" {
		return c.StoragePath, nil
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate the user config directory: %w", err)
	}

	return filepath.Join(dir, "walletfeed", "walletfeed.db"), nil
}

// Chains maps every supported chain id to its configured endpoints.
func (c Config) Chains() map[uint64]Chain {
	return map[uint64]Chain{
		network.Ethereum: c.Ethereum,
		network.Base:     c.Base,
		network.Arbitrum: c.Arbitrum,
		network.Sepolia:  c.Sepolia,
	}
}

// RPCURLs maps every supported chain id to its JSON-RPC endpoint.
func (c Config) RPCURLs() map[uint64]string {
	urls := make(map[uint64]string, 4)
	for id, ch := range c.Chains() {
		urls[id] = ch.RPCURL
	}
	return urls
}

// ExplorerURLs maps every supported chain id to its explorer API endpoint.
func (c Config) ExplorerURLs() map[uint64]string {
	urls := make(map[uint64]string, 4)
	for id, ch := range c.Chains() {
		urls[id] = ch.ExplorerURL
	}
	return urls
}
