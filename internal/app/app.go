// Package app wires the walletfeed services from the configuration and runs
// the command line.
package app

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/gabapcia/walletfeed/internal/balance"
	"github.com/gabapcia/walletfeed/internal/config"
	"github.com/gabapcia/walletfeed/internal/handlers/cli"
	"github.com/gabapcia/walletfeed/internal/infra/blockchain/ethereum"
	"github.com/gabapcia/walletfeed/internal/infra/explorer/etherscan"
	"github.com/gabapcia/walletfeed/internal/infra/pricefeed/coingecko"
	"github.com/gabapcia/walletfeed/internal/infra/storage/bolt"
	"github.com/gabapcia/walletfeed/internal/infra/storage/redis"
	"github.com/gabapcia/walletfeed/internal/network"
	"github.com/gabapcia/walletfeed/internal/pkg/logger"
	"github.com/gabapcia/walletfeed/internal/pkg/telemetry"
	transporthttp "github.com/gabapcia/walletfeed/internal/pkg/transport/http"
	"github.com/gabapcia/walletfeed/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/walletfeed/internal/priceoracle"
	"github.com/gabapcia/walletfeed/internal/txhistory"
	"github.com/gabapcia/walletfeed/internal/txstore"
	"github.com/gabapcia/walletfeed/internal/txsubmit"
	"github.com/gabapcia/walletfeed/internal/walletid"
)

// Run loads the configuration, builds every service and executes the CLI.
func Run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.Init(ctx, cfg.Telemetry.ServiceName)
		if err != nil {
			return fmt.Errorf("init telemetry: %w", err)
		}
		defer func() {
			if err := shutdown(context.WithoutCancel(ctx)); err != nil {
				logger.Warn(ctx, "telemetry shutdown failed", "error", err)
			}
		}()
	}

	storage, closeStorage, err := newStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	services, err := newServices(cfg, storage)
	if err != nil {
		return err
	}

	return cli.Run(ctx, services)
}

// newStorage picks Redis when an address is configured and the local
// database file otherwise. Both outlive the process.
func newStorage(ctx context.Context, cfg config.Config) (txstore.Storage, func(), error) {
	if cfg.Redis.Addr == "" {
		path, err := cfg.DataFile()
		if err != nil {
			return nil, nil, err
		}

		client, err := bolt.NewClient(path)
		if err != nil {
			return nil, nil, fmt.Errorf("open local storage: %w", err)
		}

		logger.Debug(ctx, "using local storage", "storage.path", client.Path())
		return client, func() {}, nil
	}

	client, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Username, cfg.Redis.Password, cfg.Redis.DB, redis.WithKeyPrefix(cfg.Redis.Prefix))
	if err != nil {
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}

	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn(ctx, "closing redis failed", "error", err)
		}
	}, nil
}

func httpOptions(cfg config.Config) []transporthttp.Option {
	return []transporthttp.Option{
		transporthttp.WithTimeout(cfg.RequestTimeout),
		transporthttp.WithRetryWaitMin(cfg.RetryWaitMin),
		transporthttp.WithRetryWaitMax(cfg.RetryWaitMax),
		transporthttp.WithRequestLogging(cfg.LogRequests()),
	}
}

func newServices(cfg config.Config, storage txstore.Storage) (cli.Services, error) {
	readClient := transporthttp.NewClient(httpOptions(cfg)...).StandardClient()

	nodes := make(map[uint64]jsonrpc.Client, len(network.ChainIDs()))
	for id, url := range cfg.RPCURLs() {
		nodes[id] = jsonrpc.NewClient(readClient, url)
	}

	var chainOpts []ethereum.Option
	if cfg.WalletRPCURL != "" {
		// a retried eth_sendTransaction could sign twice
		sendClient := transporthttp.NewClient(append(httpOptions(cfg), transporthttp.WithRetryMax(0))...).StandardClient()
		chainOpts = append(chainOpts, ethereum.WithWalletProvider(jsonrpc.NewClient(sendClient, cfg.WalletRPCURL)))
	}
	chain := ethereum.NewClient(nodes, chainOpts...)

	identity := walletid.New(
		walletid.WithStaticAddress(cfg.WalletAddress),
		walletid.WithAccountSource(chain),
	)

	fallback, err := decimal.NewFromString(cfg.FallbackPrice)
	if err != nil {
		return cli.Services{}, fmt.Errorf("invalid fallback price: %w", err)
	}

	prices := priceoracle.New(
		coingecko.NewClient(readClient, cfg.PriceAPIURL),
		priceoracle.WithAssetID(network.NativeToken().PriceAssetID),
		priceoracle.WithRefreshInterval(cfg.PriceRefresh),
		priceoracle.WithFallbackPrice(fallback),
	)

	balances := balance.New(identity, chain, prices, balance.WithStaleness(cfg.BalanceStaleness))

	store := txstore.New(storage, txstore.WithRetention(cfg.ConfirmedRetention))

	explorer := etherscan.NewClient(readClient, cfg.ExplorerURLs(),
		etherscan.WithAPIKey(cfg.ExplorerAPIKey),
		etherscan.WithRateLimit(cfg.ExplorerRateLimit),
	)

	history := txhistory.New(identity, store, explorer,
		txhistory.WithPollInterval(cfg.PollInterval),
		txhistory.WithPendingTimeout(cfg.PendingTimeout),
	)

	submit := txsubmit.New(identity, store, chain, prices,
		txsubmit.WithResetDelay(cfg.ResetDelay),
		txsubmit.WithNotifier(history),
		txsubmit.WithOnSettled(func(txsubmit.Submission, txsubmit.Outcome) {
			balances.Invalidate()
		}),
	)

	return cli.Services{
		Identity: identity,
		Prices:   prices,
		Balances: balances,
		History:  history,
		Submit:   submit,
	}, nil
}
