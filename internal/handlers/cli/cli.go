package cli

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/walletfeed/internal/balance"
	"github.com/gabapcia/walletfeed/internal/priceoracle"
	"github.com/gabapcia/walletfeed/internal/txhistory"
	"github.com/gabapcia/walletfeed/internal/txsubmit"
	"github.com/gabapcia/walletfeed/internal/walletid"
)

// Services are the domain services the commands drive.
type Services struct {
	Identity walletid.Service
	Prices   priceoracle.Service
	Balances balance.Service
	History  txhistory.Service
	Submit   txsubmit.Service
}

// Run initializes and executes the walletfeed CLI application.
//
// It registers all available commands:
//
//   - `history`: Reconciles and prints the transaction feed.
//   - `balances`: Prints the valued portfolio.
//   - `price`: Prints the native asset price.
//   - `receive`: Prints the wallet address and its QR code.
//   - `send`: Submits a transfer and waits for it to settle.
func Run(ctx context.Context, svc Services) error {
	return newApp(svc, os.Stdout).Run(ctx, os.Args)
}

func newApp(svc Services, out io.Writer) *cli.Command {
	return &cli.Command{
		EnableShellCompletion: true,
		Name:                  "walletfeed",
		Description:           "Multi-chain EVM wallet: balances, transfers and a reconciled transaction feed.",
		Usage:                 "walletfeed [command] [flags]",
		Commands: []*cli.Command{
			historyCommand(svc.History, out),
			balancesCommand(svc.Balances, out),
			priceCommand(svc.Prices, out),
			receiveCommand(svc.Identity, out),
			sendCommand(svc.Submit, out),
		},
	}
}
