package cli

import (
	"context"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/walletfeed/internal/balance"
)

// balancesCommand returns a CLI command that prints the wallet's valued
// balances per network and in total.
//
// Usage example:
//
//	walletfeed balances
func balancesCommand(b balance.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "balances",
		Description: "Reads native and token balances on every supported network and values them in USD.",
		Usage:       "Prints the portfolio of the connected wallet.",
		Action: func(ctx context.Context, c *cli.Command) error {
			return printPortfolio(out, b.Portfolio(ctx))
		},
	}
}
