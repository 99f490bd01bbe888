package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/walletfeed/internal/network"
	"github.com/gabapcia/walletfeed/internal/pkg/amount"
	"github.com/gabapcia/walletfeed/internal/priceoracle"
)

func priceCommand(p priceoracle.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "price",
		Description: "Fetches the USD price of the native asset, or the fallback price when the feed is unavailable.",
		Usage:       "Prints the current native asset price.",
		Action: func(ctx context.Context, c *cli.Command) error {
			_, err := fmt.Fprintf(out, "1 %s = $%s\n", network.NativeToken().Symbol, amount.Display(p.Current(ctx), 2))
			return err
		},
	}
}
