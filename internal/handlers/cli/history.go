package cli

import (
	"context"
	"io"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/walletfeed/internal/pkg/x/chflow"
	"github.com/gabapcia/walletfeed/internal/txhistory"
)

// historyCommand returns a CLI command that reconciles the transaction feed.
//
// Usage example:
//
//	walletfeed history          # keep polling, print on every change
//	walletfeed history --once   # one reconciliation cycle
//
// Without --once the process runs until it receives an interrupt (SIGINT or SIGTERM).
func historyCommand(h txhistory.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "history",
		Description: "Merges on-chain history with locally tracked transfers and prints the feed.",
		Usage:       "Prints the transaction feed. Keeps watching for changes until Ctrl+C unless --once is set.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "once",
				Usage: "Run a single reconciliation cycle and exit",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Bool("once") {
				return printFeed(out, h.Reconcile(ctx))
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := h.Start(ctx); err != nil {
				return err
			}
			defer h.Close()

			for {
				feed, ok := chflow.Receive(ctx, h.Updates())
				if !ok {
					return nil
				}

				if err := printFeed(out, feed); err != nil {
					return err
				}
			}
		},
	}
}
