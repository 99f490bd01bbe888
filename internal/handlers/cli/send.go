package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v3"

	"github.com/gabapcia/walletfeed/internal/network"
	"github.com/gabapcia/walletfeed/internal/pkg/amount"
	"github.com/gabapcia/walletfeed/internal/txsubmit"
)

// sendCommand returns a CLI command that submits a transfer through the
// wallet provider.
//
// Usage example:
//
//	walletfeed send --chain 8453 --to 0x742d... --amount 12.5 --asset USDC
//	walletfeed send --chain 1 --to 0x742d... --amount 100 --fiat
func sendCommand(s txsubmit.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "send",
		Description: "Sends ETH or USDC. With --fiat the amount is read as USD and converted at the current price.",
		Usage:       "Submits a transfer and waits for it to settle unless --no-wait is set.",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "chain",
				Usage: "Chain id of the network to send on (1, 8453, 42161, 11155111)",
				Value: network.Ethereum,
			},
			&cli.StringFlag{
				Name:     "to",
				Usage:    "Recipient address",
				Required: true,
			},
			&cli.StringFlag{
				Name:     "amount",
				Usage:    "Amount to send, in asset units or USD with --fiat",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "asset",
				Usage: "Asset symbol (ETH, USDC)",
				Value: network.NativeToken().Symbol,
			},
			&cli.BoolFlag{
				Name:  "fiat",
				Usage: "Read the amount as USD (native asset only)",
			},
			&cli.BoolFlag{
				Name:  "no-wait",
				Usage: "Return as soon as the transfer is submitted",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			req := txsubmit.Request{
				ChainID:      c.Uint64("chain"),
				Recipient:    c.String("to"),
				Amount:       c.String("amount"),
				Asset:        c.String("asset"),
				Denomination: txsubmit.DenominationNative,
			}
			if c.Bool("fiat") {
				req.Denomination = txsubmit.DenominationFiat
			}

			quote, err := s.Quote(ctx, req)
			if err != nil {
				return err
			}

			summary := fmt.Sprintf("Sending %s %s to %s on %s", quote.Amount.String(), quote.Asset, quote.Recipient, chainName(quote.ChainID))
			if quote.FiatValue.Valid {
				summary += fmt.Sprintf(" (≈ $%s)", amount.Display(quote.FiatValue.Decimal, 2))
			}
			fmt.Fprintln(out, summary)

			sub, err := s.Submit(ctx, req)
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "Submitted %s\n%s\n", sub.Hash, txURL(sub.ChainID, sub.Hash))

			if c.Bool("no-wait") {
				return nil
			}

			select {
			case <-ctx.Done():
				return ctx.Err()
			case outcome := <-sub.Settled:
				_, err := fmt.Fprintf(out, "Transfer %s\n", outcome)
				return err
			}
		},
	}
}
