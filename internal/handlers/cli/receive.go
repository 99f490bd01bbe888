package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/skip2/go-qrcode"
	"github.com/urfave/cli/v3"

	"github.com/gabapcia/walletfeed/internal/walletid"
)

const qrPNGSize = 256

// ErrWalletNotConnected is returned by commands that need a wallet address.
var ErrWalletNotConnected = errors.New("wallet not connected")

// receiveCommand returns a CLI command that shows the address to receive
// funds on, as text and as a QR code.
//
// Usage example:
//
//	walletfeed receive
//	walletfeed receive --png address.png
func receiveCommand(id walletid.Service, out io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "receive",
		Description: "Shows the wallet address and a QR code encoding it. The address is the same on every supported network.",
		Usage:       "Prints the receive address and its QR code.",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "png",
				Usage: "Also write the QR code as a PNG image to this path",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			status := id.Status(ctx)
			if !status.Connected {
				return ErrWalletNotConnected
			}

			qr, err := qrcode.New(status.Address, qrcode.Medium)
			if err != nil {
				return err
			}

			if path := c.String("png"); path != "" {
				if err := qr.WriteFile(qrPNGSize, path); err != nil {
					return err
				}
			}

			_, err = fmt.Fprintf(out, "%s\n%s\n", status.Address, qr.ToSmallString(false))
			return err
		},
	}
}
