package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/gabapcia/walletfeed/internal/balance"
	"github.com/gabapcia/walletfeed/internal/network"
	"github.com/gabapcia/walletfeed/internal/pkg/amount"
	"github.com/gabapcia/walletfeed/internal/txhistory"
	"github.com/gabapcia/walletfeed/internal/txstore"
)

const timeLayout = "2006-01-02 15:04"

// shortAddress renders 0x742d35Cc6634C0532925a3b844Bc454e4438f44e as 0x742d…f44e.
func shortAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "…" + address[len(address)-4:]
}

func chainName(id uint64) string {
	if chain, err := network.ChainByID(id); err == nil {
		return chain.Name
	}
	return fmt.Sprintf("chain %d", id)
}

func txURL(id uint64, hash string) string {
	if chain, err := network.ChainByID(id); err == nil {
		return chain.TxURL(hash)
	}
	return hash
}

func printFeed(out io.Writer, feed txhistory.Feed) error {
	if len(feed) == 0 {
		_, err := fmt.Fprintln(out, "No transactions yet.")
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tTYPE\tAMOUNT\tCOUNTERPARTY\tNETWORK\tSTATUS\tLINK")

	for _, tx := range feed {
		direction, sign := "Received", "+"
		if tx.Direction == txstore.DirectionSend {
			direction, sign = "Sent", "-"
		}

		fmt.Fprintf(w, "%s\t%s\t%s%s %s\t%s\t%s\t%s\t%s\n",
			time.Unix(tx.Timestamp, 0).UTC().Format(timeLayout),
			direction,
			sign, tx.Amount, tx.Symbol,
			shortAddress(tx.Counterparty),
			chainName(tx.ChainID),
			tx.Status,
			txURL(tx.ChainID, tx.Hash),
		)
	}

	return w.Flush()
}

func printPortfolio(out io.Writer, p balance.Portfolio) error {
	if !p.Connected {
		_, err := fmt.Fprintln(out, "Wallet not connected.")
		return err
	}

	fmt.Fprintf(out, "Wallet   %s\n", p.Address)
	fmt.Fprintf(out, "Total    $%s\n\n", amount.Display(p.USDValue, 2))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NETWORK\tASSET\tBALANCE\tVALUE (USD)")

	for _, chain := range p.Chains {
		note := ""
		if chain.Incomplete {
			note = " (partial)"
		}

		if len(chain.Holdings) == 0 {
			fmt.Fprintf(w, "%s%s\t-\t0\t%s\n", chain.ChainName, note, amount.Display(chain.USDValue, 2))
			continue
		}

		for _, h := range chain.Holdings {
			fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n", chain.ChainName, note, h.Symbol, amount.Display(h.Amount, 6), amount.Display(h.USDValue, 2))
		}
	}

	for _, token := range network.Tokens() {
		fmt.Fprintf(w, "All networks\t%s\t%s\t\n", token.Symbol, amount.Display(p.Total(token.Symbol), 6))
	}

	return w.Flush()
}
