package ethereum

import (
	"context"

	"github.com/gabapcia/walletfeed/internal/pkg/transport/jsonrpc"
)

// Accounts lists the accounts the wallet provider exposes, selected first.
func (c *client) Accounts(ctx context.Context) ([]string, error) {
	if c.wallet == nil {
		return nil, ErrNoWalletProvider
	}

	var accounts []string
	if err := jsonrpc.Call(ctx, c.wallet, &accounts, "eth_accounts"); err != nil {
		return nil, err
	}

	return accounts, nil
}
