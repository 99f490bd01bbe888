package ethereum

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/gabapcia/walletfeed/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/walletfeed/internal/pkg/types"
)

// callRequest is the call object of eth_call.
type callRequest struct {
	To   string `json:"to"`
	Data string `json:"data"`
}

// NativeBalance returns the native balance of address on chainID, in wei.
func (c *client) NativeBalance(ctx context.Context, chainID uint64, address string) (*big.Int, error) {
	conn, err := c.node(chainID)
	if err != nil {
		return nil, err
	}

	var balance types.Hex
	if err := jsonrpc.Call(ctx, conn, &balance, "eth_getBalance", address, "latest"); err != nil {
		return nil, err
	}

	return balance.Big(), nil
}

// TokenBalance returns the ERC-20 balance of address in contract base units.
func (c *client) TokenBalance(ctx context.Context, chainID uint64, contract common.Address, address string) (*big.Int, error) {
	conn, err := c.node(chainID)
	if err != nil {
		return nil, err
	}

	data, err := erc20.Pack("balanceOf", common.HexToAddress(address))
	if err != nil {
		return nil, err
	}

	var out hexutil.Bytes
	req := callRequest{To: contract.Hex(), Data: hexutil.Encode(data)}
	if err := jsonrpc.Call(ctx, conn, &out, "eth_call", req, "latest"); err != nil {
		return nil, err
	}

	// an address without code answers with empty data
	if len(out) == 0 {
		return new(big.Int), nil
	}

	values, err := erc20.Unpack("balanceOf", out)
	if err != nil {
		return nil, err
	}

	balance, ok := values[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("unexpected balanceOf result %T", values[0])
	}

	return balance, nil
}
