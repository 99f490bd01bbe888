package ethereum

import (
	"context"
	"encoding/json"
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/gabapcia/walletfeed/internal/pkg/logger"
	"github.com/gabapcia/walletfeed/internal/pkg/resilience/retry"
	"github.com/gabapcia/walletfeed/internal/pkg/transport/jsonrpc"
	"github.com/gabapcia/walletfeed/internal/pkg/types"
	"github.com/gabapcia/walletfeed/internal/txsubmit"
)

// transactionRequest is the transaction object of eth_sendTransaction.
type transactionRequest struct {
	From    string    `json:"from"`
	To      string    `json:"to"`
	Value   types.Hex `json:"value"`
	Data    string    `json:"data,omitempty"`
	ChainID types.Hex `json:"chainId"`
}

// ReceiptResponse is the subset of a transaction receipt the wallet reads.
type ReceiptResponse struct {
	TransactionHash string    `json:"transactionHash"`
	BlockNumber     types.Hex `json:"blockNumber"`
	Status          types.Hex `json:"status"`
}

func (r ReceiptResponse) toReceipt() txsubmit.Receipt {
	return txsubmit.Receipt{
		Hash:        r.TransactionHash,
		Success:     r.Status.Int() == 1,
		BlockNumber: uint64(r.BlockNumber.Int()),
	}
}

func chainHex(chainID uint64) types.Hex {
	return types.HexFromBig(new(big.Int).SetUint64(chainID))
}

func (c *client) send(ctx context.Context, tx transactionRequest) (string, error) {
	if c.wallet == nil {
		return "", ErrNoWalletProvider
	}

	var hash string
	if err := jsonrpc.Call(ctx, c.wallet, &hash, "eth_sendTransaction", tx); err != nil {
		return "", err
	}

	return hash, nil
}

// SendNative asks the wallet provider to transfer value wei from from to to.
func (c *client) SendNative(ctx context.Context, chainID uint64, from, to string, value *big.Int) (string, error) {
	return c.send(ctx, transactionRequest{
		From:    from,
		To:      to,
		Value:   types.HexFromBig(value),
		ChainID: chainHex(chainID),
	})
}

// SendToken asks the wallet provider to call transfer(to, value) on contract.
func (c *client) SendToken(ctx context.Context, chainID uint64, from string, contract common.Address, to string, value *big.Int) (string, error) {
	data, err := erc20.Pack("transfer", common.HexToAddress(to), value)
	if err != nil {
		return "", err
	}

	return c.send(ctx, transactionRequest{
		From:    from,
		To:      contract.Hex(),
		Value:   types.HexFromBig(nil),
		Data:    hexutil.Encode(data),
		ChainID: chainHex(chainID),
	})
}

// WaitForReceipt polls the chain's node until the receipt of hash is
// available, the node rejects the request or ctx is done.
func (c *client) WaitForReceipt(ctx context.Context, chainID uint64, hash string) (txsubmit.Receipt, error) {
	conn, err := c.node(chainID)
	if err != nil {
		return txsubmit.Receipt{}, err
	}

	var receipt ReceiptResponse
	err = c.receipts.Execute(ctx, func() error {
		return receiptPollErr(ctx, hash, jsonrpc.Call(ctx, conn, &receipt, "eth_getTransactionReceipt", hash))
	})
	if err != nil {
		return txsubmit.Receipt{}, err
	}

	return receipt.toReceipt(), nil
}

// receiptPollErr decides whether a failed receipt poll is worth repeating.
// A null result means "not mined yet" and transport failures may clear up,
// but an error answered by the node or a malformed receipt will not change.
func receiptPollErr(ctx context.Context, hash string, err error) error {
	var (
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)

	switch {
	case err == nil, errors.Is(err, jsonrpc.ErrNullResult):
		return err
	case errors.Is(err, jsonrpc.ErrProviderReturnedError), errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return retry.Permanent(err)
	default:
		logger.Debug(ctx, "receipt poll failed", "tx.hash", hash, "error", err)
		return err
	}
}
