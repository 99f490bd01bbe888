package txsubmit

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"

	"github.com/gabapcia/walletfeed/internal/txstore"
)

// Denomination is the unit the user typed the amount in.
type Denomination string

const (
	// DenominationNative means the amount is in units of the asset itself.
	DenominationNative Denomination = "native"

	// DenominationFiat means the amount is in USD and must be converted.
	DenominationFiat Denomination = "fiat"
)

// Request is a transfer as entered by the user.
type Request struct {
	ChainID      uint64       `validate:"required"`
	Recipient    string       `validate:"required,eth_addr"`
	Amount       string       `validate:"required,positive_decimal"`
	Asset        string       `validate:"required"`
	Denomination Denomination `validate:"omitempty,oneof=native fiat"`
}

// Quote is a request with its amount resolved into asset units.
type Quote struct {
	ChainID   uint64
	Recipient string
	Asset     string
	Amount    decimal.Decimal // asset units
	Atomic    *big.Int        // asset base units
	FiatValue decimal.NullDecimal
	native    bool
	contract  common.Address
}

// Outcome is how a submitted transfer settled.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeFailed    Outcome = "failed"

	// OutcomeUnknown means the receipt could not be obtained; the transfer
	// stays pending until a history source reports it.
	OutcomeUnknown Outcome = "unknown"
)

// Submission is a transfer accepted by the wallet provider.
type Submission struct {
	Hash      string
	ChainID   uint64
	From      string
	Recipient string
	Amount    string
	Asset     string

	// Settled receives the outcome once the submission is cleared, then closes.
	Settled <-chan Outcome
}

// Receipt is the result of a mined transaction.
type Receipt struct {
	Hash        string
	Success     bool
	BlockNumber uint64
}

// Submitter sends transfers through the wallet provider and watches them.
type Submitter interface {
	SendNative(ctx context.Context, chainID uint64, from, to string, value *big.Int) (string, error)
	SendToken(ctx context.Context, chainID uint64, from string, contract common.Address, to string, value *big.Int) (string, error)
	WaitForReceipt(ctx context.Context, chainID uint64, hash string) (Receipt, error)
}

// Registry is the local store the submission flow writes to.
type Registry interface {
	AddPending(ctx context.Context, address string, tx txstore.PendingTransaction)
	MarkConfirmed(ctx context.Context, address, hash string)
	MarkFailed(ctx context.Context, address, hash string)
}

// Notifier is woken whenever the local registers change.
type Notifier interface {
	NotifyNewSubmission()
}

// PriceProvider reports the USD price of the native asset.
type PriceProvider interface {
	Current(ctx context.Context) decimal.Decimal
}
