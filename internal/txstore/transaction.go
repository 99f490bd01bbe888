package txstore

import "strings"

// Direction tells whether the wallet sent or received a transfer.
type Direction string

const (
	DirectionSend    Direction = "send"
	DirectionReceive Direction = "receive"
)

// PendingTransaction is a transfer submitted by this wallet that no external
// source has confirmed yet.
type PendingTransaction struct {
	Hash         string    `json:"hash"`
	ChainID      uint64    `json:"chainId"`
	Counterparty string    `json:"to"`
	Amount       string    `json:"amount"`
	Symbol       string    `json:"symbol"`
	Direction    Direction `json:"type"`
	SubmittedAt  int64     `json:"timestamp"` // unix seconds
}

// ConfirmedTransaction is a pending transfer the submission layer saw settle
// before any external history source indexed it.
type ConfirmedTransaction struct {
	PendingTransaction

	ConfirmedAt int64 `json:"confirmedAt"` // unix millis

	// Failed is set when the receipt reported a revert.
	Failed bool `json:"failed,omitempty"`
}

func sameHash(a, b string) bool {
	return strings.EqualFold(a, b)
}
