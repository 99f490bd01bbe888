// Package network holds the fixed set of EVM chains and tokens the wallet
// works with.
package network

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

var (
	// ErrUnknownChain is returned when a chain id is not one of the supported chains.
	ErrUnknownChain = errors.New("unknown chain")

	// ErrUnknownToken is returned when a token symbol is not supported.
	ErrUnknownToken = errors.New("unknown token")
)

// Chain ids of the supported networks.
const (
	Ethereum uint64 = 1
	Base     uint64 = 8453
	Arbitrum uint64 = 42161
	Sepolia  uint64 = 11155111
)

// NativeDecimals is the exponent of the native asset on every supported chain.
const NativeDecimals int32 = 18

// Chain describes one EVM network.
type Chain struct {
	ID           uint64
	Name         string
	NativeSymbol string
	Testnet      bool
	ExplorerURL  string
}

// TxURL returns the block explorer page of a transaction on c.
func (c Chain) TxURL(hash string) string {
	return c.ExplorerURL + "/tx/" + hash
}

// Token describes an asset that can be held and sent.
//
// A native token has no contract addresses. A token with a FixedUSDPrice is
// valued without the price oracle.
type Token struct {
	Symbol        string
	Decimals      int32
	Native        bool
	PriceAssetID  string
	FixedUSDPrice decimal.NullDecimal
	addresses     map[uint64]common.Address
}

// AddressOn returns the token contract on chainID.
func (t Token) AddressOn(chainID uint64) (common.Address, bool) {
	addr, ok := t.addresses[chainID]
	return addr, ok
}

// AvailableOn reports whether the token can be used on chainID.
func (t Token) AvailableOn(chainID uint64) bool {
	if t.Native {
		_, err := ChainByID(chainID)
		return err == nil
	}

	_, ok := t.addresses[chainID]
	return ok
}

var chains = []Chain{
	{ID: Ethereum, Name: "Ethereum", NativeSymbol: "ETH", ExplorerURL: "https://etherscan.io"},
	{ID: Base, Name: "Base", NativeSymbol: "ETH", ExplorerURL: "https://basescan.org"},
	{ID: Arbitrum, Name: "Arbitrum", NativeSymbol: "ETH", ExplorerURL: "https://arbiscan.io"},
	{ID: Sepolia, Name: "Sepolia", NativeSymbol: "ETH", Testnet: true, ExplorerURL: "https://sepolia.etherscan.io"},
}

var tokens = []Token{
	{
		Symbol:       "ETH",
		Decimals:     NativeDecimals,
		Native:       true,
		PriceAssetID: "ethereum",
	},
	{
		Symbol:        "USDC",
		Decimals:      6,
		FixedUSDPrice: decimal.NewNullDecimal(decimal.NewFromInt(1)),
		addresses: map[uint64]common.Address{
			Ethereum: common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
			Sepolia:  common.HexToAddress("0x94a9D9AC8a22534E3FaCa9F4e7F2E2cf85d5E4C8"),
			Base:     common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"),
			Arbitrum: common.HexToAddress("0xaf88d065e77c8cC2239327C5EDb3A432268e5831"),
		},
	},
}

// Chains returns the supported chains in their display order.
func Chains() []Chain {
	return slices.Clone(chains)
}

// ChainIDs returns the ids of Chains, in the same order.
func ChainIDs() []uint64 {
	ids := make([]uint64, len(chains))
	for i, c := range chains {
		ids[i] = c.ID
	}
	return ids
}

// ChainByID looks up a supported chain.
func ChainByID(id uint64) (Chain, error) {
	for _, c := range chains {
		if c.ID == id {
			return c, nil
		}
	}
	return Chain{}, fmt.Errorf("%w: %d", ErrUnknownChain, id)
}

// Tokens returns the supported tokens, native asset first.
func Tokens() []Token {
	return slices.Clone(tokens)
}

// TokenBySymbol looks up a token, ignoring case.
func TokenBySymbol(symbol string) (Token, error) {
	for _, t := range tokens {
		if strings.EqualFold(t.Symbol, symbol) {
			return t, nil
		}
	}
	return Token{}, fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
}

// NativeToken returns the native asset shared by every supported chain.
func NativeToken() Token {
	return tokens[0]
}
