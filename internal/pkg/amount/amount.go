// Package amount converts between atomic on-chain integers and exact decimal
// amounts. All string output is fixed-point; scientific notation is never
// produced because amounts are handed to exact-precision encoders.
package amount

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// ErrNotPositive is returned when an amount is zero or negative.
	ErrNotPositive = errors.New("amount must be greater than zero")

	// ErrTooPrecise is returned when an amount has more fractional digits
	// than the asset supports.
	ErrTooPrecise = errors.New("amount has more decimals than the asset supports")

	// ErrInvalidPrice is returned when a conversion rate is not positive.
	ErrInvalidPrice = errors.New("price must be greater than zero")
)

// Parse reads a user-entered decimal string and requires it to be positive.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a decimal number", ErrNotPositive, s)
	}

	if !d.IsPositive() {
		return decimal.Zero, ErrNotPositive
	}

	return d, nil
}

// FromAtomic scales an atomic integer (wei, token base units) down by decimals.
// A nil value is treated as zero.
func FromAtomic(v *big.Int, decimals int32) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(v, -decimals)
}

// FromAtomicString is FromAtomic for the base-10 strings explorers return.
// Malformed input yields zero.
func FromAtomicString(s string, decimals int32) decimal.Decimal {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return decimal.Zero
	}
	return FromAtomic(v, decimals)
}

// ToAtomic scales d up by decimals into an exact integer.
func ToAtomic(d decimal.Decimal, decimals int32) (*big.Int, error) {
	scaled := d.Shift(decimals)
	if !scaled.Equal(scaled.Truncate(0)) {
		return nil, fmt.Errorf("%w: %s with %d decimals", ErrTooPrecise, d.String(), decimals)
	}
	return scaled.BigInt(), nil
}

// FiatToNative converts a fiat amount into native units at price, truncating to
// decimals fractional digits. The result carries no trailing zeros.
func FiatToNative(fiat, price decimal.Decimal, decimals int32) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Zero, ErrInvalidPrice
	}

	return fiat.DivRound(price, decimals+2).Truncate(decimals), nil
}

// Display renders d with exactly places fractional digits.
func Display(d decimal.Decimal, places int32) string {
	return d.StringFixed(places)
}
