package types

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Hex is a JSON-RPC quantity: a "0x"-prefixed hexadecimal number such as a
// block number, a receipt status or a wei amount that may exceed 64 bits.
type Hex string

// HexFromBig encodes n as a quantity. A nil n encodes as zero.
func HexFromBig(n *big.Int) Hex {
	if n == nil {
		return "0x0"
	}
	return Hex(hexutil.EncodeBig(n))
}

func validateHex(s string) error {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return fmt.Errorf("hex string must start with 0x")
	}

	if _, ok := new(big.Int).SetString(s[2:], 16); !ok {
		return fmt.Errorf("invalid hexadecimal value: %q", s)
	}

	return nil
}

// MarshalJSON encodes the Hex as a JSON string.
func (h Hex) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(h))
}

// UnmarshalJSON parses and validates a JSON-encoded hexadecimal string.
func (h *Hex) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("invalid hex string: %w", err)
	}

	if err := validateHex(s); err != nil {
		return err
	}

	*h = Hex(s)
	return nil
}

// Big returns the decoded value. Invalid input decodes as zero.
func (h Hex) Big() *big.Int {
	if len(h) < 3 {
		return new(big.Int)
	}

	v, ok := new(big.Int).SetString(string(h)[2:], 16)
	if !ok {
		return new(big.Int)
	}
	return v
}

// Int returns the value as an int64, or zero if it is invalid or does not fit.
func (h Hex) Int() int64 {
	v := h.Big()
	if !v.IsInt64() {
		return 0
	}
	return v.Int64()
}
