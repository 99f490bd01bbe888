package network

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChains(t *testing.T) {
	assert.Equal(t, []uint64{1, 8453, 42161, 11155111}, ChainIDs())

	c := Chains()
	c[0].Name = "mutated"
	assert.Equal(t, "Ethereum", Chains()[0].Name, "callers must not mutate the registry")
}

func TestChainByID(t *testing.T) {
	t.Run("known chain", func(t *testing.T) {
		c, err := ChainByID(Base)
		require.NoError(t, err)
		assert.Equal(t, "Base", c.Name)
		assert.Equal(t, "ETH", c.NativeSymbol)
		assert.Equal(t, "https://basescan.org/tx/0xabc", c.TxURL("0xabc"))
	})

	t.Run("unknown chain", func(t *testing.T) {
		_, err := ChainByID(56)
		assert.ErrorIs(t, err, ErrUnknownChain)
	})
}

func TestTokenBySymbol(t *testing.T) {
	t.Run("case insensitive lookup", func(t *testing.T) {
		tok, err := TokenBySymbol("usdc")
		require.NoError(t, err)
		assert.Equal(t, "USDC", tok.Symbol)
		assert.Equal(t, int32(6), tok.Decimals)
		assert.True(t, tok.FixedUSDPrice.Valid)
	})

	t.Run("unknown token", func(t *testing.T) {
		_, err := TokenBySymbol("DOGE")
		assert.ErrorIs(t, err, ErrUnknownToken)
	})
}

func TestToken_AddressOn(t *testing.T) {
	usdc, err := TokenBySymbol("USDC")
	require.NoError(t, err)

	addr, ok := usdc.AddressOn(Base)
	require.True(t, ok)
	assert.Equal(t, common.HexToAddress("0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913"), addr)

	_, ok = usdc.AddressOn(10)
	assert.False(t, ok)

	_, ok = NativeToken().AddressOn(Ethereum)
	assert.False(t, ok, "the native asset has no contract")
}

func TestToken_AvailableOn(t *testing.T) {
	usdc, _ := TokenBySymbol("USDC")
	eth := NativeToken()

	for _, id := range ChainIDs() {
		assert.True(t, eth.AvailableOn(id))
		assert.True(t, usdc.AvailableOn(id))
	}

	assert.False(t, eth.AvailableOn(56))
	assert.False(t, usdc.AvailableOn(56))
}
