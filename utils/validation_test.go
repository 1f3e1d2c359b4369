package utils

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"checksummed", "0x742d35Cc6634C0532925a3b844Bc454e4438f44e", "0x742d35cc6634c0532925a3b844bc454e4438f44e", false},
		{"surrounding spaces", "  0x742d35cc6634c0532925a3b844bc454e4438f44e ", "0x742d35cc6634c0532925a3b844bc454e4438f44e", false},
		{"missing prefix", "742d35cc6634c0532925a3b844bc454e4438f44e", "", true},
		{"too short", "0x742d35cc", "", true},
		{"too long", "0x742d35cc6634c0532925a3b844bc454e4438f44e00", "", true},
		{"non hex", "0x742d35cc6634c0532925a3b844bc454e4438f4zz", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeAddress(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				assert.False(t, IsValidAddress(tt.input))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, IsValidAddress(tt.input))
		})
	}
}

func TestNormalizeAddressIdempotent(t *testing.T) {
	addrs := []string{
		"0x742d35Cc6634C0532925a3b844Bc454e4438f44e",
		"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		"0x0000000000000000000000000000000000000000",
		"0xFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF",
	}
	for _, a := range addrs {
		once, err := NormalizeAddress(a)
		require.NoError(t, err)
		twice, err := NormalizeAddress(once)
		require.NoError(t, err)
		assert.Equal(t, once, twice)
	}
}

func TestToHuman(t *testing.T) {
	oneEther := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	assert.Equal(t, 1.0, ToHuman(oneEther, 18))
	assert.Equal(t, 100.0, ToHuman(big.NewInt(100_000_000), 6))
	assert.InDelta(t, 0.000001, ToHuman(big.NewInt(1), 6), 1e-18)
	assert.Equal(t, 42.0, ToHuman(big.NewInt(42), 0))
	assert.Equal(t, 0.0, ToHuman(nil, 6))
}

func TestToRawRoundTrip(t *testing.T) {
	for _, x := range []float64{1, 0.5, 12.345678, 100, 99.99, 1234567.123456} {
		raw := ToRaw(x, 6)
		assert.InDelta(t, x, ToHuman(raw, 6), 1e-9, "amount %v", x)
	}

	assert.Equal(t, "1000000000000000000", ToRaw(1, 18).String())
	// digits beyond the token precision are truncated
	assert.Equal(t, "1", ToRaw(0.0000019, 6).String())
}

func TestValidateAmount(t *testing.T) {
	d, err := ValidateAmount("100.50")
	require.NoError(t, err)
	assert.Equal(t, "100.5", d.String())

	for _, bad := range []string{"", "abc", "0", "-1"} {
		_, err := ValidateAmount(bad)
		assert.Error(t, err, "amount %q", bad)
	}
}

func TestParseAmountWithDecimals(t *testing.T) {
	raw, err := ParseAmountWithDecimals("2.5", 6)
	require.NoError(t, err)
	assert.Equal(t, "2500000", raw.String())

	_, err = ParseAmountWithDecimals("nope", 6)
	assert.Error(t, err)
}

func TestFormatAmountFromBigInt(t *testing.T) {
	assert.Equal(t, "1.5", FormatAmountFromBigInt(big.NewInt(1_500_000), 6))
	assert.Equal(t, "0", FormatAmountFromBigInt(nil, 6))
}
