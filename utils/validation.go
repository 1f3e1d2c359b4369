package utils

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// IsValidAddress reports whether address is "0x" followed by exactly 40
// hexadecimal characters
func IsValidAddress(address string) bool {
	address = strings.TrimSpace(address)
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return false
	}
	return common.IsHexAddress(address)
}

// NormalizeAddress validates an address and returns its lowercase form.
// Normalizing an already normalized address returns it unchanged.
func NormalizeAddress(address string) (string, error) {
	address = strings.TrimSpace(address)
	if !strings.HasPrefix(address, "0x") || len(address) != 42 {
		return "", fmt.Errorf("invalid address %q: expected 0x followed by 40 hex characters", address)
	}
	if !common.IsHexAddress(address) {
		return "", fmt.Errorf("invalid address %q: contains non-hexadecimal characters", address)
	}
	return strings.ToLower(address), nil
}

// ValidateAmount checks if an amount string is a valid positive decimal
func ValidateAmount(amount string) (decimal.Decimal, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return decimal.Zero, fmt.Errorf("amount cannot be empty")
	}

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount format %q: %w", amount, err)
	}

	if !dec.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be greater than 0, got %s", dec.String())
	}

	return dec, nil
}

// ToHuman converts an amount in smallest units into token units.
// This is the only place raw integers become floats: the division is done
// in floating point, so very large 18-decimal values lose precision.
func ToHuman(raw *big.Int, decimals int) float64 {
	if raw == nil {
		return 0
	}
	num := new(big.Float).SetPrec(256).SetInt(raw)
	den := new(big.Float).SetPrec(256).SetInt(pow10(decimals))
	f, _ := new(big.Float).Quo(num, den).Float64()
	return f
}

// ToRaw converts a token amount into smallest units, truncating any
// digits beyond the token's precision
func ToRaw(amount float64, decimals int) *big.Int {
	return decimal.NewFromFloat(amount).Shift(int32(decimals)).BigInt()
}

// ParseAmountWithDecimals parses a decimal amount string and converts to big.Int with specified decimals
func ParseAmountWithDecimals(amount string, decimals int) (*big.Int, error) {
	dec, err := ValidateAmount(amount)
	if err != nil {
		return nil, err
	}

	return dec.Shift(int32(decimals)).BigInt(), nil
}

// FormatAmountFromBigInt formats a big.Int amount to decimal string with specified decimals
func FormatAmountFromBigInt(amount *big.Int, decimals int) string {
	if amount == nil {
		return "0"
	}
	dec := decimal.NewFromBigInt(amount, -int32(decimals))
	return dec.String()
}

func pow10(n int) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
