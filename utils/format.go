package utils

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// FormatAddress shortens an address for display, keeping length characters
// on each end (e.g. "0x12345678...9abcdef0")
func FormatAddress(address string, length int) string {
	if len(address) <= length*2+2 {
		return address
	}
	return address[:length+2] + "..." + address[len(address)-length:]
}

// FormatAmount renders an amount with a fixed number of decimal places and
// thousands separators
func FormatAmount(amount float64, places int32) string {
	s := decimal.NewFromFloat(amount).StringFixed(places)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}

// FormatTimestamp renders a block time in UTC, or "Unknown"
func FormatTimestamp(t *time.Time) string {
	if t == nil {
		return "Unknown"
	}
	return t.UTC().Format("2006-01-02 15:04:05 UTC")
}

// ToleranceRange returns the minimum and maximum amounts accepted around
// an expected amount
func ToleranceRange(amount, tolerance float64) (float64, float64) {
	delta := amount * tolerance
	return amount - delta, amount + delta
}
