// Package amount converts between human-entered decimal strings and
// integer base-unit amounts. All on-chain arithmetic uses base units;
// display strings exist only at the presentation boundary.
package amount

import (
	"fmt"
	"math/big"
	"strings"
)

// displayDecimals is the fixed number of fractional digits shown to the
// user. Amounts of differently-scaled tokens stay comparable on screen.
const displayDecimals = 5

var displayScale = new(big.Int).Exp(big.NewInt(10), big.NewInt(displayDecimals), nil)

// ToBaseUnits parses a decimal string into base units of a token with the
// given number of decimals. Fractional digits beyond `decimals` are
// truncated, never rounded. Strings that do not parse as a non-negative
// decimal number yield zero.
func ToBaseUnits(display string, decimals int) *big.Int {
	if decimals < 0 {
		return new(big.Int)
	}

	s := strings.TrimSpace(display)
	if s == "" {
		return new(big.Int)
	}

	intPart := s
	fracPart := ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
		if strings.IndexByte(fracPart, '.') >= 0 {
			return new(big.Int)
		}
	}
	if intPart == "" {
		intPart = "0"
	}
	if !isDigits(intPart) || (fracPart != "" && !isDigits(fracPart)) {
		return new(big.Int)
	}

	// Truncate excess fractional digits, pad the rest up to `decimals`.
	if len(fracPart) > decimals {
		fracPart = fracPart[:decimals]
	}
	fracPart += strings.Repeat("0", decimals-len(fracPart))

	v, ok := new(big.Int).SetString(intPart+fracPart, 10)
	if !ok {
		return new(big.Int)
	}
	return v
}

// ToDisplay formats a base-unit amount of a token with the given number
// of decimals as a decimal string with exactly five fractional digits,
// rounding half away from zero at the fifth digit. The round trip through
// ToBaseUnits is lossy when `decimals` differs from five; that is the
// intended display behavior.
func ToDisplay(amount *big.Int, decimals int) string {
	if amount == nil || decimals < 0 {
		return "0.00000"
	}

	neg := amount.Sign() < 0
	abs := new(big.Int).Abs(amount)

	den := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	scaled := new(big.Int).Mul(abs, displayScale)

	q, r := new(big.Int).QuoRem(scaled, den, new(big.Int))
	// Round half away from zero: bump the quotient when 2r >= den.
	if new(big.Int).Lsh(r, 1).Cmp(den) >= 0 {
		q.Add(q, big.NewInt(1))
	}

	whole, frac := new(big.Int).QuoRem(q, displayScale, new(big.Int))
	s := fmt.Sprintf("%s.%05d", whole.String(), frac.Int64())
	if neg {
		s = "-" + s
	}
	return s
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
