// Package money provides basis-point arithmetic for slippage and fee
// calculations. Integer-only, no floating point on the trade path.
package money

import "math/big"

// BPSScale is the number of basis points in 100%.
const BPSScale int64 = 10000

// BPS represents basis points (1 bps = 0.01% = 0.0001).
type BPS int64

// FromPercent converts a whole-number percentage to basis points.
func FromPercent(pct int64) BPS {
	return BPS(pct * 100)
}

// Percent returns the value as a percentage.
func (b BPS) Percent() float64 {
	return float64(b) / 100
}

// Valid reports whether the value is usable as a tolerance, i.e. within
// [0, 10000].
func (b BPS) Valid() bool {
	return b >= 0 && int64(b) <= BPSScale
}

// Complement returns BPSScale - b as a big.Int, the multiplier used when
// scaling an amount down by b basis points.
func (b BPS) Complement() *big.Int {
	return big.NewInt(BPSScale - int64(b))
}
