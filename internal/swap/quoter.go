package swap

import (
	"math/big"

	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/money"
)

// Constant-product fee parameters: a 0.3% proportional trading fee is
// deducted from the input side before applying x*y=k.
var (
	feeMul = big.NewInt(997)
	feeDen = big.NewInt(1000)
)

// AmountOut computes the output amount for swapping amountIn against a
// pair with the given reserves, after the 0.3% input-side fee:
//
//	out = 997*in*reserveOut / (997*in + 1000*reserveIn)
//
// Integer division truncates toward zero. A degenerate pool (all inputs
// zero) yields zero rather than dividing by zero.
func AmountOut(reserveIn, reserveOut, amountIn *big.Int) *big.Int {
	if reserveIn == nil || reserveOut == nil || amountIn == nil {
		return new(big.Int)
	}

	feeAdjusted := new(big.Int).Mul(feeMul, amountIn)
	den := new(big.Int).Mul(feeDen, reserveIn)
	den.Add(den, feeAdjusted)
	if den.Sign() == 0 {
		return new(big.Int)
	}

	num := new(big.Int).Mul(feeAdjusted, reserveOut)
	return num.Div(num, den)
}

// OrientReserves resolves which of the pair's reserves plays the input
// and output role for a swap entering with inputTokenID. reserve0 and
// reserve1 follow the pair contract's token0/token1 order. Returns
// ErrInvalidPairing when the token belongs to neither side.
func OrientReserves(pair Pair, inputTokenID string, reserve0, reserve1 *big.Int) (reserveIn, reserveOut *big.Int, err error) {
	switch {
	case SameID(pair.Token0.ID, inputTokenID):
		return reserve0, reserve1, nil
	case SameID(pair.Token1.ID, inputTokenID):
		return reserve1, reserve0, nil
	default:
		return nil, nil, ErrInvalidPairing
	}
}

// MinimumOut scales a quoted output down by the slippage tolerance:
// out * (10000 - bps) / 10000, truncating toward zero so rounding never
// favors the trader over the protocol.
func MinimumOut(out *big.Int, tolerance money.BPS) *big.Int {
	if out == nil {
		return new(big.Int)
	}
	v := new(big.Int).Mul(out, tolerance.Complement())
	return v.Div(v, big.NewInt(money.BPSScale))
}
