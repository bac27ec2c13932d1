package swap

import "errors"

var (
	// ErrInvalidPairing is returned when a token address belongs to
	// neither side of the pair it was quoted against.
	ErrInvalidPairing = errors.New("swap: token is not part of the pair")

	// ErrInvalidTolerance is returned when a slippage tolerance falls
	// outside [0, 10000] basis points.
	ErrInvalidTolerance = errors.New("swap: slippage tolerance out of range")

	// ErrNoPair is returned when no pair exists for a requested token
	// combination.
	ErrNoPair = errors.New("swap: no pair for token combination")

	// ErrZeroAmount is returned when a swap is requested for an amount
	// that parses to zero base units.
	ErrZeroAmount = errors.New("swap: amount is zero")

	// ErrInsufficientBalance is returned when the operator account does
	// not hold enough of the input token.
	ErrInsufficientBalance = errors.New("swap: insufficient balance")
)
