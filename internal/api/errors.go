package api

import "github.com/gofiber/fiber/v3"

// ErrInvalidQueryParameters indicates the query string could not be
// parsed into the expected structure.
var ErrInvalidQueryParameters = fiber.NewError(fiber.StatusBadRequest, "invalid query parameters")

// ErrSameTokens is returned when input and output tokens are identical.
var ErrSameTokens = fiber.NewError(fiber.StatusBadRequest, "input and output tokens cannot be the same")

// ErrAmountRequired is returned when the amount parameter is missing.
var ErrAmountRequired = fiber.NewError(fiber.StatusBadRequest, "amount is required")

// ErrNoPairFound maps a missing pair to a 404.
var ErrNoPairFound = fiber.NewError(fiber.StatusNotFound, "no pair for token combination")

// ErrQuoteFailedInternal signals a generic server-side quoting error.
var ErrQuoteFailedInternal = fiber.NewError(fiber.StatusInternalServerError, "quote failed")

// ErrBalanceFailedInternal signals a server-side balance read error.
var ErrBalanceFailedInternal = fiber.NewError(fiber.StatusInternalServerError, "balance read failed")

// NewTokenRequired returns a 400 Bad Request for a missing token field.
func NewTokenRequired(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, field+" token is required")
}

// NewInvalidToken returns a 400 Bad Request for a malformed token
// address.
func NewInvalidToken(field string) error {
	return fiber.NewError(fiber.StatusBadRequest, "invalid "+field+" token address")
}
