// Package api exposes the read-only HTTP surface: quotes, listings,
// pending transactions, and balances. Write calls need the operator key
// and stay out of the API.
package api

import (
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
)

// BaseHandler provides common dependencies for HTTP handlers.
type BaseHandler struct {
	logger *observability.Logger
}
