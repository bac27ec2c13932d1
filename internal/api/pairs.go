package api

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/swap"
)

// Listing exposes the current pair/token snapshot. Satisfied by
// *index.Index.
type Listing interface {
	Pairs() []swap.Pair
	Tokens() []swap.Token
	PairableTokens(inputTokenID string) []swap.Token
}

// PairsHandler serves GET /v1/pairs.
type PairsHandler struct {
	BaseHandler
	listing Listing
}

// NewPairsHandler creates the pairs handler.
func NewPairsHandler(logger *observability.Logger, listing Listing) *PairsHandler {
	return &PairsHandler{
		BaseHandler: BaseHandler{logger: logger},
		listing:     listing,
	}
}

// PairsResponse is the listing payload. When the token filter is set,
// Tokens holds only the counterparties pairable with it.
type PairsResponse struct {
	Pairs  []swap.Pair  `json:"pairs,omitempty"`
	Tokens []swap.Token `json:"tokens"`
}

// Handle returns the fiber handler. An optional ?token= filter narrows
// the token listing to counterparties of that token.
func (h *PairsHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		filter := c.Query("token")
		if filter != "" {
			if !common.IsHexAddress(filter) {
				return NewInvalidToken("token")
			}
			return c.JSON(PairsResponse{
				Tokens: h.listing.PairableTokens(filter),
			})
		}

		return c.JSON(PairsResponse{
			Pairs:  h.listing.Pairs(),
			Tokens: h.listing.Tokens(),
		})
	}
}
