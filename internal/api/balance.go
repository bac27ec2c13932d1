package api

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/amount"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/swap"
)

// BalanceReader reads the operator account's balances. Satisfied by
// *gateway.Gateway.
type BalanceReader interface {
	GetBalance(ctx context.Context, token, account common.Address) (*big.Int, error)
	Account() common.Address
}

// BalanceHandler serves GET /v1/balance.
type BalanceHandler struct {
	BaseHandler
	reader  BalanceReader
	listing Listing
}

// NewBalanceHandler creates the balance handler.
func NewBalanceHandler(logger *observability.Logger, reader BalanceReader, listing Listing) *BalanceHandler {
	return &BalanceHandler{
		BaseHandler: BaseHandler{logger: logger},
		reader:      reader,
		listing:     listing,
	}
}

// BalanceResponse reports one token balance in base units and display
// form.
type BalanceResponse struct {
	Token   string `json:"token"`
	Symbol  string `json:"symbol,omitempty"`
	Balance string `json:"balance"`
	Display string `json:"display"`
}

// Handle returns the fiber handler.
func (h *BalanceHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		tokenID := c.Query("token")
		if tokenID == "" {
			return NewTokenRequired("token")
		}
		if !common.IsHexAddress(tokenID) {
			return NewInvalidToken("token")
		}

		balance, err := h.reader.GetBalance(context.Background(),
			common.HexToAddress(tokenID), h.reader.Account())
		if err != nil {
			h.logger.Error("balance read failed", "token", tokenID, "err", err)
			return ErrBalanceFailedInternal
		}

		symbol, decimals := h.tokenMeta(tokenID)
		return c.JSON(BalanceResponse{
			Token:   tokenID,
			Symbol:  symbol,
			Balance: balance.String(),
			Display: amount.ToDisplay(balance, decimals),
		})
	}
}

// tokenMeta looks the token up in the listing; unknown tokens render
// with the common 18-decimal default.
func (h *BalanceHandler) tokenMeta(tokenID string) (string, int) {
	for _, t := range h.listing.Tokens() {
		if swap.SameID(t.ID, tokenID) {
			return t.Symbol, t.Decimals
		}
	}
	return "", 18
}
