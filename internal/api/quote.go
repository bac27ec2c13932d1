package api

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gofiber/fiber/v3"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/swap"
)

// Quoter prices an exchange. Satisfied by *swap.Service.
type Quoter interface {
	Quote(ctx context.Context, inputTokenID, outputTokenID, displayAmount string) (swap.Quote, error)
}

// QuoteHandler serves GET /v1/quote.
type QuoteHandler struct {
	BaseHandler
	quoter Quoter
}

// NewQuoteHandler creates the quote handler.
func NewQuoteHandler(logger *observability.Logger, quoter Quoter) *QuoteHandler {
	return &QuoteHandler{
		BaseHandler: BaseHandler{logger: logger},
		quoter:      quoter,
	}
}

// QuoteRequest carries the quote query parameters.
type QuoteRequest struct {
	In     string `query:"in" json:"in"`
	Out    string `query:"out" json:"out"`
	Amount string `query:"amount" json:"amount"`
}

// Handle returns the fiber handler.
func (h *QuoteHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		req, err := h.parseAndValidateRequest(c)
		if err != nil {
			return err
		}

		quote, err := h.quoter.Quote(context.Background(), req.In, req.Out, req.Amount)
		if err != nil {
			return h.handleServiceError(err)
		}

		h.logger.Debug("quote computed",
			"in", req.In, "out", req.Out,
			"amount", req.Amount, "quoted", quote.AmountOutDisplay,
		)
		return c.JSON(quote)
	}
}

func (h *QuoteHandler) parseAndValidateRequest(c fiber.Ctx) (*QuoteRequest, error) {
	var req QuoteRequest
	if err := c.Bind().Query(&req); err != nil {
		h.logger.Debug("failed to bind query parameters", "err", err)
		return nil, ErrInvalidQueryParameters
	}

	for field, addr := range map[string]string{"in": req.In, "out": req.Out} {
		if addr == "" {
			return nil, NewTokenRequired(field)
		}
		if !common.IsHexAddress(addr) {
			return nil, NewInvalidToken(field)
		}
	}
	if swap.SameID(req.In, req.Out) {
		return nil, ErrSameTokens
	}
	if req.Amount == "" {
		return nil, ErrAmountRequired
	}

	return &req, nil
}

func (h *QuoteHandler) handleServiceError(err error) error {
	switch {
	case errors.Is(err, swap.ErrNoPair):
		return ErrNoPairFound
	case errors.Is(err, swap.ErrInvalidPairing):
		return ErrNoPairFound
	default:
		h.logger.Error("quote failed", "err", err)
		return ErrQuoteFailedInternal
	}
}
