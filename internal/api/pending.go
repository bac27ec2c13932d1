package api

import (
	"github.com/gofiber/fiber/v3"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/tracker"
)

// PendingSource exposes the in-flight transaction set. Satisfied by
// *tracker.Tracker.
type PendingSource interface {
	Pending() []tracker.Request
}

// PendingHandler serves GET /v1/pending.
type PendingHandler struct {
	BaseHandler
	source PendingSource
}

// NewPendingHandler creates the pending handler.
func NewPendingHandler(logger *observability.Logger, source PendingSource) *PendingHandler {
	return &PendingHandler{
		BaseHandler: BaseHandler{logger: logger},
		source:      source,
	}
}

type pendingEntry struct {
	TxHash string `json:"txHash"`
	Kind   string `json:"kind"`
	Token  string `json:"token"`
}

// PendingResponse is the pending listing payload.
type PendingResponse struct {
	Count   int            `json:"count"`
	Pending []pendingEntry `json:"pending"`
}

// Handle returns the fiber handler.
func (h *PendingHandler) Handle() fiber.Handler {
	return func(c fiber.Ctx) error {
		requests := h.source.Pending()

		entries := make([]pendingEntry, 0, len(requests))
		for _, req := range requests {
			entries = append(entries, pendingEntry{
				TxHash: req.TxHash,
				Kind:   req.Kind.String(),
				Token:  req.Token,
			})
		}
		return c.JSON(PendingResponse{Count: len(entries), Pending: entries})
	}
}
