// Package tracker keeps the set of submitted transactions that have not
// yet settled. It tracks liveness only: settlement outcomes are handed
// back to callers verbatim, never interpreted.
package tracker

import (
	"context"
	"errors"
	"sync"

	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/gateway"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
)

// ErrDuplicateRequest is returned when a transaction hash is already
// being awaited. The existing entry is left untouched.
var ErrDuplicateRequest = errors.New("tracker: transaction already pending")

// Kind distinguishes the two write calls that settle on-chain.
type Kind int

const (
	// KindApproval is a spend authorization.
	KindApproval Kind = iota
	// KindSwap is an exchange execution.
	KindSwap
)

func (k Kind) String() string {
	switch k {
	case KindApproval:
		return "approval"
	case KindSwap:
		return "swap"
	default:
		return "unknown"
	}
}

// Request describes one in-flight transaction. Immutable once created.
type Request struct {
	TxHash string
	Kind   Kind
	// Token is the asset the request concerns: the approved token for
	// approvals, the input token for swaps.
	Token string
}

// Outcome is the settlement resolution delivered to the caller. Either
// Status carries the ledger's receipt status, or Err carries the await
// failure unchanged.
type Outcome struct {
	Request Request
	Status  gateway.SettlementStatus
	Err     error
}

// Settler awaits a transaction's settlement. Satisfied by
// *gateway.Gateway.
type Settler interface {
	AwaitSettlement(ctx context.Context, txHash string) (gateway.SettlementStatus, error)
}

// Tracker is the pending-transaction state machine. Per hash the states
// are Absent -> Pending -> removed; settlement triggers removal
// immediately, no settled state is kept.
type Tracker struct {
	mu      sync.Mutex
	pending map[string]Request

	settler Settler
	logger  *observability.Logger
	metrics *observability.Metrics

	// onResolve, when set, observes every outcome after removal. Used
	// for settlement notifications; must not block for long.
	onResolve func(Outcome)
}

// New creates a Tracker that awaits settlements through the given
// Settler.
func New(settler Settler, logger *observability.Logger, metrics *observability.Metrics) *Tracker {
	return &Tracker{
		pending: make(map[string]Request),
		settler: settler,
		logger:  logger,
		metrics: metrics,
	}
}

// OnResolve registers a hook invoked once per resolved request. Call
// before any Begin.
func (t *Tracker) OnResolve(fn func(Outcome)) {
	t.onResolve = fn
}

// Begin registers the request as pending and starts awaiting its
// settlement. The returned channel delivers exactly one Outcome when
// the transaction resolves; the entry is removed before delivery, so a
// caller that re-submits after reading the channel will not collide
// with its own completed request. Abandoning the channel is safe.
//
// A hash already pending is rejected with ErrDuplicateRequest and the
// existing entry is untouched.
func (t *Tracker) Begin(ctx context.Context, req Request) (<-chan Outcome, error) {
	t.mu.Lock()
	if _, exists := t.pending[req.TxHash]; exists {
		t.mu.Unlock()
		return nil, ErrDuplicateRequest
	}
	t.pending[req.TxHash] = req
	size := len(t.pending)
	t.mu.Unlock()

	t.metrics.SetPendingSwaps(ctx, int64(size))
	t.logger.Info("awaiting settlement",
		"tx", req.TxHash,
		"kind", req.Kind.String(),
		"token", req.Token,
		"pending", size,
	)

	ch := make(chan Outcome, 1)
	go t.await(ctx, req, ch)
	return ch, nil
}

// Size returns the number of transactions currently awaiting
// settlement. Callers use it to gate conflicting actions; the tracker
// itself never blocks new submissions.
func (t *Tracker) Size() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Pending returns a snapshot of the in-flight requests.
func (t *Tracker) Pending() []Request {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Request, 0, len(t.pending))
	for _, req := range t.pending {
		out = append(out, req)
	}
	return out
}

func (t *Tracker) await(ctx context.Context, req Request, ch chan<- Outcome) {
	status, err := t.settler.AwaitSettlement(ctx, req.TxHash)

	// The entry is removed whatever the outcome: success, revert,
	// not-found, or transport failure. Removal before delivery keeps
	// Size consistent with what the channel reader observes.
	t.remove(ctx, req.TxHash)

	outcome := Outcome{Request: req, Status: status, Err: err}
	switch {
	case err != nil:
		t.logger.LogError(ctx, "settlement await failed", err, "tx", req.TxHash)
		t.metrics.RecordSettlement(ctx, settlementLabel(outcome))
	default:
		t.logger.Info("settlement resolved",
			"tx", req.TxHash,
			"kind", req.Kind.String(),
			"status", status.String(),
		)
		t.metrics.RecordSettlement(ctx, settlementLabel(outcome))
	}

	if t.onResolve != nil {
		t.onResolve(outcome)
	}
	ch <- outcome
}

// remove deletes the entry exactly once; a second invocation for the
// same hash is a no-op.
func (t *Tracker) remove(ctx context.Context, txHash string) {
	t.mu.Lock()
	_, exists := t.pending[txHash]
	if exists {
		delete(t.pending, txHash)
	}
	size := len(t.pending)
	t.mu.Unlock()

	if exists {
		t.metrics.SetPendingSwaps(ctx, int64(size))
	}
}

func settlementLabel(o Outcome) string {
	switch {
	case errors.Is(o.Err, gateway.ErrSettlementNotFound):
		return "not_found"
	case o.Err != nil:
		return "error"
	case o.Status == gateway.StatusSucceeded:
		return "succeeded"
	default:
		return "reverted"
	}
}
