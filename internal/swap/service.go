package swap

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/amount"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/money"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/tracker"
)

// Gateway is the ledger surface the service depends on. Satisfied by
// *gateway.Gateway.
type Gateway interface {
	GetReserves(ctx context.Context, pair common.Address) (reserve0, reserve1 *big.Int, err error)
	GetBalance(ctx context.Context, token, account common.Address) (*big.Int, error)
	GetAllowance(ctx context.Context, token, owner common.Address) (*big.Int, error)
	SubmitApproval(ctx context.Context, token common.Address) (string, error)
	SubmitSwap(ctx context.Context, amountIn, minOut *big.Int, tokenIn, tokenOut common.Address, deadline time.Time) (string, error)
	IsNative(token common.Address) bool
	Account() common.Address
}

// PairSource resolves the pair for a token combination. Satisfied by
// *index.Index.
type PairSource interface {
	FindPair(tokenA, tokenB string) (Pair, bool)
}

// Quote is one priced exchange proposal. Amounts are in base units;
// the Display fields carry the five-decimal renderings.
type Quote struct {
	Pair        Pair     `json:"pair"`
	InputToken  Token    `json:"inputToken"`
	OutputToken Token    `json:"outputToken"`
	AmountIn    *big.Int `json:"-"`
	AmountOut   *big.Int `json:"-"`
	MinimumOut  *big.Int `json:"-"`

	AmountInDisplay   string `json:"amountIn"`
	AmountOutDisplay  string `json:"amountOut"`
	MinimumOutDisplay string `json:"minimumOut"`
}

// Receipt reports a submitted transaction plus the channel its
// settlement outcome will arrive on.
type Receipt struct {
	TxHash  string
	Outcome <-chan tracker.Outcome
}

// ServiceConfig holds service parameters.
type ServiceConfig struct {
	Gateway   Gateway
	Pairs     PairSource
	Tracker   *tracker.Tracker
	Tolerance money.BPS
	// Deadline is how far in the future each swap's router deadline is
	// set.
	Deadline time.Duration
	Logger   *observability.Logger
	Metrics  *observability.Metrics
}

// Service ties the pair index, the quoter, and the gateway together.
type Service struct {
	gateway   Gateway
	pairs     PairSource
	tracker   *tracker.Tracker
	tolerance money.BPS
	deadline  time.Duration
	logger    *observability.Logger
	metrics   *observability.Metrics
}

// NewService creates a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Gateway == nil {
		return nil, fmt.Errorf("gateway is required")
	}
	if cfg.Pairs == nil {
		return nil, fmt.Errorf("pair source is required")
	}
	if cfg.Tracker == nil {
		return nil, fmt.Errorf("tracker is required")
	}
	if !cfg.Tolerance.Valid() {
		return nil, ErrInvalidTolerance
	}
	if cfg.Deadline <= 0 {
		cfg.Deadline = 10 * time.Minute
	}

	return &Service{
		gateway:   cfg.Gateway,
		pairs:     cfg.Pairs,
		tracker:   cfg.Tracker,
		tolerance: cfg.Tolerance,
		deadline:  cfg.Deadline,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}, nil
}

// Quote prices an exchange of displayAmount input tokens. Reserves are
// read live so back-to-back quotes reflect pool movement.
func (s *Service) Quote(ctx context.Context, inputTokenID, outputTokenID, displayAmount string) (Quote, error) {
	started := time.Now()

	pair, ok := s.pairs.FindPair(inputTokenID, outputTokenID)
	if !ok {
		return Quote{}, fmt.Errorf("%w: %s/%s", ErrNoPair, inputTokenID, outputTokenID)
	}
	inputToken, _ := pair.Side(inputTokenID)
	outputToken, _ := pair.Side(outputTokenID)

	amountIn := amount.ToBaseUnits(displayAmount, inputToken.Decimals)

	reserve0, reserve1, err := s.gateway.GetReserves(ctx, common.HexToAddress(pair.ID))
	if err != nil {
		s.metrics.RecordQuote(ctx, time.Since(started), false)
		return Quote{}, fmt.Errorf("reading reserves for %s: %w", pair.ID, err)
	}
	reserveIn, reserveOut, err := OrientReserves(pair, inputTokenID, reserve0, reserve1)
	if err != nil {
		return Quote{}, err
	}

	out := AmountOut(reserveIn, reserveOut, amountIn)
	minOut := MinimumOut(out, s.tolerance)

	q := Quote{
		Pair:              pair,
		InputToken:        inputToken,
		OutputToken:       outputToken,
		AmountIn:          amountIn,
		AmountOut:         out,
		MinimumOut:        minOut,
		AmountInDisplay:   amount.ToDisplay(amountIn, inputToken.Decimals),
		AmountOutDisplay:  amount.ToDisplay(out, outputToken.Decimals),
		MinimumOutDisplay: amount.ToDisplay(minOut, outputToken.Decimals),
	}

	s.metrics.RecordQuote(ctx, time.Since(started), true)
	return q, nil
}

// NeedsApproval reports whether the input token requires a spend
// authorization before it can be swapped. The native asset never does;
// for tokens any nonzero allowance counts, since authorizations are
// granted for the maximum amount.
func (s *Service) NeedsApproval(ctx context.Context, tokenID string) (bool, error) {
	addr := common.HexToAddress(tokenID)
	if s.gateway.IsNative(addr) {
		return false, nil
	}

	allowance, err := s.gateway.GetAllowance(ctx, addr, s.gateway.Account())
	if err != nil {
		return false, fmt.Errorf("reading allowance for %s: %w", tokenID, err)
	}
	return allowance.Sign() == 0, nil
}

// Approve submits a spend authorization for the token and registers it
// with the tracker.
func (s *Service) Approve(ctx context.Context, tokenID string) (Receipt, error) {
	txHash, err := s.gateway.SubmitApproval(ctx, common.HexToAddress(tokenID))
	if err != nil {
		return Receipt{}, err
	}

	ch, err := s.tracker.Begin(ctx, tracker.Request{
		TxHash: txHash,
		Kind:   tracker.KindApproval,
		Token:  tokenID,
	})
	if err != nil {
		return Receipt{}, err
	}
	return Receipt{TxHash: txHash, Outcome: ch}, nil
}

// Swap quotes the exchange, verifies the operator's balance covers the
// input, submits the swap, and registers it with the tracker. The
// router deadline is the configured window from now.
func (s *Service) Swap(ctx context.Context, inputTokenID, outputTokenID, displayAmount string) (Quote, Receipt, error) {
	q, err := s.Quote(ctx, inputTokenID, outputTokenID, displayAmount)
	if err != nil {
		return Quote{}, Receipt{}, err
	}
	if q.AmountIn.Sign() <= 0 {
		return Quote{}, Receipt{}, fmt.Errorf("%w: amount %q", ErrZeroAmount, displayAmount)
	}

	inAddr := common.HexToAddress(q.InputToken.ID)
	outAddr := common.HexToAddress(q.OutputToken.ID)

	balance, err := s.gateway.GetBalance(ctx, inAddr, s.gateway.Account())
	if err != nil {
		return Quote{}, Receipt{}, fmt.Errorf("reading balance for %s: %w", inputTokenID, err)
	}
	if balance.Cmp(q.AmountIn) < 0 {
		return Quote{}, Receipt{}, fmt.Errorf("%w: have %s, need %s",
			ErrInsufficientBalance, balance, q.AmountIn)
	}

	deadline := time.Now().Add(s.deadline)
	txHash, err := s.gateway.SubmitSwap(ctx, q.AmountIn, q.MinimumOut, inAddr, outAddr, deadline)
	if err != nil {
		return Quote{}, Receipt{}, err
	}

	ch, err := s.tracker.Begin(ctx, tracker.Request{
		TxHash: txHash,
		Kind:   tracker.KindSwap,
		Token:  q.InputToken.ID,
	})
	if err != nil {
		return Quote{}, Receipt{}, err
	}

	s.logger.Info("swap in flight",
		"tx", txHash,
		"pair", q.Pair.ID,
		"in", q.AmountInDisplay,
		"min_out", q.MinimumOutDisplay,
	)
	return q, Receipt{TxHash: txHash, Outcome: ch}, nil
}

// PendingCount exposes the tracker's in-flight size.
func (s *Service) PendingCount() int {
	return s.tracker.Size()
}

// Pending exposes the tracker's in-flight snapshot.
func (s *Service) Pending() []tracker.Request {
	return s.tracker.Pending()
}
