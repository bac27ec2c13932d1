package swap

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/gateway"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/tracker"
)

var (
	wethAddr = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	daiAddr  = "0x6B175474E89094C44Da98b954EedeAC495271d0F"
	pairAddr = "0xA478c2975Ab1Ea89e8196811F51A7B7Ade33eB11"
)

type swapCall struct {
	amountIn *big.Int
	minOut   *big.Int
	tokenIn  common.Address
	tokenOut common.Address
	deadline time.Time
}

type fakeGateway struct {
	reserve0  *big.Int
	reserve1  *big.Int
	balance   *big.Int
	allowance *big.Int
	native    common.Address
	account   common.Address

	swaps     []swapCall
	approvals []common.Address
	nextHash  int

	balanceErr error
	swapErr    error
}

func (f *fakeGateway) GetReserves(ctx context.Context, pair common.Address) (*big.Int, *big.Int, error) {
	return f.reserve0, f.reserve1, nil
}

func (f *fakeGateway) GetBalance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	if f.balanceErr != nil {
		return nil, f.balanceErr
	}
	return f.balance, nil
}

func (f *fakeGateway) GetAllowance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	return f.allowance, nil
}

func (f *fakeGateway) SubmitApproval(ctx context.Context, token common.Address) (string, error) {
	f.approvals = append(f.approvals, token)
	f.nextHash++
	return common.BigToHash(big.NewInt(int64(f.nextHash))).Hex(), nil
}

func (f *fakeGateway) SubmitSwap(ctx context.Context, amountIn, minOut *big.Int, tokenIn, tokenOut common.Address, deadline time.Time) (string, error) {
	if f.swapErr != nil {
		return "", f.swapErr
	}
	f.swaps = append(f.swaps, swapCall{amountIn, minOut, tokenIn, tokenOut, deadline})
	f.nextHash++
	return common.BigToHash(big.NewInt(int64(f.nextHash))).Hex(), nil
}

func (f *fakeGateway) IsNative(token common.Address) bool { return token == f.native }
func (f *fakeGateway) Account() common.Address            { return f.account }

// instantSettler resolves every transaction as succeeded immediately.
type instantSettler struct{}

func (instantSettler) AwaitSettlement(ctx context.Context, txHash string) (gateway.SettlementStatus, error) {
	return gateway.StatusSucceeded, nil
}

type staticPairs struct {
	pair Pair
}

func (s staticPairs) FindPair(tokenA, tokenB string) (Pair, bool) {
	if s.pair.Contains(tokenA) && s.pair.Contains(tokenB) && !SameID(tokenA, tokenB) {
		return s.pair, true
	}
	return Pair{}, false
}

func e18(units int64) *big.Int {
	v := big.NewInt(units)
	return v.Mul(v, new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil))
}

func testPair() Pair {
	return Pair{
		ID:     pairAddr,
		Token0: Token{ID: daiAddr, Symbol: "DAI", Decimals: 18},
		Token1: Token{ID: wethAddr, Symbol: "WETH", Decimals: 18},
	}
}

func newTestService(t *testing.T, gw *fakeGateway) *Service {
	t.Helper()
	logger := observability.NewLogger("error", "text")
	trk := tracker.New(instantSettler{}, logger, nil)

	svc, err := NewService(ServiceConfig{
		Gateway:   gw,
		Pairs:     staticPairs{pair: testPair()},
		Tracker:   trk,
		Tolerance: 100,
		Deadline:  10 * time.Minute,
		Logger:    logger,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func TestServiceQuote(t *testing.T) {
	gw := &fakeGateway{
		// token0 = DAI, token1 = WETH.
		reserve0: e18(12000),
		reserve1: e18(5000),
		native:   common.HexToAddress(wethAddr),
	}
	svc := newTestService(t, gw)

	q, err := svc.Quote(context.Background(), wethAddr, daiAddr, "1")
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}

	if q.AmountOut.String() != "2392322970799622555" {
		t.Errorf("AmountOut = %s", q.AmountOut)
	}
	if q.MinimumOut.String() != "2368399741091626329" {
		t.Errorf("MinimumOut = %s", q.MinimumOut)
	}
	if q.AmountInDisplay != "1.00000" {
		t.Errorf("AmountInDisplay = %q", q.AmountInDisplay)
	}
	if q.AmountOutDisplay != "2.39232" {
		t.Errorf("AmountOutDisplay = %q", q.AmountOutDisplay)
	}
	if q.MinimumOutDisplay != "2.36840" {
		t.Errorf("MinimumOutDisplay = %q", q.MinimumOutDisplay)
	}
	if !SameID(q.InputToken.ID, wethAddr) || !SameID(q.OutputToken.ID, daiAddr) {
		t.Errorf("token orientation wrong: in=%s out=%s", q.InputToken.ID, q.OutputToken.ID)
	}
}

func TestServiceQuoteNoPair(t *testing.T) {
	gw := &fakeGateway{reserve0: e18(1), reserve1: e18(1)}
	svc := newTestService(t, gw)

	_, err := svc.Quote(context.Background(), wethAddr, "0x0000000000000000000000000000000000000001", "1")
	if !errors.Is(err, ErrNoPair) {
		t.Fatalf("got %v, want ErrNoPair", err)
	}
}

func TestServiceSwap(t *testing.T) {
	gw := &fakeGateway{
		reserve0: e18(12000),
		reserve1: e18(5000),
		balance:  e18(10),
		native:   common.HexToAddress(wethAddr),
	}
	svc := newTestService(t, gw)

	before := time.Now()
	q, receipt, err := svc.Swap(context.Background(), wethAddr, daiAddr, "1")
	if err != nil {
		t.Fatalf("Swap failed: %v", err)
	}

	if len(gw.swaps) != 1 {
		t.Fatalf("expected 1 swap submission, got %d", len(gw.swaps))
	}
	call := gw.swaps[0]
	if call.amountIn.Cmp(q.AmountIn) != 0 {
		t.Errorf("submitted amountIn %s, quoted %s", call.amountIn, q.AmountIn)
	}
	if call.minOut.Cmp(q.MinimumOut) != 0 {
		t.Errorf("submitted minOut %s, quoted %s", call.minOut, q.MinimumOut)
	}
	if call.deadline.Before(before.Add(9 * time.Minute)) {
		t.Errorf("deadline %v not within configured window", call.deadline)
	}

	outcome := <-receipt.Outcome
	if outcome.Status != gateway.StatusSucceeded {
		t.Errorf("settlement status = %v", outcome.Status)
	}
	if got := svc.PendingCount(); got != 0 {
		t.Errorf("PendingCount after settlement = %d", got)
	}
}

func TestServiceSwapInsufficientBalance(t *testing.T) {
	gw := &fakeGateway{
		reserve0: e18(12000),
		reserve1: e18(5000),
		balance:  big.NewInt(1),
		native:   common.HexToAddress(wethAddr),
	}
	svc := newTestService(t, gw)

	_, _, err := svc.Swap(context.Background(), wethAddr, daiAddr, "1")
	if !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("got %v, want ErrInsufficientBalance", err)
	}
	if len(gw.swaps) != 0 {
		t.Errorf("swap was submitted despite insufficient balance")
	}
}

func TestServiceSwapZeroAmount(t *testing.T) {
	gw := &fakeGateway{
		reserve0: e18(12000),
		reserve1: e18(5000),
		balance:  e18(10),
		native:   common.HexToAddress(wethAddr),
	}
	svc := newTestService(t, gw)

	// Malformed input parses to zero base units.
	_, _, err := svc.Swap(context.Background(), wethAddr, daiAddr, "not-a-number")
	if !errors.Is(err, ErrZeroAmount) {
		t.Fatalf("got %v, want ErrZeroAmount", err)
	}
}

func TestServiceNeedsApproval(t *testing.T) {
	gw := &fakeGateway{
		allowance: big.NewInt(0),
		native:    common.HexToAddress(wethAddr),
	}
	svc := newTestService(t, gw)

	t.Run("native never needs approval", func(t *testing.T) {
		needs, err := svc.NeedsApproval(context.Background(), wethAddr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if needs {
			t.Error("native asset should not need approval")
		}
	})

	t.Run("zero allowance needs approval", func(t *testing.T) {
		needs, err := svc.NeedsApproval(context.Background(), daiAddr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !needs {
			t.Error("zero allowance should need approval")
		}
	})

	t.Run("nonzero allowance suffices", func(t *testing.T) {
		gw.allowance = big.NewInt(1)
		needs, err := svc.NeedsApproval(context.Background(), daiAddr)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if needs {
			t.Error("nonzero allowance should not need approval")
		}
	})
}

func TestServiceApprove(t *testing.T) {
	gw := &fakeGateway{native: common.HexToAddress(wethAddr)}
	svc := newTestService(t, gw)

	receipt, err := svc.Approve(context.Background(), daiAddr)
	if err != nil {
		t.Fatalf("Approve failed: %v", err)
	}
	if len(gw.approvals) != 1 {
		t.Fatalf("expected 1 approval submission, got %d", len(gw.approvals))
	}

	outcome := <-receipt.Outcome
	if outcome.Request.Kind != tracker.KindApproval {
		t.Errorf("tracked kind = %v, want approval", outcome.Request.Kind)
	}
	if outcome.Request.Token != daiAddr {
		t.Errorf("tracked token = %q", outcome.Request.Token)
	}
}

func TestNewServiceValidation(t *testing.T) {
	gw := &fakeGateway{}
	logger := observability.NewLogger("error", "text")
	trk := tracker.New(instantSettler{}, logger, nil)

	_, err := NewService(ServiceConfig{
		Gateway:   gw,
		Pairs:     staticPairs{pair: testPair()},
		Tracker:   trk,
		Tolerance: 10001,
	})
	if !errors.Is(err, ErrInvalidTolerance) {
		t.Fatalf("got %v, want ErrInvalidTolerance", err)
	}
}
