// Package gateway is the sole component that reads from and writes to
// the chain. Everything else treats it as the ledger boundary.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/blockchain"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
)

// SettlementStatus is the ledger's receipt status, passed through
// verbatim: 0 means the transaction reverted, 1 means it succeeded.
type SettlementStatus uint64

const (
	// StatusReverted marks an on-chain revert.
	StatusReverted SettlementStatus = 0
	// StatusSucceeded marks on-chain success.
	StatusSucceeded SettlementStatus = 1
)

func (s SettlementStatus) String() string {
	switch s {
	case StatusReverted:
		return "reverted"
	case StatusSucceeded:
		return "succeeded"
	default:
		return fmt.Sprintf("status(%d)", uint64(s))
	}
}

// Gateway routes read and write calls to the pair, token, and router
// contracts. All write calls are signed with the operator key it was
// constructed with.
type Gateway struct {
	clients       *blockchain.ClientPool
	router        common.Address
	wrappedNative common.Address
	signer        *bind.TransactOpts
	gasLimit      uint64

	erc20ABI  abi.ABI
	pairABI   abi.ABI
	routerABI abi.ABI

	logger  *observability.Logger
	metrics *observability.Metrics
}

// Config holds gateway configuration.
type Config struct {
	Clients       *blockchain.ClientPool
	Router        common.Address
	WrappedNative common.Address
	// Signer provides the operator account and signing function for
	// write calls. Read-only deployments may leave it nil; write calls
	// then fail.
	Signer   *bind.TransactOpts
	GasLimit uint64
	Logger   *observability.Logger
	Metrics  *observability.Metrics
}

// New creates a Gateway.
func New(cfg Config) (*Gateway, error) {
	if cfg.Clients == nil {
		return nil, fmt.Errorf("client pool is required")
	}
	if cfg.Router == (common.Address{}) {
		return nil, fmt.Errorf("router address is required")
	}
	if cfg.GasLimit == 0 {
		cfg.GasLimit = 200000
	}

	parsedERC20, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ERC20 ABI: %w", err)
	}
	parsedPair, err := abi.JSON(strings.NewReader(pairABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse pair ABI: %w", err)
	}
	parsedRouter, err := abi.JSON(strings.NewReader(routerABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse router ABI: %w", err)
	}

	return &Gateway{
		clients:       cfg.Clients,
		router:        cfg.Router,
		wrappedNative: cfg.WrappedNative,
		signer:        cfg.Signer,
		gasLimit:      cfg.GasLimit,
		erc20ABI:      parsedERC20,
		pairABI:       parsedPair,
		routerABI:     parsedRouter,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
	}, nil
}

// IsNative reports whether the token address is the chain's native
// asset (represented by its wrapped form in pair listings). Every
// native-vs-token decision in the engine goes through this predicate.
func (g *Gateway) IsNative(token common.Address) bool {
	return token == g.wrappedNative
}

// Account returns the operator account used for write calls.
func (g *Gateway) Account() common.Address {
	if g.signer == nil {
		return common.Address{}
	}
	return g.signer.From
}

// GetReserves reads the pair's current reserves in token0/token1 order.
func (g *Gateway) GetReserves(ctx context.Context, pair common.Address) (reserve0, reserve1 *big.Int, err error) {
	client, err := g.clients.GetClient()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	contract := bind.NewBoundContract(pair, g.pairABI, client, client, client)

	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, "getReserves"); err != nil {
		g.metrics.RecordError(ctx, "gateway")
		return nil, nil, fmt.Errorf("%w: getReserves on %s: %w", ErrContractRead, pair.Hex(), err)
	}

	reserve0, ok0 := out[0].(*big.Int)
	reserve1, ok1 := out[1].(*big.Int)
	if !ok0 || !ok1 {
		return nil, nil, fmt.Errorf("%w: unexpected getReserves output", ErrContractRead)
	}
	return reserve0, reserve1, nil
}

// GetBalance returns the account's balance of the given token in base
// units. The native asset is read from the ledger's account state, any
// other token through its balanceOf view; one signature covers both.
func (g *Gateway) GetBalance(ctx context.Context, token, account common.Address) (*big.Int, error) {
	client, err := g.clients.GetClient()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	if g.IsNative(token) {
		balance, err := client.BalanceAt(ctx, account, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: balance of %s: %w", ErrNetwork, account.Hex(), err)
		}
		return balance, nil
	}

	return g.erc20View(ctx, client, token, "balanceOf", account)
}

// GetAllowance returns how much of the token the trusted router may
// spend on the owner's behalf.
func (g *Gateway) GetAllowance(ctx context.Context, token, owner common.Address) (*big.Int, error) {
	client, err := g.clients.GetClient()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	return g.erc20View(ctx, client, token, "allowance", owner, g.router)
}

// SubmitApproval authorizes the router for the maximum representable
// amount, so each token needs approving at most once per account.
// Callers should treat any nonzero allowance as approved rather than
// matching an exact amount.
func (g *Gateway) SubmitApproval(ctx context.Context, token common.Address) (string, error) {
	client, err := g.clients.GetClient()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	opts, err := g.transactOpts(ctx, nil)
	if err != nil {
		return "", err
	}

	contract := bind.NewBoundContract(token, g.erc20ABI, client, client, client)
	tx, err := contract.Transact(opts, "approve", g.router, abi.MaxUint256)
	if err != nil {
		g.metrics.RecordError(ctx, "gateway")
		return "", fmt.Errorf("approve %s: %w", token.Hex(), err)
	}

	g.logger.Info("submitted spend authorization",
		"token", token.Hex(),
		"tx", tx.Hash().Hex(),
	)
	g.metrics.RecordSwapSubmitted(ctx, "approval")
	return tx.Hash().Hex(), nil
}

// SubmitSwap trades an exact input amount for at least minOut of the
// output token. One of the router's three exact-input entry points is
// selected depending on whether either side is the native asset.
// Multi-hop paths are out of scope; the path is always the direct pair.
func (g *Gateway) SubmitSwap(ctx context.Context, amountIn, minOut *big.Int, tokenIn, tokenOut common.Address, deadline time.Time) (string, error) {
	if !deadline.After(time.Now()) {
		return "", ErrDeadlineInPast
	}

	client, err := g.clients.GetClient()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	method := routeMethod(g.IsNative(tokenIn), g.IsNative(tokenOut))

	var value *big.Int
	if g.IsNative(tokenIn) {
		value = amountIn
	}
	opts, err := g.transactOpts(ctx, value)
	if err != nil {
		return "", err
	}

	path := []common.Address{tokenIn, tokenOut}
	to := g.signer.From
	deadlineArg := big.NewInt(deadline.Unix())

	contract := bind.NewBoundContract(g.router, g.routerABI, client, client, client)

	var tx *types.Transaction
	if method == "swapExactETHForTokens" {
		tx, err = contract.Transact(opts, method, minOut, path, to, deadlineArg)
	} else {
		tx, err = contract.Transact(opts, method, amountIn, minOut, path, to, deadlineArg)
	}
	if err != nil {
		g.metrics.RecordError(ctx, "gateway")
		return "", fmt.Errorf("%w: %s: %w", ErrRouterRejected, method, err)
	}

	g.logger.Info("submitted swap",
		"method", method,
		"token_in", tokenIn.Hex(),
		"token_out", tokenOut.Hex(),
		"amount_in", amountIn.String(),
		"min_out", minOut.String(),
		"deadline", deadline.Unix(),
		"tx", tx.Hash().Hex(),
	)
	g.metrics.RecordSwapSubmitted(ctx, "swap")
	return tx.Hash().Hex(), nil
}

// AwaitSettlement blocks until the transaction is mined with at least
// one confirmation and returns its receipt status verbatim. A
// transaction that cannot be located yields ErrSettlementNotFound
// immediately; there is exactly one await attempt per call and no
// internal retry.
func (g *Gateway) AwaitSettlement(ctx context.Context, txHash string) (SettlementStatus, error) {
	client, err := g.clients.GetClient()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	hash := common.HexToHash(txHash)
	tx, _, err := client.TransactionByHash(ctx, hash)
	if err != nil {
		if errors.Is(err, ethereum.NotFound) {
			return 0, ErrSettlementNotFound
		}
		return 0, fmt.Errorf("%w: lookup %s: %w", ErrNetwork, txHash, err)
	}

	receipt, err := bind.WaitMined(ctx, client, tx)
	if err != nil {
		return 0, fmt.Errorf("%w: awaiting %s: %w", ErrNetwork, txHash, err)
	}

	return SettlementStatus(receipt.Status), nil
}

// routeMethod selects the router entry point for a swap based on which
// side, if any, is the native asset.
func routeMethod(nativeIn, nativeOut bool) string {
	switch {
	case nativeIn:
		return "swapExactETHForTokens"
	case nativeOut:
		return "swapExactTokensForETH"
	default:
		return "swapExactTokensForTokens"
	}
}

func (g *Gateway) erc20View(ctx context.Context, client *ethclient.Client, token common.Address, method string, args ...interface{}) (*big.Int, error) {
	contract := bind.NewBoundContract(token, g.erc20ABI, client, client, client)

	var out []interface{}
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method, args...); err != nil {
		g.metrics.RecordError(ctx, "gateway")
		return nil, fmt.Errorf("%w: %s on %s: %w", ErrContractRead, method, token.Hex(), err)
	}

	v, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected %s output", ErrContractRead, method)
	}
	return v, nil
}

// transactOpts derives per-call transact options from the operator
// signer: fixed gas ceiling, optional attached value.
func (g *Gateway) transactOpts(ctx context.Context, value *big.Int) (*bind.TransactOpts, error) {
	if g.signer == nil {
		return nil, fmt.Errorf("gateway has no signer; write calls unavailable")
	}

	opts := *g.signer
	opts.Context = ctx
	opts.GasLimit = g.gasLimit
	opts.Value = value
	return &opts, nil
}
