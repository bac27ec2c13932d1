package main

import (
	"context"
	"log"
	"math/big"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/sync/errgroup"

	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/api"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/blockchain"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/gateway"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/index"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/money"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/notification"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/aws"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/cache"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/config"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/resilience"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/worker"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/swap"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/tracker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("Loading configuration...")
	cfg := config.MustLoad("config.yaml")

	// Observability comes up before anything that logs through it.
	logger := observability.NewLogger(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)

	metrics, err := observability.NewMetrics("swapd", cfg.Observability.Metrics.Enabled)
	if err != nil {
		log.Fatalf("Failed to create metrics: %v", err)
	}

	tracer, err := observability.NewTracerProvider(ctx, "swapd", cfg.Observability.Tracing.Endpoint, cfg.Observability.Tracing.Enabled)
	if err != nil {
		log.Fatalf("Failed to create tracer: %v", err)
	}
	defer tracer.Shutdown(context.Background())

	logger.Info("observability setup complete")

	// Cache layers: memory always, Redis behind it when configured.
	memCache := cache.NewMemoryCache(cfg.Cache.L1MaxSize)
	defer memCache.Close()

	var pairCache cache.Cache = memCache
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.LogError(ctx, "failed to create Redis cache", err)
			log.Fatalf("Failed to create Redis cache: %v", err)
		}
		defer redisCache.Close()
		pairCache = cache.NewLayeredCache(memCache, redisCache)
	}

	logger.Info("connecting to Ethereum...")
	endpoints := make([]blockchain.EndpointConfig, len(cfg.Ethereum.RPCEndpoints))
	for i, ep := range cfg.Ethereum.RPCEndpoints {
		endpoints[i] = blockchain.EndpointConfig{URL: ep.URL, Weight: ep.Weight}
	}
	clientPool, err := blockchain.NewClientPool(blockchain.ClientPoolConfig{
		Endpoints: endpoints,
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		logger.LogError(ctx, "failed to create client pool", err)
		log.Fatalf("Failed to create client pool: %v", err)
	}
	defer clientPool.Close()

	signer, err := buildSigner(cfg)
	if err != nil {
		logger.LogError(ctx, "failed to build signer", err)
		log.Fatalf("Failed to build signer: %v", err)
	}
	if signer == nil {
		logger.Warn("no operator key configured, running read-only")
	}

	gw, err := gateway.New(gateway.Config{
		Clients:       clientPool,
		Router:        common.HexToAddress(cfg.Swap.RouterAddress),
		WrappedNative: common.HexToAddress(cfg.Swap.WrappedNativeAddress),
		Signer:        signer,
		GasLimit:      cfg.Swap.GasLimit,
		Logger:        logger,
		Metrics:       metrics,
	})
	if err != nil {
		logger.LogError(ctx, "failed to create gateway", err)
		log.Fatalf("Failed to create gateway: %v", err)
	}

	subgraph := index.NewSubgraphClient(index.SubgraphConfig{
		URL:      cfg.Subgraph.URL,
		TopPairs: cfg.Subgraph.TopPairs,
		Logger:   logger,
		Metrics:  metrics,
	})
	ix, err := index.New(index.Config{
		Subgraph:      subgraph,
		Cache:         pairCache,
		WrappedNative: cfg.Swap.WrappedNativeAddress,
		Denylist:      cfg.Subgraph.Denylist,
		TTL:           cfg.Cache.PairsTTL,
		Logger:        logger,
		Metrics:       metrics,
	})
	if err != nil {
		logger.LogError(ctx, "failed to create index", err)
		log.Fatalf("Failed to create index: %v", err)
	}

	logger.Info("fetching initial pair index...")
	refreshRetry := resilience.DefaultRetryConfig()
	if err := resilience.Retry(ctx, refreshRetry, ix.Refresh); err != nil {
		logger.LogError(ctx, "initial index refresh failed", err)
		log.Fatalf("Failed to fetch initial pair index: %v", err)
	}

	trk := tracker.New(gw, logger, metrics)

	publisher := buildPublisher(ctx, cfg, logger, metrics, observability.NewTracer("swapd"))
	trk.OnResolve(func(outcome tracker.Outcome) {
		if err := publisher.PublishSettlement(context.Background(), outcome); err != nil {
			logger.LogError(ctx, "settlement notification failed", err, "tx", outcome.Request.TxHash)
		}
	})

	svc, err := swap.NewService(swap.ServiceConfig{
		Gateway:   gw,
		Pairs:     ix,
		Tracker:   trk,
		Tolerance: money.BPS(cfg.Swap.SlippageBPS),
		Deadline:  cfg.Swap.Deadline,
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		logger.LogError(ctx, "failed to create swap service", err)
		log.Fatalf("Failed to create swap service: %v", err)
	}

	reservePool := worker.NewPool(ctx, 8, cfg.Subgraph.TopPairs)
	defer reservePool.Close()

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Observability.Metrics.Enabled {
		g.Go(func() error {
			return serveMetrics(gctx, cfg.Observability.Metrics.Address, metrics, logger)
		})
	}

	var apiServer *api.Server
	if cfg.API.Enabled {
		apiServer = api.NewServer(api.ServerConfig{
			Addr:    cfg.API.Address,
			Quoter:  svc,
			Listing: ix,
			Pending: trk,
			Balance: gw,
			Logger:  logger,
		})
		g.Go(func() error {
			return apiServer.Listen()
		})
		g.Go(func() error {
			<-gctx.Done()
			return apiServer.Shutdown()
		})
	}

	// Index refresh loop. The core never schedules anything; the daemon
	// owns every ticker.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.Subgraph.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := resilience.Retry(gctx, refreshRetry, ix.Refresh); err != nil {
					logger.LogError(gctx, "index refresh failed", err)
				}
			}
		}
	})

	// Reserve snapshot loop keeps the pool metrics and logs warm so
	// operators can see pricing drift between quotes.
	g.Go(func() error {
		ticker := time.NewTicker(cfg.Subgraph.RefreshInterval / 2)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				snap := index.ReserveSnapshot(reservePool, gw, ix.Pairs())
				logger.Info("reserve snapshot taken",
					"pairs", len(snap.Reserves),
					"taken_at", snap.TakenAt,
				)
			}
		}
	})

	// Operator balance loop, only meaningful with a signer.
	if signer != nil {
		g.Go(func() error {
			ticker := time.NewTicker(time.Minute)
			defer ticker.Stop()
			native := common.HexToAddress(cfg.Swap.WrappedNativeAddress)
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					balance, err := gw.GetBalance(gctx, native, gw.Account())
					if err != nil {
						logger.LogError(gctx, "balance refresh failed", err)
						continue
					}
					logger.Info("operator balance",
						"account", gw.Account().Hex(),
						"wei", balance.String(),
						"pending", trk.Size(),
					)
				}
			}
		})
	}

	logger.Info("swapd started",
		"router", cfg.Swap.RouterAddress,
		"chain_id", cfg.Ethereum.ChainID,
		"pairs", len(ix.Pairs()),
	)

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		logger.LogError(ctx, "swapd exiting with error", err)
		log.Fatalf("swapd: %v", err)
	}
	logger.Info("swapd stopped")
}

// buildSigner derives the transact signer from the configured operator
// key. A missing key yields a nil signer and a read-only daemon.
func buildSigner(cfg *config.Config) (*bind.TransactOpts, error) {
	if cfg.Ethereum.PrivateKey == "" {
		return nil, nil
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.Ethereum.PrivateKey, "0x"))
	if err != nil {
		return nil, err
	}
	return bind.NewKeyedTransactorWithChainID(key, big.NewInt(cfg.Ethereum.ChainID))
}

func buildPublisher(ctx context.Context, cfg *config.Config, logger *observability.Logger, metrics *observability.Metrics, tracer observability.Tracer) notification.Publisher {
	if !cfg.AWS.Enabled {
		return notification.NewNoOpPublisher(logger)
	}

	awsCfg, err := aws.LoadAWSConfig(ctx, aws.Config{Region: cfg.AWS.Region})
	if err != nil {
		logger.LogError(ctx, "failed to load AWS config", err)
		log.Fatalf("Failed to load AWS config: %v", err)
	}

	snsClient := aws.NewSNSClient(aws.SNSClientConfig{
		AWSConfig: awsCfg,
		Logger:    logger,
		Metrics:   metrics,
	})
	publisher, err := notification.NewSNSPublisher(notification.SNSPublisherConfig{
		SNSClient: snsClient,
		TopicARN:  cfg.AWS.TopicARN,
		Logger:    logger,
		Tracer:    tracer,
	})
	if err != nil {
		logger.LogError(ctx, "failed to create publisher", err)
		log.Fatalf("Failed to create publisher: %v", err)
	}
	return publisher
}

func serveMetrics(ctx context.Context, addr string, metrics *observability.Metrics, logger *observability.Logger) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("metrics server listening", "addr", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
