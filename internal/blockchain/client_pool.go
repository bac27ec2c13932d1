// Package blockchain manages Ethereum RPC connectivity for the gateway.
package blockchain

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
)

// RPCEndpoint is a single Ethereum RPC endpoint with health state.
type RPCEndpoint struct {
	URL     string
	Weight  int
	Client  *ethclient.Client
	healthy atomic.Bool
}

// ClientPool manages multiple RPC endpoints with health tracking and
// round-robin failover.
type ClientPool struct {
	endpoints      []*RPCEndpoint
	current        int
	mu             sync.RWMutex
	logger         *observability.Logger
	metrics        *observability.Metrics
	healthCheckTTL time.Duration
}

// ClientPoolConfig holds client pool configuration.
type ClientPoolConfig struct {
	Endpoints      []EndpointConfig
	Logger         *observability.Logger
	Metrics        *observability.Metrics
	HealthCheckTTL time.Duration
}

// EndpointConfig describes one endpoint.
type EndpointConfig struct {
	URL    string
	Weight int
}

// NewClientPool dials all endpoints and starts background health
// checks. At least one endpoint must be reachable.
func NewClientPool(cfg ClientPoolConfig) (*ClientPool, error) {
	if len(cfg.Endpoints) == 0 {
		return nil, fmt.Errorf("at least one RPC endpoint is required")
	}
	if cfg.HealthCheckTTL == 0 {
		cfg.HealthCheckTTL = 30 * time.Second
	}

	endpoints := make([]*RPCEndpoint, 0, len(cfg.Endpoints))
	for _, epCfg := range cfg.Endpoints {
		endpoint := &RPCEndpoint{URL: epCfg.URL, Weight: epCfg.Weight}

		client, err := ethclient.Dial(epCfg.URL)
		if err != nil {
			cfg.Logger.LogError(context.Background(), "failed to connect to RPC endpoint", err,
				"url", epCfg.URL,
			)
			endpoint.healthy.Store(false)
			endpoints = append(endpoints, endpoint)
			continue
		}

		endpoint.Client = client
		endpoint.healthy.Store(true)
		endpoints = append(endpoints, endpoint)

		cfg.Logger.Info("connected to RPC endpoint", "url", epCfg.URL, "weight", epCfg.Weight)
	}

	hasHealthy := false
	for _, ep := range endpoints {
		if ep.healthy.Load() {
			hasHealthy = true
			break
		}
	}
	if !hasHealthy {
		return nil, fmt.Errorf("no healthy RPC endpoints available")
	}

	pool := &ClientPool{
		endpoints:      endpoints,
		logger:         cfg.Logger,
		metrics:        cfg.Metrics,
		healthCheckTTL: cfg.HealthCheckTTL,
	}

	go pool.startHealthChecks(context.Background())

	return pool, nil
}

// GetClient returns the next healthy client using round-robin
// selection.
func (cp *ClientPool) GetClient() (*ethclient.Client, error) {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	for attempts := 0; attempts < len(cp.endpoints); attempts++ {
		endpoint := cp.endpoints[cp.current]
		cp.current = (cp.current + 1) % len(cp.endpoints)

		if endpoint.healthy.Load() && endpoint.Client != nil {
			return endpoint.Client, nil
		}
	}

	return nil, fmt.Errorf("no healthy RPC endpoints available")
}

// MarkUnhealthy flags an endpoint as unhealthy until the next
// successful health check.
func (cp *ClientPool) MarkUnhealthy(url string) {
	cp.mu.RLock()
	defer cp.mu.RUnlock()

	for _, endpoint := range cp.endpoints {
		if endpoint.URL == url {
			if endpoint.healthy.Swap(false) {
				cp.logger.Warn("marking RPC endpoint as unhealthy", "url", url)
				cp.metrics.RecordRPCEndpointHealth(context.Background(), url, false)
			}
			return
		}
	}
}

func (cp *ClientPool) startHealthChecks(ctx context.Context) {
	ticker := time.NewTicker(cp.healthCheckTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			checkCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			cp.mu.RLock()
			endpoints := cp.endpoints
			cp.mu.RUnlock()
			for _, endpoint := range endpoints {
				cp.checkEndpoint(checkCtx, endpoint)
			}
			cancel()
		}
	}
}

func (cp *ClientPool) checkEndpoint(ctx context.Context, endpoint *RPCEndpoint) {
	if endpoint.Client == nil {
		client, err := ethclient.Dial(endpoint.URL)
		if err != nil {
			endpoint.healthy.Store(false)
			cp.metrics.RecordRPCEndpointHealth(ctx, endpoint.URL, false)
			return
		}
		endpoint.Client = client
		cp.logger.Info("reconnected to RPC endpoint", "url", endpoint.URL)
	}

	if _, err := endpoint.Client.BlockNumber(ctx); err != nil {
		// Context expiry is not evidence the endpoint itself is bad.
		if ctx.Err() != nil {
			return
		}
		if endpoint.healthy.Swap(false) {
			cp.logger.LogError(ctx, "RPC endpoint health check failed", err, "url", endpoint.URL)
		}
		cp.metrics.RecordRPCEndpointHealth(ctx, endpoint.URL, false)
		endpoint.Client.Close()
		endpoint.Client = nil
		return
	}

	if !endpoint.healthy.Swap(true) {
		cp.logger.Info("RPC endpoint is now healthy", "url", endpoint.URL)
	}
	cp.metrics.RecordRPCEndpointHealth(ctx, endpoint.URL, true)
}

// HealthyEndpointCount returns the number of currently healthy
// endpoints.
func (cp *ClientPool) HealthyEndpointCount() int {
	cp.mu.RLock()
	defer cp.mu.RUnlock()

	count := 0
	for _, endpoint := range cp.endpoints {
		if endpoint.healthy.Load() {
			count++
		}
	}
	return count
}

// Close closes all client connections.
func (cp *ClientPool) Close() {
	cp.mu.Lock()
	defer cp.mu.Unlock()

	for _, endpoint := range cp.endpoints {
		if endpoint.Client != nil {
			endpoint.Client.Close()
		}
	}
	cp.logger.Info("closed all RPC client connections")
}
