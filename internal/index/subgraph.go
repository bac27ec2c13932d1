// Package index maintains the set of exchangeable pairs and tokens,
// sourced from the Uniswap V2 subgraph, plus point-in-time reserve
// snapshots.
package index

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/swap"
)

// DefaultSubgraphURL is the hosted Uniswap V2 subgraph endpoint.
const DefaultSubgraphURL = "https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v2"

// SubgraphClient queries the pair listing from the subgraph.
type SubgraphClient struct {
	client   *http.Client
	url      string
	topPairs int
	logger   *observability.Logger
	metrics  *observability.Metrics
}

// SubgraphConfig holds subgraph client configuration.
type SubgraphConfig struct {
	URL      string
	TopPairs int
	Timeout  time.Duration
	Logger   *observability.Logger
	Metrics  *observability.Metrics
}

// NewSubgraphClient creates a subgraph client.
func NewSubgraphClient(cfg SubgraphConfig) *SubgraphClient {
	if cfg.URL == "" {
		cfg.URL = DefaultSubgraphURL
	}
	if cfg.TopPairs <= 0 {
		cfg.TopPairs = 100
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &SubgraphClient{
		client:   &http.Client{Timeout: cfg.Timeout},
		url:      cfg.URL,
		topPairs: cfg.TopPairs,
		logger:   cfg.Logger,
		metrics:  cfg.Metrics,
	}
}

type gqlRequest struct {
	Query string `json:"query"`
}

// The subgraph serializes BigInt fields, decimals included, as strings.
type gqlToken struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Decimals string `json:"decimals"`
}

type gqlPair struct {
	ID         string   `json:"id"`
	ReserveUSD string   `json:"reserveUSD"`
	Token0     gqlToken `json:"token0"`
	Token1     gqlToken `json:"token1"`
}

type gqlResponse struct {
	Data struct {
		Pairs []gqlPair `json:"pairs"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

// TopPairs fetches the largest pairs by USD reserve, in descending
// order.
func (c *SubgraphClient) TopPairs(ctx context.Context) ([]swap.Pair, error) {
	query := fmt.Sprintf(`{
		pairs(orderBy: reserveUSD, orderDirection: desc, first: %d) {
			id
			token0 { id symbol decimals }
			token1 { id symbol decimals }
			reserveUSD
		}
	}`, c.topPairs)

	body, err := json.Marshal(gqlRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("encoding subgraph query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building subgraph request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.metrics.RecordError(ctx, "subgraph")
		return nil, fmt.Errorf("subgraph request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.RecordError(ctx, "subgraph")
		return nil, fmt.Errorf("subgraph returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading subgraph response: %w", err)
	}

	var decoded gqlResponse
	if err := json.Unmarshal(data, &decoded); err != nil {
		return nil, fmt.Errorf("decoding subgraph response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		return nil, fmt.Errorf("subgraph error: %s", decoded.Errors[0].Message)
	}

	pairs := make([]swap.Pair, 0, len(decoded.Data.Pairs))
	for _, p := range decoded.Data.Pairs {
		token0, err := p.Token0.toToken()
		if err != nil {
			c.logger.Warn("skipping pair with bad token", "pair", p.ID, "error", err)
			continue
		}
		token1, err := p.Token1.toToken()
		if err != nil {
			c.logger.Warn("skipping pair with bad token", "pair", p.ID, "error", err)
			continue
		}
		pairs = append(pairs, swap.Pair{
			ID:         p.ID,
			ReserveUSD: p.ReserveUSD,
			Token0:     token0,
			Token1:     token1,
		})
	}
	return pairs, nil
}

func (t gqlToken) toToken() (swap.Token, error) {
	decimals, err := strconv.Atoi(t.Decimals)
	if err != nil {
		return swap.Token{}, fmt.Errorf("token %s has non-numeric decimals %q", t.ID, t.Decimals)
	}
	return swap.Token{ID: t.ID, Symbol: t.Symbol, Decimals: decimals}, nil
}
