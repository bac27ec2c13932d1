package index

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/cache"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/observability"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/swap"
)

const pairsCacheKey = "index:pairs"

// Index holds the current pair/token snapshot. It never refreshes
// itself; callers own the schedule and invoke Refresh.
type Index struct {
	subgraph      *SubgraphClient
	cache         cache.Cache
	wrappedNative string
	denylist      map[string]struct{}
	ttl           time.Duration
	logger        *observability.Logger
	metrics       *observability.Metrics

	mu          sync.RWMutex
	pairs       []swap.Pair
	tokens      []swap.Token
	refreshedAt time.Time
}

// Config holds index configuration.
type Config struct {
	Subgraph *SubgraphClient
	// Cache, when set, serves pair listings across refreshes and
	// restarts.
	Cache cache.Cache
	// WrappedNative is the wrapped native token address; it sorts first
	// in the token listing.
	WrappedNative string
	// Denylist holds token addresses excluded from the token listing.
	// Their pairs are kept so existing counterparties still quote.
	Denylist []string
	// TTL bounds how long a cached pair listing is reused.
	TTL     time.Duration
	Logger  *observability.Logger
	Metrics *observability.Metrics
}

// New creates an Index.
func New(cfg Config) (*Index, error) {
	if cfg.Subgraph == nil {
		return nil, fmt.Errorf("subgraph client is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 5 * time.Minute
	}

	denylist := make(map[string]struct{}, len(cfg.Denylist))
	for _, id := range cfg.Denylist {
		denylist[strings.ToLower(id)] = struct{}{}
	}

	return &Index{
		subgraph:      cfg.Subgraph,
		cache:         cfg.Cache,
		wrappedNative: cfg.WrappedNative,
		denylist:      denylist,
		ttl:           cfg.TTL,
		logger:        cfg.Logger,
		metrics:       cfg.Metrics,
	}, nil
}

// Refresh replaces the snapshot with a fresh pair listing, preferring
// the cache over a subgraph round trip.
func (ix *Index) Refresh(ctx context.Context) error {
	started := time.Now()

	pairs, fromCache := ix.cachedPairs(ctx)
	if !fromCache {
		var err error
		pairs, err = ix.subgraph.TopPairs(ctx)
		if err != nil {
			return fmt.Errorf("refreshing pair index: %w", err)
		}
		if ix.cache != nil {
			if err := ix.cache.Set(ctx, pairsCacheKey, pairs, ix.ttl); err != nil {
				ix.logger.Warn("caching pair index failed", "error", err)
			}
		}
	}

	tokens := ix.deriveTokens(pairs)

	ix.mu.Lock()
	ix.pairs = pairs
	ix.tokens = tokens
	ix.refreshedAt = time.Now()
	ix.mu.Unlock()

	ix.metrics.RecordIndexRefresh(ctx, len(pairs), time.Since(started))
	ix.logger.Info("pair index refreshed",
		"pairs", len(pairs),
		"tokens", len(tokens),
		"cached", fromCache,
	)
	return nil
}

// cachedPairs loads the pair listing from the cache. Values that come
// back as generic decoded JSON, after a Redis round trip, are coerced
// through re-encoding; anything unusable counts as a miss.
func (ix *Index) cachedPairs(ctx context.Context) ([]swap.Pair, bool) {
	if ix.cache == nil {
		return nil, false
	}

	v, err := ix.cache.Get(ctx, pairsCacheKey)
	if err != nil {
		ix.metrics.RecordCacheMiss(ctx, "index")
		return nil, false
	}

	if pairs, ok := v.([]swap.Pair); ok {
		ix.metrics.RecordCacheHit(ctx, "index")
		return pairs, true
	}

	raw, err := json.Marshal(v)
	if err != nil {
		ix.metrics.RecordCacheMiss(ctx, "index")
		return nil, false
	}
	var pairs []swap.Pair
	if err := json.Unmarshal(raw, &pairs); err != nil || len(pairs) == 0 {
		ix.metrics.RecordCacheMiss(ctx, "index")
		return nil, false
	}

	ix.metrics.RecordCacheHit(ctx, "index")
	return pairs, true
}

// deriveTokens extracts the deduplicated token set from the pairs,
// drops denylisted tokens, and orders wrapped native first then by
// symbol.
func (ix *Index) deriveTokens(pairs []swap.Pair) []swap.Token {
	seen := make(map[string]struct{}, len(pairs)*2)
	tokens := make([]swap.Token, 0, len(pairs)*2)

	for _, p := range pairs {
		for _, t := range []swap.Token{p.Token0, p.Token1} {
			key := strings.ToLower(t.ID)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if _, banned := ix.denylist[key]; banned {
				continue
			}
			tokens = append(tokens, t)
		}
	}

	sort.Slice(tokens, func(i, j int) bool {
		if swap.SameID(tokens[i].ID, ix.wrappedNative) {
			return true
		}
		if swap.SameID(tokens[j].ID, ix.wrappedNative) {
			return false
		}
		return tokens[i].Symbol < tokens[j].Symbol
	})
	return tokens
}

// Pairs returns the current pair snapshot.
func (ix *Index) Pairs() []swap.Pair {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]swap.Pair, len(ix.pairs))
	copy(out, ix.pairs)
	return out
}

// Tokens returns the current token listing.
func (ix *Index) Tokens() []swap.Token {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	out := make([]swap.Token, len(ix.tokens))
	copy(out, ix.tokens)
	return out
}

// RefreshedAt returns when the snapshot was last replaced.
func (ix *Index) RefreshedAt() time.Time {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.refreshedAt
}

// FindPair returns the pair joining the two tokens, if one is indexed.
func (ix *Index) FindPair(tokenA, tokenB string) (swap.Pair, bool) {
	if swap.SameID(tokenA, tokenB) {
		return swap.Pair{}, false
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()
	for _, p := range ix.pairs {
		if p.Contains(tokenA) && p.Contains(tokenB) {
			return p, true
		}
	}
	return swap.Pair{}, false
}

// PairableTokens returns every listed token that shares a pair with the
// input token, in listing order.
func (ix *Index) PairableTokens(inputTokenID string) []swap.Token {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []swap.Token
	for _, t := range ix.tokens {
		if swap.SameID(t.ID, inputTokenID) {
			continue
		}
		for _, p := range ix.pairs {
			if p.Contains(t.ID) && p.Contains(inputTokenID) {
				out = append(out, t)
				break
			}
		}
	}
	return out
}
