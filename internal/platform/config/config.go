// Package config loads and validates the swap engine configuration.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the swap engine.
type Config struct {
	Ethereum      EthereumConfig      `mapstructure:"ethereum"`
	Swap          SwapConfig          `mapstructure:"swap"`
	Subgraph      SubgraphConfig      `mapstructure:"subgraph"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Cache         CacheConfig         `mapstructure:"cache"`
	AWS           AWSConfig           `mapstructure:"aws"`
	API           APIConfig           `mapstructure:"api"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// EthereumConfig holds chain connection configuration.
type EthereumConfig struct {
	ChainID      int64         `mapstructure:"chain_id"`
	RPCEndpoints []RPCEndpoint `mapstructure:"rpc_endpoints"`
	// PrivateKey is the hex-encoded operator key used to sign write
	// calls. Bound to SWAP_ETHEREUM_PRIVATE_KEY; never put it in the
	// config file.
	PrivateKey string `mapstructure:"private_key"`
}

// RPCEndpoint represents one Ethereum RPC endpoint.
type RPCEndpoint struct {
	URL    string `mapstructure:"url"`
	Weight int    `mapstructure:"weight"`
}

// SwapConfig holds router and trade policy configuration. The router
// address is configuration rather than a literal so the engine stays
// portable across deployments.
type SwapConfig struct {
	RouterAddress        string        `mapstructure:"router_address"`
	WrappedNativeAddress string        `mapstructure:"wrapped_native_address"`
	SlippageBPS          int64         `mapstructure:"slippage_bps"`
	GasLimit             uint64        `mapstructure:"gas_limit"`
	Deadline             time.Duration `mapstructure:"deadline"`
}

// SubgraphConfig holds pair index configuration.
type SubgraphConfig struct {
	URL             string        `mapstructure:"url"`
	TopPairs        int           `mapstructure:"top_pairs"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	Denylist        []string      `mapstructure:"denylist"`
}

// RedisConfig holds Redis connection configuration.
type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig holds cache sizing and TTLs.
type CacheConfig struct {
	L1MaxSize int           `mapstructure:"l1_max_size"`
	PairsTTL  time.Duration `mapstructure:"pairs_ttl"`
}

// AWSConfig holds settlement notification configuration.
type AWSConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Region   string `mapstructure:"region"`
	TopicARN string `mapstructure:"topic_arn"`
}

// APIConfig holds the HTTP quote API configuration.
type APIConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// ObservabilityConfig holds logging, metrics, and tracing configuration.
type ObservabilityConfig struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Tracing TracingConfig `mapstructure:"tracing"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// TracingConfig holds tracing configuration.
type TracingConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// Load reads configuration from the given file, environment overrides
// applied with the SWAP_ prefix.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("SWAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad is Load, fatal on error.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ethereum.chain_id", 1)
	v.SetDefault("swap.router_address", "0x7a250d5630B4cF539739dF2C5dAcb4c659F2488D")
	v.SetDefault("swap.wrapped_native_address", "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	v.SetDefault("swap.slippage_bps", 100)
	v.SetDefault("swap.gas_limit", 200000)
	v.SetDefault("swap.deadline", 10*time.Minute)
	v.SetDefault("subgraph.url", "https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v2")
	v.SetDefault("subgraph.top_pairs", 100)
	v.SetDefault("subgraph.refresh_interval", 5*time.Minute)
	v.SetDefault("cache.l1_max_size", 1000)
	v.SetDefault("cache.pairs_ttl", 5*time.Minute)
	v.SetDefault("api.address", ":8080")
	v.SetDefault("observability.logging.level", "info")
	v.SetDefault("observability.logging.format", "json")
	v.SetDefault("observability.metrics.address", ":9090")
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if len(c.Ethereum.RPCEndpoints) == 0 {
		return fmt.Errorf("at least one ethereum.rpc_endpoints entry is required")
	}
	for i, ep := range c.Ethereum.RPCEndpoints {
		if ep.URL == "" {
			return fmt.Errorf("ethereum.rpc_endpoints[%d].url is required", i)
		}
	}
	if c.Swap.RouterAddress == "" {
		return fmt.Errorf("swap.router_address is required")
	}
	if c.Swap.WrappedNativeAddress == "" {
		return fmt.Errorf("swap.wrapped_native_address is required")
	}
	if c.Swap.SlippageBPS < 0 || c.Swap.SlippageBPS > 10000 {
		return fmt.Errorf("swap.slippage_bps must be within [0, 10000], got %d", c.Swap.SlippageBPS)
	}
	if c.Swap.Deadline <= 0 {
		return fmt.Errorf("swap.deadline must be positive")
	}
	if c.AWS.Enabled && c.AWS.TopicARN == "" {
		return fmt.Errorf("aws.topic_arn is required when aws.enabled is set")
	}
	return nil
}
