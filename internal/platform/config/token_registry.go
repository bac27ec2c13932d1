package config

import (
	"fmt"
	"strings"
)

// TokenInfo contains metadata for a recognized token.
type TokenInfo struct {
	Symbol   string // token symbol (WETH, DAI, USDC, ...)
	Address  string // Ethereum mainnet address
	Decimals int    // token decimals (18 for WETH/DAI, 6 for USDC)
}

// TokenRegistry maps symbols of well-known Ethereum mainnet tokens to
// their on-chain information. The pair index supplies the full token
// set at runtime; this registry seeds defaults and test fixtures.
var TokenRegistry = map[string]TokenInfo{
	"WETH": {
		Symbol:   "WETH",
		Address:  "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2",
		Decimals: 18,
	},
	"DAI": {
		Symbol:   "DAI",
		Address:  "0x6B175474E89094C44Da98b954EedeAC495271d0F",
		Decimals: 18,
	},
	"USDC": {
		Symbol:   "USDC",
		Address:  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
		Decimals: 6,
	},
	"USDT": {
		Symbol:   "USDT",
		Address:  "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		Decimals: 6,
	},
	"WBTC": {
		Symbol:   "WBTC",
		Address:  "0x2260FAC5E5542a773Aa44fBCfeDf7C193bc2C599",
		Decimals: 8,
	},
	"UNI": {
		Symbol:   "UNI",
		Address:  "0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984",
		Decimals: 18,
	},
}

// LookupToken resolves a symbol to its registry entry.
func LookupToken(symbol string) (TokenInfo, error) {
	info, ok := TokenRegistry[strings.ToUpper(symbol)]
	if !ok {
		return TokenInfo{}, fmt.Errorf("unknown token symbol: %s", symbol)
	}
	return info, nil
}
