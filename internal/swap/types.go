// Package swap holds the token/pair model, the reserve quoter, and the
// orchestration service that ties quoting, approvals, and swap
// submission together.
package swap

import "strings"

// Token describes one fungible asset. Identity is the on-chain address;
// metadata is immutable once obtained from the pair index.
type Token struct {
	ID       string `json:"id"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// Pair represents one exchangeable token pair. ReserveUSD is display-only
// metadata from the index; which token is "first" carries no meaning for
// quoting, so callers resolve direction from addresses.
type Pair struct {
	ID         string `json:"id"`
	ReserveUSD string `json:"reserveUSD"`
	Token0     Token  `json:"token0"`
	Token1     Token  `json:"token1"`
}

// SameID compares token addresses case-insensitively. Subgraph responses
// are lowercase while contract bindings return checksummed hex.
func SameID(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Contains reports whether tokenID is one of the pair's two sides.
func (p Pair) Contains(tokenID string) bool {
	return SameID(p.Token0.ID, tokenID) || SameID(p.Token1.ID, tokenID)
}

// Side returns the pair token matching tokenID.
func (p Pair) Side(tokenID string) (Token, bool) {
	switch {
	case SameID(p.Token0.ID, tokenID):
		return p.Token0, true
	case SameID(p.Token1.ID, tokenID):
		return p.Token1, true
	default:
		return Token{}, false
	}
}

// Other returns the pair token opposite to tokenID.
func (p Pair) Other(tokenID string) (Token, bool) {
	switch {
	case SameID(p.Token0.ID, tokenID):
		return p.Token1, true
	case SameID(p.Token1.ID, tokenID):
		return p.Token0, true
	default:
		return Token{}, false
	}
}
