package swap

import (
	"errors"
	"math/big"
	"testing"

	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/money"
)

func TestAmountOut(t *testing.T) {
	tests := []struct {
		name       string
		reserveIn  string
		reserveOut string
		amountIn   string
		expected   string
	}{
		// 997*10000*1567234 / (997*10000 + 1000*1234567) = 12555 after
		// truncation.
		{"typical pool", "1234567", "1567234", "10000", "12555"},
		{"zero input", "1234567", "1567234", "0", "0"},
		{"empty pool", "0", "1567234", "10000", "1567234"},
		{"all zero", "0", "0", "0", "0"},
		{"tiny input rounds to zero", "1000000000", "1000000000", "1", "0"},
		{
			"18 decimal reserves",
			"5000000000000000000000",
			"12000000000000000000000",
			"1000000000000000000",
			"2392322970799622555",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rIn, _ := new(big.Int).SetString(tt.reserveIn, 10)
			rOut, _ := new(big.Int).SetString(tt.reserveOut, 10)
			in, _ := new(big.Int).SetString(tt.amountIn, 10)

			got := AmountOut(rIn, rOut, in)
			if got.String() != tt.expected {
				t.Errorf("AmountOut(%s, %s, %s) = %s, want %s",
					tt.reserveIn, tt.reserveOut, tt.amountIn, got, tt.expected)
			}
		})
	}
}

func TestAmountOutNilInputs(t *testing.T) {
	if got := AmountOut(nil, big.NewInt(1), big.NewInt(1)); got.Sign() != 0 {
		t.Errorf("nil reserveIn should quote zero, got %s", got)
	}
	if got := AmountOut(big.NewInt(1), nil, big.NewInt(1)); got.Sign() != 0 {
		t.Errorf("nil reserveOut should quote zero, got %s", got)
	}
	if got := AmountOut(big.NewInt(1), big.NewInt(1), nil); got.Sign() != 0 {
		t.Errorf("nil amountIn should quote zero, got %s", got)
	}
}

func TestAmountOutMonotonic(t *testing.T) {
	rIn := big.NewInt(1234567)
	rOut := big.NewInt(1567234)

	prev := new(big.Int)
	for _, in := range []int64{1, 10, 100, 1000, 10000, 100000, 1000000} {
		out := AmountOut(rIn, rOut, big.NewInt(in))
		if out.Cmp(prev) < 0 {
			t.Fatalf("output decreased: in=%d out=%s prev=%s", in, out, prev)
		}
		if out.Cmp(rOut) >= 0 {
			t.Fatalf("output %s reached reserve %s for in=%d", out, rOut, in)
		}
		prev = out
	}
}

func TestOrientReserves(t *testing.T) {
	pair := Pair{
		ID:     "0xpair",
		Token0: Token{ID: "0xAAAA", Symbol: "AAA", Decimals: 18},
		Token1: Token{ID: "0xBBBB", Symbol: "BBB", Decimals: 6},
	}
	r0 := big.NewInt(111)
	r1 := big.NewInt(222)

	t.Run("input is token0", func(t *testing.T) {
		rIn, rOut, err := OrientReserves(pair, "0xAAAA", r0, r1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rIn != r0 || rOut != r1 {
			t.Errorf("got (%s, %s), want (111, 222)", rIn, rOut)
		}
	})

	t.Run("input is token1", func(t *testing.T) {
		rIn, rOut, err := OrientReserves(pair, "0xBBBB", r0, r1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rIn != r1 || rOut != r0 {
			t.Errorf("got (%s, %s), want (222, 111)", rIn, rOut)
		}
	})

	t.Run("case insensitive match", func(t *testing.T) {
		_, _, err := OrientReserves(pair, "0xaaaa", r0, r1)
		if err != nil {
			t.Fatalf("lowercase address should match: %v", err)
		}
	})

	t.Run("foreign token", func(t *testing.T) {
		_, _, err := OrientReserves(pair, "0xCCCC", r0, r1)
		if !errors.Is(err, ErrInvalidPairing) {
			t.Fatalf("got %v, want ErrInvalidPairing", err)
		}
	})
}

func TestMinimumOut(t *testing.T) {
	tests := []struct {
		name      string
		out       string
		tolerance money.BPS
		expected  string
	}{
		{"one percent", "1000000", 100, "990000"},
		{"zero tolerance", "1000000", 0, "1000000"},
		{"full tolerance", "1000000", 10000, "0"},
		{"truncates toward zero", "999", 100, "989"},
		{"zero amount", "0", 100, "0"},
		{
			"18 decimals half percent",
			"2392322970799622555",
			50,
			"2380361355945624442",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _ := new(big.Int).SetString(tt.out, 10)
			got := MinimumOut(out, tt.tolerance)
			if got.String() != tt.expected {
				t.Errorf("MinimumOut(%s, %d) = %s, want %s", tt.out, tt.tolerance, got, tt.expected)
			}
		})
	}
}

func TestMinimumOutNil(t *testing.T) {
	if got := MinimumOut(nil, 100); got.Sign() != 0 {
		t.Errorf("nil amount should yield zero, got %s", got)
	}
}
