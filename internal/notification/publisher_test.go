package notification

import (
	"errors"
	"testing"

	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/gateway"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/tracker"
)

func TestEventFromOutcome(t *testing.T) {
	tests := []struct {
		name       string
		outcome    tracker.Outcome
		wantStatus string
		wantError  string
	}{
		{
			name: "succeeded swap",
			outcome: tracker.Outcome{
				Request: tracker.Request{TxHash: "0x1", Kind: tracker.KindSwap, Token: "0xdai"},
				Status:  gateway.StatusSucceeded,
			},
			wantStatus: "succeeded",
		},
		{
			name: "reverted swap",
			outcome: tracker.Outcome{
				Request: tracker.Request{TxHash: "0x2", Kind: tracker.KindSwap},
				Status:  gateway.StatusReverted,
			},
			wantStatus: "reverted",
		},
		{
			name: "await error wins over status",
			outcome: tracker.Outcome{
				Request: tracker.Request{TxHash: "0x3", Kind: tracker.KindApproval},
				Err:     errors.New("rpc down"),
			},
			wantStatus: "error",
			wantError:  "rpc down",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := eventFromOutcome(tt.outcome)
			if ev.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", ev.Status, tt.wantStatus)
			}
			if ev.Error != tt.wantError {
				t.Errorf("Error = %q, want %q", ev.Error, tt.wantError)
			}
			if ev.TxHash != tt.outcome.Request.TxHash {
				t.Errorf("TxHash = %q", ev.TxHash)
			}
			if ev.Kind != tt.outcome.Request.Kind.String() {
				t.Errorf("Kind = %q", ev.Kind)
			}
			if ev.Timestamp.IsZero() {
				t.Error("Timestamp not set")
			}
		})
	}
}
