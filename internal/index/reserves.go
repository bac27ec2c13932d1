package index

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/platform/worker"
	"github.com/kristjank/token-swap-using-uniswapv2router02/internal/swap"
)

// ReserveReader reads one pair's reserves. Satisfied by
// *gateway.Gateway.
type ReserveReader interface {
	GetReserves(ctx context.Context, pair common.Address) (reserve0, reserve1 *big.Int, err error)
}

// Reserves is one pair's reserve reading in token0/token1 order.
type Reserves struct {
	Reserve0 *big.Int
	Reserve1 *big.Int
}

// Snapshot is a point-in-time reserve map keyed by pair address. Pairs
// whose read failed are absent.
type Snapshot struct {
	Reserves map[string]Reserves
	TakenAt  time.Time
}

// ReserveSnapshot fans the reserve reads for all pairs out over the
// worker pool and collects whatever succeeds. A partially failed fan-out
// is not an error; callers quote from the pairs that are present.
func ReserveSnapshot(pool *worker.Pool, reader ReserveReader, pairs []swap.Pair) Snapshot {
	jobs := make([]worker.Job, 0, len(pairs))
	for _, p := range pairs {
		addr := common.HexToAddress(p.ID)
		jobs = append(jobs, worker.Job{
			ID: p.ID,
			Execute: func(ctx context.Context) (interface{}, error) {
				r0, r1, err := reader.GetReserves(ctx, addr)
				if err != nil {
					return nil, err
				}
				return Reserves{Reserve0: r0, Reserve1: r1}, nil
			},
		})
	}

	snapshot := Snapshot{
		Reserves: make(map[string]Reserves, len(pairs)),
		TakenAt:  time.Now(),
	}
	for _, result := range pool.SubmitAndWait(jobs) {
		if result.Err != nil {
			continue
		}
		if r, ok := result.Value.(Reserves); ok {
			snapshot.Reserves[result.JobID] = r
		}
	}
	return snapshot
}
