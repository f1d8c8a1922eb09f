package worklist_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/amorph/worklist"
)

// TestBulkSyncRounds_SingleWorker walks three generations through the
// two-phase queue deterministically: pushes of round N surface only after
// the swap that ends round N.
func TestBulkSyncRounds_SingleWorker(t *testing.T) {
	wl := worklist.BulkSynchronous[int]()(worklist.Config{Workers: 1, ChunkSize: 4})

	// Generation 0 seeds; generation = item / 100.
	wl.Push(0, 1)
	wl.Push(0, 2)
	wl.Flush(0)

	var order []int
	for {
		v, ok := wl.Pop(0)
		if !ok {
			break
		}
		order = append(order, v)
		if v < 100 {
			wl.Push(0, v+100) // derive one generation-1 item
		} else if v < 200 {
			wl.Push(0, v+100) // and one generation-2 item
		}
	}

	require.Len(t, order, 6)
	for i := 1; i < len(order); i++ {
		require.LessOrEqual(t, order[i-1]/100, order[i]/100,
			"generation %d item popped after generation %d", order[i-1]/100, order[i]/100)
	}
	require.True(t, wl.Empty())
}

// TestBulkSyncRoundSeparation: with concurrent workers, no round-1 item
// may surface until every round-0 item has been popped.
func TestBulkSyncRoundSeparation(t *testing.T) {
	const (
		workers = 4
		seeds   = 400
	)
	wl := worklist.BulkSynchronous[int]()(worklist.Config{Workers: workers, ChunkSize: 8})

	for i := 0; i < seeds; i++ {
		wl.Push(i%workers, i)
	}
	for w := 0; w < workers; w++ {
		wl.Flush(w)
	}

	var gen0Popped atomic.Int32
	var violation atomic.Bool
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for {
				v, ok := wl.Pop(w)
				if !ok {
					return
				}
				if v < seeds {
					gen0Popped.Add(1)
					wl.Push(w, seeds+v) // round-1 derivative
				} else if gen0Popped.Load() != seeds {
					violation.Store(true)
				}
			}
		}(w)
	}
	wg.Wait()

	require.False(t, violation.Load(), "a round-1 item surfaced before round 0 drained")
	require.EqualValues(t, seeds, gen0Popped.Load())
	require.True(t, wl.Empty())
}

// TestBulkSyncDetach: a worker leaving mid-loop must not deadlock the
// round barrier for the rest.
func TestBulkSyncDetach(t *testing.T) {
	const workers = 3
	cfg := worklist.Config{Workers: workers, ChunkSize: 4}
	wl := worklist.BulkSynchronous[int]()(cfg)

	for i := 0; i < 30; i++ {
		wl.Push(0, i)
	}
	wl.Flush(0)

	// Worker 2 leaves immediately.
	wl.(worklist.Detacher).Detach(2)

	var popped atomic.Int32
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for {
				if _, ok := wl.Pop(w); !ok {
					return
				}
				popped.Add(1)
			}
		}(w)
	}
	wg.Wait()
	require.EqualValues(t, 30, popped.Load())
}
