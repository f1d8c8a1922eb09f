package bag_test

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/katalvlaran/amorph/bag"
	"github.com/katalvlaran/amorph/parallel"
)

// TestBag_ConcurrentPushes: N goroutines each push M items; the bag must
// hold exactly N·M afterwards, and the per-shard counts must match the
// per-goroutine pushes when PushTo keys by goroutine.
func TestBag_ConcurrentPushes(t *testing.T) {
	const (
		pushers = 8
		perG    = 250
	)
	b := bag.New[int](pushers)

	var wg sync.WaitGroup
	for g := 0; g < pushers; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < perG; i++ {
				b.PushTo(g, g*perG+i)
			}
		}(g)
	}
	wg.Wait()

	require.Equal(t, pushers*perG, b.Len())
	for g := 0; g < pushers; g++ {
		require.Equal(t, perG, b.ShardLen(g), "shard %d", g)
	}

	seen := make(map[int]bool, pushers*perG)
	b.Do(func(v int) {
		require.False(t, seen[v], "item %d yielded twice", v)
		seen[v] = true
	})
	require.Len(t, seen, pushers*perG)
}

// TestBag_RoundRobinPush: anonymous pushes spread across shards.
func TestBag_RoundRobinPush(t *testing.T) {
	b := bag.New[int](4)
	for i := 0; i < 400; i++ {
		b.Push(i)
	}
	require.Equal(t, 400, b.Len())
	for s := 0; s < 4; s++ {
		require.Equal(t, 100, b.ShardLen(s), "round-robin must balance shard %d", s)
	}
}

// TestBag_Clear empties the bag both ways.
func TestBag_Clear(t *testing.T) {
	b := bag.New[string](3)
	for i := 0; i < 10; i++ {
		b.Push("x")
	}
	b.Clear()
	require.True(t, b.Empty())

	for i := 0; i < 10; i++ {
		b.Push("y")
	}
	require.NoError(t, b.ClearParallel())
	require.True(t, b.Empty())
	require.Empty(t, b.Slice())
}

// TestBag_SeedsForEach: a bag is a parallel.Range, so it can seed a loop
// directly; every bagged item must be processed.
func TestBag_SeedsForEach(t *testing.T) {
	const n = 1000
	b := bag.New[int]()
	for i := 0; i < n; i++ {
		b.Push(i)
	}

	hits := make([]atomic.Int32, n)
	err := parallel.ForEach[int](b,
		func(v int, ctx *parallel.Context[int]) { hits[v].Add(1) },
		parallel.WithParallelism[int](4),
	)
	require.NoError(t, err)
	for i := range hits {
		require.EqualValues(t, 1, hits[i].Load(), "item %d", i)
	}
}

// TestBag_ScratchAccumulator: operators collect into a bag through
// Context.Worker, the usual per-phase scratch pattern.
func TestBag_ScratchAccumulator(t *testing.T) {
	const n = 512
	seeds := make([]int, n)
	for i := range seeds {
		seeds[i] = i
	}
	out := bag.New[int](8)

	err := parallel.ForEach(parallel.Slice(seeds),
		func(v int, ctx *parallel.Context[int]) {
			if v%2 == 0 {
				out.PushTo(ctx.Worker(), v)
			}
		},
		parallel.WithParallelism[int](8),
	)
	require.NoError(t, err)
	require.Equal(t, n/2, out.Len())
}
