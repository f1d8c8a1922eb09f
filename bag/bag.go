package bag

import (
	"sync"
	"sync/atomic"

	"github.com/katalvlaran/amorph/config"
	"github.com/katalvlaran/amorph/parallel"
)

// nodeCap is the item capacity of one chain link.
const nodeCap = 64

// node is one link of a shard's chunk chain.
type node[T any] struct {
	items []T
	next  *node[T]
}

// shard is one independently locked chain plus its item count.
type shard[T any] struct {
	mu    sync.Mutex
	head  *node[T]
	count int
	_     [64]byte
}

// Bag is an unordered, append-only, concurrently pushable container.
type Bag[T any] struct {
	shards []shard[T]
	cursor atomic.Uint64
}

// New creates a bag with one shard per configured worker slot, or with
// the given shard count when shards > 0 is passed.
func New[T any](shards ...int) *Bag[T] {
	n := config.Default().Parallelism
	if len(shards) > 0 && shards[0] > 0 {
		n = shards[0]
	}
	return &Bag[T]{shards: make([]shard[T], n)}
}

// Push appends item from any goroutine. Shards are dealt round-robin so
// unrelated pushers spread across locks.
func (b *Bag[T]) Push(item T) {
	b.PushTo(int(b.cursor.Add(1))%len(b.shards), item)
}

// PushTo appends item to shard slot (modulo the shard count). Loop
// operators pass Context.Worker to keep each worker on its own shard.
func (b *Bag[T]) PushTo(slot int, item T) {
	if slot < 0 {
		slot = -slot
	}
	s := &b.shards[slot%len(b.shards)]
	s.mu.Lock()
	if s.head == nil || len(s.head.items) == nodeCap {
		s.head = &node[T]{items: make([]T, 0, nodeCap), next: s.head}
	}
	s.head.items = append(s.head.items, item)
	s.count++
	s.mu.Unlock()
}

// Len reports the total number of items.
func (b *Bag[T]) Len() int {
	n := 0
	for i := range b.shards {
		s := &b.shards[i]
		s.mu.Lock()
		n += s.count
		s.mu.Unlock()
	}
	return n
}

// Empty reports whether the bag holds no items.
func (b *Bag[T]) Empty() bool { return b.Len() == 0 }

// ShardLen reports the item count of one shard; test hooks and load
// diagnostics use it.
func (b *Bag[T]) ShardLen(slot int) int {
	s := &b.shards[slot%len(b.shards)]
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// Do visits every item in unspecified order. Pushes performed while Do
// runs may or may not be visited.
func (b *Bag[T]) Do(fn func(T)) {
	for i := range b.shards {
		b.Block(i, fn)
	}
}

// Slice copies the contents into a fresh slice, unspecified order.
func (b *Bag[T]) Slice() []T {
	out := make([]T, 0, b.Len())
	b.Do(func(v T) { out = append(out, v) })
	return out
}

// Clear drops every item.
func (b *Bag[T]) Clear() {
	for i := range b.shards {
		s := &b.shards[i]
		s.mu.Lock()
		s.head = nil
		s.count = 0
		s.mu.Unlock()
	}
}

// ClearParallel resets the shards across the worker pool. Callers must
// ensure no pushes are in flight; the swap between phases belongs after
// the phase barrier, never overlapped with it.
func (b *Bag[T]) ClearParallel() error {
	idx := make([]int, len(b.shards))
	for i := range idx {
		idx[i] = i
	}
	return parallel.DoAll(idx, func(i int) {
		s := &b.shards[i]
		s.mu.Lock()
		s.head = nil
		s.count = 0
		s.mu.Unlock()
	}, parallel.WithSteal[int]())
}

// Blocks makes Bag a parallel.Range: one block per shard.
func (b *Bag[T]) Blocks() int { return len(b.shards) }

// Block feeds every item of shard i to emit.
func (b *Bag[T]) Block(i int, emit func(T)) {
	s := &b.shards[i%len(b.shards)]
	s.mu.Lock()
	defer s.mu.Unlock()
	for n := s.head; n != nil; n = n.next {
		for _, v := range n.items {
			emit(v)
		}
	}
}
