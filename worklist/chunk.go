package worklist

import (
	"sync"
	"sync/atomic"

	"github.com/gammazero/deque"
)

// chunk is a fixed-capacity batch of items. It carries no synchronization:
// at any instant at most one worker reads it and at most one writes it,
// and it changes hands only through a shared list.
type chunk[T any] struct {
	items []T
	head  int
	tail  int
}

func newChunk[T any](capacity int) *chunk[T] {
	return &chunk[T]{items: make([]T, capacity)}
}

func (c *chunk[T]) push(v T) bool {
	if c.tail == len(c.items) {
		return false
	}
	c.items[c.tail] = v
	c.tail++
	return true
}

func (c *chunk[T]) popFront() (T, bool) {
	var zero T
	if c.head == c.tail {
		return zero, false
	}
	v := c.items[c.head]
	c.items[c.head] = zero
	c.head++
	return v, true
}

func (c *chunk[T]) popBack() (T, bool) {
	var zero T
	if c.head == c.tail {
		return zero, false
	}
	c.tail--
	v := c.items[c.tail]
	c.items[c.tail] = zero
	return v, true
}

func (c *chunk[T]) empty() bool { return c.head == c.tail }
func (c *chunk[T]) full() bool  { return c.tail == len(c.items) }

func (c *chunk[T]) reset() {
	clear(c.items[c.head:c.tail])
	c.head, c.tail = 0, 0
}

// sharedList is a list of sealed chunks. Ownership of a chunk transfers
// atomically on pushChunk/popChunk; the lock is the happens-before edge
// between producer and consumer.
type sharedList[T any] interface {
	pushChunk(c *chunk[T])
	popChunk() *chunk[T]
	empty() bool
}

// fifoChunks hands chunks out oldest-first.
type fifoChunks[T any] struct {
	mu sync.Mutex
	dq *deque.Deque[*chunk[T]]
	n  atomic.Int64
	_  [cacheLinePad]byte
}

func newFIFOChunks[T any]() *fifoChunks[T] {
	return &fifoChunks[T]{dq: deque.New[*chunk[T]]()}
}

func (l *fifoChunks[T]) pushChunk(c *chunk[T]) {
	l.mu.Lock()
	l.dq.PushBack(c)
	l.n.Add(1)
	l.mu.Unlock()
}

func (l *fifoChunks[T]) popChunk() *chunk[T] {
	if l.n.Load() == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.dq.Len() == 0 {
		return nil
	}
	l.n.Add(-1)
	return l.dq.PopFront()
}

func (l *fifoChunks[T]) empty() bool { return l.n.Load() == 0 }

// lifoChunks hands chunks out newest-first, keeping recently produced work
// hot in cache.
type lifoChunks[T any] struct {
	mu sync.Mutex
	cs []*chunk[T]
	n  atomic.Int64
	_  [cacheLinePad]byte
}

func newLIFOChunks[T any]() *lifoChunks[T] {
	return &lifoChunks[T]{}
}

func (l *lifoChunks[T]) pushChunk(c *chunk[T]) {
	l.mu.Lock()
	l.cs = append(l.cs, c)
	l.n.Add(1)
	l.mu.Unlock()
}

func (l *lifoChunks[T]) popChunk() *chunk[T] {
	if l.n.Load() == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.cs) == 0 {
		return nil
	}
	last := len(l.cs) - 1
	c := l.cs[last]
	l.cs[last] = nil
	l.cs = l.cs[:last]
	l.n.Add(-1)
	return c
}

func (l *lifoChunks[T]) empty() bool { return l.n.Load() == 0 }

// spareChunks is the shared overflow freelist; drained chunks beyond a
// worker's private cap land here so total footprint stays bounded by peak
// concurrency, not by loop length.
type spareChunks[T any] struct {
	mu sync.Mutex
	cs []*chunk[T]
}

func (s *spareChunks[T]) put(c *chunk[T]) {
	s.mu.Lock()
	s.cs = append(s.cs, c)
	s.mu.Unlock()
}

func (s *spareChunks[T]) get() *chunk[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cs) == 0 {
		return nil
	}
	last := len(s.cs) - 1
	c := s.cs[last]
	s.cs[last] = nil
	s.cs = s.cs[:last]
	return c
}
