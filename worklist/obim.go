package worklist

import (
	"sort"
	"sync"
	"sync/atomic"
)

// obimBucket pairs one priority with its inner queue. Buckets are created
// lazily on the first push to a priority and never removed; an empty
// bucket is just a header plus idle lists.
type obimBucket[T any] struct {
	p     int
	inner Worklist[T]
}

// obimSnap is an immutable snapshot of the bucket map, sorted by priority.
// It is republished wholesale on every bucket creation so that the pop
// path can scan priorities without taking the map lock.
type obimSnap[T any] struct {
	ps []int
	bs []*obimBucket[T]
}

// lookup returns the bucket at exactly priority p, or nil.
func (s *obimSnap[T]) lookup(p int) *obimBucket[T] {
	i := sort.SearchInts(s.ps, p)
	if i < len(s.ps) && s.ps[i] == p {
		return s.bs[i]
	}
	return nil
}

// from returns the index of the first priority >= p.
func (s *obimSnap[T]) from(p int) int {
	return sort.SearchInts(s.ps, p)
}

// obimSlot is one worker's priority cursor state. Owned exclusively by its
// worker; no atomics needed.
type obimSlot struct {
	curP    int
	pending int
	fails   int
	_       [cacheLinePad]byte
}

// obim maps integer priorities to inner chunked queues and serves items in
// approximate ascending priority: each worker drains its current bucket,
// escalates forward when it runs dry, and periodically sweeps backward to
// pick up late pushes to lower priorities.
type obim[T any] struct {
	cfg      Config
	indexer  Indexer[T]
	mkInner  Factory[T]
	backScan int

	mu      sync.Mutex
	buckets map[int]*obimBucket[T]
	snap    atomic.Pointer[obimSnap[T]]

	slots []obimSlot

	// barrier-variant state; bar == nil selects the asynchronous flavor.
	bar  *Barrier
	gcur atomic.Int64
	done atomic.Bool
	quit *atomic.Bool
}

// OBIMOption tweaks an OrderedByIntegerMetric factory.
type OBIMOption[T any] func(*obimConfig[T])

type obimConfig[T any] struct {
	inner   Factory[T]
	barrier bool
}

// WithInner selects the inner queue flavor backing each priority bucket.
// The default is a per-socket chunked FIFO.
func WithInner[T any](f Factory[T]) OBIMOption[T] {
	return func(c *obimConfig[T]) { c.inner = f }
}

// WithBarrier makes every worker drain the globally minimal non-empty
// bucket and meet at a barrier before any of them advances. This trades
// synchronization for less wasted work on items that later relaxation
// would supersede.
func WithBarrier[T any]() OBIMOption[T] {
	return func(c *obimConfig[T]) { c.barrier = true }
}

// OrderedByIntegerMetric builds the OBIM priority worklist around indexer.
// The order it provides is approximate by design: a worker's processed
// priorities are non-decreasing between refill points, and contended
// workers converge toward the global minimum over time, but no global
// priority order is guaranteed.
func OrderedByIntegerMetric[T any](indexer Indexer[T], opts ...OBIMOption[T]) Factory[T] {
	oc := obimConfig[T]{}
	for _, opt := range opts {
		opt(&oc)
	}
	return func(cfg Config) Worklist[T] {
		cfg = cfg.normalized()
		o := &obim[T]{
			cfg:      cfg,
			indexer:  indexer,
			backScan: cfg.BackScan,
			buckets:  make(map[int]*obimBucket[T]),
			slots:    make([]obimSlot, cfg.Workers),
			quit:     cfg.Quit,
		}
		o.mkInner = oc.inner
		if o.mkInner == nil {
			o.mkInner = func(c Config) Worklist[T] { return newChunked[T](c, false, true, true) }
		}
		for w := range o.slots {
			o.slots[w].pending = -1
		}
		o.snap.Store(&obimSnap[T]{})
		if oc.barrier {
			o.bar = NewBarrier(cfg.Workers)
			o.gcur.Store(-1)
		}
		return o
	}
}

// bucket returns the bucket for priority p, creating it if needed.
// Creation is idempotent under race: the map lock decides the winner and
// the loser's allocation is dropped.
func (o *obim[T]) bucket(p int) *obimBucket[T] {
	if b := o.snap.Load().lookup(p); b != nil {
		return b
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if b, ok := o.buckets[p]; ok {
		return b
	}
	b := &obimBucket[T]{p: p, inner: o.mkInner(o.cfg)}
	o.buckets[p] = b
	old := o.snap.Load()
	i := sort.SearchInts(old.ps, p)
	next := &obimSnap[T]{
		ps: make([]int, 0, len(old.ps)+1),
		bs: make([]*obimBucket[T], 0, len(old.bs)+1),
	}
	next.ps = append(append(append(next.ps, old.ps[:i]...), p), old.ps[i:]...)
	next.bs = append(append(append(next.bs, old.bs[:i]...), b), old.bs[i:]...)
	o.snap.Store(next)
	return b
}

func (o *obim[T]) Push(w int, item T) {
	p := o.indexer(item)
	if p < 0 {
		panic("amorph/worklist: indexer returned a negative priority")
	}
	o.bucket(p).inner.Push(w, item)
	if o.bar == nil {
		s := &o.slots[w]
		if p < s.curP && (s.pending < 0 || p < s.pending) {
			s.pending = p
		}
	}
}

func (o *obim[T]) Pop(w int) (T, bool) {
	if o.bar != nil {
		return o.popBarrier(w)
	}
	var zero T
	s := &o.slots[w]
	if s.pending >= 0 {
		if s.pending < s.curP {
			s.curP = s.pending
		}
		s.pending = -1
	}
	snap := o.snap.Load()
	if b := snap.lookup(s.curP); b != nil {
		if v, ok := b.inner.Pop(w); ok {
			return v, true
		}
	}
	s.fails++
	if s.fails%o.backScan == 0 {
		if v, ok := o.scanBelow(snap, w, s); ok {
			return v, true
		}
	}
	// Escalate: first non-empty bucket at or above the cursor.
	for i := snap.from(s.curP); i < len(snap.ps); i++ {
		if v, ok := snap.bs[i].inner.Pop(w); ok {
			s.curP = snap.ps[i]
			return v, true
		}
	}
	// Nothing ahead. Sweep everything below the cursor before reporting
	// empty so a late push to a low bucket is never stranded; this is what
	// keeps the termination vote sound regardless of the back-scan period.
	if v, ok := o.scanBelow(o.snap.Load(), w, s); ok {
		return v, true
	}
	return zero, false
}

// scanBelow checks buckets strictly below the worker's cursor, lowest
// first, and rewinds the cursor on a hit.
func (o *obim[T]) scanBelow(snap *obimSnap[T], w int, s *obimSlot) (T, bool) {
	var zero T
	for i := 0; i < len(snap.ps) && snap.ps[i] < s.curP; i++ {
		if v, ok := snap.bs[i].inner.Pop(w); ok {
			s.curP = snap.ps[i]
			return v, true
		}
	}
	return zero, false
}

// popBarrier serves the with-barrier flavor: all workers drain the same
// globally minimal bucket, and only after everyone has run dry does the
// last arrival pick the next one.
func (o *obim[T]) popBarrier(w int) (T, bool) {
	var zero T
	for {
		if o.done.Load() || o.quit.Load() {
			return zero, false
		}
		if p := o.gcur.Load(); p >= 0 {
			if b := o.snap.Load().lookup(int(p)); b != nil {
				if v, ok := b.inner.Pop(w); ok {
					return v, true
				}
			}
		}
		o.Flush(w)
		o.bar.Arrive(func() {
			if p, ok := o.minNonEmpty(); ok {
				o.gcur.Store(int64(p))
				return
			}
			o.done.Store(true)
		})
	}
}

// minNonEmpty finds the lowest priority whose bucket still holds sealed
// chunks. Callers must have flushed private chunks first.
func (o *obim[T]) minNonEmpty() (int, bool) {
	snap := o.snap.Load()
	for i, b := range snap.bs {
		if !b.inner.Empty() {
			return snap.ps[i], true
		}
	}
	return 0, false
}

func (o *obim[T]) Flush(w int) {
	snap := o.snap.Load()
	for _, b := range snap.bs {
		b.inner.Flush(w)
	}
}

func (o *obim[T]) Empty() bool {
	snap := o.snap.Load()
	for _, b := range snap.bs {
		if !b.inner.Empty() {
			return false
		}
	}
	return true
}

// Detach removes a departing worker from the bucket barrier; the
// asynchronous flavor has nothing to detach from.
func (o *obim[T]) Detach(w int) {
	if o.bar != nil {
		o.bar.Drop()
	}
}
