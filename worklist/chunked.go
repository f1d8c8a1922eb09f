package worklist

import (
	"runtime"
)

// qslot is one worker's private view of a chunked queue: the chunk it is
// filling, the chunk it is draining, a small chunk freelist, and the RNG
// that randomizes its steal offset.
type qslot[T any] struct {
	push *chunk[T]
	pop  *chunk[T]
	free []*chunk[T]
	rng  uint64
	_    [cacheLinePad]byte
}

func (s *qslot[T]) nextRand() uint64 {
	// xorshift64; seeded per slot so workers fan out over different victims.
	x := s.rng
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	s.rng = x
	return x
}

// chunked is the shared implementation behind ChunkedFIFO/LIFO and their
// per-socket variants: one shared chunk list per socket (one total in the
// global flavors), per-worker push/pop chunk slots, and whole-chunk
// stealing between lists.
type chunked[T any] struct {
	lifo     bool
	size     int
	slots    []qslot[T]
	lists    []sharedList[T]
	socketOf []int
	spare    spareChunks[T]
	// calm disables the backoff rotation; OBIM buckets set it so that
	// scanning many empty buckets stays cheap.
	calm bool
}

func newChunked[T any](cfg Config, lifo, perSocket, calm bool) *chunked[T] {
	cfg = cfg.normalized()
	nLists := 1
	if perSocket {
		nLists = cfg.Topology.Sockets()
	}
	q := &chunked[T]{
		lifo:     lifo,
		size:     cfg.ChunkSize,
		slots:    make([]qslot[T], cfg.Workers),
		lists:    make([]sharedList[T], nLists),
		socketOf: make([]int, cfg.Workers),
		calm:     calm,
	}
	for i := range q.lists {
		if lifo {
			q.lists[i] = newLIFOChunks[T]()
		} else {
			q.lists[i] = newFIFOChunks[T]()
		}
	}
	for w := range q.slots {
		q.slots[w].rng = uint64(w)*0x9e3779b97f4a7c15 + 0x1
		if perSocket {
			q.socketOf[w] = cfg.Topology.SocketOf(w)
		}
	}
	return q
}

// ChunkedFIFO builds a chunked queue with a single shared list handing
// sealed chunks out oldest-first. Per-producer order is preserved inside a
// chunk; no order is promised across chunks or workers.
func ChunkedFIFO[T any]() Factory[T] {
	return func(cfg Config) Worklist[T] { return newChunked[T](cfg, false, false, false) }
}

// ChunkedLIFO builds a chunked queue with a single shared list handing
// sealed chunks out newest-first, favoring cache locality of recent work.
func ChunkedLIFO[T any]() Factory[T] {
	return func(cfg Config) Worklist[T] { return newChunked[T](cfg, true, false, false) }
}

// PerSocketChunkedFIFO builds a chunked FIFO with one shared list per NUMA
// socket. Pushes go to the pusher's socket; pops drain the local socket
// first and steal whole chunks from sibling sockets only when it is dry.
func PerSocketChunkedFIFO[T any]() Factory[T] {
	return func(cfg Config) Worklist[T] { return newChunked[T](cfg, false, true, false) }
}

// PerSocketChunkedLIFO is PerSocketChunkedFIFO with newest-first lists.
func PerSocketChunkedLIFO[T any]() Factory[T] {
	return func(cfg Config) Worklist[T] { return newChunked[T](cfg, true, true, false) }
}

func (q *chunked[T]) Push(w int, item T) {
	s := &q.slots[w]
	if s.push == nil {
		s.push = q.alloc(s)
	}
	if s.push.push(item) {
		return
	}
	q.lists[q.socketOf[w]].pushChunk(s.push)
	s.push = q.alloc(s)
	s.push.push(item)
}

func (q *chunked[T]) Pop(w int) (T, bool) {
	var zero T
	s := &q.slots[w]
	for {
		if s.pop != nil {
			if v, ok := q.take(s.pop); ok {
				return v, true
			}
			q.recycle(s, s.pop)
			s.pop = nil
		}
		// Drain the private push chunk before touching shared state; work a
		// worker produced for itself never crosses a lock.
		if s.push != nil && !s.push.empty() {
			s.pop = s.push
			s.push = nil
			continue
		}
		if c := q.claim(s, q.socketOf[w]); c != nil {
			s.pop = c
			continue
		}
		return zero, false
	}
}

// claim takes one sealed chunk: local socket first, then the other lists
// round-robin from a randomized offset, repeating the rotation with
// exponential backoff before giving up.
func (q *chunked[T]) claim(s *qslot[T], home int) *chunk[T] {
	if c := q.lists[home].popChunk(); c != nil {
		return c
	}
	rounds := stealRounds
	if q.calm {
		rounds = 1
	}
	for round := 0; round < rounds; round++ {
		if round > 0 {
			for spin := 0; spin < 1<<round; spin++ {
				runtime.Gosched()
			}
		}
		off := int(s.nextRand() % uint64(len(q.lists)))
		for i := 0; i < len(q.lists); i++ {
			victim := (home + off + i) % len(q.lists)
			if c := q.lists[victim].popChunk(); c != nil {
				return c
			}
		}
		if q.calm {
			break
		}
	}
	return nil
}

func (q *chunked[T]) take(c *chunk[T]) (T, bool) {
	if q.lifo {
		return c.popBack()
	}
	return c.popFront()
}

func (q *chunked[T]) Flush(w int) {
	s := &q.slots[w]
	if s.push != nil && !s.push.empty() {
		q.lists[q.socketOf[w]].pushChunk(s.push)
		s.push = nil
	}
	if s.pop != nil {
		if s.pop.empty() {
			q.recycle(s, s.pop)
		} else {
			q.lists[q.socketOf[w]].pushChunk(s.pop)
		}
		s.pop = nil
	}
}

func (q *chunked[T]) Empty() bool {
	for _, l := range q.lists {
		if !l.empty() {
			return false
		}
	}
	return true
}

func (q *chunked[T]) alloc(s *qslot[T]) *chunk[T] {
	if n := len(s.free); n > 0 {
		c := s.free[n-1]
		s.free[n-1] = nil
		s.free = s.free[:n-1]
		return c
	}
	if c := q.spare.get(); c != nil {
		return c
	}
	return newChunk[T](q.size)
}

func (q *chunked[T]) recycle(s *qslot[T], c *chunk[T]) {
	c.reset()
	if len(s.free) < localFreeCap {
		s.free = append(s.free, c)
		return
	}
	q.spare.put(c)
}
