package worklist

import (
	"sync/atomic"
)

// bulkSync alternates two inner chunked queues separated by a barrier.
// Pushes always land in the "next" queue; pops only ever see "curr". When
// every worker has drained curr, the last one to arrive at the barrier
// swaps the roles, so an item pushed in round N is processed in round N+1
// and never earlier.
type bulkSync[T any] struct {
	inner [2]Worklist[T]
	curr  atomic.Int32
	bar   *Barrier
	done  atomic.Bool
	quit  *atomic.Bool
}

// BulkSynchronous builds the two-phase worklist. The optional inner
// factory selects the queue flavor backing each phase; the default is
// ChunkedFIFO.
func BulkSynchronous[T any](inner ...Factory[T]) Factory[T] {
	mk := ChunkedFIFO[T]()
	if len(inner) > 0 && inner[0] != nil {
		mk = inner[0]
	}
	return func(cfg Config) Worklist[T] {
		cfg = cfg.normalized()
		return &bulkSync[T]{
			inner: [2]Worklist[T]{mk(cfg), mk(cfg)},
			bar:   NewBarrier(cfg.Workers),
			quit:  cfg.Quit,
		}
	}
}

func (q *bulkSync[T]) Push(w int, item T) {
	q.inner[1-q.curr.Load()].Push(w, item)
}

func (q *bulkSync[T]) Pop(w int) (T, bool) {
	var zero T
	for {
		if q.done.Load() || q.quit.Load() {
			return zero, false
		}
		cur := q.curr.Load()
		if v, ok := q.inner[cur].Pop(w); ok {
			return v, true
		}
		// This worker's view of the round is drained. Publish its buffered
		// next-round items, then wait for the others; the last arrival
		// swaps the rounds or declares the loop finished.
		q.inner[1-cur].Flush(w)
		q.bar.Arrive(func() {
			if q.inner[0].Empty() && q.inner[1].Empty() {
				q.done.Store(true)
				return
			}
			q.curr.Store(1 - cur)
		})
	}
}

func (q *bulkSync[T]) Flush(w int) {
	q.inner[0].Flush(w)
	q.inner[1].Flush(w)
}

func (q *bulkSync[T]) Empty() bool {
	return q.inner[0].Empty() && q.inner[1].Empty()
}

// Detach removes a departing worker from the round barrier.
func (q *bulkSync[T]) Detach(w int) {
	q.bar.Drop()
}
