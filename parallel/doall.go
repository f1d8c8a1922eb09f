package parallel

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/amorph/topo"
)

// workRange is one worker's share of the index space, packed begin|end
// into a single word so owner pops and thief halvings are both one CAS.
type workRange struct {
	pos atomic.Uint64
	_   [56]byte
}

func packRange(begin, end uint32) uint64 { return uint64(begin) | uint64(end)<<32 }
func unpackRange(v uint64) (uint32, uint32) {
	return uint32(v), uint32(v >> 32)
}

// DoAll applies op to every element of items using the worker pool, with
// no dynamic work generation: each worker owns a contiguous block and,
// when WithSteal is set, steals the upper half of a peer's remaining block
// once its own is exhausted. The call blocks until every element has been
// processed, the context is canceled, or an operator panics.
func DoAll[T any](items []T, op func(item T), opts ...Option[T]) error {
	o := defaultOptions[T]()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return o.err
	}
	if op == nil {
		return fmt.Errorf("%w: nil operator", ErrOptionViolation)
	}
	if len(items) == 0 {
		return nil
	}
	n := o.Parallelism
	if n > len(items) {
		n = len(items)
	}

	ranges := make([]workRange, n)
	for w := 0; w < n; w++ {
		begin := uint32(len(items) * w / n)
		end := uint32(len(items) * (w + 1) / n)
		ranges[w].pos.Store(packRange(begin, end))
	}

	tp := topo.Detect()
	var failed atomic.Bool
	var g errgroup.Group
	for w := 0; w < n; w++ {
		g.Go(func() error {
			if o.BindThreads {
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
				_ = topo.Pin(tp.CPUOf(w))
			}
			rng := uint64(w)*0x9e3779b97f4a7c15 + 1
			for {
				if failed.Load() {
					return nil
				}
				if cerr := o.Ctx.Err(); cerr != nil {
					failed.Store(true)
					return cerr
				}
				i, ok := takeIndex(&ranges[w])
				if !ok && o.Steal {
					i, ok = stealRange(ranges, w, &rng)
				}
				if !ok {
					return nil
				}
				if err := invokeDoAll(op, items[i], o.LoopName); err != nil {
					failed.Store(true)
					return err
				}
			}
		})
	}
	return g.Wait()
}

// takeIndex claims the next index of the worker's own range.
func takeIndex(r *workRange) (int, bool) {
	for {
		old := r.pos.Load()
		begin, end := unpackRange(old)
		if begin >= end {
			return 0, false
		}
		if r.pos.CompareAndSwap(old, packRange(begin+1, end)) {
			return int(begin), true
		}
	}
}

// stealRange moves the upper half of a victim's remaining block into the
// thief's slot and claims the first stolen index. Victims are visited
// round-robin from a randomized offset; a failed full rotation means the
// residual work fits in its owners' hands.
func stealRange(ranges []workRange, w int, rng *uint64) (int, bool) {
	n := len(ranges)
	for round := 0; round < 2; round++ {
		x := *rng
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		*rng = x
		off := int(x % uint64(n))
		for k := 0; k < n; k++ {
			v := (off + k) % n
			if v == w {
				continue
			}
			old := ranges[v].pos.Load()
			begin, end := unpackRange(old)
			if end-begin < 2 {
				continue // leave the last index to its owner
			}
			mid := begin + (end-begin)/2
			if ranges[v].pos.CompareAndSwap(old, packRange(begin, mid)) {
				ranges[w].pos.Store(packRange(mid, end))
				return takeIndex(&ranges[w])
			}
		}
	}
	return 0, false
}

func invokeDoAll[T any](op func(T), item T, loop string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if loop != "" {
				err = fmt.Errorf("%w: %v (loop %q)", ErrOperatorFailure, r, loop)
				return
			}
			err = fmt.Errorf("%w: %v", ErrOperatorFailure, r)
		}
	}()
	op(item)
	return nil
}

// OnEach runs fn once on every worker slot of the pool, passing the slot
// index and the pool size. It is the hook for per-worker initialization
// such as scratch allocation or thread binding checks.
func OnEach(fn func(worker, workers int), opts ...Option[struct{}]) error {
	o := defaultOptions[struct{}]()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return o.err
	}
	if fn == nil {
		return fmt.Errorf("%w: nil function", ErrOptionViolation)
	}
	tp := topo.Detect()
	var g errgroup.Group
	for w := 0; w < o.Parallelism; w++ {
		g.Go(func() error {
			if o.BindThreads {
				runtime.LockOSThread()
				defer runtime.UnlockOSThread()
				_ = topo.Pin(tp.CPUOf(w))
			}
			return invokeOnEach(fn, w, o.Parallelism, o.LoopName)
		})
	}
	return g.Wait()
}

func invokeOnEach(fn func(int, int), w, n int, loop string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if loop != "" {
				err = fmt.Errorf("%w: %v (loop %q)", ErrOperatorFailure, r, loop)
				return
			}
			err = fmt.Errorf("%w: %v", ErrOperatorFailure, r)
		}
	}()
	fn(w, n)
	return nil
}
