package parallel

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/katalvlaran/amorph/topo"
	"github.com/katalvlaran/amorph/worklist"
)

// ForEach runs op over every item reachable from seed: seeds are pushed
// into the configured worklist, and each invocation may push further items
// through its Context. The call blocks until the worklist is drained (see
// package docs for the termination protocol), the operator breaks the
// loop, the context is canceled, or an operator fails.
//
// Returns nil on normal completion and after BreakLoop; the context's
// error on cancellation; ErrOperatorFailure wrapping the first recovered
// panic; ErrRetryExhausted when an aborting item exceeds the retry budget;
// ErrOptionViolation for invalid options.
func ForEach[T any](seed Range[T], op Operator[T], opts ...Option[T]) error {
	o := defaultOptions[T]()
	for _, opt := range opts {
		opt(&o)
	}
	if o.err != nil {
		return o.err
	}
	if seed == nil {
		seed = Slice[T](nil)
	}
	if op == nil {
		return fmt.Errorf("%w: nil operator", ErrOptionViolation)
	}

	quit := new(atomic.Bool)
	tp := topo.Detect()
	d := &driver[T]{
		o:    o,
		op:   op,
		seed: seed,
		tp:   tp,
		wl: o.Factory(worklist.Config{
			Workers:   o.Parallelism,
			ChunkSize: o.ChunkSize,
			BackScan:  o.BackScan,
			Topology:  tp,
			Quit:      quit,
		}),
		quit:  quit,
		start: worklist.NewBarrier(o.Parallelism),
	}
	d.term.workers = o.Parallelism

	var g errgroup.Group
	for w := 0; w < o.Parallelism; w++ {
		g.Go(func() error { return d.worker(w) })
	}
	return g.Wait()
}

// driver is the shared state of one ForEach invocation.
type driver[T any] struct {
	o    Options[T]
	op   Operator[T]
	seed Range[T]
	tp   *topo.Topology
	wl   worklist.Worklist[T]

	seedCur atomic.Int64
	start   *worklist.Barrier
	term    terminator

	quit   *atomic.Bool
	brk    atomic.Bool
	failed atomic.Bool
}

// retryEntry carries an aborted item and how often it has been attempted.
type retryEntry[T any] struct {
	item T
	n    int
}

func (d *driver[T]) worker(w int) error {
	if d.o.BindThreads {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		_ = topo.Pin(d.tp.CPUOf(w)) // best effort; unpinned is valid
	}
	defer func() {
		d.wl.Flush(w)
		if det, ok := d.wl.(worklist.Detacher); ok {
			det.Detach(w)
		}
	}()

	// Seed: claim blocks until the range is exhausted, then publish the
	// partial chunks. The barrier keeps a fast worker from voting
	// termination while a peer is still seeding.
	blocks := d.seed.Blocks()
	for {
		i := int(d.seedCur.Add(1)) - 1
		if i >= blocks {
			break
		}
		d.seed.Block(i, func(v T) { d.wl.Push(w, v) })
	}
	d.wl.Flush(w)
	d.start.Arrive(nil)

	uc := &Context[T]{d: d, w: w}
	var retries []retryEntry[T]
	for {
		if d.brk.Load() || d.failed.Load() {
			return nil
		}
		if cerr := d.o.Ctx.Err(); cerr != nil {
			d.quit.Store(true)
			return cerr
		}

		var item T
		attempts := 0
		if n := len(retries); n > 0 {
			item, attempts = retries[n-1].item, retries[n-1].n
			retries = retries[:n-1]
		} else {
			var ok bool
			if item, ok = d.wl.Pop(w); !ok {
				if item, ok = d.waitForWork(w); !ok {
					if cerr := d.o.Ctx.Err(); cerr != nil && !d.term.done.Load() && !d.brk.Load() {
						d.quit.Store(true)
						return cerr
					}
					return nil
				}
			}
		}

		aborted, err := d.invoke(item, uc)
		if err != nil {
			d.fail()
			return err
		}
		if aborted && !d.brk.Load() {
			attempts++
			if d.o.MaxRetries > 0 && attempts > d.o.MaxRetries {
				d.fail()
				return fmt.Errorf("%w: %d attempts%s", ErrRetryExhausted, attempts, d.tag())
			}
			retries = append(retries, retryEntry[T]{item: item, n: attempts})
		}
	}
}

// invoke runs the operator for one item, converting a panic into the
// loop's failure error.
func (d *driver[T]) invoke(item T, uc *Context[T]) (aborted bool, err error) {
	defer func() {
		uc.live = false
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v%s", ErrOperatorFailure, r, d.tag())
		}
	}()
	uc.live = true
	uc.aborted = false
	d.op(item, uc)
	return uc.aborted, nil
}

func (d *driver[T]) fail() {
	d.failed.Store(true)
	d.quit.Store(true)
}

func (d *driver[T]) tag() string {
	if d.o.LoopName == "" {
		return ""
	}
	return fmt.Sprintf(" (loop %q)", d.o.LoopName)
}
