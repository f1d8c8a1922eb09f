package parallel

import (
	"context"
	"fmt"

	"github.com/katalvlaran/amorph/config"
	"github.com/katalvlaran/amorph/worklist"
)

// Option configures a loop via functional arguments. An invalid Option is
// recorded internally and surfaced as ErrOptionViolation when the loop is
// invoked.
type Option[T any] func(*Options[T])

// Options holds the resolved parameters of one loop invocation.
type Options[T any] struct {
	// Ctx allows cancellation; a canceled context stops the loop like a
	// break, but the context's error is returned.
	Ctx context.Context

	// Parallelism is the worker-pool size.
	Parallelism int

	// ChunkSize overrides the worklist chunk capacity.
	ChunkSize int

	// BackScan overrides the OBIM backward-sweep period.
	BackScan int

	// Factory builds the worklist; the default is a per-socket chunked
	// FIFO.
	Factory worklist.Factory[T]

	// LoopName tags the loop in failure messages.
	LoopName string

	// NoConflicts records the caller's promise that the operator is safe
	// to run concurrently without per-item locking (e.g. it updates node
	// data with atomic minimum). The runtime acquires no item locks either
	// way; conflict detection is the business of an external lock manager.
	NoConflicts bool

	// Steal enables range-level work stealing in DoAll.
	Steal bool

	// MaxRetries bounds how often one item may Abort before the loop fails
	// with ErrRetryExhausted; zero means unbounded.
	MaxRetries int

	// BindThreads locks each worker goroutine to an OS thread and pins it
	// to a CPU from the detected topology.
	BindThreads bool

	// internal error recorded during option parsing
	err error
}

func defaultOptions[T any]() Options[T] {
	cfg := config.Default()
	return Options[T]{
		Ctx:         context.Background(),
		Parallelism: cfg.Parallelism,
		ChunkSize:   cfg.ChunkSize,
		BackScan:    cfg.BackScan,
		BindThreads: cfg.BindThreads,
		Factory:     worklist.PerSocketChunkedFIFO[T](),
	}
}

func (o *Options[T]) violate(format string, args ...any) {
	if o.err == nil {
		o.err = fmt.Errorf("%w: %s", ErrOptionViolation, fmt.Sprintf(format, args...))
	}
}

// WithContext sets a custom context for cancellation.
func WithContext[T any](ctx context.Context) Option[T] {
	return func(o *Options[T]) {
		if ctx == nil {
			o.violate("nil context")
			return
		}
		o.Ctx = ctx
	}
}

// WithParallelism sets the worker-pool size (n >= 1).
func WithParallelism[T any](n int) Option[T] {
	return func(o *Options[T]) {
		if n < 1 {
			o.violate("parallelism %d (want >= 1)", n)
			return
		}
		o.Parallelism = n
	}
}

// WithChunkSize overrides the chunk capacity for this loop's worklist.
func WithChunkSize[T any](n int) Option[T] {
	return func(o *Options[T]) {
		if n < worklist.MinChunkSize || n > worklist.MaxChunkSize {
			o.violate("chunk size %d (want %d..%d)", n, worklist.MinChunkSize, worklist.MaxChunkSize)
			return
		}
		o.ChunkSize = n
	}
}

// WithBackScan sets the OBIM backward-sweep period (n >= 1). Low values
// find late pushes to low-priority buckets sooner; high values delay them
// but never lose them.
func WithBackScan[T any](n int) Option[T] {
	return func(o *Options[T]) {
		if n < 1 {
			o.violate("back-scan period %d (want >= 1)", n)
			return
		}
		o.BackScan = n
	}
}

// WithWorklist selects the worklist flavor backing the loop.
func WithWorklist[T any](f worklist.Factory[T]) Option[T] {
	return func(o *Options[T]) {
		if f == nil {
			o.violate("nil worklist factory")
			return
		}
		o.Factory = f
	}
}

// WithLoopName tags the loop; the tag appears in failure messages.
func WithLoopName[T any](name string) Option[T] {
	return func(o *Options[T]) { o.LoopName = name }
}

// NoConflicts declares that the operator performs its own concurrency
// control.
func NoConflicts[T any]() Option[T] {
	return func(o *Options[T]) { o.NoConflicts = true }
}

// WithSteal enables range-level stealing in DoAll.
func WithSteal[T any]() Option[T] {
	return func(o *Options[T]) { o.Steal = true }
}

// WithRetries bounds how many times a single item may Abort (n >= 1).
func WithRetries[T any](n int) Option[T] {
	return func(o *Options[T]) {
		if n < 1 {
			o.violate("retry budget %d (want >= 1)", n)
			return
		}
		o.MaxRetries = n
	}
}

// WithBindThreads locks workers to OS threads and pins them to CPUs.
func WithBindThreads[T any]() Option[T] {
	return func(o *Options[T]) { o.BindThreads = true }
}
