// Package benchmarks compares the amorph drivers against general-purpose
// goroutine pools on flat task fan-out, and measures the worklist loop on
// a synthetic graph workload. Run with:
//
//	go test -bench=. -benchmem ./benchmarks
package benchmarks

const (
	// RunTimes is the number of tasks per benchmark iteration.
	RunTimes = 100000

	// PoolSize is the worker cap handed to the external pools.
	PoolSize = 50000

	// TreeSpan is the item count of the derivation-tree workload.
	TreeSpan = 1 << 16
)
