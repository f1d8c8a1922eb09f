package worklist

import (
	"sync/atomic"

	"github.com/katalvlaran/amorph/topo"
)

// Tunables shared by every worklist flavor.
const (
	// DefaultChunkSize is the chunk capacity used when Config.ChunkSize is
	// zero. 64 keeps a chunk of small items within one or two cache lines'
	// worth of indices while amortizing shared-list traffic.
	DefaultChunkSize = 64

	// MinChunkSize and MaxChunkSize bound Config.ChunkSize; values outside
	// the range are clamped.
	MinChunkSize = 1
	MaxChunkSize = 1024

	// DefaultBackScan is how many failed refills pass between backward
	// sweeps of the OBIM priority map. Lower values find late low-priority
	// pushes sooner at the cost of extra scanning; very high values delay
	// them but never lose them (the empty path always rescans).
	DefaultBackScan = 16

	// localFreeCap bounds a worker's private chunk freelist; overflow goes
	// to the shared spare list so footprint stays capped.
	localFreeCap = 8

	// stealRounds is how many full rotations over the shared lists a worker
	// attempts, with exponentially growing backoff, before Pop reports
	// empty.
	stealRounds = 3

	cacheLinePad = 64
)

// Indexer assigns a non-negative integer priority to an item. It must be
// deterministic; no ordering relation between different items is assumed.
// Returning a negative priority is a programming error and panics.
type Indexer[T any] func(item T) int

// Config carries the construction parameters a driver resolves before
// building a worklist.
type Config struct {
	// Workers is the number of worker slots; every Push/Pop/Flush call must
	// use a slot index in [0, Workers).
	Workers int

	// ChunkSize is the chunk capacity; zero selects DefaultChunkSize.
	ChunkSize int

	// BackScan is the OBIM backward-sweep period; zero selects
	// DefaultBackScan.
	BackScan int

	// Topology routes per-socket lists; nil selects the detected topology.
	Topology *topo.Topology

	// Quit, when set true by the driver, makes barrier-based worklists
	// abandon their internal wait loops so workers can observe a break or
	// failure. Nil is allowed; a private flag is used instead.
	Quit *atomic.Bool
}

func (c Config) normalized() Config {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.ChunkSize == 0 {
		c.ChunkSize = DefaultChunkSize
	}
	if c.ChunkSize < MinChunkSize {
		c.ChunkSize = MinChunkSize
	}
	if c.ChunkSize > MaxChunkSize {
		c.ChunkSize = MaxChunkSize
	}
	if c.BackScan <= 0 {
		c.BackScan = DefaultBackScan
	}
	if c.Topology == nil {
		c.Topology = topo.Detect()
	}
	if c.Quit == nil {
		c.Quit = new(atomic.Bool)
	}
	return c
}

// Worklist is the contract between the parallel drivers and every queue
// flavor. All methods are safe for concurrent use provided each worker
// slot index is used by at most one goroutine at a time.
type Worklist[T any] interface {
	// Push appends item on behalf of worker w. Items buffer in w's private
	// push chunk and become visible to other workers once the chunk seals.
	Push(w int, item T)

	// Pop removes an item on behalf of worker w: first from w's private
	// chunks, then from shared lists, then by stealing. ok is false only
	// after the steal rotation came up empty.
	Pop(w int) (item T, ok bool)

	// Flush seals w's private partial chunks onto the shared lists, making
	// buffered items visible to every worker. Drivers call it after seeding
	// and at teardown.
	Flush(w int)

	// Empty reports whether every shared list is empty. Private chunks are
	// not visible here; each worker vouches for its own by failing Pop.
	Empty() bool
}

// Factory builds a worklist for a resolved configuration. The set of
// factories in this package is the closed set of flavors the drivers
// dispatch over.
type Factory[T any] func(cfg Config) Worklist[T]

// Detacher is implemented by barrier-based worklists. A worker leaving the
// loop early (break, failure) must detach so the remaining workers' barrier
// does not wait for it forever.
type Detacher interface {
	Detach(w int)
}
