// Package worklist provides the concurrent work-item containers behind the
// parallel iteration drivers: chunked FIFO/LIFO queues, their per-socket
// variants, a bulk-synchronous two-phase queue, and an ordered-by-integer-
// metric (OBIM) priority structure for Δ-stepping-style algorithms.
//
// What
//
//   - Items move between workers in fixed-capacity chunks; a chunk is the
//     unit of inter-worker transfer and is owned by exactly one side at a
//     time (a worker's push slot, a worker's pop slot, or a shared list).
//   - Every operation takes the caller's worker slot index; the worklist
//     keeps all per-worker state in slots indexed by it, so no thread-local
//     storage is involved.
//   - ChunkedFIFO / ChunkedLIFO publish sealed chunks to one shared list;
//     the per-socket variants keep one list per NUMA socket and prefer the
//     producer's socket, stealing whole chunks from sibling sockets with
//     exponential backoff.
//   - BulkSynchronous alternates two inner queues separated by a barrier:
//     items pushed during round N are popped only in round N+1.
//   - OrderedByIntegerMetric maps an integer priority (computed by a
//     user-supplied Indexer) to a lazily-created bucket, each bucket an
//     inner chunked queue. Priority order is approximate: each worker
//     processes non-decreasing priorities between refill points and
//     periodically re-scans lower buckets for late arrivals.
//
// Ordering
//
//	FIFO and LIFO describe chunk order on a shared list and item order
//	inside a chunk; neither implies a global order across workers. OBIM
//	guarantees no global priority order at all: algorithms built on it
//	must derive correctness from monotone relaxation, not from strict
//	ordering.
//
// Usage
//
//	Worklists are built through Factory values handed to the parallel
//	drivers, e.g.:
//
//	    parallel.ForEach(seed, op,
//	        parallel.WithWorklist(
//	            worklist.OrderedByIntegerMetric[Req](func(r Req) int { return int(r.Dist >> delta) })))
//
//	Direct construction is possible for custom drivers: call a Factory with
//	a Config describing worker count, chunk size and topology.
package worklist
