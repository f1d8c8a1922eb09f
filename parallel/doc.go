// Package parallel drives worklist-based parallel iteration: a for-each
// loop whose operator may generate new work, a static-range do-all, and a
// run-once-per-worker helper.
//
// What
//
//   - ForEach pops items from a pluggable worklist, hands each to the
//     operator together with a Context for pushing follow-up work, and
//     terminates when every worker agrees the worklist is drained.
//   - DoAll partitions a slice across the pool, optionally work-stealing
//     half-ranges between workers; operators do not push.
//   - OnEach invokes a function once on every worker slot.
//   - Context supports Push (new work), BreakLoop (cooperative global
//     stop) and Abort (re-enqueue the current item for retry).
//
// Scheduling model
//
//	A fixed pool of goroutines equal to the configured parallelism, each
//	optionally locked to an OS thread and pinned to a CPU. Operators run to
//	completion on the worker that popped them; the runtime never preempts
//	or suspends an operator. Within one worker, invocations are strictly
//	sequenced; across workers there is no ordering beyond what the chosen
//	worklist provides.
//
// Termination
//
//	Detection is a two-phase vote: a worker that cannot pop counts itself
//	idle, and the loop ends once every worker is idle, the shared lists
//	are empty, and a generation counter confirms no work appeared between
//	the two observations. A worker leaves the idle set only by
//	successfully popping an item.
//
// Failure
//
//	An operator panic is recovered on the worker that raised it, wrapped
//	in ErrOperatorFailure, and poisons the loop: peers finish their
//	current item and exit. BreakLoop is not an error; ForEach returns nil.
//
// Usage
//
//	dist := make([]atomic.Uint32, n)
//	err := parallel.ForEach(parallel.Slice(seeds),
//	    func(req Req, ctx *parallel.Context[Req]) {
//	        for _, e := range graph[req.Node] {
//	            if relax(&dist[e.To], req.Dist+e.W) {
//	                ctx.Push(Req{e.To, req.Dist + e.W})
//	            }
//	        }
//	    },
//	    parallel.WithWorklist(worklist.OrderedByIntegerMetric[Req](indexer)),
//	    parallel.NoConflicts[Req](),
//	    parallel.WithLoopName[Req]("sssp"),
//	)
package parallel
