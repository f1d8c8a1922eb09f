// Package amorph is a shared-memory, work-stealing parallel runtime for
// irregular algorithms expressed as operator-iteration loops: pop an item,
// run the operator, push whatever new work it derives.
//
// 🚀 What is amorph?
//
//	A runtime for amorphous data-parallelism, organized as small composable
//	packages:
//		• parallel  — ForEach / DoAll / OnEach drivers with a fixed worker
//		              pool, two-phase termination voting, break and retry
//		• worklist  — chunked FIFO/LIFO queues, per-socket variants,
//		              bulk-synchronous rounds, and the OBIM priority map
//		              behind Δ-stepping-style algorithms
//		• bag       — an unordered, append-only concurrent container for
//		              seeds and per-phase scratch
//		• topo      — NUMA socket discovery and best-effort CPU pinning
//		• config    — AMORPH_* environment and file configuration
//
// ✨ Why choose amorph?
//
//   - Dynamic work generation – operators push follow-up items into the
//     very worklist they came from, chunk-buffered on the hot path
//   - Honest guarantees – approximate priority order where strict order
//     would serialize, strict round separation where algorithms need it
//   - Pluggable scheduling – one option swaps the worklist flavor under
//     an unchanged loop body
//
// Quick sketch (parallel BFS over a CSR-style graph):
//
//	parallel.ForEach(parallel.Slice([]Node{src}),
//	    func(n Node, ctx *parallel.Context[Node]) {
//	        for _, m := range adj[n] {
//	            if dist[m].CompareAndSwap(unreached, dist[n].Load()+1) {
//	                ctx.Push(m)
//	            }
//	        }
//	    },
//	    parallel.NoConflicts[Node](),
//	)
//
//	go get github.com/katalvlaran/amorph
package amorph
