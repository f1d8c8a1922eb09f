// Package bag provides an unordered, append-only container that many
// goroutines can push into concurrently. It is the usual seed source and
// scratch accumulator for worklist loops: a frontier of active nodes, the
// edge tiles of a round, partial results gathered per worker.
//
// What
//
//   - Push appends from any goroutine; PushTo appends to a specific shard
//     without touching the shared cursor (the fast path inside loops,
//     keyed by Context.Worker).
//   - Items live in per-shard chunk chains; a shard is guarded by its own
//     mutex so unrelated pushers never contend.
//   - Do visits every item in unspecified order; Bag implements
//     parallel.Range, so a bag can seed ForEach directly.
//   - Clear drops everything at once; ClearParallel fans the shard resets
//     out over the worker pool between phases.
//
// Ordering
//
//	None. Iteration order depends on shard assignment and chain layout;
//	callers needing order must sort.
package bag
