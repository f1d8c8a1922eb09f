package parallel

// Context is the handle an operator uses to feed work back into the loop
// and to signal control events. It is valid only for the duration of one
// operator invocation; capturing it beyond that is a programming error and
// panics on next use.
type Context[T any] struct {
	d       *driver[T]
	w       int
	live    bool
	aborted bool
}

// Push enqueues a new item on the calling worker's fast path of the active
// worklist.
func (c *Context[T]) Push(item T) {
	c.check()
	c.d.wl.Push(c.w, item)
}

// BreakLoop requests cooperative termination: every worker finishes its
// current item and exits. Items already pushed remain in the worklist and
// are discarded with it. ForEach returns nil after a break.
func (c *Context[T]) BreakLoop() {
	c.check()
	c.d.brk.Store(true)
	c.d.quit.Store(true)
}

// Abort marks the current item for re-enqueue; the operator should return
// promptly afterwards. The same worker retries the item before it pops new
// work, so operators must tolerate repeated invocation.
func (c *Context[T]) Abort() {
	c.check()
	c.aborted = true
}

// Worker reports the slot index of the worker running this invocation.
// Useful for per-worker scratch state such as bag shards.
func (c *Context[T]) Worker() int {
	c.check()
	return c.w
}

func (c *Context[T]) check() {
	if !c.live {
		panic("amorph/parallel: Context used outside its operator invocation")
	}
}
