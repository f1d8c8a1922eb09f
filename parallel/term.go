package parallel

import (
	"runtime"
	"sync/atomic"
	"time"
)

// terminator implements the two-phase idle vote. A worker that cannot pop
// counts itself idle; it leaves the idle set only by successfully popping.
// The loop is over when every worker is idle, the shared lists are empty,
// and the generation counter confirms nothing was popped between the two
// observations.
type terminator struct {
	workers int
	idle    atomic.Int32
	gen     atomic.Uint64
	done    atomic.Bool
}

// waitForWork parks worker w in the vote until either new work appears
// (returned with ok=true) or termination is confirmed (ok=false). The
// break, failure and cancellation flags also end the wait.
func (d *driver[T]) waitForWork(w int) (T, bool) {
	var zero T
	t := &d.term
	t.idle.Add(1)
	spins := 0
	for {
		if t.done.Load() {
			return zero, false
		}
		if d.brk.Load() || d.failed.Load() || d.quit.Load() || d.o.Ctx.Err() != nil {
			t.idle.Add(-1)
			return zero, false
		}
		// Step out of the idle set before touching the list so peers never
		// count a mid-pop worker as idle.
		t.idle.Add(-1)
		if v, ok := d.wl.Pop(w); ok {
			t.gen.Add(1)
			return v, true
		}
		t.idle.Add(1)
		if int(t.idle.Load()) == t.workers && d.wl.Empty() {
			g := t.gen.Load()
			if d.wl.Empty() && int(t.idle.Load()) == t.workers && t.gen.Load() == g {
				t.done.Store(true)
				return zero, false
			}
		}
		spins++
		if spins < 16 {
			runtime.Gosched()
		} else {
			time.Sleep(50 * time.Microsecond)
		}
	}
}
