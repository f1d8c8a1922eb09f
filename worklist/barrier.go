package worklist

import "sync"

// Barrier is a reusable phase barrier for a fixed set of parties. The last
// arrival of a phase runs an optional action while every other party is
// parked, which is exactly the window in which bulk-synchronous queues
// swap their rounds and barriered OBIM advances the global priority.
//
// Parties that leave the loop early (break, operator failure) must call
// Drop; the barrier then completes phases without them.
type Barrier struct {
	mu      sync.Mutex
	cond    *sync.Cond
	parties int
	arrived int
	phase   uint64
}

// NewBarrier creates a barrier for the given number of parties.
func NewBarrier(parties int) *Barrier {
	if parties < 1 {
		parties = 1
	}
	b := &Barrier{parties: parties}
	b.cond = sync.NewCond(&b.mu)
	return b
}

// Arrive blocks until all remaining parties have arrived. The completing
// arrival runs onComplete (if non-nil) before releasing the phase and is
// told so via the return value. No party observes the next phase until
// onComplete has returned.
func (b *Barrier) Arrive(onComplete func()) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.arrived++
	if b.arrived >= b.parties {
		if onComplete != nil {
			onComplete()
		}
		b.arrived = 0
		b.phase++
		b.cond.Broadcast()
		return true
	}
	phase := b.phase
	for phase == b.phase {
		b.cond.Wait()
	}
	return false
}

// Drop removes the caller from the party set. If everyone else has already
// arrived, the pending phase completes without a leader action; the
// released parties re-examine their queues and converge on their own.
func (b *Barrier) Drop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.parties > 0 {
		b.parties--
	}
	if b.parties > 0 && b.arrived >= b.parties {
		b.arrived = 0
		b.phase++
		b.cond.Broadcast()
	}
}
