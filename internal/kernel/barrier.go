package kernel

import "github.com/rajszym/intros/internal/klog"

var barLog = klog.Comp("bar")

// Barrier is a reusable rendezvous point for a fixed number of arrivals.
// The last arriver reloads the count and bumps signal under the kernel
// lock before any waiter observes the new signal, so releases happen in
// batches of exactly limit with no over-counting.
type Barrier struct {
	limit  uint32
	count  uint32
	signal uint32
}

// NewBarrier constructs a barrier that releases every limit arrivals.
func NewBarrier(limit uint32) *Barrier {
	return &Barrier{limit: limit, count: limit}
}

// BarWait blocks the calling task until limit tasks (including this one)
// have called BarWait since the last release.
func (sys *System) BarWait(b *Barrier) uint32 {
	sys.lock.lock()
	b.count--
	if b.count == 0 {
		b.count = b.limit
		b.signal++
		sys.lock.unlock()
		barLog.Debugf("barrier released, signal=%d", b.signal)
		return ESuccess
	}
	signal := b.signal
	sys.lock.unlock()

	for {
		sys.Yield()
		sys.lock.lock()
		released := b.signal != signal
		sys.lock.unlock()
		if released {
			return ESuccess
		}
	}
}
