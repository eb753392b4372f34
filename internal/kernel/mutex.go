package kernel

import "github.com/rajszym/intros/internal/klog"

var mtxLog = klog.Comp("mtx")

// Mutex is a non-recursive lock with no wait queue: contenders spin-yield.
// Ownership is tracked by task identity, not by a counter, so a re-take by
// the current owner trivially succeeds and a single Give releases it
// regardless of how many times Take was called.
type Mutex struct {
	owner *Task
}

// NewMutex constructs a free mutex.
func NewMutex() *Mutex { return &Mutex{} }

// MtxTake attempts to acquire m for the calling task without blocking: it
// succeeds if m is free or already owned by the caller. Returns ESuccess
// iff the caller owns m after the attempt.
func (sys *System) MtxTake(m *Mutex) uint32 {
	t := sys.curTask()
	sys.lock.lock()
	defer sys.lock.unlock()

	if m.owner == nil || m.owner == t {
		if m.owner != t {
			mtxLog.Debugf("%s takes mutex", t.name)
		}
		m.owner = t
		return ESuccess
	}
	return EFailure
}

// MtxWait blocks the calling task until it acquires m.
func (sys *System) MtxWait(m *Mutex) uint32 {
	for {
		if e := sys.MtxTake(m); e == ESuccess {
			return e
		}
		sys.Yield()
	}
}

// MtxGive releases m if the calling task owns it; otherwise it is a no-op
// and returns EFailure.
func (sys *System) MtxGive(m *Mutex) uint32 {
	t := sys.curTask()
	sys.lock.lock()
	defer sys.lock.unlock()

	if m.owner != t {
		return EFailure
	}
	mtxLog.Debugf("%s gives mutex", t.name)
	m.owner = nil
	return ESuccess
}
