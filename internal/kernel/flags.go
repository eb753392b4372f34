package kernel

import "github.com/rajszym/intros/internal/klog"

var flgLog = klog.Comp("flg")

// Flags is a set of event-flag bits. There is no wait queue: waiters
// spin-yield over Take. The residual algebra in Take is reproduced
// verbatim from the source this kernel is modelled on rather than a
// rationalized rewrite — see flags_test.go for the full truth table.
type Flags struct {
	flags uint32
}

// NewFlags constructs an empty flag set.
func NewFlags() *Flags { return &Flags{} }

// FlgTake attempts, without blocking, to consume flags matching mask: if
// all is true every bit of mask must currently be set, and on success
// every bit of mask is cleared; if all is false any single set bit
// satisfies the call, and on success only the bits that were actually set
// are cleared. The return value is a residual mask, zero iff satisfied.
func (sys *System) FlgTake(flg *Flags, mask uint32, all bool) uint32 {
	sys.lock.lock()
	defer sys.lock.unlock()

	event := mask
	if mask&flg.flags != 0 {
		if all {
			event &= ^flg.flags
		} else {
			event = 0
		}
	}
	if event == 0 {
		flg.flags &^= mask
	}
	return event
}

// FlgWait blocks the calling task until FlgTake(flg, mask, all) succeeds.
func (sys *System) FlgWait(flg *Flags, mask uint32, all bool) uint32 {
	for {
		if e := sys.FlgTake(flg, mask, all); e == ESuccess {
			return e
		}
		sys.Yield()
	}
}

// FlgGive sets the bits of mask in flg.
func (sys *System) FlgGive(flg *Flags, mask uint32) {
	sys.lock.lock()
	defer sys.lock.unlock()
	flg.flags |= mask
	flgLog.Debugf("gave %#x, flags now %#x", mask, flg.flags)
}
