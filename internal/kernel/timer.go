package kernel

import "github.com/rajszym/intros/internal/klog"

var timerLog = klog.Comp("timer")

// Timer is a countdown object on the ready queue. It embeds object for the
// lifecycle tag and links; Task embeds Timer by value so every task header
// is also a valid timer header (see object.go).
type Timer struct {
	object

	signal uint32 // bumped every time the timer fires
	state  func() // callback invoked by the scheduler when the timer fires
	start  uint32 // tick at which the current countdown began
	delay  uint32 // ticks after start at which the current countdown ends
	period uint32 // reload value for a periodic timer, 0 for one-shot

	takenSignal uint32 // last signal value observed by TmrTake
	name        string // component-logger label, ambient only
}

func (t *Timer) timer() *Timer { return t }

// NewTimer constructs a stopped timer, matching OS_TMR / static_TMR: id
// Stopped, prev/next nil, signal 0. fn may be nil; it is filled in by
// TmrStart and friends.
func NewTimer(name string, fn func()) *Timer {
	return &Timer{state: fn, name: name}
}

// TmrStartUntil arms t to fire first delay ticks after tick start, then (if
// period != 0) periodically every period ticks thereafter. It is the
// common setter every other TmrStart* variant funnels through.
func (sys *System) TmrStartUntil(t *Timer, start, delay, period uint32, state func()) {
	sys.lock.lock()
	defer sys.lock.unlock()

	t.start = start
	t.delay = delay
	t.period = period
	if state != nil {
		t.state = state
	}
	if t.id == Stopped {
		timerLog.Debugf("arming %s: delay=%d period=%d", t.name, delay, period)
		rdyInsert(t, Timer, sys.cur)
	}
}

// TmrStart arms a one-shot or periodic timer relative to now.
func (sys *System) TmrStart(t *Timer, delay, period uint32, state func()) {
	sys.TmrStartUntil(t, sys.SysTime(), delay, period, state)
}

// TmrStartFor arms a one-shot timer that fires once after delay ticks.
func (sys *System) TmrStartFor(t *Timer, delay uint32, state func()) {
	sys.TmrStart(t, delay, 0, state)
}

// TmrStartPeriodic arms a periodic timer whose first and every subsequent
// firing is period ticks apart.
func (sys *System) TmrStartPeriodic(t *Timer, period uint32, state func()) {
	sys.TmrStart(t, period, period, state)
}

// TmrStartFrom arms a timer that fires once after delay ticks and then
// periodically every period ticks: a delayed-then-periodic variant.
func (sys *System) TmrStartFrom(t *Timer, delay, period uint32, state func()) {
	sys.TmrStart(t, delay, period, state)
}

// TmrStop disarms t, removing it from the ready queue.
func (sys *System) TmrStop(t *Timer) {
	sys.lock.lock()
	defer sys.lock.unlock()
	if t.id != Stopped {
		rdyRemove(t)
	}
}

// TmrTake samples t's signal counter without blocking: SUCCESS if it has
// advanced since the caller's last TmrTake, FAILURE otherwise. The "last
// observation" is stored on the timer itself, per caller-of-record — a
// timer intended to be polled by more than one task concurrently should
// instead be waited on with TmrWait by each, or paired with its own Flags.
func (sys *System) TmrTake(t *Timer) uint32 {
	sys.lock.lock()
	defer sys.lock.unlock()

	if t.signal != t.takenSignal {
		t.takenSignal = t.signal
		return ESuccess
	}
	return EFailure
}

// TmrWait blocks the calling task, yielding repeatedly, until t fires at
// least once since the caller's last TmrTake/TmrWait.
func (sys *System) TmrWait(t *Timer) uint32 {
	for {
		if e := sys.TmrTake(t); e == ESuccess {
			return e
		}
		sys.Yield()
	}
}

// TmrFlip replaces the callback of the timer currently firing. It is only
// meaningful called from inside a timer callback (see scheduler.go, which
// runs callbacks with the kernel lock already held and sys.firing set) and
// mutates state in place rather than re-acquiring the lock.
func (sys *System) TmrFlip(state func()) {
	assertf(sys.firing != nil, "kernel: TmrFlip called outside a timer callback")
	if sys.firing == nil {
		return
	}
	sys.firing.state = state
}

// TmrDelay changes the delay of the timer currently firing, rescheduling
// its next countdown. Like TmrFlip, only meaningful from within a timer
// callback.
func (sys *System) TmrDelay(delay uint32) {
	assertf(sys.firing != nil, "kernel: TmrDelay called outside a timer callback")
	if sys.firing == nil {
		return
	}
	sys.firing.delay = delay
}
