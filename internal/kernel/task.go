package kernel

import "github.com/rajszym/intros/internal/klog"

var taskLog = klog.Comp("task")

// Task extends the Timer layout: the scheduler's entry-point function for a
// task and a timer's fire callback are the very same field (Timer.state),
// reused for a second purpose, exactly as Timer.signal is reused as the
// task's event word (see getEvent/setEvent below). This is not duplication
// of the "task is a timer plus fields" trick — it *is* the trick, carried
// through to its field-sharing conclusion: apart from the informational
// stackSize, the only fields a Task adds on top of Timer are ones Go's
// goroutine-rendezvous port needs in place of a saved stack pointer.
type Task struct {
	Timer

	stackSize uint32 // informational; Go goroutines have no fixed-size stack
	resumeCh  chan struct{}
	spawned   bool
}

func newTask(fn func(), name string) *Task {
	return &Task{
		Timer:    Timer{state: fn, name: name},
		resumeCh: make(chan struct{}),
	}
}

// NewTask constructs a stopped task, matching OS_WRK / static task
// declarations: id Stopped, prev/next nil. stackSize is carried only for
// diagnostics and config parity; Go's runtime grows goroutine stacks on
// its own.
func NewTask(name string, stackSize uint32, fn func()) *Task {
	t := newTask(fn, name)
	t.stackSize = stackSize
	return t
}

// getEvent/setEvent project the task's event word onto the storage slot
// Timer uses for its fire-signal counter. The two meanings never collide:
// an object tagged Delayed or Ready is never also tagged Timer (see
// object.go doc and spec invariant), so nothing ever reads one task's
// event as if it were a timer's signal count or vice versa.
func (t *Task) getEvent() uint32  { return t.signal }
func (t *Task) setEvent(e uint32) { t.signal = e }

func (sys *System) curTask() *Task {
	sys.lock.lock()
	t, _ := sys.cur.(*Task)
	sys.lock.unlock()
	return t
}

// Start enqueues t as Ready, immediately before the calling task, if it is
// currently Stopped; otherwise it is a no-op. The first Start of a given
// task also spawns its goroutine.
func (sys *System) Start(t *Task) {
	assertf(t.state != nil, "kernel: Start called with nil task state")
	sys.lock.lock()
	if t.id == Stopped {
		rdyInsert(t, Ready, sys.cur)
	}
	needSpawn := !t.spawned
	t.spawned = true
	sys.lock.unlock()

	if needSpawn {
		taskLog.Debugf("starting %s", t.name)
		sys.port.spawn(t)
	}
}

// StartFrom retargets t's entry function before starting it, letting a
// stopped task be relaunched at a different body.
func (sys *System) StartFrom(t *Task, fn func()) {
	sys.lock.lock()
	t.state = fn
	sys.lock.unlock()
	sys.Start(t)
}

// Stop removes the calling task from the ready queue and transfers control
// to the scheduler. Self only. Never returns.
func (sys *System) Stop() {
	t := sys.curTask()
	taskLog.Debugf("%s stopping", t.name)
	sys.lock.lock()
	rdyRemove(t)
	sys.lock.unlock()
	sys.port.brk()
}

// Join spin-yields until t leaves the ready queue.
func (sys *System) Join(t *Task) uint32 {
	for {
		sys.lock.lock()
		stopped := t.id == Stopped
		sys.lock.unlock()
		if stopped {
			return ESuccess
		}
		sys.Yield()
	}
}

// Yield performs a context switch: it surrenders the CPU and blocks until
// the scheduler picks this task again.
func (sys *System) Yield() {
	sys.port.switchOut(sys.curTask())
}

// Pass is a synonym for Yield.
func (sys *System) Pass() { sys.Yield() }

// Flip retargets the calling task's entry function and context-breaks:
// the next dispatch re-enters the task at fn, discarding every frame of
// the caller. Self only. Never returns.
func (sys *System) Flip(fn func()) {
	t := sys.curTask()
	sys.lock.lock()
	t.state = fn
	sys.lock.unlock()
	sys.port.brk()
}

// SleepUntil parks the calling task until the absolute tick abs, or until
// another task calls Resume on it. Returns the delivered event: ESuccess
// for a natural timeout, or whatever Resume supplied.
func (sys *System) SleepUntil(abs uint32) uint32 {
	t := sys.curTask()
	sys.lock.lock()
	now := sys.cnt.Load()
	t.start = now
	t.delay = abs - now
	t.id = Delayed
	sys.lock.unlock()

	sys.Yield()
	return t.getEvent()
}

// SleepFor parks the calling task for delay ticks.
func (sys *System) SleepFor(delay uint32) uint32 {
	return sys.SleepUntil(sys.cnt.Load() + delay)
}

// Sleep parks the calling task until a Resume wakes it; only Resume can.
func (sys *System) Sleep() uint32 {
	return sys.SleepFor(Infinite)
}

// Wait parks the calling task until every bit of mask has been cleared
// from its event word by Give calls. Self only.
func (sys *System) Wait(mask uint32) uint32 {
	t := sys.curTask()
	sys.lock.lock()
	t.setEvent(mask)
	sys.lock.unlock()

	for {
		sys.lock.lock()
		e := t.getEvent()
		sys.lock.unlock()
		if e == 0 {
			return ESuccess
		}
		sys.Yield()
	}
}

// Give clears the bits of mask from t's event word, if t is Ready. It is
// the wakeup half of Wait.
func (sys *System) Give(t *Task, mask uint32) {
	sys.lock.lock()
	defer sys.lock.unlock()
	if t.id == Ready {
		t.setEvent(t.getEvent() &^ mask)
	}
}

// Resume forces a Delayed task back to Ready early, delivering ev as its
// sleep's return value. ESuccess is reserved for natural timeout, so
// callers waking a task early should pass a nonzero value.
func (sys *System) Resume(t *Task, ev uint32) {
	sys.lock.lock()
	defer sys.lock.unlock()
	if t.id == Delayed {
		t.setEvent(ev)
		t.id = Ready
	}
}
