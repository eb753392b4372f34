package kernel

import (
	"sync"
	"sync/atomic"
)

// critSection is the kernel lock: a reversible critical section with
// nesting permitted via save-and-restore, matching the port contract's
// lock/unlock semantics (interrupts off/on on real hardware). Nesting is
// safe here because, by construction (see simport.go), at most one
// goroutine is ever logically executing kernel code at a time — the
// channel handoff between tasks establishes a happens-before edge, so a
// plain depth counter needs no atomics of its own.
type critSection struct {
	mu    sync.Mutex
	depth int
}

func (c *critSection) lock() {
	if c.depth == 0 {
		c.mu.Lock()
	}
	c.depth++
}

func (c *critSection) unlock() {
	c.depth--
	if c.depth == 0 {
		c.mu.Unlock()
	}
}

// System is the kernel singleton: the tick counter, the ready-queue cursor
// and the lock guarding every mutation of shared scheduler state. One
// System drives one simulated machine; embedding applications create
// exactly one at boot.
type System struct {
	lock critSection

	cnt atomic.Uint32 // tick counter, advanced only by the port's tick source

	cur  schedulable // ready-queue traversal cursor / currently dispatched task
	main *Task       // the permanent main task, always on the ready queue

	// firing is non-nil only while a timer callback set up by the
	// scheduler's hot loop is executing; TmrFlip/TmrDelay act on it.
	firing *Timer

	port Port
}

// NewSystem creates a system with its permanent main task, self-linked as
// the sole ready-queue member. mainFn is the body the main task runs; it
// is never removed from the queue (invariant: a system always has exactly
// one READY task even when idle).
func NewSystem(mainFn func(), port Port) *System {
	sys := &System{port: port}
	main := newTask(mainFn, "main")
	main.id = Ready
	main.prev = main
	main.next = main
	sys.main = main
	sys.cur = main
	port.bind(sys)
	return sys
}

// Main returns the system's permanent main task.
func (sys *System) Main() *Task { return sys.main }

// SysTime returns the current tick count. Reads happen through an atomic
// load rather than the kernel lock: the counter is a single machine word
// on every platform Go targets, so the lock spec.md reserves for narrower
// CPUs collapses to an atomic access here.
func (sys *System) SysTime() uint32 {
	return sys.cnt.Load()
}

// Tick advances the simulated clock by one unit. Called only by the port's
// tick source (the simulated or real interrupt service routine).
func (sys *System) Tick() {
	sys.cnt.Add(1)
}

// Run boots the dispatcher: it starts the main task's goroutine, selects
// the first runnable task and then services yield/resume handoffs until
// stop is closed. It is the Go replacement for "power on and let the
// scheduler free-run forever" since a host process needs a way to stop.
func (sys *System) Run(stop <-chan struct{}) {
	sys.port.run(sys, stop)
}
