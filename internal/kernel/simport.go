package kernel

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rajszym/intros/internal/klog"
)

// simPort is the goroutine-rendezvous port: each task's state function
// runs on its own goroutine, and
// "context switch" is a blocking handoff over a pair of channels. At any
// instant only one goroutine is logically unblocked — either a task
// goroutine doing real work, or this dispatcher waiting on schedCh — so
// the kernel's single-threaded cooperative model holds even though
// multiple OS threads exist underneath. The channel sends and receives
// that make up each handoff are also what gives the kernel lock's nested
// depth counter (system.go) its safety: every handoff is a synchronization
// point, so depth is never touched by two goroutines at once.
type simPort struct {
	sys     *System
	schedCh chan struct{}

	tickInterval time.Duration
	log          *logrus.Entry

	wg sync.WaitGroup
}

// breakSignal unwinds a task goroutine's call stack back to its runner
// loop: the Go stand-in for tsk_break's "abandon the caller's stack".
type breakSignal struct{}

// NewSimPort creates a Port that also drives a simulated tick source at
// 1/tickInterval Hz. Pass tickInterval == 0 to disable the simulated
// clock, e.g. in tests that advance time by calling System.Tick directly.
func NewSimPort(tickInterval time.Duration, log *logrus.Entry) *simPort {
	if log == nil {
		log = klog.Comp("simport")
	}
	return &simPort{
		schedCh:      make(chan struct{}),
		tickInterval: tickInterval,
		log:          log,
	}
}

func (p *simPort) bind(sys *System) { p.sys = sys }

func (p *simPort) spawn(t *Task) {
	p.wg.Add(1)
	go p.runTaskBody(t)
}

// switchOut is ctx_switch for the non-breaking case: hand control to the
// dispatcher, then block until it is this task's turn again.
func (p *simPort) switchOut(t *Task) {
	p.schedCh <- struct{}{}
	<-t.resumeCh
}

// brk is tsk_break: notify the dispatcher, then unwind to the runner loop.
// Never returns to its caller.
func (p *simPort) brk() {
	p.schedCh <- struct{}{}
	panic(breakSignal{})
}

// run boots the dispatcher loop: spawn the main task, hand it the CPU,
// then service yield/break handoffs until stop is closed or receives.
func (p *simPort) run(sys *System, stop <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if p.tickInterval > 0 {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			runTickSource(ctx, sys, p.tickInterval)
		}()
	}

	p.spawn(sys.Main())

	first := sys.nextRunnable()
	p.log.Debugf("dispatching %s", first.name)
	first.resumeCh <- struct{}{}

	for {
		select {
		case <-stop:
			p.log.Debug("stop requested, shutting down dispatcher")
			cancel()
			return
		case <-p.schedCh:
			next := sys.nextRunnable()
			p.log.Debugf("dispatching %s", next.name)
			next.resumeCh <- struct{}{}
		}
	}
}

const (
	stateReturned = iota
	brokeContinuing
	brokeStopped
)

// callOnce invokes t's current state function once, translating a break
// panic into a result the runner loop can act on without ever letting the
// panic escape a task goroutine.
func (p *simPort) callOnce(t *Task) (result int) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(breakSignal); ok {
				p.sys.lock.lock()
				stopped := t.id == Stopped
				p.sys.lock.unlock()
				if stopped {
					result = brokeStopped
				} else {
					result = brokeContinuing
				}
				return
			}
			panic(r)
		}
	}()
	if fn := t.state; fn != nil {
		fn()
	}
	return stateReturned
}

// runTaskBody is a task's goroutine body: wait for the first dispatch,
// then loop calling its state function. A normal return is "call it
// again" with no implicit yield (per spec, a task that never yields
// starves the rest); a break unwinds via callOnce and parks until the next
// dispatch, which re-enters the task's current state function: the next
// scheduler visit after a flip, or a later Start/StartFrom after a stop.
func (p *simPort) runTaskBody(t *Task) {
	defer p.wg.Done()
	<-t.resumeCh
	for {
		switch p.callOnce(t) {
		case stateReturned:
			continue
		case brokeContinuing:
			<-t.resumeCh
			continue
		case brokeStopped:
			p.log.Debugf("%s stopped", t.name)
			<-t.resumeCh
			continue
		}
	}
}
