package kernel

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// TestCooperativeRoundRobin reproduces scenario 1: three tasks started in
// order A, B, C each record their name and yield three times, then stop.
func TestCooperativeRoundRobin(t *testing.T) {
	var sys *System
	var trace []string
	done := make(chan struct{})

	runN := func(name string) func() {
		return func() {
			for i := 0; i < 3; i++ {
				trace = append(trace, name)
				sys.Yield()
			}
			sys.Stop()
		}
	}

	a := NewTask("A", 0, nil)
	b := NewTask("B", 0, nil)
	c := NewTask("C", 0, nil)

	sys = newTestSystem(func() {
		a.state = runN("A")
		b.state = runN("B")
		c.state = runN("C")
		sys.Start(a)
		sys.Start(b)
		sys.Start(c)
		sys.Join(a)
		sys.Join(b)
		sys.Join(c)
		close(done)
		for {
			sys.Yield()
		}
	})

	stop := make(chan struct{})
	go sys.Run(stop)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
	close(stop)

	want := []string{"A", "B", "C", "A", "B", "C", "A", "B", "C"}
	if diff := cmp.Diff(want, trace); diff != "" {
		t.Fatalf("trace mismatch (-want +got):\n%s", diff)
	}
}

// TestSleepResumeDeliversValue reproduces scenario 4: a task sleeping
// forever is woken early by Resume, which delivers the given value as the
// sleep's return.
func TestSleepResumeDeliversValue(t *testing.T) {
	var sys *System
	var got uint32
	done := make(chan struct{})

	target := NewTask("T", 0, nil)
	waker := NewTask("U", 0, nil)

	sys = newTestSystem(func() {
		target.state = func() {
			got = sys.Sleep()
			sys.Stop()
		}
		waker.state = func() {
			sys.Yield() // let target reach Sleep first
			sys.Resume(target, 0x42)
			sys.Stop()
		}
		sys.Start(target)
		sys.Start(waker)
		sys.Join(target)
		sys.Join(waker)
		close(done)
		for {
			sys.Yield()
		}
	})

	stop := make(chan struct{})
	go sys.Run(stop)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
	close(stop)

	if got != 0x42 {
		t.Fatalf("sleep returned %#x, want 0x42", got)
	}
}

// TestSleepForRoundTripLaw checks the round-trip law: SleepFor(d)
// returning ESuccess implies the clock advanced by at least d ticks.
func TestSleepForRoundTripLaw(t *testing.T) {
	var sys *System
	var start, end uint32
	var event uint32
	done := make(chan struct{})

	sleeper := NewTask("S", 0, nil)
	ticker := NewTask("K", 0, nil)

	sys = newTestSystem(func() {
		sleeper.state = func() {
			start = sys.SysTime()
			event = sys.SleepFor(20)
			end = sys.SysTime()
			sys.Stop()
		}
		ticker.state = func() {
			for i := 0; i < 25; i++ {
				sys.Tick()
				sys.Yield()
			}
			sys.Stop()
		}
		sys.Start(sleeper)
		sys.Start(ticker)
		sys.Join(sleeper)
		sys.Join(ticker)
		close(done)
		for {
			sys.Yield()
		}
	})

	stop := make(chan struct{})
	go sys.Run(stop)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
	close(stop)

	if event != ESuccess {
		t.Fatalf("event = %#x, want ESuccess", event)
	}
	if end-start < 20 {
		t.Fatalf("elapsed = %d, want >= 20", end-start)
	}
}

// TestFlipReentersAtNewState checks that Flip discards the caller's frames
// and re-enters the task at the new state function.
func TestFlipReentersAtNewState(t *testing.T) {
	var sys *System
	var reached bool
	done := make(chan struct{})

	flipper := NewTask("F", 0, nil)

	sys = newTestSystem(func() {
		second := func() {
			reached = true
			sys.Stop()
		}
		flipper.state = func() {
			sys.Flip(second)
			panic("unreachable: Flip never returns")
		}
		sys.Start(flipper)
		sys.Join(flipper)
		close(done)
		for {
			sys.Yield()
		}
	})

	stop := make(chan struct{})
	go sys.Run(stop)

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
	}
	close(stop)

	if !reached {
		t.Fatal("flip did not reach the retargeted state function")
	}
}
