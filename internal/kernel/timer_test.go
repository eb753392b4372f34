package kernel

import (
	"testing"
	"time"
)

func newTestSystem(mainFn func()) *System {
	port := NewSimPort(0, nil)
	return NewSystem(mainFn, port)
}

// TestPeriodicTimerCounts reproduces scenario 2: a timer with period 10
// ticks increments a counter; a driver task advances the clock and yields
// 105 times; the counter must read exactly 10 (fires at ticks 10..100).
func TestPeriodicTimerCounts(t *testing.T) {
	var sys *System
	var count int
	tmr := NewTimer("periodic", func() { count++ })
	driver := NewTask("driver", 0, nil)
	done := make(chan struct{})

	sys = newTestSystem(func() {
		sys.TmrStartPeriodic(tmr, 10, nil)
		driver.state = func() {
			for i := 0; i < 105; i++ {
				sys.Tick()
				sys.Yield()
			}
			sys.Stop()
		}
		sys.Start(driver)
		sys.Join(driver)
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
		t.Fatal("timed out waiting for driver to finish")
	}
	close(stop)

	if count != 10 {
		t.Fatalf("count = %d, want 10", count)
	}
}

// TestAbsoluteDeadlineWrapsCleanly reproduces scenario 3: a one-shot timer
// armed with startUntil across a 32-bit wraparound fires exactly once.
func TestAbsoluteDeadlineWrapsCleanly(t *testing.T) {
	var sys *System
	fired := 0
	tmr := NewTimer("deadline", func() { fired++ })
	driver := NewTask("driver", 0, nil)
	done := make(chan struct{})

	sys = newTestSystem(func() {
		start := uint32(0xFFFFFFF0)
		deadline := uint32(0x00000010)
		sys.cnt.Store(start)
		sys.TmrStartUntil(tmr, start, deadline-start, 0, nil)
		var takes int
		driver.state = func() {
			for i := 0; i < 32; i++ {
				sys.Tick()
				sys.Yield()
				if sys.TmrTake(tmr) == ESuccess {
					takes++
				}
			}
			if takes != 1 {
				panic("expected exactly one take success")
			}
			sys.Stop()
		}
		sys.Start(driver)
		sys.Join(driver)
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

	if fired != 1 {
		t.Fatalf("fired = %d, want 1", fired)
	}
}

// TestInfiniteDelayNeverFires covers invariant 5: a timer armed with
// Infinite delay is never observed to fire no matter how far time moves.
func TestInfiniteDelayNeverFires(t *testing.T) {
	var sys *System
	fired := 0
	tmr := NewTimer("never", func() { fired++ })
	driver := NewTask("driver", 0, nil)
	done := make(chan struct{})

	sys = newTestSystem(func() {
		sys.TmrStart(tmr, Infinite, 0, nil)
		driver.state = func() {
			for i := 0; i < 1000; i++ {
				sys.Tick()
				sys.Yield()
			}
			sys.Stop()
		}
		sys.Start(driver)
		sys.Join(driver)
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

	if fired != 0 {
		t.Fatalf("fired = %d, want 0", fired)
	}
}
