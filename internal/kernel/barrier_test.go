package kernel

import (
	"testing"
	"time"
)

// TestBarrierRendezvous reproduces scenario 6: three tasks call BarWait on
// a limit-3 barrier; none returns until all three have arrived, and the
// barrier is immediately reusable afterwards.
func TestBarrierRendezvous(t *testing.T) {
	var sys *System
	bar := NewBarrier(3)
	var returned []string
	done := make(chan struct{})

	names := []string{"X", "Y", "Z"}
	tasks := make([]*Task, 3)
	for i := range tasks {
		tasks[i] = NewTask(names[i], 0, nil)
	}

	sys = newTestSystem(func() {
		for i, task := range tasks {
			name := names[i]
			task.state = func() {
				sys.BarWait(bar)
				returned = append(returned, name)
				sys.Stop()
			}
			sys.Start(task)
		}
		for _, task := range tasks {
			sys.Join(task)
		}
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

	if len(returned) != 3 {
		t.Fatalf("returned %v, want 3 arrivals", returned)
	}
	if bar.count != bar.limit {
		t.Fatalf("barrier count = %d, want reloaded to limit %d", bar.count, bar.limit)
	}
}

// TestBarrierReleasesInBatches checks barrier parity: a second wave of
// exactly limit arrivals releases together again, not one at a time.
func TestBarrierReleasesInBatches(t *testing.T) {
	var sys *System
	bar := NewBarrier(2)
	releases := 0
	done := make(chan struct{})

	a := NewTask("A", 0, nil)
	b := NewTask("B", 0, nil)

	sys = newTestSystem(func() {
		run := func() {
			for i := 0; i < 2; i++ {
				sys.BarWait(bar)
				releases++
				sys.Yield()
			}
			sys.Stop()
		}
		a.state = run
		b.state = run
		sys.Start(a)
		sys.Start(b)
		sys.Join(a)
		sys.Join(b)
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

	if releases != 4 {
		t.Fatalf("releases = %d, want 4 (2 waves of 2)", releases)
	}
}
