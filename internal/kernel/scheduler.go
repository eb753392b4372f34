package kernel

// nextRunnable walks the ready queue starting from sys.cur.next, firing any
// due timers in place, and returns the next Ready task. It is invoked by
// the port on every context switch (yield, break, and the initial boot).
//
// The walk mutates sys.cur on every step, even while it is transiently
// sitting on a Timer — matching the source's pointer-punning traversal,
// where Current briefly "is" whatever node is being examined. By the time
// this function returns, sys.cur always holds the selected Task, because
// the final loop iteration's assignment is exactly that task.
func (sys *System) nextRunnable() *Task {
	for {
		sys.lock.lock()
		nxt := sys.cur.header().next
		sys.cur = nxt
		id := nxt.header().id

		switch id {
		case Stopped:
			sys.lock.unlock()
			continue

		case Ready:
			t := nxt.(*Task)
			sys.lock.unlock()
			return t
		}

		// Delayed or Timer: has its countdown elapsed?
		tm := nxt.timer()
		elapsed := sys.cnt.Load() - tm.start
		if tm.delay >= elapsed+1 {
			sys.lock.unlock()
			continue
		}

		if id == Delayed {
			t := nxt.(*Task)
			t.id = Ready
			t.setEvent(ESuccess)
			sys.lock.unlock()
			return t
		}

		// Timer: fire in place. The callback runs with the lock held,
		// per spec.md's callback-environment contract; sys.firing lets
		// TmrFlip/TmrDelay act on "the timer being fired" without
		// re-entering the lock.
		tm.start += tm.delay
		tm.delay = tm.period
		cb := tm.state
		sys.firing = tm
		if cb != nil {
			cb()
		}
		sys.firing = nil
		if tm.delay == 0 {
			rdyRemove(tm)
		}
		tm.signal++
		sys.lock.unlock()
	}
}
