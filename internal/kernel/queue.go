package kernel

// rdyInsert splices obj into the ready queue immediately before nxt,
// tagging it with id. Caller must hold the kernel lock.
func rdyInsert(obj schedulable, id Id, nxt schedulable) {
	h := obj.header()
	nh := nxt.header()
	ph := nh.prev.header()

	h.id = id
	h.prev = nh.prev
	h.next = nxt
	nh.prev = obj
	ph.next = obj
}

// rdyRemove unlinks obj from the ready queue and marks it Stopped. obj's
// own prev/next fields are left as they were: per invariant, they are
// never dereferenced again while id == Stopped, but the scheduler's
// traversal cursor may still be sitting on obj and needs obj.next to find
// where to continue (see scheduler.go).
func rdyRemove(obj schedulable) {
	h := obj.header()
	nh := h.next.header()
	ph := h.prev.header()

	nh.prev = h.prev
	ph.next = h.next
	h.id = Stopped
}
