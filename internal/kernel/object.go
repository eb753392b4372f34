package kernel

// object is the header shared by every node on the ready queue: a lifecycle
// tag and the two intrusive links of the circular doubly linked list. Timer
// embeds it, and Task embeds Timer, so every schedulable value carries one
// of these at a fixed, promotable offset.
type object struct {
	id   Id
	prev schedulable
	next schedulable
}

// schedulable is satisfied by *Timer and, through embedding, by *Task. It
// gives the ready-queue and scheduler code a uniform view of "the next
// thing in the list" without caring whether that thing is a bare timer or
// a full task — the Go analogue of the C source reading a tsk_t and a
// tmr_t through the same struct prefix.
type schedulable interface {
	header() *object
	timer() *Timer
}

func (o *object) header() *object { return o }
