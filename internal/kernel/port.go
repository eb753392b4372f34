package kernel

// Port is the portability contract of §4.F: context switch, the
// never-returning break used by stop/flip, task bootstrap, and (via the
// kernel lock) the reversible critical section. A real MCU port would
// implement this against register/stack manipulation and an ISR; simPort
// (simport.go) implements it by running each task on its own goroutine, so
// this kernel can be hosted and tested on any machine Go runs on. See the
// design note at the top of simport.go for the rendezvous protocol.
type Port interface {
	bind(sys *System)
	spawn(t *Task)
	switchOut(t *Task)
	brk()
	run(sys *System, stop <-chan struct{})
}
