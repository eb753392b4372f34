//go:build !intros_debug

package kernel

// onAssertFail is a no-op outside debug builds: the precondition it
// guards is undefined behavior, not a guaranteed runtime error.
func onAssertFail(format string, args ...any) {}
