//go:build linux

package kernel

import (
	"context"
	"time"

	"golang.org/x/sys/unix"
)

// runTickSource arms a timerfd for low-jitter periodic ticks. It falls
// back to the portable ticker source if the timerfd cannot be created or
// armed (e.g. a sandboxed environment without CLOCK_MONOTONIC access).
func runTickSource(ctx context.Context, sys *System, interval time.Duration) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, 0)
	if err != nil {
		runTickSourceTicker(ctx, sys, interval)
		return
	}

	spec := unix.ItimerSpec{
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
		Value:    unix.NsecToTimespec(interval.Nanoseconds()),
	}
	if err := unix.TimerfdSettime(fd, 0, &spec, nil); err != nil {
		unix.Close(fd)
		runTickSourceTicker(ctx, sys, interval)
		return
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		buf := make([]byte, 8)
		for {
			n, err := unix.Read(fd, buf)
			if err != nil || n != len(buf) {
				return
			}
			sys.Tick()
		}
	}()

	<-ctx.Done()
	unix.Close(fd)
	<-done
}
