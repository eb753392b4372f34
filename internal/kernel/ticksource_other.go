//go:build !linux

package kernel

import (
	"context"
	"time"
)

// runTickSource is the non-Linux tick source: a plain time.Ticker, since
// timerfd is a Linux-only facility.
func runTickSource(ctx context.Context, sys *System, interval time.Duration) {
	runTickSourceTicker(ctx, sys, interval)
}
