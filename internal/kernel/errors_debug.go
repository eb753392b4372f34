//go:build intros_debug

package kernel

import (
	"fmt"

	"github.com/rajszym/intros/internal/klog"
)

var assertLog = klog.Comp("assert")

func onAssertFail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	assertLog.Error(msg)
	panic(msg)
}
