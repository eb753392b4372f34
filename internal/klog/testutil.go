package klog

import (
	"io"
	"testing"
)

// collectable is the interface CollectableLogger satisfies, kept narrow so
// TestLogCollect can target any logger shaped like it, not just Root.
type collectable interface {
	GetLevel() any
	SetLevel(level any)
	GetOutput() io.Writer
	SetOutput(out io.Writer)
}

// TestLogCollect redirects a CollectableLogger's output to t.Log for the
// duration of a test (unless running with -v, where the normal output is
// left alone), restoring it on RestoreLog. This lets a failing test surface
// the log lines leading up to the failure without spamming a passing run.
type TestLogCollect struct {
	log        collectable
	savedOut   io.Writer
	savedLevel any
	t          *testing.T
}

// NewTestLogCollect attaches to log (normally Root), optionally bumping its
// level first so debug-level lines are captured too.
func NewTestLogCollect(t *testing.T, log *CollectableLogger, level any) *TestLogCollect {
	tlc := &TestLogCollect{t: t}
	if log == nil {
		return tlc
	}
	tlc.log = log
	if !testing.Verbose() {
		tlc.savedOut = log.GetOutput()
		log.SetOutput(tlc)
	}
	if level != nil {
		tlc.savedLevel = log.GetLevel()
		log.SetLevel(level)
	}
	return tlc
}

func (tlc *TestLogCollect) Write(buf []byte) (int, error) {
	n := len(buf)
	if n > 0 && buf[n-1] == '\n' {
		buf = buf[:n-1]
	}
	tlc.t.Log(string(buf))
	return n, nil
}

// RestoreLog undoes NewTestLogCollect's redirection and level override.
func (tlc *TestLogCollect) RestoreLog() {
	if tlc.log == nil {
		return
	}
	if tlc.savedOut != nil {
		tlc.log.SetOutput(tlc.savedOut)
	}
	if tlc.savedLevel != nil {
		tlc.log.SetLevel(tlc.savedLevel)
	}
}
