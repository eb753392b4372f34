// Package intros is the public face of the kernel for its users: thin
// re-exports of the internal/kernel API plus a Boot helper that wires
// config loading, logging and signal-driven shutdown around a running
// System, the way a long-lived service wires its own lifecycle around
// a signal channel and a shutdown timeout.
package intros

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rajszym/intros/internal/config"
	"github.com/rajszym/intros/internal/kernel"
	"github.com/rajszym/intros/internal/klog"
)

type (
	Task    = kernel.Task
	Timer   = kernel.Timer
	Mutex   = kernel.Mutex
	Flags   = kernel.Flags
	Barrier = kernel.Barrier
	System  = kernel.System
)

const (
	ESuccess  = kernel.ESuccess
	EFailure  = kernel.EFailure
	Immediate = kernel.Immediate
	Infinite  = kernel.Infinite
)

var (
	NewTask    = kernel.NewTask
	NewTimer   = kernel.NewTimer
	NewMutex   = kernel.NewMutex
	NewFlags   = kernel.NewFlags
	NewBarrier = kernel.NewBarrier
)

// NewCompLogger returns a component logger tagged with the "comp" field,
// for use by code built on top of this kernel that wants to log in the
// same style as the kernel's own internals.
func NewCompLogger(comp string) *logrus.Entry { return klog.Comp(comp) }

// Boot loads cfgFile, configures logging, constructs a System whose main
// task is mainFn(sys), and runs it until SIGINT/SIGTERM. The dispatcher
// only returns once stop is closed, so mainFn returning or stopping does
// not end the run. It blocks until shutdown completes (or
// times out) and returns a process exit code. mainFn receives the System
// it is running under, since it can only be constructed after NewSystem
// is called.
func Boot(cfgFile string, mainFn func(sys *System)) int {
	cfg, err := config.Load(cfgFile, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading config file: %v\n", err)
		return 1
	}

	if err := klog.Configure(cfg.LogConfig); err != nil {
		fmt.Fprintf(os.Stderr, "error configuring logger: %v\n", err)
		return 1
	}
	bootLog := klog.Comp("boot")

	port := kernel.NewSimPort(cfg.TickInterval(), klog.Comp("simport"))
	var sys *kernel.System
	sys = kernel.NewSystem(func() { mainFn(sys) }, port)

	stop := make(chan struct{})
	runDone := make(chan struct{})
	go func() {
		sys.Run(stop)
		close(runDone)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		bootLog.Warnf("%s received, shutting down", sig)
	case <-runDone:
		bootLog.Info("dispatcher returned, shutting down")
		return 0
	}

	close(stop)

	if cfg.ShutdownMaxWait == 0 {
		bootLog.Warn("shutdown_max_wait is 0, exiting without waiting")
		return 0
	}

	wait := cfg.ShutdownMaxWait
	if wait < 0 {
		<-runDone
		return 0
	}

	select {
	case <-runDone:
	case <-time.After(wait):
		bootLog.Errorf("shutdown timed out after %s, force exit", wait)
		return 1
	}
	return 0
}
