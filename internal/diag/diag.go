// Package diag collects point-in-time diagnostics about the kernel and the
// host it runs on: scheduler stats, CPU count, clock tick rate and load.
// Follows the scheduler's own SnapStats convention of handing the caller an
// independent copy rather than a live reference.
package diag

import (
	"time"

	"github.com/huandu/go-clone"
	"github.com/mackerelio/go-osstat/loadavg"
	"github.com/mackerelio/go-osstat/memory"
	"github.com/tklauser/go-sysconf"
	"github.com/tklauser/numcpus"

	"github.com/rajszym/intros/internal/kernel"
	"github.com/rajszym/intros/internal/klog"
)

var diagLog = klog.Comp("diag")

// Host is sampled once at startup: it rarely changes across a process
// lifetime, unlike Snapshot's scheduler fields.
type Host struct {
	OnlineCPUs       int
	ClockTicksPerSec int64
	BootTime         time.Time
}

// CollectHost samples the static host facts. Errors are logged and leave
// OnlineCPUs or ClockTicksPerSec at zero, or BootTime at the time of the
// call, tolerating a host that doesn't expose one of these facts (e.g. a
// container without /proc).
func CollectHost() *Host {
	h := &Host{}
	if bt, err := bootTime(); err != nil {
		diagLog.Warnf("bootTime(): %v", err)
		h.BootTime = time.Now()
	} else {
		h.BootTime = bt
	}

	if n, err := numcpus.GetOnline(); err != nil {
		diagLog.Warnf("numcpus.GetOnline(): %v", err)
	} else {
		h.OnlineCPUs = n
	}

	if ticks, err := sysconf.Sysconf(sysconf.SC_CLK_TCK); err != nil {
		diagLog.Warnf("sysconf SC_CLK_TCK: %v", err)
	} else {
		h.ClockTicksPerSec = ticks
	}

	return h
}

// Snapshot bundles the kernel's own scheduler stats with a fresh host load
// sample.
type Snapshot struct {
	Scheduler    kernel.Stats
	LoadAvg1     float64
	MemUsedBytes uint64
	SampledAt    time.Time
}

// Collect takes a snapshot of sys and the host's current load. The
// returned value is deep-cloned off sys's own state, so the caller may
// retain or mutate it freely without taking the kernel lock again.
func Collect(sys *kernel.System) *Snapshot {
	snap := &Snapshot{
		Scheduler: sys.Stats(),
		SampledAt: time.Now(),
	}

	if la, err := loadavg.Get(); err != nil {
		diagLog.Warnf("loadavg.Get(): %v", err)
	} else {
		snap.LoadAvg1 = la.Loadavg1
	}

	if mem, err := memory.Get(); err != nil {
		diagLog.Warnf("memory.Get(): %v", err)
	} else {
		snap.MemUsedBytes = mem.Used
	}

	return clone.Clone(snap).(*Snapshot)
}
