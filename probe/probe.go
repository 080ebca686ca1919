// Package probe samples process resources around each benchmark run:
// a monotonic-backed clock and the current resident set size. A probe
// that cannot read memory on the running platform reports 0 instead of
// failing the benchmark.
package probe

import (
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/process"
)

// Sampler reports the current resident memory of the process in MB.
type Sampler interface {
	ResidentMemoryMB() float64
}

// Now returns the current time. The reading carries Go's monotonic clock,
// so subtracting two values yields a drift-free elapsed duration.
func Now() time.Time {
	return time.Now()
}

// ClampDeltaMB returns after-before floored at zero. Allocator and GC
// noise can shrink the resident set mid-run; a negative delta carries no
// information about the workload and is reported as 0.
func ClampDeltaMB(before, after float64) float64 {
	delta := after - before
	if delta < 0 {
		return 0
	}

	return delta
}

// Prober samples the current process's resident set via the OS.
type Prober struct {
	proc *process.Process
}

// NewProber creates a Prober bound to the current process. The returned
// Prober reports 0 when the platform probe is unavailable.
func NewProber() *Prober {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return &Prober{}
	}

	return &Prober{proc: proc}
}

// ResidentMemoryMB returns the process RSS in MB, or 0 if the
// measurement cannot be obtained.
func (p *Prober) ResidentMemoryMB() float64 {
	if p.proc == nil {
		return 0
	}

	info, err := p.proc.MemoryInfo()
	if err != nil || info == nil {
		return 0
	}

	return float64(info.RSS) / (1024 * 1024)
}
