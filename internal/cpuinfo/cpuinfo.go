// Package cpuinfo reports per-CPU online state and utilization for the
// HAL-facing fillCpuUsages query. Per-core busy time comes
// from github.com/prometheus/procfs's /proc/stat parser; which cores
// exist and are online has no procfs equivalent and is read directly
// from /sys/devices/system/cpu.
package cpuinfo

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/procfs"
)

// Usage is one CPU core's online state and utilization since the
// previous sample.
type Usage struct {
	Name    string // "cpu0", "cpu1", ...
	Active  bool   // present and online
	UsagePct float64
}

// Sampler computes per-core utilization deltas across successive
// Sample calls. The zero value is not usable; use NewSampler.
type Sampler struct {
	fs   procfs.FS
	root string // sysfs cpu root, default /sys/devices/system/cpu

	prev     map[int]procfs.CPUStat
	prevTime time.Time
}

// NewSampler opens procfs at procRoot (typically "/proc") and records
// cpuRoot (typically "/sys/devices/system/cpu") for presence/online
// lookups.
func NewSampler(procRoot, cpuRoot string) (*Sampler, error) {
	fs, err := procfs.NewFS(procRoot)
	if err != nil {
		return nil, fmt.Errorf("cpuinfo: open procfs at %s: %w", procRoot, err)
	}
	return &Sampler{fs: fs, root: cpuRoot, prev: make(map[int]procfs.CPUStat)}, nil
}

// Sample returns the current per-core usage. The first call after
// construction reports 0% utilization for every core, since there is
// no prior sample to delta against.
func (s *Sampler) Sample() ([]Usage, error) {
	present, err := s.presentCPUs()
	if err != nil {
		return nil, fmt.Errorf("cpuinfo: read present: %w", err)
	}

	stat, err := s.fs.Stat()
	if err != nil {
		return nil, fmt.Errorf("cpuinfo: read /proc/stat: %w", err)
	}

	now := time.Now()
	hasPrev := !s.prevTime.IsZero()

	usages := make([]Usage, 0, len(present))
	for _, n := range present {
		name := fmt.Sprintf("cpu%d", n)
		cur, ok := stat.CPU[int64(n)]
		active := s.isOnline(n)

		var pct float64
		if ok && hasPrev {
			if prev, ok := s.prev[n]; ok {
				pct = deltaUsagePct(prev, cur)
			}
		}
		if ok {
			s.prev[n] = cur
		}

		usages = append(usages, Usage{Name: name, Active: active, UsagePct: pct})
	}
	s.prevTime = now

	return usages, nil
}

func deltaUsagePct(prev, cur procfs.CPUStat) float64 {
	prevTotal := totalTicks(prev)
	curTotal := totalTicks(cur)
	totalDelta := curTotal - prevTotal
	if totalDelta <= 0 {
		return 0
	}
	idleDelta := (cur.Idle + cur.Iowait) - (prev.Idle + prev.Iowait)
	busyDelta := totalDelta - idleDelta
	if busyDelta < 0 {
		return 0
	}
	return 100 * busyDelta / totalDelta
}

func totalTicks(c procfs.CPUStat) float64 {
	return c.User + c.Nice + c.System + c.Idle + c.Iowait + c.IRQ + c.SoftIRQ + c.Steal
}

// presentCPUs parses cpuRoot/present, a kernel range-list like "0-3" or
// "0-3,8-11".
func (s *Sampler) presentCPUs() ([]int, error) {
	raw, err := os.ReadFile(filepath.Join(s.root, "present"))
	if err != nil {
		return nil, err
	}
	return parseCPURangeList(strings.TrimSpace(string(raw)))
}

func parseCPURangeList(s string) ([]int, error) {
	var out []int
	if s == "" {
		return out, nil
	}
	for _, part := range strings.Split(s, ",") {
		if part == "" {
			continue
		}
		if dash := strings.IndexByte(part, '-'); dash >= 0 {
			lo, err := strconv.Atoi(part[:dash])
			if err != nil {
				return nil, fmt.Errorf("parse range %q: %w", part, err)
			}
			hi, err := strconv.Atoi(part[dash+1:])
			if err != nil {
				return nil, fmt.Errorf("parse range %q: %w", part, err)
			}
			for n := lo; n <= hi; n++ {
				out = append(out, n)
			}
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("parse cpu index %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// isOnline reads cpuRoot/cpuN/online. cpu0 on most kernels has no
// online file and is always online.
func (s *Sampler) isOnline(n int) bool {
	raw, err := os.ReadFile(filepath.Join(s.root, fmt.Sprintf("cpu%d", n), "online"))
	if err != nil {
		return true
	}
	return strings.TrimSpace(string(raw)) == "1"
}
