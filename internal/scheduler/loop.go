package scheduler

import (
	"context"
	"time"

	"github.com/lakeside-soc/thermald/internal/logger"
	"github.com/lakeside-soc/thermald/internal/severity"
	"github.com/lakeside-soc/thermald/internal/thermal"
	"github.com/lakeside-soc/thermald/internal/uevent"
)

// Reader reads a sensor's raw (unconverted) value, used for both
// physical zones and, recursively through thermal.CombineVirtual, the
// linked sensors of a virtual one.
type Reader func(sensorName string) (float64, error)

// HintSink is notified of a sensor's new severity once per sample; the
// powerhint bridge and any caller-supplied transition sink both
// implement this shape.
type HintSink func(sensorName string, newSeverity severity.Severity)

// NotifyFunc is the caller-supplied sink fed every severity
// transition, in parallel with the power-hint bridge.
type NotifyFunc func(sensorName string, hot, cold severity.Severity)

// Loop is the control-loop driver: watcher-and-timer scheduling
// feeding the read → classify → PID → allocate → hard-limit →
// aggregate pipeline once per due sensor per iteration.
type Loop struct {
	Registry   *thermal.Registry
	Aggregator *thermal.Aggregator
	Watcher    uevent.Watcher
	ReadRaw    Reader // reads one physical sensor's raw sysfs value
	WriteCdev  thermal.Writer
	MinPoll    time.Duration

	Hint   HintSink   // may be nil
	Notify NotifyFunc // may be nil
}

// Run drives the loop until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		woken := l.drainWoken()
		now := time.Now()

		l.Registry.Lock()
		due, sleep := Due(now, l.Registry, woken, l.MinPoll)
		l.runIteration(now, due)
		l.Registry.Unlock()

		timer.Reset(sleep)
	}
}

// drainWoken collects every uevent that arrived since the last tick
// without blocking, and maps sensor names to true for Due's lookup.
func (l *Loop) drainWoken() map[string]bool {
	if l.Watcher == nil {
		return nil
	}
	var woken map[string]bool
	for {
		select {
		case ev := <-l.Watcher.Events():
			if woken == nil {
				woken = make(map[string]bool)
			}
			woken[ev.SensorName] = true
		default:
			return woken
		}
	}
}

// runIteration processes every due sensor and commits the resulting
// cooling-device states. Caller must hold the registry's write lock.
func (l *Loop) runIteration(now time.Time, due []string) {
	dirty := make(map[string]bool)

	for _, name := range due {
		l.processSensor(now, name, dirty)
	}

	if len(dirty) == 0 {
		return
	}
	cdevNames := make([]string, 0, len(dirty))
	for name := range dirty {
		cdevNames = append(cdevNames, name)
	}
	l.Aggregator.Commit(cdevNames, l.WriteCdev)
}

func (l *Loop) processSensor(now time.Time, name string, dirty map[string]bool) {
	info := l.Registry.Sensors[name]
	status, ok := l.Registry.Status(name)
	if !ok {
		return
	}

	value, err := l.readScaled(name, info)
	if err != nil {
		logger.Warn("scheduler: %s: read: %v", name, err)
		return
	}

	prevHot, prevCold := status.PrevHotSeverity, status.PrevColdSeverity
	prevSeverity := status.Severity
	hot, cold := thermal.ClassifySeverity(info, prevHot, prevCold, value)
	status.PrevHotSeverity, status.PrevColdSeverity = hot, cold
	status.Severity = severity.Max(hot, cold)

	elapsedMs := now.Sub(status.LastUpdateTime).Milliseconds()
	if status.LastUpdateTime.IsZero() {
		elapsedMs = 0
	}
	budget := thermal.PowerBudget(info, status, value, elapsedMs)
	thermal.AllocatePower(name, info, status, l.Registry.Cdevs, budget)
	thermal.ApplyHardLimit(info, status)

	status.LastUpdateTime = now

	for cdevName := range unionKeys(status.PidRequestMap, status.HardLimitRequestMap) {
		combined := status.PidRequestMap[cdevName]
		if hl := status.HardLimitRequestMap[cdevName]; hl > combined {
			combined = hl
		}
		l.Aggregator.SetRequest(cdevName, name, combined)
		dirty[cdevName] = true
	}

	if l.Hint != nil && info.SendPowerHint {
		l.Hint(name, status.Severity)
		status.PrevHintSeverity = status.Severity
	}
	if l.Notify != nil && info.SendCallback && status.Severity != prevSeverity {
		l.Notify(name, hot, cold)
	}
}

// readScaled returns a sensor's value in its configured units,
// recursing through CombineVirtual for virtual sensors. Each linked
// sensor is scaled by its own Multiplier; the virtual sensor's own
// Multiplier is not applied to the combined value.
func (l *Loop) readScaled(name string, info *thermal.SensorInfo) (float64, error) {
	if info.IsVirtual {
		return thermal.CombineVirtual(info.Virtual, func(linked string) (float64, error) {
			linkedInfo, ok := l.Registry.Sensors[linked]
			if !ok {
				return 0, errUnknownSensor(linked)
			}
			return l.readScaled(linked, linkedInfo)
		}), nil
	}
	raw, err := l.ReadRaw(name)
	if err != nil {
		return 0, err
	}
	return raw * info.Multiplier, nil
}

type errUnknownSensor string

func (e errUnknownSensor) Error() string { return "scheduler: unknown sensor " + string(e) }

func unionKeys(a, b map[string]int) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}
