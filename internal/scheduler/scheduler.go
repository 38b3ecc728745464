// Package scheduler computes which sensors are due for a sample and
// how long the control loop may sleep before the next one is, per
// It is pure and platform-independent: no file or socket
// I/O, so it's exercised directly by tests.
package scheduler

import (
	"time"

	"github.com/lakeside-soc/thermald/internal/severity"
	"github.com/lakeside-soc/thermald/internal/thermal"
)

// Due computes, for one scheduler tick at time now, which sensors must
// be sampled this iteration and how long the caller may sleep before
// the next tick is guaranteed to find something due. woken holds the
// sensor (or, for a virtual sensor, its trigger sensor) names a uevent
// arrived for since the last tick; nil/empty means "timer only".
//
// Callers must hold the registry's read lock across this call.
func Due(now time.Time, registry *thermal.Registry, woken map[string]bool, minPoll time.Duration) (due []string, sleep time.Duration) {
	first := true

	for _, name := range registry.SensorNames() {
		info := registry.Sensors[name]
		status, ok := registry.Status(name)
		if !ok {
			continue
		}

		dueInterval := info.PollingDelay
		if status.Severity > severity.None {
			dueInterval = info.PassiveDelay
		}

		elapsed := now.Sub(status.LastUpdateTime)
		remaining := dueInterval - elapsed

		wokenName := name
		if info.IsVirtual && info.Virtual != nil {
			wokenName = info.Virtual.TriggerSensor
		}
		isDue := elapsed >= dueInterval || woken[wokenName]

		if isDue {
			due = append(due, name)
		}

		candidate := remaining
		if isDue {
			candidate = dueInterval
		}
		if first || candidate < sleep {
			sleep = candidate
			first = false
		}
	}

	if sleep < minPoll {
		sleep = minPoll
	}
	return due, sleep
}
