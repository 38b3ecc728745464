// Package tripprogram performs the boot-time trip-point programming
// of boot-time trip-point uevent eligibility: for each monitored,
// non-virtual sensor whose kernel policy is user_space, program the
// lowest non-NaN severity's threshold into the zone's trip point so
// the kernel raises a uevent when it's crossed.
package tripprogram

import (
	"math"

	"github.com/lakeside-soc/thermald/internal/logger"
	"github.com/lakeside-soc/thermald/internal/severity"
	"github.com/lakeside-soc/thermald/internal/thermal"
)

const userSpacePolicy = "user_space"

// PolicyReader and TripWriter abstract the sysfs calls this package
// needs, so it's testable without a real kernel thermal tree.
type PolicyReader func(sensorName string) (string, error)
type TripWriter func(sensorName string, tempMilli, hystMilli int, policy string) error

// Program attempts to program a kernel trip point for every monitored,
// non-virtual sensor in sensors. It returns the set of sensor names
// eligible for uevent wake-up; every sensor that fails any step has
// its PollingDelay/PassiveDelay forced to minPoll via ApplyMinTimeout.
func Program(sensors map[string]*thermal.SensorInfo, readPolicy PolicyReader, writeTrip TripWriter, minPoll func(*thermal.SensorInfo)) map[string]bool {
	eligible := make(map[string]bool)

	for name, info := range sensors {
		if info.IsVirtual || !info.IsMonitor {
			continue
		}
		if !programOne(name, info, readPolicy, writeTrip) {
			minPoll(info)
			continue
		}
		eligible[name] = true
	}
	return eligible
}

func programOne(name string, info *thermal.SensorInfo, readPolicy PolicyReader, writeTrip TripWriter) bool {
	policy, err := readPolicy(name)
	if err != nil {
		logger.Warn("tripprogram: %s: read policy: %v", name, err)
		return false
	}
	if policy != userSpacePolicy {
		logger.Info("tripprogram: %s: policy %q is not user_space, falling back to polling", name, policy)
		return false
	}

	sev := lowestNonNaNSeverity(info)
	if sev == severity.None {
		logger.Info("tripprogram: %s: no non-NaN hot threshold configured", name)
		return false
	}

	if info.Multiplier == 0 {
		logger.Warn("tripprogram: %s: zero multiplier, cannot scale trip point", name)
		return false
	}

	tempMilli := int(info.HotThresholds[sev] / info.Multiplier)
	hystMilli := int(info.HotHysteresis[sev] / info.Multiplier)

	if err := writeTrip(name, tempMilli, hystMilli, ""); err != nil {
		logger.Warn("tripprogram: %s: write trip point: %v", name, err)
		return false
	}
	return true
}

func lowestNonNaNSeverity(info *thermal.SensorInfo) severity.Severity {
	for s := severity.Severity(1); s < severity.Count; s++ {
		if !math.IsNaN(info.HotThresholds[s]) && !math.IsNaN(info.HotHysteresis[s]) {
			return s
		}
	}
	return severity.None
}
