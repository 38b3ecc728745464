package thermal

import (
	"fmt"
	"math"

	"github.com/lakeside-soc/thermald/internal/severity"
)

// NewRegistry builds a Registry from immutable sensor and cooling-device
// definitions, validating I1 (every cdev reference exists), I2
// (power2state non-increasing) and I3 (threshold ordering), and
// creating zeroed SensorStatus/CdevRequestStatus entries per the
// lifecycle. Any violation is a configuration inconsistency and is
// returned as an error for the caller to treat as fatal.
func NewRegistry(sensors map[string]*SensorInfo, cdevs map[string]*CdevInfo) (*Registry, error) {
	for name, c := range cdevs {
		if err := validatePower2State(c.Power2State); err != nil {
			return nil, fmt.Errorf("cdev %s: %w", name, err)
		}
	}

	r := &Registry{
		Sensors:    sensors,
		Cdevs:      cdevs,
		statuses:   make(map[string]*SensorStatus, len(sensors)),
		cdevStatus: make(map[string]CdevRequestStatus, len(cdevs)),
	}
	for name := range cdevs {
		r.cdevStatus[name] = make(CdevRequestStatus)
	}

	for name, info := range sensors {
		if err := validateThresholds(info); err != nil {
			return nil, fmt.Errorf("sensor %s: %w", name, err)
		}

		status := newSensorStatus()
		for _, cdevName := range info.Throttling.CdevRequest {
			if cdevName == "" {
				continue
			}
			if _, ok := cdevs[cdevName]; !ok {
				return nil, fmt.Errorf("sensor %s: cdev_request %q not found in cooling device info map", name, cdevName)
			}
			status.PidRequestMap[cdevName] = 0
			r.cdevStatus[cdevName][name] = 0
		}
		for cdevName := range info.Throttling.LimitInfo {
			if _, ok := cdevs[cdevName]; !ok {
				return nil, fmt.Errorf("sensor %s: limit_info %q not found in cooling device info map", name, cdevName)
			}
			status.HardLimitRequestMap[cdevName] = 0
			r.cdevStatus[cdevName][name] = 0
		}
		r.statuses[name] = status
	}

	return r, nil
}

func validatePower2State(p2s []float64) error {
	for i := 1; i < len(p2s); i++ {
		if p2s[i] > p2s[i-1] {
			return fmt.Errorf("power2state not non-increasing at index %d: %v > %v", i, p2s[i], p2s[i-1])
		}
	}
	return nil
}

func validateThresholds(info *SensorInfo) error {
	prevHot, prevCold := math.NaN(), math.NaN()
	for i := severity.Severity(1); i < severity.Count; i++ {
		hot := info.HotThresholds[i]
		if !math.IsNaN(hot) {
			if !math.IsNaN(prevHot) && hot <= prevHot {
				return fmt.Errorf("hot_thresholds[%d]=%v not > hot_thresholds[%d]=%v", i, hot, i-1, prevHot)
			}
			prevHot = hot
		}
		cold := info.ColdThresholds[i]
		if !math.IsNaN(cold) {
			if !math.IsNaN(prevCold) && cold >= prevCold {
				return fmt.Errorf("cold_thresholds[%d]=%v not < cold_thresholds[%d]=%v", i, cold, i-1, prevCold)
			}
			prevCold = cold
		}
	}
	return nil
}

// Status returns the sensor's mutable status. Callers outside the
// control loop must hold RLock via Registry.RLock/RUnlock first.
func (r *Registry) Status(sensorName string) (*SensorStatus, bool) {
	s, ok := r.statuses[sensorName]
	return s, ok
}

// CdevStatus returns the per-sensor request map for a cooling device.
func (r *Registry) CdevStatus(cdevName string) (CdevRequestStatus, bool) {
	c, ok := r.cdevStatus[cdevName]
	return c, ok
}

// RLock/RUnlock/Lock/Unlock expose the registry's status mutex to
// callers: the control loop takes the writer lock once per sample to
// commit severities and hysteresis memory; HAL-facing readers take the
// reader lock.
func (r *Registry) RLock()   { r.mu.RLock() }
func (r *Registry) RUnlock() { r.mu.RUnlock() }
func (r *Registry) Lock()    { r.mu.Lock() }
func (r *Registry) Unlock()  { r.mu.Unlock() }

// SensorNames returns all sensor names, for iteration order-independent callers.
func (r *Registry) SensorNames() []string {
	names := make([]string, 0, len(r.Sensors))
	for name := range r.Sensors {
		names = append(names, name)
	}
	return names
}

// CdevNames returns all cooling-device names.
func (r *Registry) CdevNames() []string {
	names := make([]string, 0, len(r.Cdevs))
	for name := range r.Cdevs {
		names = append(names, name)
	}
	return names
}
