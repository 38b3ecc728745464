// Package thermalcore exposes the synchronous, caller-thread-safe
// snapshot queries attributed to "caller threads (the HAL
// surface)": current temperatures, configured thresholds, current
// cooling-device states, and CPU usage. None of these ever mutate
// PID or severity state; they take the sensor registry's read lock
// only.
package thermalcore

import (
	"github.com/lakeside-soc/thermald/internal/cpuinfo"
	"github.com/lakeside-soc/thermald/internal/logger"
	"github.com/lakeside-soc/thermald/internal/severity"
	"github.com/lakeside-soc/thermald/internal/sysfs"
	"github.com/lakeside-soc/thermald/internal/thermal"
)

// Temperature is a point-in-time sensor reading plus its last
// committed severity.
type Temperature struct {
	Name     string
	Value    float64
	Severity severity.Severity
}

// Thresholds is a sensor's static hot/cold threshold and hysteresis
// configuration.
type Thresholds struct {
	Name           string
	HotThresholds  [severity.Count]float64
	ColdThresholds [severity.Count]float64
	HotHysteresis  [severity.Count]float64
	ColdHysteresis [severity.Count]float64
}

// CoolingDevice is a cooling device's currently-programmed state.
type CoolingDevice struct {
	Name  string
	State int
}

// FillCurrentTemperatures reads every sensor's live value (recursing
// through linked sensors for virtual ones, each scaled by its own
// multiplier; a virtual sensor's own multiplier is not applied) and
// pairs it with the last severity the control loop committed.
func FillCurrentTemperatures(registry *thermal.Registry, io *sysfs.IO) []Temperature {
	names := registry.SensorNames()
	out := make([]Temperature, 0, len(names))

	var read func(name string) (float64, error)
	read = func(name string) (float64, error) {
		info, ok := registry.Sensors[name]
		if !ok {
			return 0, nil
		}
		if info.IsVirtual {
			return thermal.CombineVirtual(info.Virtual, read), nil
		}
		raw, err := io.ReadZoneTemp(name)
		if err != nil {
			return 0, err
		}
		return raw * info.Multiplier, nil
	}

	registry.RLock()
	defer registry.RUnlock()
	for _, name := range names {
		value, err := read(name)
		if err != nil {
			logger.Warn("thermalcore: %s: read: %v", name, err)
			continue
		}
		status, ok := registry.Status(name)
		sev := severity.None
		if ok {
			sev = status.Severity
		}
		out = append(out, Temperature{Name: name, Value: value, Severity: sev})
	}
	return out
}

// FillTemperatureThresholds returns every sensor's static threshold
// configuration. The sensor definitions never change after load, so
// no lock is required.
func FillTemperatureThresholds(registry *thermal.Registry) []Thresholds {
	names := registry.SensorNames()
	out := make([]Thresholds, 0, len(names))
	for _, name := range names {
		info := registry.Sensors[name]
		out = append(out, Thresholds{
			Name:           name,
			HotThresholds:  info.HotThresholds,
			ColdThresholds: info.ColdThresholds,
			HotHysteresis:  info.HotHysteresis,
			ColdHysteresis: info.ColdHysteresis,
		})
	}
	return out
}

// FillCurrentCoolingDevices reads every cooling device's currently
// programmed cur_state directly from sysfs.
func FillCurrentCoolingDevices(registry *thermal.Registry, io *sysfs.IO) []CoolingDevice {
	names := registry.CdevNames()
	out := make([]CoolingDevice, 0, len(names))
	for _, name := range names {
		state, err := io.ReadCdevState(name)
		if err != nil {
			logger.Warn("thermalcore: %s: read cur_state: %v", name, err)
			continue
		}
		out = append(out, CoolingDevice{Name: name, State: state})
	}
	return out
}

// FillCpuUsages returns the current per-core online state and
// utilization, delegating to internal/cpuinfo.
func FillCpuUsages(sampler *cpuinfo.Sampler) ([]cpuinfo.Usage, error) {
	return sampler.Sample()
}
