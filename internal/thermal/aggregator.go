package thermal

import "github.com/lakeside-soc/thermald/internal/logger"

// Writer writes a decimal cooling-device state to its sysfs file.
type Writer func(cdevName string, state int) error

// Aggregator tracks the last state written to each cooling device and
// performs the max-across-sensors reduction + write-on-change of
// across all sensors requesting each cooling device.
type Aggregator struct {
	registry    *Registry
	lastWritten map[string]int
}

// NewAggregator creates an Aggregator over registry's cooling devices.
func NewAggregator(registry *Registry) *Aggregator {
	return &Aggregator{
		registry:    registry,
		lastWritten: make(map[string]int, len(registry.Cdevs)),
	}
}

// SetRequest records sensorName's requested state for cdevName
// (combining its PID and hard-limit requests, already max'd by the
// caller).
func (a *Aggregator) SetRequest(cdevName, sensorName string, state int) {
	status, ok := a.registry.CdevStatus(cdevName)
	if !ok {
		return
	}
	status[sensorName] = state
}

// Commit writes the max-over-sensors state for every cooling device
// named in dirty, but only when it differs from what was last
// written (no spurious writes). A failed write is logged and leaves
// the last-written state unchanged, so the next Commit that names the
// device attempts the write again.
func (a *Aggregator) Commit(dirty []string, write Writer) {
	for _, cdevName := range dirty {
		status, ok := a.registry.CdevStatus(cdevName)
		if !ok {
			continue
		}
		target := status.Max()
		if prev, ok := a.lastWritten[cdevName]; ok && prev == target {
			continue
		}
		if err := write(cdevName, target); err != nil {
			logger.Error("write cdev %s state %d: %v", cdevName, target, err)
			continue
		}
		a.lastWritten[cdevName] = target
	}
}
