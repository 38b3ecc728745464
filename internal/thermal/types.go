// Package thermal implements the thermal control loop core: sensor
// and cooling-device data model, severity classification, PID power
// allocation, hard-limit policy, and cross-sensor aggregation.
package thermal

import (
	"math"
	"sync"
	"time"

	"github.com/lakeside-soc/thermald/internal/severity"
)

// ThrottlingInfo holds the per-severity throttling policy for a sensor:
// which mechanism applies at each severity, the PID gains for that
// mechanism, and the cooling devices it drives.
type ThrottlingInfo struct {
	ThrottleType  [severity.Count]severity.ThrottleType
	KPo           [severity.Count]float64
	KPu           [severity.Count]float64
	KI            [severity.Count]float64
	KD            [severity.Count]float64
	ICutoff       [severity.Count]float64
	IMax          [severity.Count]float64
	SPower        [severity.Count]float64
	MinAllocPower [severity.Count]float64
	MaxAllocPower [severity.Count]float64

	// CdevRequest and CdevWeight are parallel arrays: sensor drives
	// CdevRequest[i] with weight CdevWeight[i] under PID control.
	CdevRequest []string
	CdevWeight  []float64

	// LimitInfo maps a cooling device name to its per-severity hard
	// limit state table (indexed by severity.Severity).
	LimitInfo map[string][]int
}

// VirtualInfo holds the fields that only apply to virtual sensors.
type VirtualInfo struct {
	TriggerSensor string
	LinkedSensors []string
	Coefficients  []float64
	Formula       severity.Formula
}

// SensorInfo is the immutable, once-loaded description of a sensor.
type SensorInfo struct {
	Name          string
	Type          string
	IsVirtual     bool
	IsMonitor     bool
	SendCallback  bool
	SendPowerHint bool
	Multiplier    float64

	PollingDelay time.Duration
	PassiveDelay time.Duration

	HotThresholds  [severity.Count]float64
	ColdThresholds [severity.Count]float64
	HotHysteresis  [severity.Count]float64
	ColdHysteresis [severity.Count]float64
	VRThreshold    float64

	Throttling ThrottlingInfo
	Virtual    *VirtualInfo // nil unless IsVirtual
}

// ApplyMinTimeout forces both delays down to floor, used when trip-point
// programming fails and the sensor must fall back to tight polling.
func (s *SensorInfo) ApplyMinTimeout(floor time.Duration) {
	s.PollingDelay = floor
	s.PassiveDelay = floor
}

// CdevInfo is the immutable, once-loaded description of a cooling device.
type CdevInfo struct {
	Name string
	Type string

	// Power2State[i] is the power budget in mW above which state i is
	// sufficient. Must be non-increasing (I2); state 0 means "no throttling".
	Power2State []float64
}

// SensorStatus is the mutable per-sensor state the control loop owns.
type SensorStatus struct {
	Severity         severity.Severity
	PrevHotSeverity  severity.Severity
	PrevColdSeverity severity.Severity
	PrevHintSeverity severity.Severity

	ErrIntegral float64
	PrevErr     float64 // NaN means "no previous sample"

	PidRequestMap       map[string]int
	HardLimitRequestMap map[string]int

	LastUpdateTime time.Time
}

func newSensorStatus() *SensorStatus {
	return &SensorStatus{
		PidRequestMap:       make(map[string]int),
		HardLimitRequestMap: make(map[string]int),
		PrevErr:             math.NaN(),
	}
}

// CdevRequestStatus maps a requesting sensor's name to the state it
// wants a particular cooling device in; the device's target state is
// the max over these values (I5).
type CdevRequestStatus map[string]int

// Max returns the maximum requested state across all sensors, or 0 if
// no sensor has requested anything yet.
func (c CdevRequestStatus) Max() int {
	max := 0
	for _, v := range c {
		if v > max {
			max = v
		}
	}
	return max
}

// Registry owns the immutable sensor/cdev definitions and the mutable
// per-sensor and per-cdev status, built once at startup. SensorStatus
// access from outside the control-loop goroutine must go through
// RLock/RUnlock.
type Registry struct {
	mu sync.RWMutex

	Sensors map[string]*SensorInfo
	Cdevs   map[string]*CdevInfo

	statuses    map[string]*SensorStatus
	cdevStatus  map[string]CdevRequestStatus
}
