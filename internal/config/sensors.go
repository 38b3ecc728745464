package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/lakeside-soc/thermald/internal/severity"
	"github.com/lakeside-soc/thermald/internal/thermal"
)

// severityArray unmarshals a 7-element JSON array (indexed
// NONE..SHUTDOWN) where a null entry means "not configured" (NaN).
type severityArray [severity.Count]float64

func (a *severityArray) UnmarshalJSON(data []byte) error {
	var raw [severity.Count]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for i, v := range raw {
		if v == nil {
			a[i] = math.NaN()
		} else {
			a[i] = *v
		}
	}
	return nil
}

type jsonThrottling struct {
	ThrottleType  [severity.Count]string `json:"throttle_type"`
	KPo           severityArray          `json:"k_po"`
	KPu           severityArray          `json:"k_pu"`
	KI            severityArray          `json:"k_i"`
	KD            severityArray          `json:"k_d"`
	ICutoff       severityArray          `json:"i_cutoff"`
	IMax          severityArray          `json:"i_max"`
	SPower        severityArray          `json:"s_power"`
	MinAllocPower severityArray          `json:"min_alloc_power"`
	MaxAllocPower severityArray          `json:"max_alloc_power"`
	CdevRequest   []string               `json:"cdev_request"`
	CdevWeight    []float64              `json:"cdev_weight"`
	LimitInfo     map[string][]int       `json:"limit_info"`
}

type jsonVirtual struct {
	TriggerSensor string    `json:"trigger_sensor"`
	LinkedSensors []string  `json:"linked_sensors"`
	Coefficients  []float64 `json:"coefficients"`
	Formula       string    `json:"formula"`
}

type jsonSensor struct {
	Name           string          `json:"name"`
	Type           string          `json:"type"`
	IsVirtual      bool            `json:"is_virtual"`
	IsMonitor      bool            `json:"is_monitor"`
	SendCallback   bool            `json:"send_cb"`
	SendPowerHint  bool            `json:"send_powerhint"`
	Multiplier     float64         `json:"multiplier"`
	PollingDelayMs int             `json:"polling_delay_ms"`
	PassiveDelayMs int             `json:"passive_delay_ms"`
	HotThresholds  severityArray   `json:"hot_thresholds"`
	ColdThresholds severityArray   `json:"cold_thresholds"`
	HotHysteresis  severityArray   `json:"hot_hysteresis"`
	ColdHysteresis severityArray   `json:"cold_hysteresis"`
	VRThreshold    float64         `json:"vr_threshold"`
	Throttling     *jsonThrottling `json:"throttling_info"`
	Virtual        *jsonVirtual    `json:"virtual_info"`
}

type jsonCdev struct {
	Name        string    `json:"name"`
	Type        string    `json:"type"`
	Power2State []float64 `json:"power2state"`
}

type jsonRoot struct {
	Sensors []jsonSensor `json:"sensors"`
	Cdevs   []jsonCdev   `json:"cooling_devices"`
}

// LoadSensors parses the vendor sensor/cdev definition file at path
// into the thermal package's data model.
func LoadSensors(path string) (map[string]*thermal.SensorInfo, map[string]*thermal.CdevInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	var root jsonRoot
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cdevs := make(map[string]*thermal.CdevInfo, len(root.Cdevs))
	for _, c := range root.Cdevs {
		cdevs[c.Name] = &thermal.CdevInfo{Name: c.Name, Type: c.Type, Power2State: c.Power2State}
	}

	sensors := make(map[string]*thermal.SensorInfo, len(root.Sensors))
	for _, s := range root.Sensors {
		info, err := convertSensor(s)
		if err != nil {
			return nil, nil, fmt.Errorf("config: sensor %s: %w", s.Name, err)
		}
		sensors[s.Name] = info
	}
	return sensors, cdevs, nil
}

func convertSensor(s jsonSensor) (*thermal.SensorInfo, error) {
	info := &thermal.SensorInfo{
		Name:           s.Name,
		Type:           s.Type,
		IsVirtual:      s.IsVirtual,
		IsMonitor:      s.IsMonitor,
		SendCallback:   s.SendCallback,
		SendPowerHint:  s.SendPowerHint,
		Multiplier:     s.Multiplier,
		PollingDelay:   time.Duration(s.PollingDelayMs) * time.Millisecond,
		PassiveDelay:   time.Duration(s.PassiveDelayMs) * time.Millisecond,
		HotThresholds:  [severity.Count]float64(s.HotThresholds),
		ColdThresholds: [severity.Count]float64(s.ColdThresholds),
		HotHysteresis:  [severity.Count]float64(s.HotHysteresis),
		ColdHysteresis: [severity.Count]float64(s.ColdHysteresis),
		VRThreshold:    s.VRThreshold,
	}

	if s.Throttling != nil {
		t := s.Throttling
		var throttleType [severity.Count]severity.ThrottleType
		for i, name := range t.ThrottleType {
			tt, err := parseThrottleType(name)
			if err != nil {
				return nil, err
			}
			throttleType[i] = tt
		}
		info.Throttling = thermal.ThrottlingInfo{
			ThrottleType:  throttleType,
			KPo:           [severity.Count]float64(t.KPo),
			KPu:           [severity.Count]float64(t.KPu),
			KI:            [severity.Count]float64(t.KI),
			KD:            [severity.Count]float64(t.KD),
			ICutoff:       [severity.Count]float64(t.ICutoff),
			IMax:          [severity.Count]float64(t.IMax),
			SPower:        [severity.Count]float64(t.SPower),
			MinAllocPower: [severity.Count]float64(t.MinAllocPower),
			MaxAllocPower: [severity.Count]float64(t.MaxAllocPower),
			CdevRequest:   t.CdevRequest,
			CdevWeight:    t.CdevWeight,
			LimitInfo:     t.LimitInfo,
		}
	}

	if s.Virtual != nil {
		formula, err := parseFormula(s.Virtual.Formula)
		if err != nil {
			return nil, err
		}
		info.Virtual = &thermal.VirtualInfo{
			TriggerSensor: s.Virtual.TriggerSensor,
			LinkedSensors: s.Virtual.LinkedSensors,
			Coefficients:  s.Virtual.Coefficients,
			Formula:       formula,
		}
	}

	return info, nil
}

func parseThrottleType(s string) (severity.ThrottleType, error) {
	switch s {
	case "", "NONE":
		return severity.ThrottleNone, nil
	case "LIMIT":
		return severity.ThrottleLimit, nil
	case "PID":
		return severity.ThrottlePID, nil
	default:
		return 0, fmt.Errorf("unknown throttle_type %q", s)
	}
}

func parseFormula(s string) (severity.Formula, error) {
	switch s {
	case "", "COUNT_THRESHOLD":
		return severity.FormulaCountThreshold, nil
	case "WEIGHTED_AVG":
		return severity.FormulaWeightedAvg, nil
	case "MAXIMUM":
		return severity.FormulaMaximum, nil
	case "MINIMUM":
		return severity.FormulaMinimum, nil
	default:
		return 0, fmt.Errorf("unknown formula %q", s)
	}
}
