package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/lakeside-soc/thermald/internal/severity"
)

const sampleSensorJSON = `{
  "sensors": [
    {
      "name": "skin-therm",
      "type": "SKIN",
      "is_monitor": true,
      "send_powerhint": true,
      "multiplier": 0.001,
      "hot_thresholds": [null, null, 40, 45, null, null, null],
      "cold_thresholds": [null, null, null, null, null, null, null],
      "hot_hysteresis": [null, null, 1, 1, null, null, null],
      "cold_hysteresis": [null, null, null, null, null, null, null],
      "throttling_info": {
        "throttle_type": ["NONE", "NONE", "PID", "LIMIT", "NONE", "NONE", "NONE"],
        "k_po": [0, 0, 1000, 0, 0, 0, 0],
        "k_pu": [0, 0, 500, 0, 0, 0, 0],
        "k_i": [0, 0, 10, 0, 0, 0, 0],
        "k_d": [0, 0, 2, 0, 0, 0, 0],
        "i_cutoff": [0, 0, 100, 0, 0, 0, 0],
        "i_max": [0, 0, 10000, 0, 0, 0, 0],
        "s_power": [0, 0, 3000, 0, 0, 0, 0],
        "min_alloc_power": [0, 0, 0, 0, 0, 0, 0],
        "max_alloc_power": [0, 0, 6000, 0, 0, 0, 0],
        "cdev_request": ["cpu_cdev"],
        "cdev_weight": [1],
        "limit_info": {"cpu_cdev": [0, 1, 1, 2, 2, 2, 2]}
      }
    },
    {
      "name": "vts",
      "type": "VIRTUAL",
      "is_virtual": true,
      "is_monitor": true,
      "multiplier": 1,
      "hot_thresholds": [null, null, null, null, null, null, null],
      "cold_thresholds": [null, null, null, null, null, null, null],
      "hot_hysteresis": [null, null, null, null, null, null, null],
      "cold_hysteresis": [null, null, null, null, null, null, null],
      "virtual_info": {
        "trigger_sensor": "skin-therm",
        "linked_sensors": ["skin-therm"],
        "coefficients": [1],
        "formula": "MAXIMUM"
      }
    }
  ],
  "cooling_devices": [
    {"name": "cpu_cdev", "type": "cpu", "power2state": [1500, 1000, 500, 0]}
  ]
}`

func TestLoadSensors_ParsesThresholdsAndThrottling(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sensors.json")
	if err := os.WriteFile(path, []byte(sampleSensorJSON), 0644); err != nil {
		t.Fatal(err)
	}

	sensors, cdevs, err := LoadSensors(path)
	if err != nil {
		t.Fatalf("LoadSensors: %v", err)
	}

	skin, ok := sensors["skin-therm"]
	if !ok {
		t.Fatal("expected skin-therm sensor")
	}
	if !math.IsNaN(skin.HotThresholds[severity.Light]) {
		t.Errorf("expected LIGHT hot threshold to be NaN, got %v", skin.HotThresholds[severity.Light])
	}
	if skin.HotThresholds[severity.Moderate] != 40 {
		t.Errorf("got MODERATE hot threshold %v, want 40", skin.HotThresholds[severity.Moderate])
	}
	if skin.Throttling.ThrottleType[severity.Moderate] != severity.ThrottlePID {
		t.Errorf("got throttle_type[MODERATE]=%v, want PID", skin.Throttling.ThrottleType[severity.Moderate])
	}
	if skin.Throttling.ThrottleType[severity.Severe] != severity.ThrottleLimit {
		t.Errorf("got throttle_type[SEVERE]=%v, want LIMIT", skin.Throttling.ThrottleType[severity.Severe])
	}
	if len(skin.Throttling.CdevRequest) != 1 || skin.Throttling.CdevRequest[0] != "cpu_cdev" {
		t.Errorf("got cdev_request=%v, want [cpu_cdev]", skin.Throttling.CdevRequest)
	}

	vts, ok := sensors["vts"]
	if !ok {
		t.Fatal("expected vts sensor")
	}
	if !vts.IsVirtual || vts.Virtual == nil {
		t.Fatal("expected vts to be virtual with Virtual set")
	}
	if vts.Virtual.Formula != severity.FormulaMaximum {
		t.Errorf("got formula=%v, want MAXIMUM", vts.Virtual.Formula)
	}

	cdev, ok := cdevs["cpu_cdev"]
	if !ok {
		t.Fatal("expected cpu_cdev cooling device")
	}
	if len(cdev.Power2State) != 4 {
		t.Errorf("got power2state=%v, want 4 entries", cdev.Power2State)
	}
}

func TestLoadSensors_UnknownThrottleTypeErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sensors.json")
	bad := `{"sensors":[{"name":"s","throttling_info":{"throttle_type":["BOGUS","NONE","NONE","NONE","NONE","NONE","NONE"]}}]}`
	if err := os.WriteFile(path, []byte(bad), 0644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := LoadSensors(path); err == nil {
		t.Error("expected error for unknown throttle_type")
	}
}
