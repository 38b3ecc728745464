package sysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// IO performs the raw sysfs reads and writes the control loop needs,
// resolved through a PathIndex.
type IO struct {
	idx *PathIndex
}

// NewIO wraps a PathIndex for typed sysfs access.
func NewIO(idx *PathIndex) *IO {
	return &IO{idx: idx}
}

// ReadZoneTemp reads a sensor's raw millidegree "temp" file and
// returns it unconverted; callers apply SensorInfo.Multiplier.
func (io *IO) ReadZoneTemp(sensorName string) (float64, error) {
	dir, ok := io.idx.ZoneDir(sensorName)
	if !ok {
		return 0, fmt.Errorf("sysfs: no thermal zone backing sensor %q", sensorName)
	}
	return readIntFile(filepath.Join(dir, "temp"))
}

// ReadZonePolicy reads a sensor's governor policy file (e.g.
// "user_space", "step_wise").
func (io *IO) ReadZonePolicy(sensorName string) (string, error) {
	dir, ok := io.idx.ZoneDir(sensorName)
	if !ok {
		return "", fmt.Errorf("sysfs: no thermal zone backing sensor %q", sensorName)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "policy"))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(raw)), nil
}

// WriteCdevState writes a cooling device's cur_state file.
func (io *IO) WriteCdevState(cdevName string, state int) error {
	dir, ok := io.idx.CdevDir(cdevName)
	if !ok {
		return fmt.Errorf("sysfs: no cooling device backing %q", cdevName)
	}
	return writeIntFile(filepath.Join(dir, "cur_state"), state)
}

// ReadCdevState reads a cooling device's current cur_state file.
func (io *IO) ReadCdevState(cdevName string) (int, error) {
	dir, ok := io.idx.CdevDir(cdevName)
	if !ok {
		return 0, fmt.Errorf("sysfs: no cooling device backing %q", cdevName)
	}
	v, err := readIntFile(filepath.Join(dir, "cur_state"))
	return int(v), err
}

// ReadCdevMaxState reads a cooling device's max_state file.
func (io *IO) ReadCdevMaxState(cdevName string) (int, error) {
	dir, ok := io.idx.CdevDir(cdevName)
	if !ok {
		return 0, fmt.Errorf("sysfs: no cooling device backing %q", cdevName)
	}
	v, err := readIntFile(filepath.Join(dir, "max_state"))
	return int(v), err
}

// WriteTripPoint programs trip point 0's temperature and hysteresis
// for a sensor, and optionally sets its governor policy.
func (io *IO) WriteTripPoint(sensorName string, tempMilli, hystMilli int, policy string) error {
	dir, ok := io.idx.ZoneDir(sensorName)
	if !ok {
		return fmt.Errorf("sysfs: no thermal zone backing sensor %q", sensorName)
	}
	if err := writeIntFile(filepath.Join(dir, "trip_point_0_temp"), tempMilli); err != nil {
		return fmt.Errorf("write trip_point_0_temp: %w", err)
	}
	if err := writeIntFile(filepath.Join(dir, "trip_point_0_hyst"), hystMilli); err != nil {
		return fmt.Errorf("write trip_point_0_hyst: %w", err)
	}
	if policy != "" {
		if err := os.WriteFile(filepath.Join(dir, "policy"), []byte(policy), 0644); err != nil {
			return fmt.Errorf("write policy: %w", err)
		}
	}
	return nil
}

func readIntFile(path string) (float64, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	s := strings.TrimSpace(string(raw))
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", path, err)
	}
	return v, nil
}

func writeIntFile(path string, v int) error {
	return os.WriteFile(path, []byte(strconv.Itoa(v)), 0644)
}
