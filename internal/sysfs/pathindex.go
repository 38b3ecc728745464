// Package sysfs resolves the kernel thermal sysfs tree (thermal_zoneN,
// cooling_deviceN) into logical names and provides typed read/write
// access to the files each holds.
package sysfs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// PathIndex maps a logical sensor or cooling-device name (its "type"
// file contents) to the sysfs directory that backs it, built once at
// startup by scanning thermalRoot/thermal_zone* and
// coolingRoot/cooling_device*.
type PathIndex struct {
	thermalRoot string
	coolingRoot string

	zoneDirs map[string]string // sensor name -> thermal_zoneN dir
	cdevDirs map[string]string // cdev name -> cooling_deviceN dir
}

// NewPathIndex scans thermalRoot and coolingRoot and builds the name
// index. A directory whose "type" file is unreadable is skipped, not
// fatal: sensors not backed by sysfs (e.g. purely virtual ones) are
// expected not to appear here.
func NewPathIndex(thermalRoot, coolingRoot string) (*PathIndex, error) {
	idx := &PathIndex{
		thermalRoot: thermalRoot,
		coolingRoot: coolingRoot,
		zoneDirs:    make(map[string]string),
		cdevDirs:    make(map[string]string),
	}

	if err := idx.scan(thermalRoot, "thermal_zone", idx.zoneDirs); err != nil {
		return nil, fmt.Errorf("scan thermal zones: %w", err)
	}
	if err := idx.scan(coolingRoot, "cooling_device", idx.cdevDirs); err != nil {
		return nil, fmt.Errorf("scan cooling devices: %w", err)
	}
	return idx, nil
}

func (idx *PathIndex) scan(root, prefix string, into map[string]string) error {
	entries, err := os.ReadDir(root)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		dir := filepath.Join(root, e.Name())
		raw, err := os.ReadFile(filepath.Join(dir, "type"))
		if err != nil {
			continue
		}
		name := strings.TrimSpace(string(raw))
		if name == "" {
			continue
		}
		into[name] = dir
	}
	return nil
}

// ZoneDir returns the thermal_zoneN directory backing a sensor name.
func (idx *PathIndex) ZoneDir(name string) (string, bool) {
	d, ok := idx.zoneDirs[name]
	return d, ok
}

// CdevDir returns the cooling_deviceN directory backing a cdev name.
func (idx *PathIndex) CdevDir(name string) (string, bool) {
	d, ok := idx.cdevDirs[name]
	return d, ok
}

// ZoneNames returns every sensor name discovered under thermalRoot.
func (idx *PathIndex) ZoneNames() []string {
	names := make([]string, 0, len(idx.zoneDirs))
	for n := range idx.zoneDirs {
		names = append(names, n)
	}
	return names
}

// CdevNames returns every cooling device name discovered under coolingRoot.
func (idx *PathIndex) CdevNames() []string {
	names := make([]string, 0, len(idx.cdevDirs))
	for n := range idx.cdevDirs {
		names = append(names, n)
	}
	return names
}
