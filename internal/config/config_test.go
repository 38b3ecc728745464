package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_AppliesDefaultsForMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "thermald.yaml")
	if err := os.WriteFile(path, []byte("log_level: debug\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.LogLevel != "debug" {
		t.Errorf("got log_level=%q, want debug (explicit value preserved)", c.LogLevel)
	}
	if c.ThermalRoot != Default().ThermalRoot {
		t.Errorf("got thermal_root=%q, want default %q", c.ThermalRoot, Default().ThermalRoot)
	}
}

func TestLoad_MissingFileReturnsError(t *testing.T) {
	if _, err := Load("/nonexistent/thermald.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestMinPollDuration_FallsBackOnGarbage(t *testing.T) {
	c := &Config{MinPollInterval: "not-a-duration"}
	got := c.MinPollDuration()
	want, _ := time.ParseDuration(Default().MinPollInterval)
	if got != want {
		t.Errorf("got %v, want fallback %v", got, want)
	}
}

func TestMinPollDuration_ParsesValidDuration(t *testing.T) {
	c := &Config{MinPollInterval: "5s"}
	if got := c.MinPollDuration(); got != 5*time.Second {
		t.Errorf("got %v, want 5s", got)
	}
}
