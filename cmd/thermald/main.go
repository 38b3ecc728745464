// thermald monitors thermal zones, drives PID power budgeting and
// hard-limit throttling, and writes the resulting cooling-device
// states.
//
// Usage:
//
//	thermald -config thermald.yaml -sensors thermal_info_config.json
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lakeside-soc/thermald/internal/config"
	"github.com/lakeside-soc/thermald/internal/cpuinfo"
	"github.com/lakeside-soc/thermald/internal/logger"
	"github.com/lakeside-soc/thermald/internal/powerhint"
	"github.com/lakeside-soc/thermald/internal/scheduler"
	"github.com/lakeside-soc/thermald/internal/severity"
	"github.com/lakeside-soc/thermald/internal/sysfs"
	"github.com/lakeside-soc/thermald/internal/thermal"
	"github.com/lakeside-soc/thermald/internal/tripprogram"
	"github.com/lakeside-soc/thermald/internal/uevent"
	"github.com/lakeside-soc/thermald/pkg/thermalcore"
)

func main() {
	configPath := flag.String("config", "thermald.yaml", "path to the operational YAML config")
	sensorsPath := flag.String("sensors", "", "path to the sensor/cdev JSON definition file (overrides config_property_default)")
	quiet := flag.Bool("quiet", false, "suppress info/warn logging")
	flag.Parse()

	logger.Quiet = *quiet

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Fatal("config: %v", err)
	}

	path := *sensorsPath
	if path == "" {
		path = cfg.ConfigPropertyDefault
	}
	sensors, cdevs, err := config.LoadSensors(path)
	if err != nil {
		logger.Fatal("sensors: %v", err)
	}

	registry, err := thermal.NewRegistry(sensors, cdevs)
	if err != nil {
		logger.Fatal("registry: %v", err)
	}

	idx, err := sysfs.NewPathIndex(cfg.ThermalRoot, cfg.CoolingRoot)
	if err != nil {
		logger.Fatal("sysfs: %v", err)
	}
	for _, name := range registry.CdevNames() {
		if _, ok := idx.CdevDir(name); !ok {
			logger.Fatal("sysfs: cooling device %s not found under %s", name, cfg.CoolingRoot)
		}
	}
	io := sysfs.NewIO(idx)

	eligible := tripprogram.Program(sensors, io.ReadZonePolicy, io.WriteTripPoint, func(info *thermal.SensorInfo) {
		info.ApplyMinTimeout(cfg.MinPollDuration())
	})

	watcher, err := uevent.New(eligible)
	if err != nil {
		logger.Warn("uevent: %v, falling back to timer-only polling", err)
		watcher = nil
	}

	bridge := powerhint.NewBridge(func() (powerhint.Peer, error) {
		return powerhint.Dial(cfg.PowerHintSocket)
	}, powerHintSensorNames(sensors))
	defer bridge.Close()

	sampler, err := cpuinfo.NewSampler(cfg.ProcRoot, cfg.CPURoot)
	if err != nil {
		logger.Warn("cpuinfo: %v, cpu usage queries disabled", err)
	}

	aggregator := thermal.NewAggregator(registry)
	loop := &scheduler.Loop{
		Registry:   registry,
		Aggregator: aggregator,
		Watcher:    watcher,
		ReadRaw:    io.ReadZoneTemp,
		WriteCdev:  io.WriteCdevState,
		MinPoll:    cfg.MinPollDuration(),
		Hint:       bridge.SetSeverity,
		Notify:     logTransition,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received signal %v, shutting down", sig)
		cancel()
	}()

	if sampler != nil {
		go reportSnapshots(ctx, registry, io, sampler)
	}

	if err := loop.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("%v", err)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}

func powerHintSensorNames(sensors map[string]*thermal.SensorInfo) []string {
	var names []string
	for name, info := range sensors {
		if info.SendPowerHint {
			names = append(names, name)
		}
	}
	return names
}

// logTransition stands in for the HAL callback RPC: every severity
// transition lands here, in parallel with the power-hint bridge.
func logTransition(sensorName string, hot, cold severity.Severity) {
	logger.Info("%s: hot=%s cold=%s", sensorName, hot, cold)
}

// reportSnapshots periodically logs the HAL-facing query surface
// (pkg/thermalcore) so the numbers the control loop is acting on stay
// visible without a real binder client attached.
func reportSnapshots(ctx context.Context, registry *thermal.Registry, io *sysfs.IO, sampler *cpuinfo.Sampler) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			temps := thermalcore.FillCurrentTemperatures(registry, io)
			cdevs := thermalcore.FillCurrentCoolingDevices(registry, io)
			usages, err := thermalcore.FillCpuUsages(sampler)
			if err != nil {
				logger.Warn("cpuinfo: %v", err)
				continue
			}
			logger.Info("snapshot: %d sensors, %d cooling devices, %d cpus", len(temps), len(cdevs), len(usages))
			for _, t := range temps {
				if t.Severity > severity.None {
					logger.Info("snapshot: %s=%.1f severity=%s", t.Name, t.Value, t.Severity)
				}
			}
		}
	}
}
