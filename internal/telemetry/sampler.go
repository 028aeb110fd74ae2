package telemetry

import (
	"fmt"
	"math"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
)

//go:generate mockgen -destination=../mock/telemetry/mock_telemetry.go -package=mock_telemetry . Sampler

// Sample represents one point in time reading of system health
type Sample struct {
	Timestamp     time.Time          `json:"timestamp"`
	UptimeSeconds uint64             `json:"uptime_seconds"`
	Board         string             `json:"board"`
	CPUPercent    float64            `json:"cpu_usage_percent"`
	PerCPU        map[string]float64 `json:"per_cpu"`
	MemoryPercent float64            `json:"ram_usage_percent"`
	Memory        map[string]uint64  `json:"memory"`
	Temperatures  map[string]float64 `json:"temperatures"`
	Load          map[string]float64 `json:"load"`
}

// Sampler produces system health samples
type Sampler interface {
	Sample() (*Sample, error)
}

// SystemSampler implements Sampler using gopsutil. Individual sensor
// failures are tolerated; whatever can be read still lands in the
// sample. Embedded boards routinely lack one subsystem or another.
type SystemSampler struct{}

// NewSystemSampler returns a new instance of SystemSampler
func NewSystemSampler() *SystemSampler {
	return &SystemSampler{}
}

// Sample reads the current system state
func (s *SystemSampler) Sample() (*Sample, error) {
	sample := &Sample{
		Timestamp:    time.Now(),
		PerCPU:       map[string]float64{},
		Memory:       map[string]uint64{},
		Temperatures: map[string]float64{},
		Load:         map[string]float64{},
	}

	if percents, err := cpu.Percent(0, true); err == nil {
		total := 0.0

		for i, p := range percents {
			sample.PerCPU[fmt.Sprintf("cpu%d", i)] = round1(p)
			total += p
		}

		if len(percents) > 0 {
			sample.CPUPercent = round1(total / float64(len(percents)))
		}
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		sample.MemoryPercent = round1(vm.UsedPercent)
		sample.Memory["ram_total"] = vm.Total
		sample.Memory["ram_used"] = vm.Used
		sample.Memory["ram_available"] = vm.Available
		sample.Memory["ram_cached"] = vm.Cached
	}

	if swap, err := mem.SwapMemory(); err == nil {
		sample.Memory["swap_total"] = swap.Total
		sample.Memory["swap_used"] = swap.Used
	}

	if temps, err := host.SensorsTemperatures(); err == nil {
		for _, t := range temps {
			// some zones report junk sentinel values when idle
			if t.Temperature > -100 && t.Temperature < 200 {
				sample.Temperatures[t.SensorKey] = round1(t.Temperature)
			}
		}
	}

	if avg, err := load.Avg(); err == nil {
		sample.Load["load1"] = avg.Load1
		sample.Load["load5"] = avg.Load5
		sample.Load["load15"] = avg.Load15
	}

	if uptime, err := host.Uptime(); err == nil {
		sample.UptimeSeconds = uptime
	}

	if info, err := host.Info(); err == nil {
		sample.Board = fmt.Sprintf("%s %s (%s)", info.Platform, info.PlatformVersion, info.KernelArch)
	}

	return sample, nil
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
