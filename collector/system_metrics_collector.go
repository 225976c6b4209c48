package collector

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/DINA18102002/accuknox-scripting/dto"
)

// Seams over gopsutil so tests can inject failures without a real host.
var (
	cpuPercent    = cpu.PercentWithContext
	virtualMemory = mem.VirtualMemory
	diskUsage     = disk.Usage
)

// SystemStatsCollector reads system-wide metrics: interval-averaged CPU,
// instantaneous memory and per-path disk usage.
type SystemStatsCollector struct {
	log zerolog.Logger
}

func NewSystemStatsCollector(log zerolog.Logger) *SystemStatsCollector {
	return &SystemStatsCollector{
		log: log.With().Str("component", "system-collector").Logger(),
	}
}

// SystemCPU blocks for sampleInterval to compute an interval-averaged
// processor load; a single instantaneous read is meaningless because
// processor time is cumulative. A read failure yields an absent metric.
func (ssc *SystemStatsCollector) SystemCPU(ctx context.Context, sampleInterval time.Duration) dto.Metric[float64] {
	percents, err := cpuPercent(ctx, sampleInterval, false)
	if err != nil || len(percents) == 0 {
		ssc.log.Error().Err(err).Msg("failed to read system cpu percent")
		return dto.Absent[float64](dto.SubsystemCPU, "%")
	}
	return dto.Reading(dto.SubsystemCPU, percents[0], "%")
}

// SystemMemory returns the instantaneous used-memory percentage.
func (ssc *SystemStatsCollector) SystemMemory() dto.Metric[float64] {
	memStats, err := virtualMemory()
	if err != nil || memStats == nil {
		ssc.log.Error().Err(err).Msg("failed to read memory usage")
		return dto.Absent[float64](dto.SubsystemMemory, "%")
	}
	return dto.Reading(dto.SubsystemMemory, memStats.UsedPercent, "%")
}

// DiskUsage returns the used percentage for one mounted path. A failure on
// one path never affects the remaining paths; the caller evaluates each
// path independently.
func (ssc *SystemStatsCollector) DiskUsage(path string) dto.Metric[float64] {
	usageStat, err := diskUsage(path)
	if err != nil || usageStat == nil {
		ssc.log.Error().Err(err).Str("path", path).Msg("failed to read disk usage")
		return dto.Absent[float64](dto.SubsystemDisk, "%")
	}
	return dto.Reading(dto.SubsystemDisk, usageStat.UsedPercent, "%")
}
