package monitor

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/DINA18102002/accuknox-scripting/collector"
	"github.com/DINA18102002/accuknox-scripting/conf"
	"github.com/DINA18102002/accuknox-scripting/dto"
	"github.com/DINA18102002/accuknox-scripting/metrics"
)

// Sampler reads system-wide metrics.
type Sampler interface {
	SystemCPU(ctx context.Context, sampleInterval time.Duration) dto.Metric[float64]
	SystemMemory() dto.Metric[float64]
	DiskUsage(path string) dto.Metric[float64]
}

// ProcessScanner runs the two-phase per-process CPU scan.
type ProcessScanner interface {
	Scan(ctx context.Context, sampleInterval time.Duration) (collector.ScanResult, error)
}

// SystemStatsMonitor drives one monitoring cycle after another until
// cancelled: sample every subsystem, compare against the configured
// thresholds, report through the sink, sleep, repeat.
type SystemStatsMonitor struct {
	config  *conf.Config
	sampler Sampler
	scanner ProcessScanner
	log     zerolog.Logger

	mu        sync.RWMutex
	last      dto.CycleResult
	lastHigh  []dto.ProcessSnapshot
	lastScan  collector.ScanResult
	hasResult bool
}

func NewSystemStatsMonitor(config *conf.Config, sampler Sampler, scanner ProcessScanner, sink zerolog.Logger) *SystemStatsMonitor {
	return &SystemStatsMonitor{
		config:  config,
		sampler: sampler,
		scanner: scanner,
		log:     sink.With().Str("component", "health-monitor").Logger(),
	}
}

// Run loops until ctx is cancelled. Cancellation is checked at cycle start
// and after the main sleep; it is the only way out of the loop.
func (ssm *SystemStatsMonitor) Run(ctx context.Context) error {
	ssm.log.Info().
		Float64("interval-seconds", ssm.config.IntervalSeconds).
		Msg("starting system health monitor")

	for {
		select {
		case <-ctx.Done():
			ssm.log.Info().Msg("system health monitor stopped")
			return nil
		default:
		}

		ssm.RunCycle(ctx)

		select {
		case <-ctx.Done():
			ssm.log.Info().Msg("system health monitor stopped")
			return nil
		case <-time.After(ssm.config.Interval()):
		}
	}
}

// RunCycle performs a single pass over every subsystem check. A panic
// anywhere inside the cycle is logged and abandoned; the loop carries on
// with the next cycle. Cancellation mid-cycle abandons the partial result.
func (ssm *SystemStatsMonitor) RunCycle(ctx context.Context) (result dto.CycleResult) {
	defer func() {
		if r := recover(); r != nil {
			ssm.log.Error().
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("health check cycle failed unexpectedly")
		}
	}()

	start := time.Now()
	ssm.log.Info().Msg("----- new health check cycle -----")

	var alerts []dto.Alert

	cpuMetric := ssm.sampler.SystemCPU(ctx, ssm.config.SampleInterval())
	alerts = ssm.evaluatePercent(alerts, cpuMetric, ssm.config.CPULimit(), "", "cpu usage")

	memMetric := ssm.sampler.SystemMemory()
	alerts = ssm.evaluatePercent(alerts, memMetric, ssm.config.MemoryLimit(), "", "memory usage")

	for _, path := range ssm.config.GetDisksToMonitor() {
		diskMetric := ssm.sampler.DiskUsage(path)
		alerts = ssm.evaluatePercent(alerts, diskMetric, ssm.config.DiskLimit(), path, "disk usage on "+path)
		if diskMetric.Present {
			metrics.DiskUsagePercent.WithLabelValues(path).Set(diskMetric.Value)
		}
	}
	if cpuMetric.Present {
		metrics.CPUUsagePercent.Set(cpuMetric.Value)
	}
	if memMetric.Present {
		metrics.MemoryUsagePercent.Set(memMetric.Value)
	}

	if ctx.Err() != nil {
		return dto.CycleResult{}
	}

	scan, err := ssm.scanner.Scan(ctx, ssm.config.SampleInterval())
	if err != nil {
		// Only cancellation surfaces here; abandon the partial cycle.
		return dto.CycleResult{}
	}

	if scan.ProcessCount.Present {
		metrics.ProcessCount.Set(float64(scan.ProcessCount.Value))
		if alert, ok := dto.Evaluate(scan.ProcessCount, ssm.config.ProcessCountLimit(), ""); ok {
			ssm.log.Warn().
				Int("count", scan.ProcessCount.Value).
				Int("threshold", ssm.config.ProcessCountThreshold).
				Msg("high number of processes")
			alerts = append(alerts, alert)
		} else {
			ssm.log.Info().Int("count", scan.ProcessCount.Value).Msg("total processes")
		}
	} else {
		metrics.SubsystemReadErrors.WithLabelValues(dto.SubsystemProcessCount).Inc()
	}

	high := collector.HighUsage(scan.Snapshots, ssm.config.ProcessCPUThreshold)
	metrics.HighCPUProcessCount.Set(float64(len(high)))
	if len(high) > 0 {
		ssm.log.Warn().Int("count", len(high)).Msg("high cpu processes detected")
		for _, proc := range high {
			ssm.log.Warn().
				Int32("pid", proc.PID).
				Str("name", proc.Name).
				Float64("cpu", proc.CPUPercent).
				Float32("mem", proc.MemPercent).
				Msg("high cpu process")
			detail := fmt.Sprintf("%s (pid %d)", proc.Name, proc.PID)
			alerts = append(alerts, dto.NewAlert(dto.SubsystemProcessCPU, proc.CPUPercent, ssm.config.ProcessCPUThreshold, detail))
		}
	} else {
		ssm.log.Info().Msg("no high cpu processes detected")
	}

	if ctx.Err() != nil {
		return dto.CycleResult{}
	}

	result = dto.NewCycleResult(alerts)
	ssm.report(result, scan, high, time.Since(start))
	return result
}

// evaluatePercent applies one float threshold, logs the outcome and appends
// the alert when the limit was exceeded. Absent metrics are skipped; the
// collector already logged the read failure.
func (ssm *SystemStatsMonitor) evaluatePercent(alerts []dto.Alert, m dto.Metric[float64], limit dto.Threshold[float64], detail, what string) []dto.Alert {
	if !m.Present {
		metrics.SubsystemReadErrors.WithLabelValues(m.Subsystem).Inc()
		return alerts
	}
	if alert, ok := dto.Evaluate(m, limit, detail); ok {
		ssm.log.Warn().
			Float64("value", m.Value).
			Float64("threshold", limit.Limit).
			Msg("high " + what)
		return append(alerts, alert)
	}
	ssm.log.Info().Float64("value", m.Value).Msg(what)
	return alerts
}

func (ssm *SystemStatsMonitor) report(result dto.CycleResult, scan collector.ScanResult, high []dto.ProcessSnapshot, elapsed time.Duration) {
	metrics.CyclesTotal.Inc()
	metrics.CycleDuration.Observe(elapsed.Seconds())
	for _, alert := range result.Alerts {
		metrics.AlertsTotal.WithLabelValues(alert.Subsystem).Inc()
	}

	if result.CycleAlert {
		ssm.log.Warn().Int("alerts", len(result.Alerts)).Msg("one or more alerts raised this cycle")
	} else {
		ssm.log.Info().Msg("all checks ok this cycle")
	}
	ssm.log.Info().Dur("elapsed", elapsed).Msg("---- cycle completed ----")

	ssm.mu.Lock()
	ssm.last = result
	ssm.lastHigh = high
	ssm.lastScan = scan
	ssm.hasResult = true
	ssm.mu.Unlock()
}

// LastResult returns the most recently reported cycle result.
func (ssm *SystemStatsMonitor) LastResult() (dto.CycleResult, bool) {
	ssm.mu.RLock()
	defer ssm.mu.RUnlock()
	return ssm.last, ssm.hasResult
}

// LastHighUsage returns the high-usage process list from the last cycle,
// already sorted descending by CPU percent.
func (ssm *SystemStatsMonitor) LastHighUsage() []dto.ProcessSnapshot {
	ssm.mu.RLock()
	defer ssm.mu.RUnlock()
	return ssm.lastHigh
}

// LastScan returns the full scan result from the last cycle.
func (ssm *SystemStatsMonitor) LastScan() collector.ScanResult {
	ssm.mu.RLock()
	defer ssm.mu.RUnlock()
	return ssm.lastScan
}
