package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/DINA18102002/accuknox-scripting/collector"
	"github.com/DINA18102002/accuknox-scripting/conf"
	"github.com/DINA18102002/accuknox-scripting/dto"
)

// fakeSampler serves scripted readings; absent entries model read failures.
type fakeSampler struct {
	cpu    dto.Metric[float64]
	memory dto.Metric[float64]
	disks  map[string]dto.Metric[float64]
	panics bool
}

func (fs *fakeSampler) SystemCPU(ctx context.Context, sampleInterval time.Duration) dto.Metric[float64] {
	if fs.panics {
		panic("sampler blew up")
	}
	return fs.cpu
}

func (fs *fakeSampler) SystemMemory() dto.Metric[float64] { return fs.memory }

func (fs *fakeSampler) DiskUsage(path string) dto.Metric[float64] {
	if m, ok := fs.disks[path]; ok {
		return m
	}
	return dto.Absent[float64](dto.SubsystemDisk, "%")
}

type fakeScanner struct {
	result collector.ScanResult
}

func (fsc *fakeScanner) Scan(ctx context.Context, sampleInterval time.Duration) (collector.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return collector.ScanResult{}, err
	}
	return fsc.result, nil
}

func scenarioConfig() *conf.Config {
	config := conf.GetDefaultConfig()
	config.CPUThreshold = 80
	config.MemoryThreshold = 80
	config.DiskThreshold = 90
	config.ProcessCPUThreshold = 20
	config.ProcessCountThreshold = 500
	config.MonitoredDisks = []string{"/"}
	config.IntervalSeconds = 0.01
	config.SampleIntervalSeconds = 0.001
	return config
}

func quietScanner(count int) *fakeScanner {
	return &fakeScanner{result: collector.ScanResult{
		ProcessCount: dto.Reading(dto.SubsystemProcessCount, count, "processes"),
	}}
}

func alertsBySubsystem(result dto.CycleResult) map[string][]dto.Alert {
	grouped := make(map[string][]dto.Alert)
	for _, alert := range result.Alerts {
		grouped[alert.Subsystem] = append(grouped[alert.Subsystem], alert)
	}
	return grouped
}

func TestRunCycleThresholdScenario(t *testing.T) {
	sampler := &fakeSampler{
		cpu:    dto.Reading(dto.SubsystemCPU, 50.0, "%"),
		memory: dto.Reading(dto.SubsystemMemory, 40.0, "%"),
		disks: map[string]dto.Metric[float64]{
			"/": dto.Reading(dto.SubsystemDisk, 95.0, "%"),
		},
	}
	ssm := NewSystemStatsMonitor(scenarioConfig(), sampler, quietScanner(600), zerolog.Nop())

	result := ssm.RunCycle(context.Background())

	grouped := alertsBySubsystem(result)
	if len(grouped[dto.SubsystemCPU]) != 0 {
		t.Error("cpu at 50% raised an alert against an 80% threshold")
	}
	diskAlerts := grouped[dto.SubsystemDisk]
	if len(diskAlerts) != 1 {
		t.Fatalf("disk alerts = %d, want 1", len(diskAlerts))
	}
	if diskAlerts[0].Value != 95.0 || diskAlerts[0].Detail != "/" {
		t.Errorf("disk alert = {value %v, detail %q}, want {95, \"/\"}", diskAlerts[0].Value, diskAlerts[0].Detail)
	}
	countAlerts := grouped[dto.SubsystemProcessCount]
	if len(countAlerts) != 1 {
		t.Fatalf("process count alerts = %d, want 1", len(countAlerts))
	}
	if countAlerts[0].Value != 600 {
		t.Errorf("process count alert value = %v, want 600", countAlerts[0].Value)
	}
	if !result.CycleAlert {
		t.Error("CycleAlert = false, want true")
	}
}

func TestRunCycleAllClear(t *testing.T) {
	sampler := &fakeSampler{
		cpu:    dto.Reading(dto.SubsystemCPU, 10.0, "%"),
		memory: dto.Reading(dto.SubsystemMemory, 20.0, "%"),
		disks: map[string]dto.Metric[float64]{
			"/": dto.Reading(dto.SubsystemDisk, 30.0, "%"),
		},
	}
	ssm := NewSystemStatsMonitor(scenarioConfig(), sampler, quietScanner(100), zerolog.Nop())

	result := ssm.RunCycle(context.Background())
	if result.CycleAlert {
		t.Errorf("CycleAlert = true with every check under its threshold; alerts: %+v", result.Alerts)
	}
	if len(result.Alerts) != 0 {
		t.Errorf("len(Alerts) = %d, want 0", len(result.Alerts))
	}
}

func TestRunCycleDiskFailureIsolation(t *testing.T) {
	config := scenarioConfig()
	config.MonitoredDisks = []string{"/nope", "/"}
	sampler := &fakeSampler{
		cpu:    dto.Reading(dto.SubsystemCPU, 10.0, "%"),
		memory: dto.Reading(dto.SubsystemMemory, 20.0, "%"),
		disks: map[string]dto.Metric[float64]{
			"/": dto.Reading(dto.SubsystemDisk, 95.0, "%"),
			// "/nope" is intentionally missing: its read fails.
		},
	}
	ssm := NewSystemStatsMonitor(config, sampler, quietScanner(100), zerolog.Nop())

	result := ssm.RunCycle(context.Background())

	diskAlerts := alertsBySubsystem(result)[dto.SubsystemDisk]
	if len(diskAlerts) != 1 {
		t.Fatalf("disk alerts = %d, want 1 (only the readable path)", len(diskAlerts))
	}
	if diskAlerts[0].Detail != "/" {
		t.Errorf("disk alert detail = %q, want %q", diskAlerts[0].Detail, "/")
	}
}

func TestRunCycleAbsentMetricsNeverAlert(t *testing.T) {
	sampler := &fakeSampler{
		cpu:    dto.Absent[float64](dto.SubsystemCPU, "%"),
		memory: dto.Absent[float64](dto.SubsystemMemory, "%"),
		disks:  map[string]dto.Metric[float64]{},
	}
	scanner := &fakeScanner{result: collector.ScanResult{
		ProcessCount: dto.Absent[int](dto.SubsystemProcessCount, "processes"),
	}}
	ssm := NewSystemStatsMonitor(scenarioConfig(), sampler, scanner, zerolog.Nop())

	result := ssm.RunCycle(context.Background())
	if result.CycleAlert {
		t.Errorf("CycleAlert = true when every read failed; alerts: %+v", result.Alerts)
	}
}

func TestRunCycleHighUsageProcessesRaiseAlerts(t *testing.T) {
	scanner := &fakeScanner{result: collector.ScanResult{
		ProcessCount: dto.Reading(dto.SubsystemProcessCount, 100, "processes"),
		Snapshots: []dto.ProcessSnapshot{
			{PID: 10, Name: "busy", CPUPercent: 55, MemPercent: 2},
			{PID: 11, Name: "idle", CPUPercent: 1, MemPercent: 1},
			{PID: 12, Name: "busier", CPUPercent: 75, MemPercent: 3},
		},
	}}
	sampler := &fakeSampler{
		cpu:    dto.Reading(dto.SubsystemCPU, 10.0, "%"),
		memory: dto.Reading(dto.SubsystemMemory, 20.0, "%"),
		disks: map[string]dto.Metric[float64]{
			"/": dto.Reading(dto.SubsystemDisk, 30.0, "%"),
		},
	}
	ssm := NewSystemStatsMonitor(scenarioConfig(), sampler, scanner, zerolog.Nop())

	result := ssm.RunCycle(context.Background())

	procAlerts := alertsBySubsystem(result)[dto.SubsystemProcessCPU]
	if len(procAlerts) != 2 {
		t.Fatalf("process cpu alerts = %d, want 2", len(procAlerts))
	}
	// Alerts follow the high-usage list, which is sorted descending.
	if procAlerts[0].Value != 75 || procAlerts[1].Value != 55 {
		t.Errorf("alert values = [%v, %v], want [75, 55]", procAlerts[0].Value, procAlerts[1].Value)
	}
	if !result.CycleAlert {
		t.Error("CycleAlert = false with a non-empty high-usage list")
	}

	high := ssm.LastHighUsage()
	if len(high) != 2 || high[0].PID != 12 || high[1].PID != 10 {
		t.Errorf("LastHighUsage = %+v, want pids [12, 10] in descending cpu order", high)
	}
}

func TestRunCycleRecoversFromPanic(t *testing.T) {
	sampler := &fakeSampler{panics: true}
	ssm := NewSystemStatsMonitor(scenarioConfig(), sampler, quietScanner(1), zerolog.Nop())

	result := ssm.RunCycle(context.Background())
	if result.CycleAlert {
		t.Error("abandoned cycle still produced alerts")
	}
	if _, ok := ssm.LastResult(); ok {
		t.Error("abandoned cycle was reported as a completed result")
	}
}

func TestRunStopsOnCancellation(t *testing.T) {
	sampler := &fakeSampler{
		cpu:    dto.Reading(dto.SubsystemCPU, 10.0, "%"),
		memory: dto.Reading(dto.SubsystemMemory, 20.0, "%"),
		disks: map[string]dto.Metric[float64]{
			"/": dto.Reading(dto.SubsystemDisk, 30.0, "%"),
		},
	}
	ssm := NewSystemStatsMonitor(scenarioConfig(), sampler, quietScanner(1), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ssm.Run(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run returned %v on cancellation, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancellation")
	}
}

func TestRunCycleCancelledMidCycle(t *testing.T) {
	sampler := &fakeSampler{
		cpu:    dto.Reading(dto.SubsystemCPU, 99.0, "%"),
		memory: dto.Reading(dto.SubsystemMemory, 99.0, "%"),
		disks: map[string]dto.Metric[float64]{
			"/": dto.Reading(dto.SubsystemDisk, 99.0, "%"),
		},
	}
	ssm := NewSystemStatsMonitor(scenarioConfig(), sampler, quietScanner(1), zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := ssm.RunCycle(ctx)
	if result.CycleAlert || len(result.Alerts) != 0 {
		t.Errorf("cancelled cycle reported alerts: %+v", result.Alerts)
	}
	if _, ok := ssm.LastResult(); ok {
		t.Error("cancelled cycle was stored as the last result")
	}
}
