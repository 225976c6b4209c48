package collector

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/DINA18102002/accuknox-scripting/dto"
)

// procHandle is the slice of the OS process table the scanner needs. The
// same handle must be used across both phases: the CPU delta baseline lives
// on the handle.
type procHandle interface {
	PID() int32
	Name() (string, error)
	Status() ([]string, error)
	// CPUPercent returns the CPU consumed since the previous call on this
	// handle. The first call only establishes a baseline and its value must
	// be discarded.
	CPUPercent() (float64, error)
	MemoryPercent() (float32, error)
}

type sysProc struct {
	p *process.Process
}

func (sp sysProc) PID() int32                      { return sp.p.Pid }
func (sp sysProc) Name() (string, error)           { return sp.p.Name() }
func (sp sysProc) Status() ([]string, error)       { return sp.p.Status() }
func (sp sysProc) CPUPercent() (float64, error)    { return sp.p.Percent(0) }
func (sp sysProc) MemoryPercent() (float32, error) { return sp.p.MemoryPercent() }

func listProcesses() ([]procHandle, error) {
	processList, err := process.Processes()
	if err != nil {
		return nil, err
	}
	handles := make([]procHandle, 0, len(processList))
	for _, proc := range processList {
		handles = append(handles, sysProc{p: proc})
	}
	return handles, nil
}

// pause sleeps for d or until ctx is cancelled.
func pause(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// ScanResult carries both scanner outputs: the phase-1 visible process
// count and the per-process snapshots measured over the sampling window.
type ScanResult struct {
	ProcessCount dto.Metric[int]       `json:"process_count"`
	Snapshots    []dto.ProcessSnapshot `json:"snapshots"`
}

// ProcessStatsCollector measures per-process CPU with a two-phase delta
// scan: prime every candidate's CPU counter, sleep once for the whole
// registry, then re-read each counter. The single shared sleep is what
// keeps the scan O(interval) instead of O(n*interval).
type ProcessStatsCollector struct {
	log   zerolog.Logger
	list  func() ([]procHandle, error)
	pause func(ctx context.Context, d time.Duration) error
}

func NewProcessStatsCollector(log zerolog.Logger) *ProcessStatsCollector {
	return &ProcessStatsCollector{
		log:   log.With().Str("component", "process-collector").Logger(),
		list:  listProcesses,
		pause: pause,
	}
}

type registryEntry struct {
	entry  dto.ProcessEntry
	handle procHandle
}

// Scan runs both phases. Processes that vanish, turn zombie or deny access
// at any step are silently dropped; that is expected churn, not an error.
// The returned error is non-nil only when ctx was cancelled mid-scan.
func (pmc *ProcessStatsCollector) Scan(ctx context.Context, sampleInterval time.Duration) (ScanResult, error) {
	handles, err := pmc.list()
	if err != nil {
		pmc.log.Error().Err(err).Msg("failed to list processes")
		return ScanResult{ProcessCount: dto.Absent[int](dto.SubsystemProcessCount, "processes")}, nil
	}
	count := dto.Reading(dto.SubsystemProcessCount, len(handles), "processes")

	// Phase 1: build the registry and prime every CPU counter. The first
	// reading is a meaningless baseline and is discarded.
	registry := make([]registryEntry, 0, len(handles))
	for _, handle := range handles {
		name, err := handle.Name()
		if err != nil {
			pmc.trace(handle.PID(), "name", err)
			continue
		}
		if statuses, err := handle.Status(); err == nil && slices.Contains(statuses, process.Zombie) {
			pmc.trace(handle.PID(), "status", nil)
			continue
		}
		if _, err := handle.CPUPercent(); err != nil {
			pmc.trace(handle.PID(), "cpu baseline", err)
			continue
		}
		registry = append(registry, registryEntry{
			entry:  dto.ProcessEntry{PID: handle.PID(), Name: name},
			handle: handle,
		})
	}

	// One shared wait for the entire registry; every baseline is already
	// in place, so each handle's next read covers this same window.
	if err := pmc.pause(ctx, sampleInterval); err != nil {
		return ScanResult{}, err
	}

	// Phase 2: re-read each registry entry. Entries that disappeared during
	// the window produce no snapshot.
	snapshots := make([]dto.ProcessSnapshot, 0, len(registry))
	for _, re := range registry {
		cpuPct, err := re.handle.CPUPercent()
		if err != nil {
			pmc.trace(re.entry.PID, "cpu delta", err)
			continue
		}
		memPct, err := re.handle.MemoryPercent()
		if err != nil {
			pmc.trace(re.entry.PID, "memory", err)
			continue
		}
		snapshots = append(snapshots, dto.ProcessSnapshot{
			PID:        re.entry.PID,
			Name:       re.entry.Name,
			CPUPercent: cpuPct,
			MemPercent: memPct,
		})
	}

	return ScanResult{ProcessCount: count, Snapshots: snapshots}, nil
}

func (pmc *ProcessStatsCollector) trace(pid int32, step string, err error) {
	pmc.log.Debug().Int32("pid", pid).Str("step", step).Err(err).Msg("skipping process")
}

// HighUsage filters snapshots whose CPU percent is strictly above limit and
// sorts them descending by CPU percent. Ties keep their input order.
func HighUsage(snapshots []dto.ProcessSnapshot, limit float64) []dto.ProcessSnapshot {
	var high []dto.ProcessSnapshot
	for _, snapshot := range snapshots {
		if snapshot.CPUPercent > limit {
			high = append(high, snapshot)
		}
	}
	sort.SliceStable(high, func(i, j int) bool {
		return high[i].CPUPercent > high[j].CPUPercent
	})
	return high
}
