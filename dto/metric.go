package dto

import (
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/constraints"
)

// Subsystem tags used across metrics, thresholds and alerts.
const (
	SubsystemCPU          = "cpu_usage"
	SubsystemMemory       = "memory_usage"
	SubsystemDisk         = "disk_usage"
	SubsystemProcessCount = "process_count"
	SubsystemProcessCPU   = "process_cpu_usage"
)

// Number constrains the value types a metric can carry.
type Number interface {
	constraints.Integer | constraints.Float
}

// Metric is a single reading from one subsystem check. Present is false when
// the read failed; an absent metric never produces an alert.
type Metric[T Number] struct {
	Subsystem string `json:"subsystem"`
	Value     T      `json:"value"`
	Unit      string `json:"unit"`
	Present   bool   `json:"present"`
}

// Reading builds a successful metric.
func Reading[T Number](subsystem string, value T, unit string) Metric[T] {
	return Metric[T]{Subsystem: subsystem, Value: value, Unit: unit, Present: true}
}

// Absent builds a metric whose read failed this cycle.
func Absent[T Number](subsystem, unit string) Metric[T] {
	return Metric[T]{Subsystem: subsystem, Unit: unit}
}

// Threshold is an immutable numeric limit for one subsystem.
type Threshold[T Number] struct {
	Subsystem string `json:"subsystem"`
	Limit     T      `json:"limit"`
}

// Exceeded reports whether v is strictly above the limit. A value equal to
// the limit never alerts.
func (t Threshold[T]) Exceeded(v T) bool {
	return v > t.Limit
}

// Alert records one threshold violation.
type Alert struct {
	ID        string    `json:"id"`
	Subsystem string    `json:"subsystem"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	Detail    string    `json:"detail,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewAlert builds an alert for a subsystem whose observed value exceeded
// its threshold. Detail carries context such as a disk path or process identity.
func NewAlert(subsystem string, value, threshold float64, detail string) Alert {
	return Alert{
		ID:        uuid.NewString(),
		Subsystem: subsystem,
		Value:     value,
		Threshold: threshold,
		Detail:    detail,
		Timestamp: time.Now(),
	}
}

// Evaluate applies a threshold to a metric. It returns an alert only when the
// metric was successfully read and its value is strictly above the limit.
func Evaluate[T Number](m Metric[T], t Threshold[T], detail string) (Alert, bool) {
	if !m.Present || !t.Exceeded(m.Value) {
		return Alert{}, false
	}
	return NewAlert(m.Subsystem, float64(m.Value), float64(t.Limit), detail), true
}

// CycleResult aggregates every alert raised during one monitoring cycle.
type CycleResult struct {
	Alerts     []Alert   `json:"alerts"`
	CycleAlert bool      `json:"cycle-alert"`
	Completed  time.Time `json:"completed"`
}

// NewCycleResult builds a cycle result; CycleAlert is true iff at least one
// alert was raised.
func NewCycleResult(alerts []Alert) CycleResult {
	return CycleResult{
		Alerts:     alerts,
		CycleAlert: len(alerts) > 0,
		Completed:  time.Now(),
	}
}
