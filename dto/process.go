package dto

// ProcessEntry identifies a phase-1 scan candidate, keyed by pid within a cycle.
type ProcessEntry struct {
	PID  int32  `json:"pid"`
	Name string `json:"name"`
}

// ProcessSnapshot is the phase-2 measurement for a process that survived the
// sampling window. CPUPercent is the delta over the window, never a
// since-start value; MemPercent is instantaneous.
type ProcessSnapshot struct {
	PID        int32   `json:"pid"`
	Name       string  `json:"name"`
	CPUPercent float64 `json:"cpu_percent"`
	MemPercent float32 `json:"memory_percent"`
}
