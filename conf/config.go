package conf

import (
	"encoding/json"
	"os"
	"time"

	"github.com/DINA18102002/accuknox-scripting/dto"
)

// Config holds every operator-supplied setting. Intervals are stored as
// seconds so the JSON file stays human editable.
type Config struct {
	LogFilePath     string `json:"log-file-path"`
	MaxLogSizeBytes int64  `json:"max-log-size-bytes"`
	LogBackupCount  int    `json:"log-backup-count"`
	ListenAddr      string `json:"listen-addr"`

	IntervalSeconds       float64 `json:"interval-seconds"`
	SampleIntervalSeconds float64 `json:"sample-interval-seconds"`

	CPUThreshold          float64 `json:"cpu-threshold"`
	MemoryThreshold       float64 `json:"memory-threshold"`
	DiskThreshold         float64 `json:"disk-threshold"`
	ProcessCPUThreshold   float64 `json:"process-cpu-threshold"`
	ProcessCountThreshold int     `json:"process-count-threshold"`

	MonitoredDisks []string `json:"monitored-disks"`

	MonitoredEndpoints     []string `json:"monitored-endpoints"`
	UptimeIntervalSeconds  float64  `json:"uptime-interval-seconds"`
	EndpointTimeoutSeconds float64  `json:"endpoint-timeout-seconds"`
}

func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	config := GetDefaultConfig()
	err = json.Unmarshal(data, config)
	if err != nil {
		return nil, err
	}

	return config, nil
}

func GetDefaultConfig() *Config {
	return &Config{
		LogFilePath:     "watchdog.log",
		MaxLogSizeBytes: 5 * 1024 * 1024,
		LogBackupCount:  3,
		ListenAddr:      ":8080",

		IntervalSeconds:       60,
		SampleIntervalSeconds: 0.5,

		CPUThreshold:          80,
		MemoryThreshold:       80,
		DiskThreshold:         90,
		ProcessCPUThreshold:   20,
		ProcessCountThreshold: 500,

		MonitoredDisks: []string{"/"},

		UptimeIntervalSeconds:  60,
		EndpointTimeoutSeconds: 10,
	}
}

func (config *Config) Interval() time.Duration {
	return secondsToDuration(config.IntervalSeconds)
}

func (config *Config) SampleInterval() time.Duration {
	return secondsToDuration(config.SampleIntervalSeconds)
}

func (config *Config) UptimeInterval() time.Duration {
	return secondsToDuration(config.UptimeIntervalSeconds)
}

func (config *Config) EndpointTimeout() time.Duration {
	return secondsToDuration(config.EndpointTimeoutSeconds)
}

func (config *Config) GetDisksToMonitor() []string {
	return config.MonitoredDisks
}

func (config *Config) GetEndpointsToMonitor() []string {
	return config.MonitoredEndpoints
}

func (config *Config) CPULimit() dto.Threshold[float64] {
	return dto.Threshold[float64]{Subsystem: dto.SubsystemCPU, Limit: config.CPUThreshold}
}

func (config *Config) MemoryLimit() dto.Threshold[float64] {
	return dto.Threshold[float64]{Subsystem: dto.SubsystemMemory, Limit: config.MemoryThreshold}
}

func (config *Config) DiskLimit() dto.Threshold[float64] {
	return dto.Threshold[float64]{Subsystem: dto.SubsystemDisk, Limit: config.DiskThreshold}
}

func (config *Config) ProcessCountLimit() dto.Threshold[int] {
	return dto.Threshold[int]{Subsystem: dto.SubsystemProcessCount, Limit: config.ProcessCountThreshold}
}

func (config *Config) ProcessCPULimit() dto.Threshold[float64] {
	return dto.Threshold[float64]{Subsystem: dto.SubsystemProcessCPU, Limit: config.ProcessCPUThreshold}
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
