package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Cycle metrics
	CyclesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "watchdog_cycles_total",
			Help: "Total number of completed health check cycles",
		},
	)

	CycleDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "watchdog_cycle_duration_seconds",
			Help:    "Duration of one health check cycle in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	AlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchdog_alerts_total",
			Help: "Total number of threshold alerts raised",
		},
		[]string{"subsystem"},
	)

	SubsystemReadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchdog_subsystem_read_errors_total",
			Help: "Total number of failed subsystem reads",
		},
		[]string{"subsystem"},
	)

	// Latest observed values
	CPUUsagePercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchdog_cpu_usage_percent",
			Help: "Interval-averaged system CPU usage",
		},
	)

	MemoryUsagePercent = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchdog_memory_usage_percent",
			Help: "Instantaneous system memory usage",
		},
	)

	DiskUsagePercent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchdog_disk_usage_percent",
			Help: "Used disk space per monitored path",
		},
		[]string{"path"},
	)

	ProcessCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchdog_process_count",
			Help: "Number of visible processes at the last scan",
		},
	)

	HighCPUProcessCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "watchdog_high_cpu_process_count",
			Help: "Number of processes above the per-process CPU threshold",
		},
	)

	// Uptime metrics
	EndpointUp = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "watchdog_endpoint_up",
			Help: "Whether the endpoint answered with a 2xx status (1 up, 0 down)",
		},
		[]string{"url"},
	)

	EndpointChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "watchdog_endpoint_checks_total",
			Help: "Total number of endpoint availability checks",
		},
		[]string{"url", "status"},
	)
)
