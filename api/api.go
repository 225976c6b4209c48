package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DINA18102002/accuknox-scripting/monitor"
)

// RegisterHandlers wires every read-only endpoint onto mux. Handlers serve
// the latest reported results; they never trigger a new collection.
func RegisterHandlers(mux *http.ServeMux, ssm *monitor.SystemStatsMonitor, um *monitor.UptimeMonitor) {
	systemMetricsHandler := NewSystemMetricsHandler(ssm)
	mux.Handle("/system_metrics", systemMetricsHandler)

	processMetricsHandler := NewProcessMetricsHandler(ssm)
	mux.Handle("/process_metrics", processMetricsHandler)

	endpointStatusHandler := NewEndpointStatusHandler(um)
	mux.Handle("/endpoint_status", endpointStatusHandler)

	mux.Handle("/metrics", promhttp.Handler())
}
