package api

import (
	"encoding/json"
	"net/http"

	"github.com/DINA18102002/accuknox-scripting/monitor"
)

type SystemMetricsHandler struct {
	systemMonitor *monitor.SystemStatsMonitor
}

func NewSystemMetricsHandler(systemMonitor *monitor.SystemStatsMonitor) *SystemMetricsHandler {
	return &SystemMetricsHandler{
		systemMonitor: systemMonitor,
	}
}

func (smh *SystemMetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	result, ok := smh.systemMonitor.LastResult()
	if !ok {
		http.Error(w, "no cycle completed yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}
