package api

import (
	"encoding/json"
	"net/http"

	"github.com/DINA18102002/accuknox-scripting/dto"
	"github.com/DINA18102002/accuknox-scripting/monitor"
)

type ProcessMetricsHandler struct {
	systemMonitor *monitor.SystemStatsMonitor
}

func NewProcessMetricsHandler(systemMonitor *monitor.SystemStatsMonitor) *ProcessMetricsHandler {
	return &ProcessMetricsHandler{
		systemMonitor: systemMonitor,
	}
}

type processMetricsResponse struct {
	ProcessCount dto.Metric[int]       `json:"process_count"`
	HighUsage    []dto.ProcessSnapshot `json:"high_usage"`
}

func (pmh *ProcessMetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	scan := pmh.systemMonitor.LastScan()
	response := processMetricsResponse{
		ProcessCount: scan.ProcessCount,
		HighUsage:    pmh.systemMonitor.LastHighUsage(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}
