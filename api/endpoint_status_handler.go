package api

import (
	"encoding/json"
	"net/http"

	"github.com/DINA18102002/accuknox-scripting/monitor"
)

type EndpointStatusHandler struct {
	uptimeMonitor *monitor.UptimeMonitor
}

func NewEndpointStatusHandler(uptimeMonitor *monitor.UptimeMonitor) *EndpointStatusHandler {
	return &EndpointStatusHandler{
		uptimeMonitor: uptimeMonitor,
	}
}

func (esh *EndpointStatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(esh.uptimeMonitor.LastResults())
}
