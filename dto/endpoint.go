package dto

import "time"

// EndpointStatus classifies an application endpoint check.
type EndpointStatus string

const (
	EndpointUp   EndpointStatus = "UP"
	EndpointDown EndpointStatus = "DOWN"
)

// EndpointResult is the outcome of one availability check. StatusCode is
// zero when the endpoint did not respond at all.
type EndpointResult struct {
	URL        string         `json:"url"`
	Status     EndpointStatus `json:"status"`
	StatusCode int            `json:"status-code,omitempty"`
	CheckedAt  time.Time      `json:"checked-at"`
}
