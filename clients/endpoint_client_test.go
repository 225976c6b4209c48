package clients

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DINA18102002/accuknox-scripting/dto"
)

func TestCheckStatus(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus dto.EndpointStatus
		wantCode   int
	}{
		{
			name:       "200 is up",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) },
			wantStatus: dto.EndpointUp,
			wantCode:   http.StatusOK,
		},
		{
			name:       "204 is up",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNoContent) },
			wantStatus: dto.EndpointUp,
			wantCode:   http.StatusNoContent,
		},
		{
			name:       "404 is down with code",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) },
			wantStatus: dto.EndpointDown,
			wantCode:   http.StatusNotFound,
		},
		{
			name:       "503 is down with code",
			handler:    func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusServiceUnavailable) },
			wantStatus: dto.EndpointDown,
			wantCode:   http.StatusServiceUnavailable,
		},
	}

	ec := NewEndpointClient(time.Second)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			result := ec.CheckStatus(context.Background(), server.URL)
			if result.Status != tt.wantStatus {
				t.Errorf("Status = %s, want %s", result.Status, tt.wantStatus)
			}
			if result.StatusCode != tt.wantCode {
				t.Errorf("StatusCode = %d, want %d", result.StatusCode, tt.wantCode)
			}
			if result.URL != server.URL {
				t.Errorf("URL = %q, want %q", result.URL, server.URL)
			}
		})
	}
}

func TestCheckStatusNoResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	ec := NewEndpointClient(time.Second)
	result := ec.CheckStatus(context.Background(), server.URL)
	if result.Status != dto.EndpointDown {
		t.Errorf("Status = %s, want DOWN", result.Status)
	}
	if result.StatusCode != 0 {
		t.Errorf("StatusCode = %d, want 0 for no response", result.StatusCode)
	}
}
