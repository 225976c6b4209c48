package clients

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/DINA18102002/accuknox-scripting/dto"
)

// EndpointClient probes application endpoints over HTTP. The timeout bounds
// the whole request including body transfer.
type EndpointClient struct {
	client *http.Client
}

func NewEndpointClient(timeout time.Duration) *EndpointClient {
	return &EndpointClient{
		client: &http.Client{Timeout: timeout},
	}
}

// CheckStatus classifies one endpoint: any 2xx response is UP, every other
// response code is DOWN with the code recorded, and a transport failure is
// DOWN with no code.
func (ec *EndpointClient) CheckStatus(ctx context.Context, url string) dto.EndpointResult {
	result := dto.EndpointResult{
		URL:       url,
		Status:    dto.EndpointDown,
		CheckedAt: time.Now(),
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return result
	}

	res, err := ec.client.Do(req)
	if err != nil {
		return result
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	result.StatusCode = res.StatusCode
	if res.StatusCode >= 200 && res.StatusCode < 300 {
		result.Status = dto.EndpointUp
	}
	return result
}
