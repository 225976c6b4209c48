package monitor

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/DINA18102002/accuknox-scripting/conf"
	"github.com/DINA18102002/accuknox-scripting/dto"
	"github.com/DINA18102002/accuknox-scripting/metrics"
)

// EndpointProber checks one application endpoint.
type EndpointProber interface {
	CheckStatus(ctx context.Context, url string) dto.EndpointResult
}

// UptimeMonitor checks the configured application endpoints each cycle and
// reports UP/DOWN per endpoint. A failing endpoint never stops the checks
// for the remaining ones.
type UptimeMonitor struct {
	config *conf.Config
	prober EndpointProber
	log    zerolog.Logger

	mu   sync.RWMutex
	last []dto.EndpointResult
}

func NewUptimeMonitor(config *conf.Config, prober EndpointProber, sink zerolog.Logger) *UptimeMonitor {
	return &UptimeMonitor{
		config: config,
		prober: prober,
		log:    sink.With().Str("component", "uptime-monitor").Logger(),
	}
}

// Run loops until ctx is cancelled. With no endpoints configured it exits
// immediately.
func (um *UptimeMonitor) Run(ctx context.Context) error {
	endpoints := um.config.GetEndpointsToMonitor()
	if len(endpoints) == 0 {
		um.log.Info().Msg("no endpoints configured, uptime monitoring disabled")
		return nil
	}

	um.log.Info().Int("endpoints", len(endpoints)).Msg("starting application uptime monitor")

	for {
		select {
		case <-ctx.Done():
			um.log.Info().Msg("application uptime monitor stopped")
			return nil
		default:
		}

		um.CheckEndpoints(ctx)

		select {
		case <-ctx.Done():
			um.log.Info().Msg("application uptime monitor stopped")
			return nil
		case <-time.After(um.config.UptimeInterval()):
		}
	}
}

// CheckEndpoints probes every configured endpoint once.
func (um *UptimeMonitor) CheckEndpoints(ctx context.Context) []dto.EndpointResult {
	endpoints := um.config.GetEndpointsToMonitor()
	results := make([]dto.EndpointResult, 0, len(endpoints))

	for _, url := range endpoints {
		if ctx.Err() != nil {
			break
		}
		result := um.prober.CheckStatus(ctx, url)
		results = append(results, result)

		up := result.Status == dto.EndpointUp
		switch {
		case up:
			um.log.Info().Str("url", url).Int("code", result.StatusCode).Msg("application is UP")
			metrics.EndpointUp.WithLabelValues(url).Set(1)
		case result.StatusCode != 0:
			um.log.Warn().Str("url", url).Int("code", result.StatusCode).Msg("application is DOWN")
			metrics.EndpointUp.WithLabelValues(url).Set(0)
		default:
			um.log.Warn().Str("url", url).Msg("application is DOWN (no response)")
			metrics.EndpointUp.WithLabelValues(url).Set(0)
		}
		metrics.EndpointChecksTotal.WithLabelValues(url, string(result.Status)).Inc()
	}

	um.mu.Lock()
	um.last = results
	um.mu.Unlock()
	return results
}

// LastResults returns the endpoint results from the most recent pass.
func (um *UptimeMonitor) LastResults() []dto.EndpointResult {
	um.mu.RLock()
	defer um.mu.RUnlock()
	return um.last
}
