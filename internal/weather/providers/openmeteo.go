package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/au-weather-proxy/internal/weather"
)

const (
	DefaultAirQualityURL = "https://air-quality-api.open-meteo.com/v1/air-quality"
	DefaultArchiveURL    = "https://archive-api.open-meteo.com/v1/archive"
	DefaultTimeout       = 8 * time.Second
)

// OpenMeteoConfig configures the Open-Meteo dispatcher. Zero values fall back
// to the public endpoints and an 8 second timeout.
type OpenMeteoConfig struct {
	AirQualityURL string
	ArchiveURL    string
	UserAgent     string
	Timeout       time.Duration
	Client        *http.Client
}

// OpenMeteo implements weather.Dispatcher for the Open-Meteo air-quality and
// archive APIs. Each endpoint has its own circuit breaker.
type OpenMeteo struct {
	urls     map[weather.Endpoint]string
	breakers map[weather.Endpoint]*gobreaker.CircuitBreaker
	httpCfg  HTTPClientConfig
}

func NewOpenMeteo(cfg OpenMeteoConfig) *OpenMeteo {
	if cfg.AirQualityURL == "" {
		cfg.AirQualityURL = DefaultAirQualityURL
	}
	if cfg.ArchiveURL == "" {
		cfg.ArchiveURL = DefaultArchiveURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{}
	}

	return &OpenMeteo{
		urls: map[weather.Endpoint]string{
			weather.EndpointAirQuality: cfg.AirQualityURL,
			weather.EndpointArchive:    cfg.ArchiveURL,
		},
		breakers: map[weather.Endpoint]*gobreaker.CircuitBreaker{
			weather.EndpointAirQuality: newBreaker("openmeteo-" + string(weather.EndpointAirQuality)),
			weather.EndpointArchive:    newBreaker("openmeteo-" + string(weather.EndpointArchive)),
		},
		httpCfg: HTTPClientConfig{
			Client:    cfg.Client,
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
		},
	}
}

// Dispatch issues one GET to the endpoint and returns the JSON body as is.
func (p *OpenMeteo) Dispatch(ctx context.Context, endpoint weather.Endpoint, spec *weather.RequestSpec) (json.RawMessage, error) {
	base, ok := p.urls[endpoint]
	if !ok {
		return nil, fmt.Errorf("%w: unknown endpoint %q", weather.ErrDispatch, endpoint)
	}

	ctx, cancel := context.WithTimeout(ctx, p.httpCfg.Timeout)
	defer cancel()

	resp, err := doRequest(ctx, p.httpCfg, p.breakers[endpoint], base+"?"+spec.Encode())
	if err != nil {
		return nil, dispatchError(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &weather.UpstreamError{
			Endpoint: endpoint,
			Status:   resp.StatusCode,
			Message:  upstreamMessage(resp),
		}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dispatchError(endpoint, err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s: invalid JSON payload", weather.ErrDispatch, endpoint)
	}
	return json.RawMessage(body), nil
}

// dispatchError classifies a transport failure. The outbound URL carries the
// caller's query, apikey included, so a *url.Error is reduced to its cause.
func dispatchError(endpoint weather.Endpoint, err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		err = uerr.Err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w: %s: %w", weather.ErrDispatch, weather.ErrTimeout, endpoint, err)
	}
	return fmt.Errorf("%w: %s: %w", weather.ErrDispatch, endpoint, err)
}
