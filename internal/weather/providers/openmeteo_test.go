package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/i474232898/au-weather-proxy/internal/weather"
)

func testSpec() *weather.RequestSpec {
	return weather.NewRequestSpec(weather.Coordinates{Latitude: "-33.87", Longitude: "151.21"}).
		Set("hourly", "pm10,pm2_5")
}

func TestDispatchPassesPayloadThrough(t *testing.T) {
	var gotPath, gotLat, gotHourly, gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotLat = r.URL.Query().Get("latitude")
		gotHourly = r.URL.Query().Get("hourly")
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"hourly":{"pm10":[1.5]}}`))
	}))
	defer srv.Close()

	p := NewOpenMeteo(OpenMeteoConfig{
		AirQualityURL: srv.URL + "/v1/air-quality",
		ArchiveURL:    srv.URL + "/v1/archive",
		UserAgent:     "proxy-test",
	})

	data, err := p.Dispatch(context.Background(), weather.EndpointArchive, testSpec())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != `{"hourly":{"pm10":[1.5]}}` {
		t.Fatalf("payload altered: %s", data)
	}
	if gotPath != "/v1/archive" || gotLat != "-33.87" || gotHourly != "pm10,pm2_5" {
		t.Fatalf("unexpected upstream request path=%q lat=%q hourly=%q", gotPath, gotLat, gotHourly)
	}
	if gotUA != "proxy-test" || gotAccept != "application/json" {
		t.Fatalf("unexpected headers ua=%q accept=%q", gotUA, gotAccept)
	}
}

func TestDispatchClassifiesUpstreamFailures(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		contentType string
		body        string
		wantQuota   bool
		wantMessage string
	}{
		{name: "429", status: 429, contentType: "text/plain", body: "slow down", wantQuota: true, wantMessage: "slow down"},
		{name: "json quota", status: 400, contentType: "application/json; charset=utf-8", body: `{"error":"Daily API request QUOTA exceeded"}`, wantQuota: true, wantMessage: "Daily API request QUOTA exceeded"},
		{name: "text quota", status: 403, contentType: "text/plain", body: "quota reached", wantQuota: true, wantMessage: "quota reached"},
		{name: "json bool error", status: 400, contentType: "application/json", body: `{"error":true,"reason":"quota"}`, wantMessage: ""},
		{name: "json without error", status: 400, contentType: "application/json", body: `{"reason":"Quota exceeded"}`, wantMessage: ""},
		{name: "broken json", status: 500, contentType: "application/json", body: `{oops quota`, wantMessage: ""},
		{name: "empty", status: 503, contentType: "", body: "", wantMessage: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if tt.contentType != "" {
					w.Header().Set("Content-Type", tt.contentType)
				}
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			p := NewOpenMeteo(OpenMeteoConfig{AirQualityURL: srv.URL})
			_, err := p.Dispatch(context.Background(), weather.EndpointAirQuality, testSpec())

			var upErr *weather.UpstreamError
			if !errors.As(err, &upErr) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if upErr.Status != tt.status || upErr.Message != tt.wantMessage {
				t.Fatalf("unexpected classification %+v", upErr)
			}
			if errors.Is(err, weather.ErrQuotaExceeded) != tt.wantQuota {
				t.Fatalf("quota classification mismatch for %+v", upErr)
			}
			if errors.Is(err, weather.ErrDispatch) {
				t.Fatal("HTTP responses must not be dispatch failures")
			}
		})
	}
}

func TestDispatchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	p := NewOpenMeteo(OpenMeteoConfig{AirQualityURL: srv.URL, Timeout: 50 * time.Millisecond})
	_, err := p.Dispatch(context.Background(), weather.EndpointAirQuality, testSpec())
	if !errors.Is(err, weather.ErrDispatch) || !errors.Is(err, weather.ErrTimeout) {
		t.Fatalf("expected timeout dispatch failure, got %v", err)
	}
}

func TestDispatchTransportAndPayloadFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>not json</html>"))
	}))
	p := NewOpenMeteo(OpenMeteoConfig{AirQualityURL: srv.URL})

	_, err := p.Dispatch(context.Background(), weather.EndpointAirQuality, testSpec())
	if !errors.Is(err, weather.ErrDispatch) {
		t.Fatalf("expected dispatch failure for invalid JSON, got %v", err)
	}

	srv.Close()
	_, err = p.Dispatch(context.Background(), weather.EndpointAirQuality, testSpec())
	if !errors.Is(err, weather.ErrDispatch) || errors.Is(err, weather.ErrTimeout) {
		t.Fatalf("expected non-timeout dispatch failure, got %v", err)
	}

	_, err = p.Dispatch(context.Background(), weather.Endpoint("forecast"), testSpec())
	if err == nil || !strings.Contains(err.Error(), "unknown endpoint") {
		t.Fatalf("expected unknown endpoint error, got %v", err)
	}
}

func TestBreakerOpensOnlyOnTransportFailures(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	p := NewOpenMeteo(OpenMeteoConfig{AirQualityURL: srv.URL})
	for i := 0; i < 8; i++ {
		_, err := p.Dispatch(context.Background(), weather.EndpointAirQuality, testSpec())
		var upErr *weather.UpstreamError
		if !errors.As(err, &upErr) {
			t.Fatalf("call %d: expected upstream error, got %v", i, err)
		}
	}
	if calls != 8 {
		t.Fatalf("expected every call to reach upstream, got %d", calls)
	}

	dead := NewOpenMeteo(OpenMeteoConfig{AirQualityURL: "http://127.0.0.1:1"})
	var last error
	for i := 0; i < 6; i++ {
		_, last = dead.Dispatch(context.Background(), weather.EndpointAirQuality, testSpec())
	}
	if !errors.Is(last, errCircuitOpen) || !errors.Is(last, weather.ErrDispatch) {
		t.Fatalf("expected open breaker after repeated transport failures, got %v", last)
	}
}
