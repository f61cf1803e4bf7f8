package geocode

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const defaultNominatimURL = "https://nominatim.openstreetmap.org/search"

// NominatimConfig configures the OpenStreetMap Nominatim client.
type NominatimConfig struct {
	BaseURL   string
	UserAgent string
	Client    *http.Client
	Timeout   time.Duration
	// RatePerSecond throttles outbound searches; <= 0 disables throttling.
	RatePerSecond float64
}

// Nominatim searches OpenStreetMap for administrative areas.
type Nominatim struct {
	baseURL   string
	userAgent string
	client    *http.Client
	timeout   time.Duration
	limiter   *rate.Limiter
}

// NewNominatim builds a client, filling in defaults for empty fields.
func NewNominatim(cfg NominatimConfig) *Nominatim {
	n := &Nominatim{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		client:    cfg.Client,
		timeout:   cfg.Timeout,
		limiter:   rate.NewLimiter(rate.Inf, 1),
	}
	if n.baseURL == "" {
		n.baseURL = defaultNominatimURL
	}
	if n.client == nil {
		n.client = &http.Client{}
	}
	if n.timeout <= 0 {
		n.timeout = 8 * time.Second
	}
	if cfg.RatePerSecond > 0 {
		n.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), 1)
	}
	return n
}

// Search runs one bounded geocoder query and returns the administrative
// areas it found, in upstream order.
func (n *Nominatim) Search(ctx context.Context, q string) ([]Result, error) {
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	if err := n.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("nominatim: rate limiter: %w", err)
	}

	values := url.Values{}
	values.Set("q", q)
	values.Set("format", "jsonv2")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("nominatim: build request: %w", err)
	}
	if n.userAgent != "" {
		req.Header.Set("User-Agent", n.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		// Keep the query string out of error text.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return nil, fmt.Errorf("nominatim: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("nominatim: read body: %w", err)
	}
	return decodeAdministrative(body)
}

// nominatimPlace mirrors the parts of a jsonv2 search record we read.
type nominatimPlace struct {
	Type        string        `json:"type"`
	DisplayName string        `json:"display_name"`
	Name        string        `json:"name"`
	BoundingBox []looseString `json:"boundingbox"`
	Lat         *looseString  `json:"lat"`
	Lon         *looseString  `json:"lon"`
}

// decodeAdministrative keeps only records typed "administrative". A body
// that is not a JSON array yields no results; malformed records are skipped.
func decodeAdministrative(body []byte) ([]Result, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		if !json.Valid(trimmed) {
			return nil, fmt.Errorf("nominatim: invalid JSON payload")
		}
		return []Result{}, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, fmt.Errorf("nominatim: decode payload: %w", err)
	}

	results := make([]Result, 0, len(records))
	for _, rec := range records {
		var p nominatimPlace
		if err := json.Unmarshal(rec, &p); err != nil {
			continue
		}
		if p.Type != "administrative" {
			continue
		}
		results = append(results, p.toResult())
	}
	return results, nil
}

func (p nominatimPlace) toResult() Result {
	name := p.DisplayName
	if name == "" {
		name = p.Name
	}
	box := make([]string, 0, len(p.BoundingBox))
	for _, b := range p.BoundingBox {
		box = append(box, string(b))
	}
	return Result{
		Name:        name,
		BoundingBox: box,
		Lat:         p.Lat.ptr(),
		Lon:         p.Lon.ptr(),
	}
}

// looseString accepts a JSON string or number and keeps its text.
type looseString string

func (s *looseString) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = looseString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = looseString(num.String())
	return nil
}

func (s *looseString) ptr() *string {
	if s == nil || *s == "" {
		return nil
	}
	v := string(*s)
	return &v
}
