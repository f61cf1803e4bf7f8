package weather

import (
	"net/url"
	"strconv"
)

// Endpoint names an upstream weather provider API.
type Endpoint string

const (
	EndpointAirQuality Endpoint = "air-quality"
	EndpointArchive    Endpoint = "archive"
)

// Coordinates are the comma-joined latitude/longitude values sent upstream.
type Coordinates struct {
	Latitude  string
	Longitude string
}

// RequestSpec is the fully assembled set of query parameters for one
// outbound provider call. Optional values that are empty are never added.
type RequestSpec struct {
	values url.Values
}

// NewRequestSpec starts a spec with the location parameters set.
func NewRequestSpec(coords Coordinates) *RequestSpec {
	s := &RequestSpec{values: url.Values{}}
	s.values.Set("latitude", coords.Latitude)
	s.values.Set("longitude", coords.Longitude)
	return s
}

// Set adds a required parameter.
func (s *RequestSpec) Set(key, value string) *RequestSpec {
	s.values.Set(key, value)
	return s
}

// SetOptional adds key only when value is non-empty.
func (s *RequestSpec) SetOptional(key, value string) *RequestSpec {
	if value != "" {
		s.values.Set(key, value)
	}
	return s
}

// SetInt adds key only when n was requested. Zero is a valid value.
func (s *RequestSpec) SetInt(key string, n *int) *RequestSpec {
	if n != nil {
		s.values.Set(key, strconv.Itoa(*n))
	}
	return s
}

// Get returns the value of key, "" when absent.
func (s *RequestSpec) Get(key string) string {
	return s.values.Get(key)
}

// Has reports whether key is present.
func (s *RequestSpec) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Encode renders the spec as a URL query string.
func (s *RequestSpec) Encode() string {
	return s.values.Encode()
}
