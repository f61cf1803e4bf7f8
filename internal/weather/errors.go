package weather

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/i474232898/au-weather-proxy/internal/common"
)

var (
	// ErrQuotaExceeded matches upstream failures caused by a rate or usage limit.
	ErrQuotaExceeded = errors.New("upstream quota exceeded")
	// ErrDispatch wraps failures not tied to an HTTP response.
	ErrDispatch = errors.New("upstream dispatch failed")
	// ErrTimeout marks a dispatch failure caused by the call deadline.
	ErrTimeout = errors.New("upstream request timed out")
)

// UpstreamError is a non-success HTTP response from a provider.
type UpstreamError struct {
	Endpoint Endpoint
	Status   int
	Message  string
}

func (e *UpstreamError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s: upstream status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("%s: upstream status %d: %s", e.Endpoint, e.Status, e.Message)
}

// Quota reports whether the response signals an exhausted quota.
func (e *UpstreamError) Quota() bool {
	return e.Status == http.StatusTooManyRequests || common.ContainsFold(e.Message, "quota")
}

// Is lets errors.Is(err, ErrQuotaExceeded) classify quota responses.
func (e *UpstreamError) Is(target error) bool {
	return target == ErrQuotaExceeded && e.Quota()
}
