package weather

import (
	"context"
	"encoding/json"
)

// Dispatcher issues one outbound call to a weather provider endpoint and
// returns the JSON payload untouched.
//
// Failures are one of: *UpstreamError (errors.Is ErrQuotaExceeded when the
// provider reports a quota problem), or an error wrapping ErrDispatch, which
// additionally wraps ErrTimeout when the call deadline expired.
type Dispatcher interface {
	Dispatch(ctx context.Context, endpoint Endpoint, spec *RequestSpec) (json.RawMessage, error)
}
