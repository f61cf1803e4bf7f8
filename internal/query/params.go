// Package query turns loosely typed query-string parameters into closed,
// validated request structures. Nothing in here performs I/O; the first
// violated rule wins and is reported as a *ParamError.
package query

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ParamError reports a client parameter that violates a declared rule.
// Message is safe to return to the caller verbatim.
type ParamError struct {
	Message string
}

func (e *ParamError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) error {
	return &ParamError{Message: fmt.Sprintf(format, args...)}
}

// Raw holds the captured query string, one value per parameter name.
type Raw map[string]string

// Get returns the untouched value of name, "" when absent.
func (r Raw) Get(name string) string {
	return r[name]
}

// Trimmed returns the value of name with surrounding whitespace removed.
func (r Raw) Trimmed(name string) string {
	return strings.TrimSpace(r[name])
}

// States is the closed set of jurisdiction codes accepted for state.
var States = []string{"NSW", "VIC", "ACT", "QLD", "TAS", "WA", "NT", "SA"}

const (
	tagLatitude          = "min=-90,max=90"
	tagLongitude         = "min=-180,max=180"
	tagPastDays          = "min=0,max=92"
	tagForecastDays      = "min=0,max=7"
	tagPositive          = "gt=0"
	tagState             = "au_state"
	tagTemperatureUnit   = "oneof=celsius fahrenheit"
	tagWindSpeedUnit     = "oneof=kmh ms mph kn"
	tagPrecipitationUnit = "oneof=mm inch"
	tagTimeFormat        = "oneof=iso8601 unixtime"
	tagCellSelection     = "oneof=land sea nearest"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	allowed := make(map[string]struct{}, len(States))
	for _, s := range States {
		allowed[s] = struct{}{}
	}
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation(tagState, func(fl validator.FieldLevel) bool {
		_, ok := allowed[fl.Field().String()]
		return ok
	})
	return v
}

func satisfies(value any, tag string) bool {
	return validate.Var(value, tag) == nil
}

// NormalizeState upper-cases and trims a state code.
func NormalizeState(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ValidState reports whether s (already normalized) is an allowed code.
func ValidState(s string) bool {
	return satisfies(s, tagState)
}

var decimal = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// parseDecimal accepts plain finite decimal numbers only.
func parseDecimal(s string) (float64, bool) {
	if !decimal.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// parseBoundedInt returns nil when raw is empty ("not requested"), which is
// distinct from an explicit zero.
func parseBoundedInt(raw, tag, message string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || !satisfies(n, tag) {
		return nil, invalid("%s", message)
	}
	return &n, nil
}

// checkEnum passes when value is empty or satisfies tag.
func checkEnum(value, tag, message string) error {
	if value == "" || satisfies(value, tag) {
		return nil
	}
	return invalid("%s", message)
}

// parseElevation normalizes a numeric elevation, "" when absent.
func parseElevation(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	f, ok := parseDecimal(raw)
	if !ok {
		return "", invalid("elevation must be numeric.")
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}
