package query

import (
	"regexp"
	"strconv"
	"time"
)

const (
	// MaxPastDays is how far before the current UTC day a date may lie.
	MaxPastDays = 92
	// MaxFutureDays is how far after the current UTC day a date may lie.
	MaxFutureDays = 7
)

var (
	isoDate     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	isoDateTime = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}$`)
)

// Window bounds date-like values to [today-Past, today+Future] where today
// is the current UTC calendar day, recomputed on every check.
type Window struct {
	Past   int
	Future int
	Now    func() time.Time
}

// DefaultWindow is the 92-days-back / 7-days-ahead window on the wall clock.
func DefaultWindow() Window {
	return Window{Past: MaxPastDays, Future: MaxFutureDays, Now: time.Now}
}

func (w Window) today() time.Time {
	now := time.Now
	if w.Now != nil {
		now = w.Now
	}
	n := now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
}

// Check validates the calendar day of t against the window. Only the date
// portion matters; time of day is ignored.
func (w Window) Check(field string, t time.Time) error {
	day := midnight(t)
	today := w.today()
	if day.Before(today.AddDate(0, 0, -w.Past)) {
		return invalid("%s cannot be more than %d days in the past.", field, w.Past)
	}
	if day.After(today.AddDate(0, 0, w.Future)) {
		return invalid("%s cannot be more than %d days in the future.", field, w.Future)
	}
	return nil
}

// ParseDate validates a yyyy-mm-dd value and returns it at UTC midnight.
func ParseDate(field, value string) (time.Time, error) {
	if !isoDate.MatchString(value) {
		return time.Time{}, invalid("%s must be in yyyy-mm-dd format.", field)
	}
	return utcDate(value, 0, 0), nil
}

// ParseDateTime validates a yyyy-mm-ddThh:mm value, interpreted as UTC.
func ParseDateTime(field, value string) (time.Time, error) {
	if !isoDateTime.MatchString(value) {
		return time.Time{}, invalid("%s must be in yyyy-mm-ddThh:mm format.", field)
	}
	hour, _ := strconv.Atoi(value[11:13])
	minute, _ := strconv.Atoi(value[14:16])
	return utcDate(value[:10], hour, minute), nil
}

// CheckOrder fails when start is strictly after end.
func CheckOrder(startField, endField string, start, end time.Time) error {
	if start.After(end) {
		return invalid("%s must be before or equal to %s.", startField, endField)
	}
	return nil
}

// utcDate builds a UTC time from a pattern-checked yyyy-mm-dd string.
// Out-of-range components roll over the way time.Date normalizes them.
func utcDate(value string, hour, minute int) time.Time {
	year, _ := strconv.Atoi(value[0:4])
	month, _ := strconv.Atoi(value[5:7])
	day, _ := strconv.Atoi(value[8:10])
	return time.Date(year, time.Month(month), day, hour, minute, 0, 0, time.UTC)
}

func midnight(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// dateField is an optional date-like parameter parsed in place.
type dateField struct {
	name  string
	value string
	at    time.Time
}

func (f *dateField) parse(parser func(string, string) (time.Time, error)) error {
	if f.value == "" {
		return nil
	}
	t, err := parser(f.name, f.value)
	if err != nil {
		return err
	}
	f.at = t
	return nil
}

func (f *dateField) present() bool {
	return f.value != ""
}
