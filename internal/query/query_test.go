package query

import (
	"errors"
	"testing"
	"time"

	"github.com/i474232898/au-weather-proxy/internal/weather"
)

func fixedWindow(now time.Time) Window {
	return Window{Past: MaxPastDays, Future: MaxFutureDays, Now: func() time.Time { return now }}
}

func expectParamError(t *testing.T, err error, want string) {
	t.Helper()
	var pe *ParamError
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParamError %q, got %v", want, err)
	}
	if pe.Message != want {
		t.Fatalf("expected message %q, got %q", want, pe.Message)
	}
}

func TestParseCoordinateList(t *testing.T) {
	items, err := ParseCoordinateList(" -33.87 , -37.81,,", "latitude", tagLatitude)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0] != "-33.87" || items[1] != "-37.81" {
		t.Fatalf("unexpected items %v", items)
	}

	cases := []struct {
		value string
		want  string
	}{
		{"", "latitude is required."},
		{" , ", "latitude is required."},
		{"-33.8,abc", "latitude must be numeric."},
		{"NaN", "latitude must be numeric."},
		{"Infinity", "latitude must be numeric."},
		{"0x10", "latitude must be numeric."},
		{"-33.8,90.0001", "latitude out of range."},
	}
	for _, tc := range cases {
		_, err := ParseCoordinateList(tc.value, "latitude", tagLatitude)
		expectParamError(t, err, tc.want)
	}

	if _, err := ParseCoordinateList("-180,180", "longitude", tagLongitude); err != nil {
		t.Fatalf("boundary longitudes should pass: %v", err)
	}
	_, err = ParseCoordinateList("180.5", "longitude", tagLongitude)
	expectParamError(t, err, "longitude out of range.")
}

func TestStateIsCaseInsensitive(t *testing.T) {
	for _, s := range []string{"nsw", "NSW", " Nsw "} {
		q, err := ParseSuburbLookup(Raw{"suburb": "Parramatta", "state": s})
		if err != nil {
			t.Fatalf("state %q: unexpected error: %v", s, err)
		}
		if q.State != "NSW" {
			t.Fatalf("state %q normalized to %q", s, q.State)
		}
	}

	_, err := ParseSuburbLookup(Raw{"suburb": "Auckland", "state": "NZ"})
	expectParamError(t, err, "state is required and must be one of NSW, VIC, ACT, QLD, TAS, WA, NT, SA.")

	_, err = ParseSuburbLookup(Raw{"state": "NSW"})
	expectParamError(t, err, "suburb is required.")
}

func TestParseAirQualityLocation(t *testing.T) {
	w := fixedWindow(time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))

	q, err := ParseAirQuality(Raw{"latitude": "-33.87", "longitude": "151.2", "suburb": "Parramatta", "state": "nsw"}, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Location.NeedsGeocoding() {
		t.Fatal("coordinates should take precedence over suburb/state")
	}

	q, err = ParseAirQuality(Raw{"suburb": " Parramatta ", "state": "nsw"}, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.Location.NeedsGeocoding() || q.Location.Suburb != "Parramatta" || q.Location.State != "NSW" {
		t.Fatalf("unexpected location %+v", q.Location)
	}

	_, err = ParseAirQuality(Raw{}, w)
	expectParamError(t, err, "Provide latitude/longitude or suburb/state parameters.")

	_, err = ParseAirQuality(Raw{"suburb": "Parramatta", "state": "XX"}, w)
	expectParamError(t, err, "state must be one of NSW, VIC, ACT, QLD, TAS, WA, NT, SA.")

	_, err = ParseAirQuality(Raw{"latitude": "-33.87,-37.8", "longitude": "151.2"}, w)
	expectParamError(t, err, "latitude and longitude counts must match.")

	_, err = ParseAirQuality(Raw{"latitude": "-33.87"}, w)
	expectParamError(t, err, "longitude is required.")
}

func TestParseAirQualityIntegers(t *testing.T) {
	w := fixedWindow(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	base := func(k, v string) Raw {
		return Raw{"latitude": "1", "longitude": "2", k: v}
	}

	q, err := ParseAirQuality(base("past_days", "0"), w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.PastDays == nil || *q.PastDays != 0 {
		t.Fatalf("expected explicit zero past_days, got %v", q.PastDays)
	}
	if q.ForecastDays != nil {
		t.Fatal("absent forecast_days should stay unset")
	}

	cases := []struct {
		key, value, want string
	}{
		{"past_days", "93", "past_days must be an integer between 0 and 92."},
		{"past_days", "-1", "past_days must be an integer between 0 and 92."},
		{"past_days", "abc", "past_days must be an integer between 0 and 92."},
		{"forecast_days", "8", "forecast_days must be an integer between 0 and 7."},
		{"forecast_hours", "0", "forecast_hours must be an integer greater than 0."},
		{"past_hours", "-2", "past_hours must be an integer greater than 0."},
	}
	for _, tc := range cases {
		_, err := ParseAirQuality(base(tc.key, tc.value), w)
		expectParamError(t, err, tc.want)
	}
}

func TestDateWindowBoundaries(t *testing.T) {
	now := time.Date(2024, 6, 15, 23, 59, 0, 0, time.UTC)
	w := fixedWindow(now)
	today := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	raw := func(date string) Raw {
		return Raw{"latitude": "1", "longitude": "2", "start_date": date}
	}

	if _, err := ParseAirQuality(raw(today.AddDate(0, 0, -92).Format("2006-01-02")), w); err != nil {
		t.Fatalf("92 days back should pass: %v", err)
	}
	_, err := ParseAirQuality(raw(today.AddDate(0, 0, -93).Format("2006-01-02")), w)
	expectParamError(t, err, "start_date cannot be more than 92 days in the past.")

	if _, err := ParseAirQuality(raw(today.AddDate(0, 0, 7).Format("2006-01-02")), w); err != nil {
		t.Fatalf("7 days ahead should pass: %v", err)
	}
	_, err = ParseAirQuality(raw(today.AddDate(0, 0, 8).Format("2006-01-02")), w)
	expectParamError(t, err, "start_date cannot be more than 7 days in the future.")
}

func TestDateTimeWindowUsesDatePortion(t *testing.T) {
	w := fixedWindow(time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC))

	if _, err := ParseAirQuality(Raw{"latitude": "1", "longitude": "2", "end_hour": "2024-06-22T23:59"}, w); err != nil {
		t.Fatalf("end_hour on the last allowed day should pass: %v", err)
	}
	_, err := ParseAirQuality(Raw{"latitude": "1", "longitude": "2", "end_hour": "2024-06-23T00:00"}, w)
	expectParamError(t, err, "end_hour cannot be more than 7 days in the future.")
}

func TestDateFormatAndOrdering(t *testing.T) {
	w := fixedWindow(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	loc := func(extra map[string]string) Raw {
		r := Raw{"latitude": "1", "longitude": "2"}
		for k, v := range extra {
			r[k] = v
		}
		return r
	}

	_, err := ParseAirQuality(loc(map[string]string{"start_date": "2024/06/10"}), w)
	expectParamError(t, err, "start_date must be in yyyy-mm-dd format.")

	_, err = ParseAirQuality(loc(map[string]string{"start_hour": "2024-06-10 10:00"}), w)
	expectParamError(t, err, "start_hour must be in yyyy-mm-ddThh:mm format.")

	_, err = ParseAirQuality(loc(map[string]string{"start_date": "2024-06-10", "end_date": "2024-06-01"}), w)
	expectParamError(t, err, "start_date must be before or equal to end_date.")

	_, err = ParseAirQuality(loc(map[string]string{"start_hour": "2024-06-10T10:00", "end_hour": "2024-06-10T09:00"}), w)
	expectParamError(t, err, "start_hour must be before or equal to end_hour.")

	if _, err := ParseAirQuality(loc(map[string]string{"start_date": "2024-06-10", "end_date": "2024-06-10"}), w); err != nil {
		t.Fatalf("equal dates should pass: %v", err)
	}
}

func TestAirQualitySpecOmitsAbsentFields(t *testing.T) {
	w := fixedWindow(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC))
	q, err := ParseAirQuality(Raw{
		"latitude":      "-33.87",
		"longitude":     "151.2",
		"hourly":        " pm10 , pm2_5,, ",
		"forecast_days": "0",
		"apikey":        " secret ",
	}, w)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	spec := q.Spec(weather.Coordinates{Latitude: "-33.87", Longitude: "151.2"})
	if got := spec.Get("hourly"); got != "pm10,pm2_5" {
		t.Fatalf("unexpected hourly %q", got)
	}
	if got := spec.Get("forecast_days"); got != "0" {
		t.Fatalf("expected forecast_days=0, got %q", got)
	}
	if got := spec.Get("apikey"); got != "secret" {
		t.Fatalf("unexpected apikey %q", got)
	}
	for _, key := range []string{"current", "past_days", "timezone", "start_date", "domains"} {
		if spec.Has(key) {
			t.Fatalf("absent field %s should be omitted", key)
		}
	}
}

func TestParseHistoricalWeather(t *testing.T) {
	base := func() Raw {
		return Raw{"latitude": "-33.87", "longitude": "151.2", "start_date": "2024-06-01", "end_date": "2024-06-10"}
	}

	q, err := ParseHistoricalWeather(base())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	spec := q.Spec(weather.Coordinates{Latitude: "-33.87", Longitude: "151.2"})
	if spec.Get("start_date") != "2024-06-01" || spec.Get("end_date") != "2024-06-10" {
		t.Fatalf("dates not forwarded: %s", spec.Encode())
	}

	// Archive data reaches far back; only format and ordering apply.
	old := base()
	old["start_date"] = "2001-01-01"
	if _, err := ParseHistoricalWeather(old); err != nil {
		t.Fatalf("old archive dates should pass: %v", err)
	}

	cases := []struct {
		mutate func(Raw)
		want   string
	}{
		{func(r Raw) { delete(r, "end_date") }, "start_date and end_date are required."},
		{func(r Raw) { r["start_date"] = "2024-6-1" }, "start_date must be in yyyy-mm-dd format."},
		{func(r Raw) { r["start_date"] = "2024-06-10"; r["end_date"] = "2024-06-01" }, "start_date must be before or equal to end_date."},
		{func(r Raw) { r["daily"] = "temperature_2m_max" }, "timezone is required when requesting daily data."},
		{func(r Raw) { r["elevation"] = "high" }, "elevation must be numeric."},
		{func(r Raw) { r["temperature_unit"] = "kelvin" }, "temperature_unit must be celsius or fahrenheit."},
		{func(r Raw) { r["wind_speed_unit"] = "knots" }, "wind_speed_unit must be kmh, ms, mph, or kn."},
		{func(r Raw) { r["precipitation_unit"] = "cm" }, "precipitation_unit must be mm or inch."},
		{func(r Raw) { r["timeformat"] = "rfc3339" }, "timeformat must be iso8601 or unixtime."},
		{func(r Raw) { r["cell_selection"] = "ocean" }, "cell_selection must be land, sea, or nearest."},
		{func(r Raw) { delete(r, "latitude"); delete(r, "longitude") }, "Provide latitude/longitude or suburb/state parameters."},
	}
	for _, tc := range cases {
		r := base()
		tc.mutate(r)
		_, err := ParseHistoricalWeather(r)
		expectParamError(t, err, tc.want)
	}

	withDaily := base()
	withDaily["daily"] = "temperature_2m_max, temperature_2m_min"
	withDaily["timezone"] = "Australia/Sydney"
	withDaily["elevation"] = "12.50"
	q, err = ParseHistoricalWeather(withDaily)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Daily != "temperature_2m_max,temperature_2m_min" || q.Elevation != "12.5" {
		t.Fatalf("unexpected normalization: %+v", q)
	}
}
