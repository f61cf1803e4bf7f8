package query

import (
	"github.com/i474232898/au-weather-proxy/internal/common"
	"github.com/i474232898/au-weather-proxy/internal/weather"
)

// AirQuality is a validated air-quality request.
type AirQuality struct {
	Location Location

	Hourly     string
	Current    string
	Domains    string
	TimeFormat string
	Timezone   string

	PastDays      *int
	ForecastDays  *int
	ForecastHours *int
	PastHours     *int

	StartDate string
	EndDate   string
	StartHour string
	EndHour   string

	CellSelection string
	APIKey        string
}

// ParseAirQuality validates raw against the air-quality schema. Date-like
// fields are bounded by window.
func ParseAirQuality(raw Raw, window Window) (AirQuality, error) {
	loc, err := parseLocation(raw)
	if err != nil {
		return AirQuality{}, err
	}

	q := AirQuality{
		Location:      loc,
		Hourly:        common.NormalizeCSV(raw.Get("hourly")),
		Current:       common.NormalizeCSV(raw.Get("current")),
		Domains:       raw.Trimmed("domains"),
		TimeFormat:    raw.Trimmed("timeformat"),
		Timezone:      raw.Trimmed("timezone"),
		CellSelection: raw.Trimmed("cell_selection"),
		APIKey:        raw.Trimmed("apikey"),
	}

	if q.PastDays, err = parseBoundedInt(raw.Get("past_days"), tagPastDays,
		"past_days must be an integer between 0 and 92."); err != nil {
		return AirQuality{}, err
	}
	if q.ForecastDays, err = parseBoundedInt(raw.Get("forecast_days"), tagForecastDays,
		"forecast_days must be an integer between 0 and 7."); err != nil {
		return AirQuality{}, err
	}
	if q.ForecastHours, err = parseBoundedInt(raw.Get("forecast_hours"), tagPositive,
		"forecast_hours must be an integer greater than 0."); err != nil {
		return AirQuality{}, err
	}
	if q.PastHours, err = parseBoundedInt(raw.Get("past_hours"), tagPositive,
		"past_hours must be an integer greater than 0."); err != nil {
		return AirQuality{}, err
	}

	startDate := &dateField{name: "start_date", value: raw.Get("start_date")}
	endDate := &dateField{name: "end_date", value: raw.Get("end_date")}
	startHour := &dateField{name: "start_hour", value: raw.Get("start_hour")}
	endHour := &dateField{name: "end_hour", value: raw.Get("end_hour")}

	for _, f := range []*dateField{startDate, endDate} {
		if err := f.parse(ParseDate); err != nil {
			return AirQuality{}, err
		}
	}
	for _, f := range []*dateField{startHour, endHour} {
		if err := f.parse(ParseDateTime); err != nil {
			return AirQuality{}, err
		}
	}

	for _, pair := range [][2]*dateField{{startDate, endDate}, {startHour, endHour}} {
		start, end := pair[0], pair[1]
		if start.present() && end.present() {
			if err := CheckOrder(start.name, end.name, start.at, end.at); err != nil {
				return AirQuality{}, err
			}
		}
	}

	for _, f := range []*dateField{startDate, endDate, startHour, endHour} {
		if !f.present() {
			continue
		}
		if err := window.Check(f.name, f.at); err != nil {
			return AirQuality{}, err
		}
	}

	if err := checkEnum(q.TimeFormat, tagTimeFormat, "timeformat must be iso8601 or unixtime."); err != nil {
		return AirQuality{}, err
	}
	if err := checkEnum(q.CellSelection, tagCellSelection, "cell_selection must be land, sea, or nearest."); err != nil {
		return AirQuality{}, err
	}

	q.StartDate = startDate.value
	q.EndDate = endDate.value
	q.StartHour = startHour.value
	q.EndHour = endHour.value

	return q, nil
}

// Spec assembles the upstream query for the resolved coordinates.
func (q AirQuality) Spec(coords weather.Coordinates) *weather.RequestSpec {
	return weather.NewRequestSpec(coords).
		SetOptional("hourly", q.Hourly).
		SetOptional("current", q.Current).
		SetOptional("domains", q.Domains).
		SetOptional("timeformat", q.TimeFormat).
		SetOptional("timezone", q.Timezone).
		SetInt("past_days", q.PastDays).
		SetInt("forecast_days", q.ForecastDays).
		SetInt("forecast_hours", q.ForecastHours).
		SetInt("past_hours", q.PastHours).
		SetOptional("start_date", q.StartDate).
		SetOptional("end_date", q.EndDate).
		SetOptional("start_hour", q.StartHour).
		SetOptional("end_hour", q.EndHour).
		SetOptional("cell_selection", q.CellSelection).
		SetOptional("apikey", q.APIKey)
}
