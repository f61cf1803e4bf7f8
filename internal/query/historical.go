package query

import (
	"github.com/i474232898/au-weather-proxy/internal/common"
	"github.com/i474232898/au-weather-proxy/internal/weather"
)

// HistoricalWeather is a validated archive request. Both dates are required.
type HistoricalWeather struct {
	Location  Location
	StartDate string
	EndDate   string

	Hourly    string
	Daily     string
	Elevation string

	TemperatureUnit   string
	WindSpeedUnit     string
	PrecipitationUnit string
	TimeFormat        string
	Timezone          string
	CellSelection     string
	APIKey            string
}

// ParseHistoricalWeather validates raw against the archive schema.
func ParseHistoricalWeather(raw Raw) (HistoricalWeather, error) {
	startRaw := raw.Get("start_date")
	endRaw := raw.Get("end_date")
	if startRaw == "" || endRaw == "" {
		return HistoricalWeather{}, invalid("start_date and end_date are required.")
	}
	start, err := ParseDate("start_date", startRaw)
	if err != nil {
		return HistoricalWeather{}, err
	}
	end, err := ParseDate("end_date", endRaw)
	if err != nil {
		return HistoricalWeather{}, err
	}
	if err := CheckOrder("start_date", "end_date", start, end); err != nil {
		return HistoricalWeather{}, err
	}

	loc, err := parseLocation(raw)
	if err != nil {
		return HistoricalWeather{}, err
	}

	q := HistoricalWeather{
		Location:          loc,
		StartDate:         startRaw,
		EndDate:           endRaw,
		Hourly:            common.NormalizeCSV(raw.Get("hourly")),
		Daily:             common.NormalizeCSV(raw.Get("daily")),
		TemperatureUnit:   raw.Trimmed("temperature_unit"),
		WindSpeedUnit:     raw.Trimmed("wind_speed_unit"),
		PrecipitationUnit: raw.Trimmed("precipitation_unit"),
		TimeFormat:        raw.Trimmed("timeformat"),
		Timezone:          raw.Trimmed("timezone"),
		CellSelection:     raw.Trimmed("cell_selection"),
		APIKey:            raw.Trimmed("apikey"),
	}

	if q.Daily != "" && q.Timezone == "" {
		return HistoricalWeather{}, invalid("timezone is required when requesting daily data.")
	}

	if q.Elevation, err = parseElevation(raw.Get("elevation")); err != nil {
		return HistoricalWeather{}, err
	}

	enums := []struct {
		value, tag, message string
	}{
		{q.TemperatureUnit, tagTemperatureUnit, "temperature_unit must be celsius or fahrenheit."},
		{q.WindSpeedUnit, tagWindSpeedUnit, "wind_speed_unit must be kmh, ms, mph, or kn."},
		{q.PrecipitationUnit, tagPrecipitationUnit, "precipitation_unit must be mm or inch."},
		{q.TimeFormat, tagTimeFormat, "timeformat must be iso8601 or unixtime."},
		{q.CellSelection, tagCellSelection, "cell_selection must be land, sea, or nearest."},
	}
	for _, e := range enums {
		if err := checkEnum(e.value, e.tag, e.message); err != nil {
			return HistoricalWeather{}, err
		}
	}

	return q, nil
}

// Spec assembles the upstream archive query for the resolved coordinates.
func (q HistoricalWeather) Spec(coords weather.Coordinates) *weather.RequestSpec {
	return weather.NewRequestSpec(coords).
		Set("start_date", q.StartDate).
		Set("end_date", q.EndDate).
		SetOptional("hourly", q.Hourly).
		SetOptional("daily", q.Daily).
		SetOptional("elevation", q.Elevation).
		SetOptional("temperature_unit", q.TemperatureUnit).
		SetOptional("wind_speed_unit", q.WindSpeedUnit).
		SetOptional("precipitation_unit", q.PrecipitationUnit).
		SetOptional("timeformat", q.TimeFormat).
		SetOptional("timezone", q.Timezone).
		SetOptional("cell_selection", q.CellSelection).
		SetOptional("apikey", q.APIKey)
}
