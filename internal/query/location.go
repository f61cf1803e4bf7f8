package query

import (
	"strings"

	"github.com/i474232898/au-weather-proxy/internal/common"
)

// CoordinateList holds parallel, validated latitude and longitude items.
type CoordinateList struct {
	Latitudes  []string
	Longitudes []string
}

// Latitude returns the comma-joined latitude items.
func (c CoordinateList) Latitude() string {
	return strings.Join(c.Latitudes, ",")
}

// Longitude returns the comma-joined longitude items.
func (c CoordinateList) Longitude() string {
	return strings.Join(c.Longitudes, ",")
}

// Location is either a literal coordinate list or a suburb/state pair.
// Coordinates take precedence when both were supplied.
type Location struct {
	Coordinates *CoordinateList
	Suburb      string
	State       string
}

// NeedsGeocoding reports whether the location must be resolved first.
func (l Location) NeedsGeocoding() bool {
	return l.Coordinates == nil
}

// ParseCoordinateList validates a comma-separated list of numbers within
// the range described by tag and returns the trimmed items.
func ParseCoordinateList(value, field, tag string) ([]string, error) {
	items := common.SplitTrim(value)
	if len(items) == 0 {
		return nil, invalid("%s is required.", field)
	}
	for _, item := range items {
		f, ok := parseDecimal(item)
		if !ok {
			return nil, invalid("%s must be numeric.", field)
		}
		if !satisfies(f, tag) {
			return nil, invalid("%s out of range.", field)
		}
	}
	return items, nil
}

func parseLocation(raw Raw) (Location, error) {
	latRaw := raw.Get("latitude")
	lonRaw := raw.Get("longitude")

	if latRaw != "" || lonRaw != "" {
		lats, err := ParseCoordinateList(latRaw, "latitude", tagLatitude)
		if err != nil {
			return Location{}, err
		}
		lons, err := ParseCoordinateList(lonRaw, "longitude", tagLongitude)
		if err != nil {
			return Location{}, err
		}
		if len(lats) != len(lons) {
			return Location{}, invalid("latitude and longitude counts must match.")
		}
		return Location{Coordinates: &CoordinateList{Latitudes: lats, Longitudes: lons}}, nil
	}

	suburb := raw.Trimmed("suburb")
	state := NormalizeState(raw.Get("state"))
	if suburb == "" || state == "" {
		return Location{}, invalid("Provide latitude/longitude or suburb/state parameters.")
	}
	if !ValidState(state) {
		return Location{}, invalid("state must be one of %s.", strings.Join(States, ", "))
	}
	return Location{Suburb: suburb, State: state}, nil
}
