package query

import "strings"

// SuburbLookup is a validated suburb-lookup request.
type SuburbLookup struct {
	Suburb string
	State  string
}

// ParseSuburbLookup requires both a suburb and an allowed state.
func ParseSuburbLookup(raw Raw) (SuburbLookup, error) {
	suburb := raw.Trimmed("suburb")
	if suburb == "" {
		return SuburbLookup{}, invalid("suburb is required.")
	}
	state := NormalizeState(raw.Get("state"))
	if state == "" || !ValidState(state) {
		return SuburbLookup{}, invalid("state is required and must be one of %s.", strings.Join(States, ", "))
	}
	return SuburbLookup{Suburb: suburb, State: state}, nil
}
