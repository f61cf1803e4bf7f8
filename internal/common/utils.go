package common

import "strings"

// SplitTrim splits s on commas, trims every item and drops the empty ones.
func SplitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeCSV trims each comma-separated item, drops empties and rejoins.
func NormalizeCSV(s string) string {
	return strings.Join(SplitTrim(s), ",")
}

// ContainsFold reports whether s contains any of the substrings, ignoring case.
func ContainsFold(s string, subs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range subs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
