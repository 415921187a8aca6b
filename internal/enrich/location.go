// Package enrich computes gap-fill updates for CRM contacts from the master
// list and profile scraper exports.
package enrich

import "strings"

// Location is a parsed "City, State, Country" string.
type Location struct {
	City    string
	State   string
	Country string
}

// ParseLocation splits a free-text location into city, state and country.
// Three or more parts read as city/.../state/country, two as city/state,
// and a single part is kept as the city.
func ParseLocation(s string) Location {
	s = strings.TrimSpace(s)
	if s == "" {
		return Location{}
	}

	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	switch {
	case len(parts) >= 3:
		return Location{City: parts[0], State: parts[len(parts)-2], Country: parts[len(parts)-1]}
	case len(parts) == 2:
		return Location{City: parts[0], State: parts[1]}
	default:
		return Location{City: s}
	}
}
