package planner

import (
	"errors"
	"fmt"
	"strings"

	"dining-planner/internal/catalog"
)

// ErrUnknownLocation is returned by ParseLocation for unrecognized input.
var ErrUnknownLocation = errors.New("unknown location")

// Location constrains which campuses a plan may draw from.
type Location string

const (
	LocationLivingston Location = Location(catalog.CampusLivingston)
	LocationAtrium     Location = Location(catalog.CampusAtrium)
	LocationAny        Location = "any"
)

// ParseLocation accepts a campus name or "any", ignoring case and
// surrounding whitespace.
func ParseLocation(raw string) (Location, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == string(LocationAny) {
		return LocationAny, nil
	}
	if campus, ok := catalog.ParseCampus(s); ok {
		return Location(campus), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownLocation, raw)
}

// ResolveLocation turns a campus selection into a constraint. When the
// selection names exactly one known campus the plan is restricted to it.
// Otherwise any campus is allowed. Unknown names are ignored.
func ResolveLocation(selection []string) Location {
	set := make(map[catalog.Campus]struct{})
	for _, raw := range selection {
		if campus, ok := catalog.ParseCampus(raw); ok {
			set[campus] = struct{}{}
		}
	}
	if len(set) != 1 {
		return LocationAny
	}
	for campus := range set {
		return Location(campus)
	}
	return LocationAny
}

// Campuses lists the campuses allowed by l in canonical order.
func (l Location) Campuses() []catalog.Campus {
	if campus, ok := catalog.ParseCampus(string(l)); ok {
		return []catalog.Campus{campus}
	}
	return append([]catalog.Campus(nil), catalog.Campuses...)
}
