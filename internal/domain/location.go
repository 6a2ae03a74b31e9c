package domain

import (
	"errors"
	"fmt"
	"strings"
)

// WarehouseName is the mandatory anchor location. The rendered map is
// centered on it.
const WarehouseName = "warehouse"

// ErrMissingWarehouse is returned when a location set lacks the
// warehouse entry required to anchor the map viewport.
var ErrMissingWarehouse = errors.New("location set has no \"warehouse\" entry")

// A named point to visit on the route.
type Location struct {
	Name  string
	Coord Coordinates
}

// LocationSet is an insertion-ordered collection of uniquely named
// locations. It is constructed once per build and immutable afterwards;
// the matrix, order and geometry stages all rely on its iteration order.
type LocationSet struct {
	locations []Location
}

// NewLocationSet validates names and coordinates and freezes their order.
func NewLocationSet(locations []Location) (LocationSet, error) {
	if len(locations) == 0 {
		return LocationSet{}, errors.New("location set must not be empty")
	}

	seen := make(map[string]struct{}, len(locations))
	out := make([]Location, 0, len(locations))
	for _, loc := range locations {
		name := strings.TrimSpace(loc.Name)
		if name == "" {
			return LocationSet{}, errors.New("location name must be non-empty")
		}
		if _, ok := seen[name]; ok {
			return LocationSet{}, fmt.Errorf("duplicate location name %q", name)
		}
		if err := loc.Coord.Validate(); err != nil {
			return LocationSet{}, fmt.Errorf("location %q: %w", name, err)
		}

		seen[name] = struct{}{}
		out = append(out, Location{Name: name, Coord: loc.Coord})
	}

	return LocationSet{locations: out}, nil
}

// Len reports the number of locations.
func (s LocationSet) Len() int { return len(s.locations) }

// Locations returns the locations in insertion order. The returned slice
// is a copy; the set itself stays immutable.
func (s LocationSet) Locations() []Location {
	out := make([]Location, len(s.locations))
	copy(out, s.locations)
	return out
}

// Coords returns just the coordinates, in insertion order.
func (s LocationSet) Coords() []Coordinates {
	out := make([]Coordinates, 0, len(s.locations))
	for _, loc := range s.locations {
		out = append(out, loc.Coord)
	}
	return out
}

// Warehouse returns the anchor location or ErrMissingWarehouse.
func (s LocationSet) Warehouse() (Location, error) {
	for _, loc := range s.locations {
		if loc.Name == WarehouseName {
			return loc, nil
		}
	}
	return Location{}, ErrMissingWarehouse
}

// Reorder returns the coordinates permuted by the given visiting order.
// Every index must be in [0, Len).
func (s LocationSet) Reorder(order []int) ([]Coordinates, error) {
	if len(order) != len(s.locations) {
		return nil, fmt.Errorf("order has %d indices for %d locations", len(order), len(s.locations))
	}

	out := make([]Coordinates, 0, len(order))
	for _, idx := range order {
		if idx < 0 || idx >= len(s.locations) {
			return nil, fmt.Errorf("order index %d out of range [0, %d)", idx, len(s.locations))
		}
		out = append(out, s.locations[idx].Coord)
	}
	return out, nil
}
