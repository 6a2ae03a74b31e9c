package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// A single named [lat, lon] entry from the request's locations object.
type NamedPoint struct {
	Name string
	Lat  float64
	Lon  float64
}

// LocationList preserves the insertion order of the request's locations
// object. encoding/json maps are unordered, and the matrix, visiting order
// and geometry all depend on location order, so the object is decoded
// token by token.
type LocationList []NamedPoint

func (l *LocationList) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("locations must be a JSON object")
	}

	out := make(LocationList, 0)
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := keyTok.(string)
		if !ok {
			return errors.New("locations keys must be strings")
		}

		var coords []float64
		if err := dec.Decode(&coords); err != nil {
			return fmt.Errorf("location %q: value must be a [lat, lon] array", name)
		}
		if len(coords) != 2 {
			return fmt.Errorf("location %q: expected 2 coordinates, got %d", name, len(coords))
		}

		out = append(out, NamedPoint{Name: name, Lat: coords[0], Lon: coords[1]})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}

	*l = out
	return nil
}

type BuildRequest struct {
	Locations LocationList `json:"locations"`
	Filename  string       `json:"filename"`
	Strategy  string       `json:"strategy"`
}

type BuildResponse struct {
	Order          []int   `json:"order"`
	File           string  `json:"file"`
	DistanceMeters float64 `json:"distance_meters"`
	PathPoints     int     `json:"path_points"`
}
