// Package locfile loads location sets from JSON or YAML files of the form
//
//	{"warehouse": [55.75, 37.62], "store": [59.94, 30.31]}
//
// Entry order in the file becomes the location order of the build, so both
// formats are decoded with order-preserving parsers.
package locfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ai-fn/route-builder/internal/domain"
)

// Load reads a locations file, dispatching on its extension (.json, .yaml,
// .yml) and falling back to JSON for anything else.
func Load(path string) (domain.LocationSet, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return domain.LocationSet{}, fmt.Errorf("load locations: %w", err)
	}

	var locs []domain.Location
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		locs, err = parseYAML(b)
	default:
		locs, err = parseJSON(b)
	}
	if err != nil {
		return domain.LocationSet{}, fmt.Errorf("load locations %q: %w", path, err)
	}

	set, err := domain.NewLocationSet(locs)
	if err != nil {
		return domain.LocationSet{}, fmt.Errorf("load locations %q: %w", path, err)
	}
	return set, nil
}

// parseJSON walks the object token by token; encoding/json maps would
// scramble the entry order.
func parseJSON(b []byte) ([]domain.Location, error) {
	dec := json.NewDecoder(bytes.NewReader(b))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("top level must be a JSON object")
	}

	var out []domain.Location
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := keyTok.(string)
		if !ok {
			return nil, errors.New("keys must be strings")
		}

		var coords []float64
		if err := dec.Decode(&coords); err != nil {
			return nil, fmt.Errorf("location %q: value must be a [lat, lon] array", name)
		}
		if len(coords) != 2 {
			return nil, fmt.Errorf("location %q: expected 2 coordinates, got %d", name, len(coords))
		}

		out = append(out, domain.Location{
			Name:  name,
			Coord: domain.Coordinates{Lat: coords[0], Lon: coords[1]},
		})
	}

	return out, nil
}

// parseYAML uses yaml.Node rather than a map for the same ordering reason.
func parseYAML(b []byte) ([]domain.Location, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(b, &doc); err != nil {
		return nil, err
	}
	if len(doc.Content) == 0 {
		return nil, errors.New("empty document")
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, errors.New("top level must be a mapping")
	}

	// Mapping node content alternates key, value.
	var out []domain.Location
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode := root.Content[i]
		valNode := root.Content[i+1]

		if valNode.Kind != yaml.SequenceNode || len(valNode.Content) != 2 {
			return nil, fmt.Errorf("location %q: value must be a [lat, lon] sequence", keyNode.Value)
		}

		lat, err := strconv.ParseFloat(valNode.Content[0].Value, 64)
		if err != nil {
			return nil, fmt.Errorf("location %q: latitude: %w", keyNode.Value, err)
		}
		lon, err := strconv.ParseFloat(valNode.Content[1].Value, 64)
		if err != nil {
			return nil, fmt.Errorf("location %q: longitude: %w", keyNode.Value, err)
		}

		out = append(out, domain.Location{
			Name:  keyNode.Value,
			Coord: domain.Coordinates{Lat: lat, Lon: lon},
		})
	}

	return out, nil
}
