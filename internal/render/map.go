// Package render turns an ordered route into a self-contained interactive
// Leaflet map document.
package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"os"

	"github.com/ai-fn/route-builder/internal/domain"
)

//go:embed template.html
var templateFS embed.FS

var mapTemplate = template.Must(template.ParseFS(templateFS, "template.html"))

// initialZoom matches the historical wide-area viewport.
const initialZoom = 4

type marker struct {
	Name string  `json:"name"`
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
}

type mapData struct {
	Center  [2]float64   `json:"center"`
	Zoom    int          `json:"zoom"`
	Markers []marker     `json:"markers"`
	Path    [][2]float64 `json:"path"`
}

// RouteMap is an in-memory map artifact: one polyline through the route
// path, one tooltip marker per location, viewport centered on the warehouse.
type RouteMap struct {
	data mapData
}

// New composes the map from the original location set and the road-following
// path. The path is already in domain (lat, lon) order; the renderer never
// touches longitude-first data. Returns domain.ErrMissingWarehouse when the
// anchor location is absent.
func New(locations domain.LocationSet, path []domain.Coordinates) (*RouteMap, error) {
	warehouse, err := locations.Warehouse()
	if err != nil {
		return nil, err
	}

	markers := make([]marker, 0, locations.Len())
	for _, loc := range locations.Locations() {
		markers = append(markers, marker{Name: loc.Name, Lat: loc.Coord.Lat, Lon: loc.Coord.Lon})
	}

	line := make([][2]float64, 0, len(path))
	for _, p := range path {
		line = append(line, [2]float64{p.Lat, p.Lon})
	}

	return &RouteMap{
		data: mapData{
			Center:  [2]float64{warehouse.Coord.Lat, warehouse.Coord.Lon},
			Zoom:    initialZoom,
			Markers: markers,
			Path:    line,
		},
	}, nil
}

// Markers returns the marker count, for callers reporting build summaries.
func (m *RouteMap) Markers() int { return len(m.data.Markers) }

// PathPoints returns the number of points on the rendered polyline.
func (m *RouteMap) PathPoints() int { return len(m.data.Path) }

// WriteTo renders the HTML document into w.
func (m *RouteMap) WriteTo(w io.Writer) (int64, error) {
	payload, err := json.Marshal(m.data)
	if err != nil {
		return 0, fmt.Errorf("render map: encode route data: %w", err)
	}

	// Render fully into memory first so a template failure writes nothing.
	var buf bytes.Buffer
	if err := mapTemplate.Execute(&buf, struct{ JSON template.JS }{JSON: template.JS(payload)}); err != nil {
		return 0, fmt.Errorf("render map: execute template: %w", err)
	}

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

// Save persists the document to the given path. A failed render leaves no
// file behind.
func (m *RouteMap) Save(path string) error {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("render map: write %q: %w", path, err)
	}
	return nil
}
