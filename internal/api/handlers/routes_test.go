package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ai-fn/route-builder/internal/adapters/osrm"
	"github.com/ai-fn/route-builder/internal/domain"
	"github.com/ai-fn/route-builder/internal/platform/metrics"
	"github.com/ai-fn/route-builder/internal/ports"
)

func newTestHandler(t *testing.T, provider ports.RoutingProvider) (*RouteHandler, string) {
	t.Helper()

	metrics.Register()
	dir := t.TempDir()
	return &RouteHandler{Provider: provider, OutputDir: dir}, dir
}

func postRoutes(t *testing.T, h *RouteHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/routes", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.Build(rec, req)
	return rec
}

func TestRouteHandlerBuild(t *testing.T) {
	provider := &osrm.MockProvider{
		Matrix: [][]float64{{0, 10}, {10, 0}},
		Geometry: []domain.Coordinates{
			{Lat: 0, Lon: 0},
			{Lat: 0.5, Lon: 0.5},
			{Lat: 1, Lon: 1},
		},
	}
	h, dir := newTestHandler(t, provider)

	rec := postRoutes(t, h, `{"locations":{"warehouse":[0,0],"store":[1,1]}}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var res struct {
		Order      []int  `json:"order"`
		File       string `json:"file"`
		PathPoints int    `json:"path_points"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&res); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(res.Order) != 2 {
		t.Fatalf("order = %v", res.Order)
	}
	if res.PathPoints != 3 {
		t.Fatalf("path_points = %d, want 3", res.PathPoints)
	}
	if filepath.Dir(res.File) != dir {
		t.Fatalf("file %q written outside %q", res.File, dir)
	}
	if _, err := os.Stat(res.File); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
}

func TestRouteHandlerMissingWarehouse(t *testing.T) {
	h, _ := newTestHandler(t, &osrm.MockProvider{Matrix: [][]float64{{0}}})

	rec := postRoutes(t, h, `{"locations":{"store":[1,1]}}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestRouteHandlerServiceFailure(t *testing.T) {
	provider := &osrm.MockProvider{
		MatrixErr: &ports.RoutingServiceError{Endpoint: "table", StatusCode: 500, Body: "boom"},
	}
	h, dir := newTestHandler(t, provider)

	rec := postRoutes(t, h, `{"locations":{"warehouse":[0,0],"store":[1,1]}}`)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed build must write no file, found %d entries", len(entries))
	}
}

func TestRouteHandlerValidation(t *testing.T) {
	h, _ := newTestHandler(t, &osrm.MockProvider{})

	for name, body := range map[string]string{
		"empty object":     `{}`,
		"bad json":         `{`,
		"bad coords":       `{"locations":{"warehouse":[0]}}`,
		"unknown strategy": `{"locations":{"warehouse":[0,0],"store":[1,1]},"strategy":"2-opt"}`,
		"trailing object":  `{"locations":{"warehouse":[0,0]}}{}`,
	} {
		rec := postRoutes(t, h, body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: status = %d, want 400", name, rec.Code)
		}
	}
}

func TestRouteHandlerMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, &osrm.MockProvider{})

	req := httptest.NewRequest(http.MethodGet, "/routes", nil)
	rec := httptest.NewRecorder()
	h.Build(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", rec.Code)
	}
}

func TestRouteHandlerStripsDirectoryTraversal(t *testing.T) {
	provider := &osrm.MockProvider{
		Matrix:   [][]float64{{0, 10}, {10, 0}},
		Geometry: []domain.Coordinates{{Lat: 0, Lon: 0}, {Lat: 1, Lon: 1}},
	}
	h, dir := newTestHandler(t, provider)

	rec := postRoutes(t, h, `{"locations":{"warehouse":[0,0],"store":[1,1]},"filename":"../../evil.html"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	if _, err := os.Stat(filepath.Join(dir, "evil.html")); err != nil {
		t.Fatalf("sanitized file missing: %v", err)
	}
}
