package services

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ai-fn/route-builder/internal/adapters/osrm"
	"github.com/ai-fn/route-builder/internal/domain"
	"github.com/ai-fn/route-builder/internal/ports"
)

func twoLocations(t *testing.T) domain.LocationSet {
	t.Helper()

	set, err := domain.NewLocationSet([]domain.Location{
		{Name: "warehouse", Coord: domain.Coordinates{Lat: 0, Lon: 0}},
		{Name: "store", Coord: domain.Coordinates{Lat: 1, Lon: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return set
}

func TestBuilderBuildEndToEnd(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/table/"):
			w.Write([]byte(`{"code":"Ok","distances":[[0,10],[10,0]]}`))
		case strings.HasPrefix(r.URL.Path, "/route/"):
			w.Write([]byte(`{"code":"Ok","routes":[{"geometry":{"coordinates":[[0,0],[0.5,0.5],[1,1]]}}]}`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	provider, err := osrm.NewClient(osrm.Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := filepath.Join(t.TempDir(), "route.html")
	builder := &Builder{Provider: provider}

	result, err := builder.Build(context.Background(), twoLocations(t), out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.Order) != 2 {
		t.Fatalf("order = %v, want 2 indices", result.Order)
	}
	if result.Order[0] == result.Order[1] {
		t.Fatalf("order %v is not a permutation", result.Order)
	}
	if result.PathPoints != 3 {
		t.Fatalf("path points = %d, want 3", result.PathPoints)
	}

	html, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("output file missing: %v", err)
	}

	doc := string(html)
	if got := strings.Count(doc, `"name":`); got != 2 {
		t.Fatalf("marker count = %d, want 2", got)
	}
	for _, name := range []string{`"name":"warehouse"`, `"name":"store"`} {
		if !strings.Contains(doc, name) {
			t.Fatalf("output lacks marker %s", name)
		}
	}
	if !strings.Contains(doc, `"path":[[0,0],[0.5,0.5],[1,1]]`) {
		t.Fatalf("output lacks the three-point path, got: %.200s", doc)
	}
}

func TestBuilderBuildServiceFailureWritesNoFile(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusInternalServerError)
	}))
	defer server.Close()

	provider, err := osrm.NewClient(osrm.Config{BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := filepath.Join(t.TempDir(), "route.html")
	builder := &Builder{Provider: provider}

	_, err = builder.Build(context.Background(), twoLocations(t), out)

	var serviceErr *ports.RoutingServiceError
	if !errors.As(err, &serviceErr) {
		t.Fatalf("expected RoutingServiceError, got %v", err)
	}
	if serviceErr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", serviceErr.StatusCode)
	}

	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("failed build must write no file, stat err = %v", statErr)
	}
}

func TestBuilderBuildKeepsUnexpectedExtension(t *testing.T) {
	provider := &osrm.MockProvider{
		Matrix: [][]float64{{0, 10}, {10, 0}},
		Geometry: []domain.Coordinates{
			{Lat: 0, Lon: 0},
			{Lat: 0.5, Lon: 0.5},
			{Lat: 1, Lon: 1},
		},
	}

	// The warning about a non-.html extension is non-fatal; the file keeps
	// its literal name.
	out := filepath.Join(t.TempDir(), "route.json")
	builder := &Builder{Provider: provider}

	var logs bytes.Buffer
	log.SetOutput(&logs)
	defer log.SetOutput(os.Stderr)

	result, err := builder.Build(context.Background(), twoLocations(t), out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.OutputPath != out {
		t.Fatalf("output path = %q, want %q", result.OutputPath, out)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("output file missing: %v", err)
	}
	if !strings.Contains(logs.String(), `warn: output extension should be ".html", provided ".json"`) {
		t.Fatalf("missing extension warning, logs: %q", logs.String())
	}
}

func TestBuilderBuildDistancePerStrategy(t *testing.T) {
	set, err := domain.NewLocationSet([]domain.Location{
		{Name: "warehouse", Coord: domain.Coordinates{Lat: 0, Lon: 0}},
		{Name: "store", Coord: domain.Coordinates{Lat: 1, Lon: 1}},
		{Name: "kiosk", Coord: domain.Coordinates{Lat: 2, Lon: 2}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	provider := &osrm.MockProvider{
		Matrix: [][]float64{
			{0, 5, 1},
			{1, 0, 5},
			{5, 1, 0},
		},
		Geometry: []domain.Coordinates{{Lat: 0, Lon: 0}, {Lat: 2, Lon: 2}},
	}

	// Nearest walks 0 -> 2 -> 1, so the distance is the two hops taken
	// (1 + 1), not the position-wise pairing (0+5+1 = 6).
	builder := &Builder{Provider: provider, Strategy: StrategyNearest}
	result, err := builder.Build(context.Background(), set, filepath.Join(t.TempDir(), "route.html"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := result.Order; len(got) != 3 || got[0] != 0 || got[1] != 2 || got[2] != 1 {
		t.Fatalf("order = %v, want [0 2 1]", got)
	}
	if result.DistanceMeters != 2 {
		t.Fatalf("nearest distance = %v, want 2", result.DistanceMeters)
	}

	// The zero diagonal makes the identity assignment the unique optimum,
	// so the assignment objective is 0.
	builder = &Builder{Provider: provider, Strategy: StrategyAssignment}
	result, err = builder.Build(context.Background(), set, filepath.Join(t.TempDir(), "route.html"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.DistanceMeters != 0 {
		t.Fatalf("assignment distance = %v, want 0", result.DistanceMeters)
	}
}

func TestBuilderBuildMissingWarehouse(t *testing.T) {
	set, err := domain.NewLocationSet([]domain.Location{
		{Name: "store", Coord: domain.Coordinates{Lat: 1, Lon: 1}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := filepath.Join(t.TempDir(), "route.html")
	builder := &Builder{Provider: &osrm.MockProvider{Matrix: [][]float64{{0}}}}

	_, err = builder.Build(context.Background(), set, out)
	if !errors.Is(err, domain.ErrMissingWarehouse) {
		t.Fatalf("expected ErrMissingWarehouse, got %v", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Fatalf("failed build must write no file, stat err = %v", statErr)
	}
}

func TestBuilderBuildSingleLocationSkipsGeometry(t *testing.T) {
	set, err := domain.NewLocationSet([]domain.Location{
		{Name: "warehouse", Coord: domain.Coordinates{Lat: 10, Lon: 20}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	provider := &osrm.MockProvider{
		Matrix:      [][]float64{{0}},
		GeometryErr: errors.New("geometry must not be requested for one location"),
	}

	out := filepath.Join(t.TempDir(), "route.html")
	builder := &Builder{Provider: provider}

	result, err := builder.Build(context.Background(), set, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PathPoints != 0 {
		t.Fatalf("path points = %d, want 0", result.PathPoints)
	}
}

func TestParseStrategy(t *testing.T) {
	if s, err := ParseStrategy(""); err != nil || s != StrategyAssignment {
		t.Fatalf("empty strategy = (%v, %v), want default assignment", s, err)
	}
	if s, err := ParseStrategy("nearest"); err != nil || s != StrategyNearest {
		t.Fatalf("nearest strategy = (%v, %v)", s, err)
	}
	if _, err := ParseStrategy("2-opt"); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}
