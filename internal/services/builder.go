package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"

	"github.com/ai-fn/route-builder/internal/domain"
	"github.com/ai-fn/route-builder/internal/platform/obs"
	"github.com/ai-fn/route-builder/internal/ports"
	"github.com/ai-fn/route-builder/internal/render"
)

// DefaultFilename is used when a build is started without an output path.
const DefaultFilename = "optimized_route.html"

// targetExt is the extension the renderer produces. Other extensions are
// accepted with a warning; the file is still written under the given name.
const targetExt = ".html"

// Strategy selects how the visiting order is derived from the matrix.
type Strategy string

const (
	// StrategyAssignment reads the order out of a minimum-weight assignment.
	// This is the default and matches the historical output.
	StrategyAssignment Strategy = "assignment"
	// StrategyNearest walks greedily from the first location.
	StrategyNearest Strategy = "nearest"
)

// ParseStrategy maps user input onto a known Strategy; empty selects the default.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case "":
		return StrategyAssignment, nil
	case StrategyAssignment, StrategyNearest:
		return Strategy(s), nil
	}
	return "", fmt.Errorf("unknown strategy %q (want %q or %q)", s, StrategyAssignment, StrategyNearest)
}

// Builder runs the route pipeline: distance matrix, visiting order, path
// geometry, rendered map. Each Build owns its intermediate artifacts
// exclusively; a Builder itself is stateless and safe to reuse.
type Builder struct {
	Provider ports.RoutingProvider
	Strategy Strategy
}

// Outcome of a successful build.
type BuildResult struct {
	Order      []int
	OutputPath string
	// DistanceMeters is the cost of Order under the chosen strategy: the
	// assignment objective for StrategyAssignment, the summed consecutive
	// hops for StrategyNearest.
	DistanceMeters float64
	PathPoints     int
}

// Build computes and persists the route map for the given locations.
//
// The pipeline is synchronous: every stage blocks on its predecessor, and any
// stage error aborts the build before a file is written. On success exactly
// one file exists at the output path.
func (b *Builder) Build(ctx context.Context, locations domain.LocationSet, filename string) (_ *BuildResult, err error) {
	defer obs.Time(ctx, "builder.Build")(&err)

	if b.Provider == nil {
		return nil, errors.New("build route: routing provider is required")
	}
	if locations.Len() == 0 {
		return nil, errors.New("build route: location set must not be empty")
	}
	// Fail on a missing warehouse before spending network calls.
	if _, err := locations.Warehouse(); err != nil {
		return nil, fmt.Errorf("build route: %w", err)
	}

	if filename == "" {
		filename = DefaultFilename
	}
	if ext := filepath.Ext(filename); ext != targetExt {
		log.Printf("warn: output extension should be %q, provided %q", targetExt, ext)
	}

	matrix, err := b.Provider.DistanceMatrix(ctx, locations.Coords())
	if err != nil {
		return nil, fmt.Errorf("build route: distance matrix: %w", err)
	}

	order, err := b.order(matrix)
	if err != nil {
		return nil, fmt.Errorf("build route: %w", err)
	}

	ordered, err := locations.Reorder(order)
	if err != nil {
		return nil, fmt.Errorf("build route: %w", err)
	}

	// OSRM rejects single-coordinate route requests; a one-location build
	// renders a marker-only map instead.
	var path []domain.Coordinates
	if len(ordered) >= 2 {
		path, err = b.Provider.RouteGeometry(ctx, ordered)
		if err != nil {
			return nil, fmt.Errorf("build route: route geometry: %w", err)
		}
	}

	routeMap, err := render.New(locations, path)
	if err != nil {
		return nil, fmt.Errorf("build route: %w", err)
	}

	if err := routeMap.Save(filename); err != nil {
		return nil, fmt.Errorf("build route: %w", err)
	}
	log.Printf("route saved file=%q locations=%d path_points=%d", filename, locations.Len(), len(path))

	return &BuildResult{
		Order:          order,
		OutputPath:     filename,
		DistanceMeters: b.routeDistance(matrix, order),
		PathPoints:     len(path),
	}, nil
}

// routeDistance totals the figure the chosen strategy optimized for. The
// nearest walk sums the hops actually traveled, matrix[order[k]][order[k+1]];
// the assignment reads each row's assigned column, matrix[i][order[i]], which
// is its objective but not a hop sum.
func (b *Builder) routeDistance(matrix [][]float64, order []int) float64 {
	total := 0.0
	switch b.Strategy {
	case StrategyNearest:
		for k := 0; k+1 < len(order); k++ {
			total += matrix[order[k]][order[k+1]]
		}
	default:
		for i, j := range order {
			total += matrix[i][j]
		}
	}
	return total
}

func (b *Builder) order(matrix [][]float64) ([]int, error) {
	switch b.Strategy {
	case StrategyNearest:
		return NearestNeighborOrder(matrix)
	case StrategyAssignment, "":
		return OptimizeOrder(matrix)
	}
	return nil, fmt.Errorf("unknown strategy %q", b.Strategy)
}
