package ports

import (
	"context"

	"github.com/ai-fn/route-builder/internal/domain"
)

// Contract for retrieving pairwise road-network distances.
type MatrixProvider interface {
	// Return the N×N matrix of road distances between all points, in input
	// order. Entry (i, j) is the distance from points[i] to points[j];
	// the matrix need not be symmetric.
	DistanceMatrix(ctx context.Context, points []domain.Coordinates) ([][]float64, error)
}

// Contract for retrieving the road-following polyline through ordered points.
type GeometryProvider interface {
	// Return the detailed path geometry for driving through the points in
	// the given order. Requires at least two points.
	RouteGeometry(ctx context.Context, points []domain.Coordinates) ([]domain.Coordinates, error)
}

// RoutingProvider is the full capability surface of an external road-routing
// service. Both operations are boundary calls; test doubles substitute
// deterministic fixtures.
type RoutingProvider interface {
	MatrixProvider
	GeometryProvider
}
