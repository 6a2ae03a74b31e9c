package osrm

import (
	"context"

	"github.com/ai-fn/route-builder/internal/domain"
)

// MockProvider serves fixed fixtures in place of the live service, so the
// optimizer and renderer can be exercised without network access.
type MockProvider struct {
	Matrix      [][]float64
	Geometry    []domain.Coordinates
	MatrixErr   error
	GeometryErr error
}

func (m *MockProvider) DistanceMatrix(ctx context.Context, points []domain.Coordinates) ([][]float64, error) {
	if m.MatrixErr != nil {
		return nil, m.MatrixErr
	}
	return m.Matrix, nil
}

func (m *MockProvider) RouteGeometry(ctx context.Context, points []domain.Coordinates) ([]domain.Coordinates, error) {
	if m.GeometryErr != nil {
		return nil, m.GeometryErr
	}
	return m.Geometry, nil
}
