package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/ai-fn/route-builder/internal/domain"
	"github.com/ai-fn/route-builder/internal/platform/obs"
	"github.com/ai-fn/route-builder/internal/ports"
)

const tableEndpoint = "table"

// Distances entries are pointers: OSRM emits null for unroutable pairs and
// a silent zero there would corrupt the optimization.
type tableResponse struct {
	Code      string       `json:"code"`
	Distances [][]*float64 `json:"distances"`
}

// DistanceMatrix fetches pairwise road distances for all points in one
// batched table request, in input order.
func (c *Client) DistanceMatrix(ctx context.Context, points []domain.Coordinates) (_ [][]float64, err error) {
	defer obs.Time(ctx, "osrm.DistanceMatrix")(&err)

	if len(points) == 0 {
		return nil, errors.New("distance matrix: at least one point is required")
	}

	coords := coordPath(points)

	cacheKey := c.profile + "|" + coords
	// Check the persistent matrix cache before issuing the external call.
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, cacheKey)
		if err != nil {
			return nil, fmt.Errorf("distance matrix cache: %w", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	url := fmt.Sprintf("%s/%s/v1/%s/%s?annotations=distance", c.baseURL, tableEndpoint, c.profile, coords)

	resp, err := c.doWithRetry(ctx, tableEndpoint, url)
	if err != nil {
		return nil, fmt.Errorf("table request failed: %w", err)
	}
	defer resp.Body.Close()

	var tr tableResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, &ports.MalformedResponseError{Endpoint: tableEndpoint, Reason: "invalid JSON: " + err.Error()}
	}

	if tr.Code != "" && tr.Code != "Ok" {
		return nil, &ports.RoutingServiceError{
			Endpoint:   tableEndpoint,
			StatusCode: resp.StatusCode,
			Body:       "service code " + tr.Code,
		}
	}

	n := len(points)
	if tr.Distances == nil {
		return nil, &ports.MalformedResponseError{Endpoint: tableEndpoint, Reason: "distances field is absent"}
	}
	if len(tr.Distances) != n {
		return nil, &ports.MalformedResponseError{
			Endpoint: tableEndpoint,
			Reason:   fmt.Sprintf("expected %d rows, got %d", n, len(tr.Distances)),
		}
	}

	matrix := make([][]float64, n)
	for i, row := range tr.Distances {
		if len(row) != n {
			return nil, &ports.MalformedResponseError{
				Endpoint: tableEndpoint,
				Reason:   fmt.Sprintf("row %d has %d columns, expected %d", i, len(row), n),
			}
		}

		matrix[i] = make([]float64, n)
		for j, d := range row {
			if d == nil {
				return nil, &ports.MalformedResponseError{
					Endpoint: tableEndpoint,
					Reason:   fmt.Sprintf("no route between points %d and %d", i, j),
				}
			}
			matrix[i][j] = *d
		}
	}

	if c.cache != nil {
		if err := c.cache.Put(ctx, cacheKey, matrix); err != nil {
			log.Printf("matrix cache write failed: %v", err)
		}
	}

	return matrix, nil
}
