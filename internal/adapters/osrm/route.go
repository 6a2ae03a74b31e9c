package osrm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ai-fn/route-builder/internal/domain"
	"github.com/ai-fn/route-builder/internal/platform/obs"
	"github.com/ai-fn/route-builder/internal/ports"
)

const routeEndpoint = "route"

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Geometry struct {
			Coordinates [][]float64 `json:"coordinates"`
		} `json:"geometry"`
	} `json:"routes"`
}

// RouteGeometry fetches the road-following polyline for driving through the
// points in the given order, as one route request with full GeoJSON overview.
func (c *Client) RouteGeometry(ctx context.Context, points []domain.Coordinates) (_ []domain.Coordinates, err error) {
	defer obs.Time(ctx, "osrm.RouteGeometry")(&err)

	if len(points) < 2 {
		return nil, errors.New("route geometry: at least two points are required")
	}

	url := fmt.Sprintf("%s/%s/v1/%s/%s?overview=full&geometries=geojson",
		c.baseURL, routeEndpoint, c.profile, coordPath(points))

	resp, err := c.doWithRetry(ctx, routeEndpoint, url)
	if err != nil {
		return nil, fmt.Errorf("route request failed: %w", err)
	}
	defer resp.Body.Close()

	var rr routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, &ports.MalformedResponseError{Endpoint: routeEndpoint, Reason: "invalid JSON: " + err.Error()}
	}

	if rr.Code != "" && rr.Code != "Ok" {
		return nil, &ports.RoutingServiceError{
			Endpoint:   routeEndpoint,
			StatusCode: resp.StatusCode,
			Body:       "service code " + rr.Code,
		}
	}

	if len(rr.Routes) == 0 {
		return nil, &ports.MalformedResponseError{Endpoint: routeEndpoint, Reason: "response contains no routes"}
	}

	raw := rr.Routes[0].Geometry.Coordinates
	if len(raw) == 0 {
		return nil, &ports.MalformedResponseError{Endpoint: routeEndpoint, Reason: "route has no geometry"}
	}

	return decodeGeometry(raw)
}

// decodeGeometry converts GeoJSON [lon, lat] pairs into domain (lat, lon)
// coordinates. This is the second of the two axis-order flips; nothing past
// this boundary sees longitude-first data.
func decodeGeometry(raw [][]float64) ([]domain.Coordinates, error) {
	out := make([]domain.Coordinates, 0, len(raw))
	for i, pair := range raw {
		if len(pair) != 2 {
			return nil, &ports.MalformedResponseError{
				Endpoint: routeEndpoint,
				Reason:   fmt.Sprintf("geometry point %d has %d components, expected 2", i, len(pair)),
			}
		}
		out = append(out, domain.Coordinates{Lat: pair[1], Lon: pair[0]})
	}
	return out, nil
}
