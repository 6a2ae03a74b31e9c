package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/ai-fn/route-builder/internal/api/dto"
	"github.com/ai-fn/route-builder/internal/domain"
	"github.com/ai-fn/route-builder/internal/platform/metrics"
	"github.com/ai-fn/route-builder/internal/ports"
	"github.com/ai-fn/route-builder/internal/services"
)

type RouteHandler struct {
	Provider  ports.RoutingProvider
	OutputDir string
}

// Build runs the full route pipeline for the posted locations and persists
// the rendered map under OutputDir.
func (h *RouteHandler) Build(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.BuildRequest

	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body: "+err.Error())
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	if len(req.Locations) == 0 {
		writeError(w, r, http.StatusBadRequest, "locations is required")
		return
	}

	locs := make([]domain.Location, 0, len(req.Locations))
	for _, p := range req.Locations {
		locs = append(locs, domain.Location{Name: p.Name, Coord: domain.Coordinates{Lat: p.Lat, Lon: p.Lon}})
	}

	locations, err := domain.NewLocationSet(locs)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	strategy, err := services.ParseStrategy(req.Strategy)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	filename := req.Filename
	if filename == "" {
		filename = services.DefaultFilename
	}
	// Strip any directory components; the server decides where files live.
	filename = filepath.Join(h.OutputDir, filepath.Base(filename))

	builder := &services.Builder{Provider: h.Provider, Strategy: strategy}
	result, err := builder.Build(r.Context(), locations, filename)

	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.Builds.WithLabelValues(string(strategy), outcome).Inc()

	if err != nil {
		log.Printf("build route failed: %v", err)
		writeError(w, r, statusFor(err), err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, dto.BuildResponse{
		Order:          result.Order,
		File:           result.OutputPath,
		DistanceMeters: result.DistanceMeters,
		PathPoints:     result.PathPoints,
	})
}

// statusFor maps the build error taxonomy onto HTTP statuses: caller
// mistakes are 400s, upstream routing-service trouble is 502.
func statusFor(err error) int {
	if errors.Is(err, domain.ErrMissingWarehouse) {
		return http.StatusBadRequest
	}

	var rse *ports.RoutingServiceError
	var mre *ports.MalformedResponseError
	var oe *services.OptimizationError
	if errors.As(err, &rse) || errors.As(err, &mre) || errors.As(err, &oe) {
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
