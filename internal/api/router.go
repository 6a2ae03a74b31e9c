package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ai-fn/route-builder/internal/api/handlers"
	"github.com/ai-fn/route-builder/internal/platform/metrics"
	"github.com/ai-fn/route-builder/internal/ports"
)

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(provider ports.RoutingProvider, outputDir string) http.Handler {
	metrics.Register()

	mux := http.NewServeMux()

	routeHandler := &handlers.RouteHandler{
		Provider:  provider,
		OutputDir: outputDir,
	}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/routes", routeHandler.Build)
	mux.Handle("/metrics", promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{}))

	return requestIDMiddleware(loggingMiddleware(mux))
}
