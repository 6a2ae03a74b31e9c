package handlers

import (
	"net/http"
)

// Health reports process liveness. It deliberately probes no backends: the
// matrix cache and routing service are both optional, so their state says
// nothing about whether this process can serve.
func Health(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	writeJSON(w, r, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "route-builder",
	})
}
