// internal/web/respond.go
//
// JSON response helpers shared by all handlers.  Errors use the single
// shape {"error": "..."} so the frontend never needs to branch on the
// endpoint.
package web

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Warnw("response encode failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// okBody is the canonical success payload for mutations.
var okBody = map[string]bool{"ok": true}
