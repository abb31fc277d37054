package handler

import (
	"net/http"
	"time"

	"writersuite/internal/httputil"
)

// HealthCheck is a simple liveness endpoint
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"time":   time.Now().UTC(),
	})
}
