package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/cissero/platform/internal/infra"
)

// HealthHandler reports liveness.
func HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}

// ReadyHandler pings every backing store. Any failure reports 503.
func ReadyHandler(checks map[string]infra.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		results := make(map[string]string, len(checks))
		for name, p := range checks {
			if err := infra.HealthCheck(ctx, p); err != nil {
				status = http.StatusServiceUnavailable
				results[name] = err.Error()
				continue
			}
			results[name] = "ok"
		}

		body := map[string]interface{}{"status": "ready", "checks": results}
		if status != http.StatusOK {
			body["status"] = "unhealthy"
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
