// Package health provides the liveness/readiness HTTP handlers mounted
// by cmd/server.
//
//	GET /healthz — liveness probe. Always 200 while the process runs.
//	GET /ready   — readiness probe. 200 once the store responds to Ping,
//	               503 {"status":"degraded"} otherwise.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

type response struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Liveness always reports ok; it never touches the store.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, response{Status: "ok"})
}

// Pinger is the dependency Readiness checks; admitgate.Store satisfies
// it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Readiness returns a handler reporting degraded whenever store fails
// its Ping.
func Readiness(store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string)
		status := "ok"
		code := http.StatusOK

		if err := store.Ping(ctx); err != nil {
			checks["store"] = "error: " + err.Error()
			status = "degraded"
			code = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}

		writeJSON(w, code, response{Status: status, Checks: checks})
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}
