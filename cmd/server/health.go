package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JaimeStill/agrocheck/pkg/handlers"
	"github.com/JaimeStill/agrocheck/pkg/lifecycle"
)

const readyTimeout = 2 * time.Second

type probeStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// healthz reports liveness only. It never touches dependencies.
func healthz(w http.ResponseWriter, _ *http.Request) {
	handlers.RespondJSON(w, http.StatusOK, probeStatus{Status: "ok"})
}

// readyz answers 503 until startup completes, after shutdown begins, and
// whenever a registered dependency check fails.
func readyz(lc *lifecycle.Coordinator, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !lc.Ready() {
			handlers.RespondJSON(w, http.StatusServiceUnavailable, probeStatus{Status: "not ready"})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		failed := lc.Check(ctx)
		if len(failed) == 0 {
			handlers.RespondJSON(w, http.StatusOK, probeStatus{Status: "ready"})
			return
		}

		checks := make(map[string]string, len(failed))
		for name, err := range failed {
			logger.Warn("readiness check failed", "check", name, "error", err)
			checks[name] = err.Error()
		}
		handlers.RespondJSON(w, http.StatusServiceUnavailable, probeStatus{Status: "degraded", Checks: checks})
	}
}
