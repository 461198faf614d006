package handlers

import (
	"context"
	"net/http"
	"os"
	"time"

	httperrors "github.com/dropDatabas3/hellojohn-connect/internal/http/errors"
	"github.com/dropDatabas3/hellojohn-connect/internal/observability/logger"
)

// ReadyCheck es un chequeo de dependencia (redis, postgres).
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// NewReadyzHandler responde 200 si todos los checks pasan, 503 si no.
func NewReadyzHandler(checks ...ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if v := os.Getenv("SERVICE_VERSION"); v != "" {
			w.Header().Set("X-Service-Version", v)
		}
		if git := os.Getenv("SERVICE_COMMIT"); git != "" {
			w.Header().Set("X-Service-Commit", git)
		}

		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{}
		for _, c := range checks {
			if err := c.Check(ctx); err != nil {
				logger.From(ctx).Error("readiness check failed", logger.Component(c.Name), logger.Err(err))
				httperrors.WriteError(w, httperrors.ErrServiceUnavailable.WithDetail(c.Name+" unavailable"))
				return
			}
			status[c.Name] = "ok"
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "ready", "checks": status})
	}
}
