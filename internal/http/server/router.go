package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/hellojohn-connect/internal/http/errors"
	"github.com/dropDatabas3/hellojohn-connect/internal/http/handlers"
	mw "github.com/dropDatabas3/hellojohn-connect/internal/http/middlewares"
	"github.com/dropDatabas3/hellojohn-connect/internal/rate"
	"github.com/dropDatabas3/hellojohn-connect/internal/social"
)

// RouterDeps contiene lo que necesita el router.
type RouterDeps struct {
	Registry *social.Registry
	Verifier mw.TokenVerifier // nil: /v1/client/* no se monta
	Limiter  rate.Limiter     // nil: sin rate limit
	Cookie   mw.SessionCookieConfig
	Ready    []handlers.ReadyCheck
	Metrics  http.Handler // nil: /metrics no se monta
}

// NewRouter arma el http.Handler del servicio.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		mw.WithRequestID(),
		mw.WithRecover(),
		mw.WithLogging(),
	)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httperrors.WriteError(w, httperrors.ErrNotFound)
	})

	r.Get("/readyz", handlers.NewReadyzHandler(deps.Ready...))
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}

	// Flujo OAuth 1.0a: necesita sesión y nunca se cachea.
	r.Group(func(r chi.Router) {
		r.Use(mw.WithSession(deps.Cookie), mw.WithNoStore())
		var start []mw.Middleware
		if deps.Limiter != nil {
			start = append(start, mw.WithRateLimit(mw.RateLimitConfig{Limiter: deps.Limiter}))
		}
		handlers.NewOAuth1Handler(deps.Registry).Register(r, start...)
	})

	if deps.Verifier != nil {
		r.Group(func(r chi.Router) {
			r.Use(mw.RequireClientToken(deps.Verifier))
			r.Get("/v1/client/whoami", handlers.WhoAmI)
		})
	}

	return r
}
