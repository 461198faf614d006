package middlewares

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/dropDatabas3/hellojohn-connect/internal/observability/logger"
)

// SessionCookieConfig configura la cookie que lleva el session ID.
type SessionCookieConfig struct {
	Name   string // default "sid"
	Secure bool
	MaxAge int // segundos; 0 = cookie de sesión
}

// WithSession asegura que cada request tenga un session ID. Si la cookie no
// existe (o no es un UUID) se crea una nueva. El ID queda en el contexto.
// La cookie sólo correlaciona: el estado vive en el session store.
func WithSession(cfg SessionCookieConfig) Middleware {
	if cfg.Name == "" {
		cfg.Name = "sid"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sid := ""
			if c, err := r.Cookie(cfg.Name); err == nil {
				if _, perr := uuid.Parse(c.Value); perr == nil {
					sid = c.Value
				}
			}
			if sid == "" {
				sid = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     cfg.Name,
					Value:    sid,
					Path:     "/",
					MaxAge:   cfg.MaxAge,
					HttpOnly: true,
					Secure:   cfg.Secure,
					SameSite: http.SameSiteLaxMode,
				})
			}
			ctx := WithSessionID(r.Context(), sid)
			ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.SessionID(sid)))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
