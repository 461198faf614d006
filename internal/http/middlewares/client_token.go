package middlewares

import (
	"net/http"
	"strings"

	"github.com/dropDatabas3/hellojohn-connect/internal/http/errors"
	jwtx "github.com/dropDatabas3/hellojohn-connect/internal/jwt"
	"github.com/dropDatabas3/hellojohn-connect/internal/metrics"
	"github.com/dropDatabas3/hellojohn-connect/internal/observability/logger"
)

// TokenVerifier verifica un bearer token crudo.
type TokenVerifier interface {
	Verify(raw string) (*jwtx.ClientToken, error)
}

// RequireClientToken valida Authorization: Bearer <JWT> contra v y guarda el
// token y sus claims en el contexto. Ante cualquier fallo responde 403
// {realm: client, error: unauthorized_client} sin llegar al handler.
func RequireClientToken(v TokenVerifier) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			log := logger.From(r.Context()).With(logger.Component("client_token"))

			ah := strings.TrimSpace(r.Header.Get("Authorization"))
			if ah == "" {
				metrics.ClientTokenRejections.WithLabelValues("missing").Inc()
				log.Debug("missing authorization header")
				errors.WriteUnauthorized(w, errors.NewUnauthorizedClient(errors.MsgMissingAuthorization))
				return
			}

			tok, err := v.Verify(ah)
			if err != nil {
				metrics.ClientTokenRejections.WithLabelValues("invalid").Inc()
				log.Info("client token rejected", logger.Err(err))
				errors.WriteUnauthorized(w, errors.NewUnauthorizedClient(errors.MsgInvalidAccessToken))
				return
			}

			ctx := WithClientToken(r.Context(), tok)
			ctx = WithClaims(ctx, tok.Claims)
			if sub := tok.Subject(); sub != "" {
				ctx = logger.ToContext(ctx, logger.From(ctx).With(logger.Subject(sub)))
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
