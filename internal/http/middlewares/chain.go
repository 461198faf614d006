package middlewares

import "net/http"

// Middleware decora un http.Handler. Es compatible con chi (r.Use / r.With).
type Middleware func(http.Handler) http.Handler

// Chain envuelve h: Chain(h, A, B) ejecuta A -> B -> h. Los nil se ignoran,
// así los middlewares opcionales (rate limit sin limiter) se pasan directo.
func Chain(h http.Handler, mws ...Middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] != nil {
			h = mws[i](h)
		}
	}
	return h
}
