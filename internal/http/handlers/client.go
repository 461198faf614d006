package handlers

import (
	"net/http"

	mw "github.com/dropDatabas3/hellojohn-connect/internal/http/middlewares"
)

// WhoAmI devuelve header y claims del client token verificado.
// GET /v1/client/whoami (detrás de RequireClientToken)
func WhoAmI(w http.ResponseWriter, r *http.Request) {
	tok := mw.GetClientToken(r.Context())
	if tok == nil {
		// sin middleware no hay token: es un error de wiring
		writeJSON(w, http.StatusInternalServerError, map[string]string{"code": "INTERNAL_SERVER_ERROR"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"header": tok.Header,
		"claims": tok.Claims,
	})
}
