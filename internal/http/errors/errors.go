// Package errors define los errores HTTP de la API y cómo se serializan.
package errors

import (
	"encoding/json"
	"net/http"
)

// errorResponse controla exactamente qué campos se envían al cliente.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// WriteError escribe una respuesta HTTP basada en el error proporcionado.
// Maneja automáticamente errores de tipo *AppError y errores genéricos.
func WriteError(w http.ResponseWriter, err error) {
	appErr := FromError(err)

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(appErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Code:    appErr.Code,
		Message: appErr.Message,
		Detail:  appErr.Detail,
	})
}

// =================================================================================
// BEARER TOKEN GATE
// =================================================================================

// Mensajes del gate de client tokens.
const (
	MsgMissingAuthorization = "Missing authorization header"
	MsgInvalidAccessToken   = "Invalid access token"
)

// UnauthorizedError es el rechazo estructurado del gate de client tokens.
type UnauthorizedError struct {
	Realm            string `json:"realm"`
	Code             string `json:"error"`
	ErrorDescription string `json:"error_description"`
	StatusCode       int    `json:"statusCode"`
}

func (e *UnauthorizedError) Error() string {
	return e.Code + ": " + e.ErrorDescription
}

// NewUnauthorizedClient arma el rechazo {realm: client, error: unauthorized_client}.
func NewUnauthorizedClient(description string) *UnauthorizedError {
	return &UnauthorizedError{
		Realm:            "client",
		Code:             "unauthorized_client",
		ErrorDescription: description,
		StatusCode:       http.StatusForbidden,
	}
}

// WriteUnauthorized serializa e con su status.
func WriteUnauthorized(w http.ResponseWriter, e *UnauthorizedError) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(e.StatusCode)
	_ = json.NewEncoder(w).Encode(e)
}
