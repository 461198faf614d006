package middlewares

import (
	"context"

	jwtx "github.com/dropDatabas3/hellojohn-connect/internal/jwt"
)

// =================================================================================
// CONTEXT KEYS
// =================================================================================

type ctxKey string

const (
	// ctxClaimsKey guarda las claims del client token verificado
	ctxClaimsKey ctxKey = "claims"
	// ctxClientTokenKey guarda el *jwt.ClientToken completo (header + claims)
	ctxClientTokenKey ctxKey = "client_token"
	// ctxSessionKey guarda el session ID de la cookie
	ctxSessionKey ctxKey = "session_id"
	// ctxRequestIDKey guarda el request ID
	ctxRequestIDKey ctxKey = "request_id"
)

// =================================================================================
// CONTEXT SETTERS
// =================================================================================

// WithClaims inyecta claims en el contexto
func WithClaims(ctx context.Context, claims map[string]any) context.Context {
	return context.WithValue(ctx, ctxClaimsKey, claims)
}

// WithClientToken inyecta el token verificado en el contexto
func WithClientToken(ctx context.Context, t *jwtx.ClientToken) context.Context {
	return context.WithValue(ctx, ctxClientTokenKey, t)
}

// WithSessionID inyecta el session ID en el contexto
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, ctxSessionKey, sid)
}

func setRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ctxRequestIDKey, requestID)
}

// =================================================================================
// CONTEXT GETTERS
// =================================================================================

// GetClaims obtiene las claims del contexto.
// Retorna nil si no hay claims (token no validado o middleware no aplicado).
func GetClaims(ctx context.Context) map[string]any {
	if v, ok := ctx.Value(ctxClaimsKey).(map[string]any); ok {
		return v
	}
	return nil
}

// GetClientToken obtiene el client token verificado, o nil.
func GetClientToken(ctx context.Context) *jwtx.ClientToken {
	if v, ok := ctx.Value(ctxClientTokenKey).(*jwtx.ClientToken); ok {
		return v
	}
	return nil
}

// GetSessionID obtiene el session ID, o "".
func GetSessionID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxSessionKey).(string); ok {
		return v
	}
	return ""
}

// GetRequestID obtiene el request ID, o "".
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxRequestIDKey).(string); ok {
		return v
	}
	return ""
}

// ClaimString devuelve un claim string, o "".
func ClaimString(claims map[string]any, key string) string {
	if claims == nil {
		return ""
	}
	s, _ := claims[key].(string)
	return s
}
