package social

import (
	"errors"
	"fmt"
)

// Errores del flujo three-legged.
var (
	// ErrSessionMismatch: no hay autorización pendiente para la sesión, o el
	// token del callback no coincide (sesión expirada, CSRF o callback repetido).
	ErrSessionMismatch = errors.New("social: session mismatch")

	// ErrAccessDenied: el usuario rechazó la autorización en el provider.
	ErrAccessDenied = errors.New("social: access denied by resource owner")

	// ErrUnknownProvider: el provider pedido no está registrado.
	ErrUnknownProvider = errors.New("social: unknown provider")

	// ErrMissingSession: Initiate/Resume sin session ID.
	ErrMissingSession = errors.New("social: session id is required")
)

// TokenExchangeFailed envuelve el fallo del intercambio de credenciales
// temporales por token credentials.
type TokenExchangeFailed struct {
	Provider string
	Err      error
}

func (e *TokenExchangeFailed) Error() string {
	return fmt.Sprintf("social: token exchange with %s failed: %v", e.Provider, e.Err)
}

func (e *TokenExchangeFailed) Unwrap() error { return e.Err }

// UserResolutionFailed envuelve el error devuelto por el Resolver.
type UserResolutionFailed struct {
	Provider string
	Err      error
}

func (e *UserResolutionFailed) Error() string {
	return fmt.Sprintf("social: user resolution for %s failed: %v", e.Provider, e.Err)
}

func (e *UserResolutionFailed) Unwrap() error { return e.Err }

// ResolutionRejected indica que el Resolver no devolvió usuario. Info es el
// payload que devolvió el Resolver junto con el rechazo.
type ResolutionRejected struct {
	Provider string
	Info     any
}

func (e *ResolutionRejected) Error() string {
	return fmt.Sprintf("social: no user resolved for %s", e.Provider)
}
