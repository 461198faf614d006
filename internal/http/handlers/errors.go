package handlers

import (
	"errors"

	httperrors "github.com/dropDatabas3/hellojohn-connect/internal/http/errors"
	"github.com/dropDatabas3/hellojohn-connect/internal/oauth1"
	"github.com/dropDatabas3/hellojohn-connect/internal/social"
)

// flowError traduce los errores del flujo a AppError.
func flowError(err error) *httperrors.AppError {
	var (
		tef *social.TokenExchangeFailed
		urf *social.UserResolutionFailed
		rej *social.ResolutionRejected
		prf *oauth1.ProviderRequestFailed
	)
	switch {
	case errors.Is(err, social.ErrSessionMismatch):
		return httperrors.ErrSessionMismatch.WithCause(err)
	case errors.Is(err, social.ErrAccessDenied):
		return httperrors.ErrAccessDenied.WithCause(err)
	case errors.Is(err, social.ErrUnknownProvider):
		return httperrors.ErrUnknownProvider.WithCause(err)
	case errors.Is(err, social.ErrMissingSession):
		return httperrors.ErrBadRequest.WithDetail("missing session").WithCause(err)
	case errors.As(err, &tef):
		return httperrors.ErrTokenExchangeFailed.WithCause(err)
	case errors.As(err, &rej):
		return httperrors.ErrResolutionRejected.WithCause(err)
	case errors.As(err, &urf):
		return httperrors.ErrResolutionFailed.WithCause(err)
	case errors.As(err, &prf):
		return httperrors.ErrProviderFailure.WithDetail(string(prf.Step)).WithCause(err)
	default:
		return httperrors.FromError(err)
	}
}
