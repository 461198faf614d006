package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	httperrors "github.com/dropDatabas3/hellojohn-connect/internal/http/errors"
	mw "github.com/dropDatabas3/hellojohn-connect/internal/http/middlewares"
	"github.com/dropDatabas3/hellojohn-connect/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-connect/internal/profile"
	"github.com/dropDatabas3/hellojohn-connect/internal/social"
)

// OAuth1Handler expone el flujo three-legged por HTTP.
type OAuth1Handler struct {
	registry *social.Registry
}

// NewOAuth1Handler crea el handler.
func NewOAuth1Handler(registry *social.Registry) *OAuth1Handler {
	return &OAuth1Handler{registry: registry}
}

// Register monta las rutas bajo r. start recibe middlewares extra (rate limit).
func (h *OAuth1Handler) Register(r chi.Router, start ...mw.Middleware) {
	r.Get("/v1/auth/oauth1", h.Providers)
	r.Method(http.MethodGet, "/v1/auth/oauth1/{provider}", mw.Chain(http.HandlerFunc(h.Start), start...))
	r.Get("/v1/auth/oauth1/{provider}/callback", h.Callback)
}

type providersResponse struct {
	Providers []providerInfo `json:"providers"`
}

type providerInfo struct {
	ID       string `json:"id"`
	StartURL string `json:"start_url"`
}

// Providers lista los providers configurados.
// GET /v1/auth/oauth1
func (h *OAuth1Handler) Providers(w http.ResponseWriter, r *http.Request) {
	ids := h.registry.Providers()
	resp := providersResponse{Providers: make([]providerInfo, 0, len(ids))}
	for _, id := range ids {
		resp.Providers = append(resp.Providers, providerInfo{ID: id, StartURL: "/v1/auth/oauth1/" + id})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Start inicia la autorización y redirige al provider.
// GET /v1/auth/oauth1/{provider}
func (h *OAuth1Handler) Start(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pid := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(logger.Layer("handler"), logger.Op("oauth1.Start"), logger.Provider(pid))

	ctrl, err := h.registry.Get(pid)
	if err != nil {
		httperrors.WriteError(w, flowError(err))
		return
	}

	redirect, err := ctrl.Initiate(ctx, mw.GetSessionID(ctx))
	if err != nil {
		appErr := flowError(err)
		log.Warn("initiate failed", logger.Status(appErr.HTTPStatus), logger.Err(err))
		httperrors.WriteError(w, appErr)
		return
	}
	http.Redirect(w, r, redirect, http.StatusFound)
}

type callbackResponse struct {
	Provider string          `json:"provider"`
	User     any             `json:"user"`
	Info     any             `json:"info,omitempty"`
	Profile  profile.Profile `json:"profile"`
}

// Callback completa la autorización con los parámetros del provider.
// GET /v1/auth/oauth1/{provider}/callback?oauth_token=...&oauth_verifier=...
func (h *OAuth1Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	pid := chi.URLParam(r, "provider")
	log := logger.From(ctx).With(logger.Layer("handler"), logger.Op("oauth1.Callback"), logger.Provider(pid))

	ctrl, err := h.registry.Get(pid)
	if err != nil {
		httperrors.WriteError(w, flowError(err))
		return
	}

	q := r.URL.Query()
	res, err := ctrl.Resume(ctx, mw.GetSessionID(ctx), social.CallbackParams{
		Token:    q.Get("oauth_token"),
		Verifier: q.Get("oauth_verifier"),
		Denied:   q.Get("denied"),
	})
	if err != nil {
		appErr := flowError(err)
		var rej *social.ResolutionRejected
		if errors.As(err, &rej) {
			log.Info("resolution rejected")
			writeJSON(w, appErr.HTTPStatus, map[string]any{
				"code":    appErr.Code,
				"message": appErr.Message,
				"info":    rej.Info,
			})
			return
		}
		log.Warn("callback failed", logger.Status(appErr.HTTPStatus), logger.Err(err))
		httperrors.WriteError(w, appErr)
		return
	}

	writeJSON(w, http.StatusOK, callbackResponse{
		Provider: res.Provider,
		User:     res.User,
		Info:     res.Info,
		Profile:  res.Profile,
	})
}
