package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/dropDatabas3/hellojohn-connect/internal/metrics"
	"github.com/dropDatabas3/hellojohn-connect/internal/oauth1"
	"github.com/dropDatabas3/hellojohn-connect/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-connect/internal/profile"
	"github.com/dropDatabas3/hellojohn-connect/internal/session"
)

// DefaultPendingTTL es cuánto vive una autorización pendiente en el store.
const DefaultPendingTTL = 10 * time.Minute

// Resultados contados en oauth1_flow_total.
const (
	outcomeInitiated       = "initiated"
	outcomeInitiateFailed  = "initiate_failed"
	outcomeAuthorized      = "authorized"
	outcomeSessionMismatch = "session_mismatch"
	outcomeDenied          = "denied"
	outcomeExchangeFailed  = "exchange_failed"
	outcomeProfileFailed   = "profile_failed"
	outcomeResolveFailed   = "resolution_failed"
	outcomeRejected        = "rejected"
)

// ControllerDeps contiene las dependencias de un Controller.
type ControllerDeps struct {
	Client   *oauth1.Client
	Mapper   *profile.Mapper // nil: perfil sólo con provider
	Store    session.Store
	Resolver Resolver
	TTL      time.Duration // default: DefaultPendingTTL
}

// Controller corre el flujo three-legged de un provider. No guarda estado
// entre requests: todo lo que cruza la redirección vive en el session store.
type Controller struct {
	client   *oauth1.Client
	mapper   *profile.Mapper
	store    session.Store
	resolver Resolver
	ttl      time.Duration
}

// NewController crea un Controller. Client, Store y Resolver son obligatorios.
func NewController(deps ControllerDeps) (*Controller, error) {
	if deps.Client == nil {
		return nil, errors.New("social: client is required")
	}
	if deps.Store == nil {
		return nil, errors.New("social: session store is required")
	}
	if deps.Resolver == nil {
		return nil, errors.New("social: resolver is required")
	}
	mapper := deps.Mapper
	if mapper == nil {
		mapper, _ = profile.NewMapper(nil)
	}
	ttl := deps.TTL
	if ttl <= 0 {
		ttl = DefaultPendingTTL
	}
	return &Controller{
		client:   deps.Client,
		mapper:   mapper,
		store:    deps.Store,
		resolver: deps.Resolver,
		ttl:      ttl,
	}, nil
}

// ProviderID devuelve el ID del provider que maneja este controller.
func (c *Controller) ProviderID() string { return c.client.Provider().ID }

// Initiate pide credenciales temporales, guarda la autorización pendiente en
// la sesión y devuelve la URL a la que hay que redirigir al usuario.
// Si la sesión ya tenía una autorización pendiente, se reemplaza.
func (c *Controller) Initiate(ctx context.Context, sessionID string) (string, error) {
	pid := c.ProviderID()
	log := logger.From(ctx).With(
		logger.Component("social.oauth1"),
		logger.Op("Initiate"),
		logger.Provider(pid),
		logger.SessionID(sessionID),
	)

	if sessionID == "" {
		return "", ErrMissingSession
	}

	tmp, err := c.client.TemporaryCredentials(ctx, "")
	if err != nil {
		c.count(outcomeInitiateFailed)
		log.Warn("temporary credentials request failed", logger.Err(err))
		return "", err
	}
	if !tmp.CallbackConfirmed {
		log.Debug("provider did not confirm callback")
	}

	redirect, err := c.client.AuthorizationURL(tmp.Token)
	if err != nil {
		c.count(outcomeInitiateFailed)
		return "", err
	}

	if _, err := c.store.Get(ctx, sessionID, SessionSlot); err == nil {
		log.Warn("replacing pending authorization for session")
	}

	raw, err := json.Marshal(PendingAuthorization{
		Provider:      pid,
		RequestToken:  tmp.Token,
		RequestSecret: tmp.Secret,
	})
	if err != nil {
		return "", err
	}
	if err := c.store.Set(ctx, sessionID, SessionSlot, raw, c.ttl); err != nil {
		c.count(outcomeInitiateFailed)
		log.Error("failed to store pending authorization", logger.Err(err))
		return "", fmt.Errorf("social: store pending authorization: %w", err)
	}

	c.count(outcomeInitiated)
	log.Info("authorization initiated", logger.State("pending"))
	return redirect, nil
}

// Resume completa el flujo con los parámetros del callback. La autorización
// pendiente se consume antes de cualquier otra cosa, salga bien o mal, así que
// un segundo Resume con el mismo token siempre falla con ErrSessionMismatch.
func (c *Controller) Resume(ctx context.Context, sessionID string, params CallbackParams) (*Result, error) {
	pid := c.ProviderID()
	log := logger.From(ctx).With(
		logger.Component("social.oauth1"),
		logger.Op("Resume"),
		logger.Provider(pid),
		logger.SessionID(sessionID),
	)

	if sessionID == "" {
		c.count(outcomeSessionMismatch)
		return nil, ErrSessionMismatch
	}

	pending, err := c.take(ctx, sessionID)
	if err != nil {
		if errors.Is(err, ErrSessionMismatch) {
			c.count(outcomeSessionMismatch)
			log.Warn("no pending authorization for session", logger.State("failed"))
		} else {
			log.Error("session store failure", logger.Err(err))
		}
		return nil, err
	}

	if pending.Provider != pid || !callbackMatches(params, pending.RequestToken) {
		c.count(outcomeSessionMismatch)
		log.Warn("callback token does not match pending authorization", logger.State("failed"))
		return nil, ErrSessionMismatch
	}

	if params.Denied != "" {
		c.count(outcomeDenied)
		log.Info("resource owner denied authorization", logger.State("failed"))
		return nil, ErrAccessDenied
	}

	tc, err := c.client.TokenCredentials(ctx, pending.RequestToken, params.Verifier, pending.RequestSecret)
	if err != nil {
		c.count(outcomeExchangeFailed)
		log.Warn("token exchange failed", logger.Err(err), logger.State("failed"))
		return nil, &TokenExchangeFailed{Provider: pid, Err: err}
	}

	raw, err := c.client.UserInfo(ctx, *tc)
	if err != nil {
		c.count(outcomeProfileFailed)
		log.Warn("user info request failed", logger.Err(err), logger.State("failed"))
		return nil, err
	}
	prof := c.mapper.Map(pid, raw)

	user, info, err := c.resolver.Resolve(ctx, ResolveRequest{
		Provider:    pid,
		Credentials: *tc,
		Profile:     prof,
		Raw:         raw,
	})
	if err != nil {
		c.count(outcomeResolveFailed)
		log.Warn("user resolution failed", logger.Err(err), logger.State("failed"))
		return nil, &UserResolutionFailed{Provider: pid, Err: err}
	}
	if isNil(user) {
		c.count(outcomeRejected)
		log.Info("resolver rejected profile", logger.State("failed"))
		return nil, &ResolutionRejected{Provider: pid, Info: info}
	}

	c.count(outcomeAuthorized)
	log.Info("authorization completed", logger.State("authorized"))
	return &Result{
		Provider:    pid,
		User:        user,
		Info:        info,
		Profile:     prof,
		Credentials: *tc,
	}, nil
}

// callbackMatches: el callback tiene que nombrar el request token pendiente,
// en oauth_token o, si el usuario canceló, en denied.
func callbackMatches(p CallbackParams, requestToken string) bool {
	if p.Token != "" && p.Token == requestToken {
		return true
	}
	return p.Denied != "" && p.Denied == requestToken
}

// isNil también reconoce un puntero, map o slice nil guardado en un any.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

func (c *Controller) take(ctx context.Context, sessionID string) (*PendingAuthorization, error) {
	raw, err := c.store.Take(ctx, sessionID, SessionSlot)
	if errors.Is(err, session.ErrNotFound) {
		return nil, ErrSessionMismatch
	}
	if err != nil {
		return nil, fmt.Errorf("social: take pending authorization: %w", err)
	}
	var p PendingAuthorization
	if err := json.Unmarshal(raw, &p); err != nil || p.RequestToken == "" {
		return nil, ErrSessionMismatch
	}
	return &p, nil
}

func (c *Controller) count(outcome string) {
	metrics.FlowOutcomes.WithLabelValues(c.ProviderID(), outcome).Inc()
}
