package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dropDatabas3/hellojohn-connect/internal/cache"
	"github.com/dropDatabas3/hellojohn-connect/internal/config"
	"github.com/dropDatabas3/hellojohn-connect/internal/http/handlers"
	mw "github.com/dropDatabas3/hellojohn-connect/internal/http/middlewares"
	jwtx "github.com/dropDatabas3/hellojohn-connect/internal/jwt"
	"github.com/dropDatabas3/hellojohn-connect/internal/metrics"
	"github.com/dropDatabas3/hellojohn-connect/internal/oauth1"
	"github.com/dropDatabas3/hellojohn-connect/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-connect/internal/profile"
	"github.com/dropDatabas3/hellojohn-connect/internal/rate"
	"github.com/dropDatabas3/hellojohn-connect/internal/security/secretbox"
	"github.com/dropDatabas3/hellojohn-connect/internal/session"
	"github.com/dropDatabas3/hellojohn-connect/internal/social"
	"github.com/dropDatabas3/hellojohn-connect/internal/util"
)

// BuildDeps permite inyectar el Resolver (cuentas locales) y el HTTP client
// de los providers. Ambos opcionales.
type BuildDeps struct {
	Resolver   social.Resolver
	HTTPClient *http.Client
}

// Build arma el handler completo a partir de la config. El cleanup devuelto
// cierra las conexiones (redis, postgres).
func Build(ctx context.Context, cfg *config.Config, deps BuildDeps) (http.Handler, func() error, error) {
	log := logger.From(ctx).With(logger.Component("server.wiring"))

	var closers []func() error
	cleanup := func() error {
		var errs []error
		for i := len(closers) - 1; i >= 0; i-- {
			errs = append(errs, closers[i]())
		}
		return errors.Join(errs...)
	}
	fail := func(err error) (http.Handler, func() error, error) {
		_ = cleanup()
		return nil, nil, err
	}

	// 1. Session store
	var (
		store   session.Store
		ready   []handlers.ReadyCheck
		limiter rate.Limiter
	)
	ttl := config.Duration(cfg.Session.TTL)
	window := config.Duration(cfg.Rate.Window)

	switch cfg.Session.Driver {
	case "redis":
		rc, err := cache.NewRedis(ctx, cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
		if err != nil {
			return fail(fmt.Errorf("redis: %w", err))
		}
		closers = append(closers, rc.Close)
		store = session.NewCacheStore(rc)
		ready = append(ready, handlers.ReadyCheck{Name: "redis", Check: rc.Ping})
		if cfg.Rate.Enabled {
			limiter = rate.NewRedisLimiter(rc.Redis(), cfg.Redis.Prefix+":rl:", cfg.Rate.MaxRequests, window)
		}
	case "postgres":
		pg, err := session.OpenPGStore(ctx, cfg.Postgres.DSN)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() error { pg.Close(); return nil })
		store = pg
		go pg.RunJanitor(ctx, max(ttl, time.Minute))
		ready = append(ready, handlers.ReadyCheck{Name: "postgres", Check: pg.Ping})
	default:
		mc := cache.NewMemory("", ttl)
		closers = append(closers, mc.Close)
		store = session.NewCacheStore(mc)
	}
	if cfg.Session.SealKey != "" {
		key, err := secretbox.ParseKey(cfg.Session.SealKey)
		if err != nil {
			return fail(err)
		}
		box, err := secretbox.New(key, "hellojohn-connect/session")
		if err != nil {
			return fail(err)
		}
		store = session.NewSealedStore(store, box)
	}
	if cfg.Rate.Enabled && limiter == nil {
		limiter = rate.NewMemoryLimiter(cfg.Rate.MaxRequests, window)
	}
	log.Info("session store ready",
		logger.String("driver", cfg.Session.Driver),
		logger.Bool("sealed", cfg.Session.SealKey != ""),
	)

	// 2. Providers
	resolver := deps.Resolver
	if resolver == nil {
		resolver = social.ProfileResolver()
	}
	httpClient := deps.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Duration(cfg.HTTPClient.Timeout)}
	}

	registry := social.NewRegistry()
	for _, pc := range cfg.Providers {
		prov, cred, err := pc.Build(cfg.CallbackURL(pc))
		if err != nil {
			return fail(err)
		}
		mapper, err := profile.NewMapper(prov.Mapping)
		if err != nil {
			return fail(fmt.Errorf("provider %s: %w", prov.ID, err))
		}
		ctrl, err := social.NewController(social.ControllerDeps{
			Client: oauth1.NewClient(prov, cred, oauth1.ClientDeps{
				HTTP:      httpClient,
				UserAgent: cfg.HTTPClient.UserAgent,
			}),
			Mapper:   mapper,
			Store:    store,
			Resolver: resolver,
			TTL:      ttl,
		})
		if err != nil {
			return fail(err)
		}
		if err := registry.Register(ctrl); err != nil {
			return fail(err)
		}
		log.Info("provider registered",
			logger.Provider(prov.ID),
			logger.String("signature_method", string(prov.SignatureMethod)),
			logger.String("consumer_key", util.Mask(cred.ConsumerKey)),
			logger.Count(len(mapper.Targets())),
		)
	}

	// 3. Client token gate
	var verifier mw.TokenVerifier
	ct := cfg.ClientToken
	if ct.PublicKeyFile != "" || ct.JWKSFile != "" || ct.JWKSURL != "" {
		v, err := jwtx.NewVerifierFromFiles(ctx, ct.PublicKeyFile, ct.JWKSFile, ct.JWKSURL, ct.Algs)
		if err != nil {
			return fail(err)
		}
		verifier = v
		log.Info("client token verifier ready", logger.Any("algs", v.Algs()))
	} else {
		log.Warn("no client token key source configured; /v1/client routes disabled")
	}

	// 4. Métricas
	if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
		return fail(err)
	}

	h := NewRouter(RouterDeps{
		Registry: registry,
		Verifier: verifier,
		Limiter:  limiter,
		Cookie: mw.SessionCookieConfig{
			Name:   cfg.Session.CookieName,
			Secure: cfg.Session.Secure || cfg.IsProd(),
		},
		Ready:   ready,
		Metrics: promhttp.Handler(),
	})
	return h, cleanup, nil
}
