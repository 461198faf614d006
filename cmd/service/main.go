package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dropDatabas3/hellojohn-connect/internal/config"
	"github.com/dropDatabas3/hellojohn-connect/internal/http/server"
	"github.com/dropDatabas3/hellojohn-connect/internal/observability/logger"
	"github.com/dropDatabas3/hellojohn-connect/internal/util"
)

func fileExists(p string) bool {
	st, err := os.Stat(p)
	return err == nil && !st.IsDir()
}

func main() {
	var (
		flagConfigPath = flag.String("config", "", "ruta a config.yaml (fallback: $CONFIG_PATH o configs/config.yaml)")
		flagEnvFile    = flag.String("env-file", ".env", "ruta a .env (si existe, se carga)")
		flagPrint      = flag.Bool("print-config", false, "imprime resumen de config y termina")
	)
	flag.Parse()

	if *flagEnvFile != "" && fileExists(*flagEnvFile) {
		if err := godotenv.Load(*flagEnvFile); err == nil {
			log.Printf("dotenv: cargado %s", *flagEnvFile)
		}
	}

	cfgPath := *flagConfigPath
	if cfgPath == "" {
		cfgPath = os.Getenv("CONFIG_PATH")
	}
	if cfgPath == "" {
		if fileExists("configs/config.yaml") {
			cfgPath = "configs/config.yaml"
		} else {
			cfgPath = "configs/config.example.yaml"
		}
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "hellojohn-connect",
	})
	defer func() { _ = logger.L().Sync() }()
	lg := logger.L()

	if *flagPrint {
		printConfigSummary(cfg)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	handler, cleanup, err := server.Build(logger.ToContext(ctx, lg), cfg, server.BuildDeps{})
	if err != nil {
		lg.Fatal("wiring failed", logger.Err(err))
	}
	defer func() {
		if err := cleanup(); err != nil {
			lg.Warn("cleanup", logger.Err(err))
		}
	}()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		lg.Info("listening", zap.String("addr", cfg.Server.Addr), zap.Int("providers", len(cfg.Providers)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		lg.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), config.Duration(cfg.Server.ShutdownTimeout))
		defer cancel()
		return srv.Shutdown(sctx)
	})

	if err := g.Wait(); err != nil {
		lg.Error("server stopped with error", logger.Err(err))
		return
	}
	lg.Info("bye")
}

// printConfigSummary muestra la config efectiva sin secretos.
func printConfigSummary(c *config.Config) {
	log.Printf("env=%s addr=%s public_url=%s", c.App.Env, c.Server.Addr, c.Server.PublicURL)
	log.Printf("session driver=%s ttl=%s cookie=%s secure=%v", c.Session.Driver, c.Session.TTL, c.Session.CookieName, c.Session.Secure)
	log.Printf("session sealed=%v", c.Session.SealKey != "")
	log.Printf("rate enabled=%v window=%s max=%d", c.Rate.Enabled, c.Rate.Window, c.Rate.MaxRequests)
	log.Printf("client_token public_key=%q jwks_file=%q jwks_url=%q", c.ClientToken.PublicKeyFile, c.ClientToken.JWKSFile, c.ClientToken.JWKSURL)
	for _, p := range c.Providers {
		log.Printf("provider id=%s method=%s consumer_key=%s callback=%s", p.ID, p.SignatureMethod, util.Mask(p.ConsumerKey), c.CallbackURL(p))
	}
}
