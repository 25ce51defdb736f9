// Package app wires the uptime server runtime: config, logging,
// metrics, the record store, and the HTTP resource handlers.
//
// It is intentionally small and deterministic to keep behavior
// predictable.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"uptime/cmd/identity"
	"uptime/cmd/internal/api"
	"uptime/cmd/internal/auth/token"
	"uptime/cmd/internal/storage"
)

// App is the server runtime: it owns the HTTP wiring and the store.
type App struct {
	cfg Config
	log Logger

	metrics *Metrics
	store   *storage.FileStore
	tokens  *token.Authority
	api     *api.Handler
}

// New constructs a fully wired App instance from config and logger.
func New(cfg Config, log Logger) (*App, error) {
	if log == nil {
		log = NewLogger(cfg.LogLevel, cfg.LogFormat)
	}

	metrics := NewMetrics()

	store, err := storage.NewFileStore(cfg.DataDir, storage.WithObserver(metrics.ObserveStoreOp))
	if err != nil {
		return nil, err
	}

	hasher, err := identity.NewHasher(cfg.DigestKey)
	if err != nil {
		return nil, err
	}

	tokenCfg, err := token.LoadConfigFromEnv()
	if err != nil {
		return nil, err
	}
	tokens, err := token.NewAuthority(log, tokenCfg, store)
	if err != nil {
		return nil, err
	}

	apiHandler, err := api.NewHandler(log, api.Config{
		MaxChecks:    cfg.MaxChecks,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}, store, tokens, hasher)
	if err != nil {
		return nil, err
	}

	return &App{
		cfg:     cfg,
		log:     log,
		metrics: metrics,
		store:   store,
		tokens:  tokens,
		api:     apiHandler,
	}, nil
}

// Run starts the HTTP server and blocks until context cancellation or
// fatal server error.
func (a *App) Run(ctx context.Context) error {
	mux := http.NewServeMux()
	registerHTTP(mux, a.metrics, a.api)

	handler := WithRequestLogging(WithMetrics(mux, a.metrics), a.log)

	srv := &http.Server{
		Addr:              a.cfg.HTTPAddr,
		Handler:           handler,
		ReadHeaderTimeout: nonZeroDuration(a.cfg.ReadHeaderTimeout, 5*time.Second),
		ReadTimeout:       nonZeroDuration(a.cfg.ReadTimeout, 15*time.Second),
		WriteTimeout:      nonZeroDuration(a.cfg.WriteTimeout, 15*time.Second),
		IdleTimeout:       nonZeroDuration(a.cfg.IdleTimeout, 60*time.Second),
		MaxHeaderBytes:    nonZeroInt(a.cfg.MaxHeaderBytes, 1<<20),
	}

	a.log.Info("server.start",
		"env", string(a.cfg.Env),
		"addr", a.cfg.HTTPAddr,
		"data_dir", a.store.Dir(),
	)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		a.log.Info("server.stop", "reason", "context_done")
	case err := <-errCh:
		a.log.Error("server.fail", "err", err)
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("server.shutdown.fail", "err", err)
		return err
	}

	a.log.Info("server.stopped")
	return nil
}

func nonZeroDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}

func nonZeroInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
