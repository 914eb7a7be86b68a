// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/octavio/octavio/internal/api"
	"github.com/octavio/octavio/internal/index"
	"github.com/octavio/octavio/internal/scheduler"
	"github.com/octavio/octavio/internal/sse"
	"github.com/octavio/octavio/internal/web"
)

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stdout, cfg.App.LogLevel)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("content_source", cfg.Content.Source),
		slog.String("profile", cfg.Content.MarkupProfile().String()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	env, err := openEnvironment(cfg, logger)
	if err != nil {
		return err
	}
	defer env.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	// Live reload needs an unauthenticated event stream.
	liveReload := cfg.Content.Watch && !cfg.Auth.AuthEnabled()
	pages, err := env.pages(app.now, liveReload)
	if err != nil {
		return err
	}

	httpServer := newHTTPServer(cfg.App.HTTP.Address(), newRouter(env, pages, broker), broker)

	var sched *scheduler.Scheduler
	if cfg.Content.Resync != "" {
		if sched, err = scheduler.New(cfg.Content.Resync, env.resync, logger); err != nil {
			return err
		}
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start file watcher with SSE callback.
	if cfg.Content.Watch {
		g.Go(func() error {
			return index.Watch(gCtx, env.db, env.store, cfg.Content.Path, logger, func(kind index.ChangeKind, path string) {
				env.reload()
				broker.PublishPostEvent(string(kind), path)
			})
		})
	}

	// Periodic resync.
	if sched != nil {
		g.Go(func() error {
			return sched.Run(gCtx)
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group context so the watcher and scheduler stop
// once the HTTP server has shut down.
var errShutdown = errors.New("shutdown")

// newHTTPServer builds the server. Event streams end as soon as Shutdown
// starts so that open pages do not hold it until its timeout.
func newHTTPServer(addr string, h http.Handler, broker *sse.Broker) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	srv.RegisterOnShutdown(broker.Close)
	return srv
}

func newRouter(env *environment, pages *web.Pages, broker *sse.Broker) http.Handler {
	cfg := env.cfg

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if _, err := env.svc.Posts(r.Context()); err != nil {
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ok")
	})

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(env.svc, api.RouterConfig{
		AuthEnabled: cfg.Auth.AuthEnabled(),
		Token:       cfg.Auth.Token,
		RPS:         cfg.RateLimit.RPS,
		Burst:       cfg.RateLimit.Burst,
		Events:      broker,
	}))

	// HTML site.
	web.NewHandler(pages, web.NewAssetHandler(cfg.Site.Assets)).Mount(r)

	return r
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = fmt.Fprintf(w, `{"status":%q}`, status)
}
