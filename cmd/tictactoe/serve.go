package main

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

	"ctchen222/tictactoe-history/internal/api/service"
	"ctchen222/tictactoe-history/internal/config"
	"ctchen222/tictactoe-history/internal/events"
	"ctchen222/tictactoe-history/internal/hub"
	"ctchen222/tictactoe-history/internal/logger"
	"ctchen222/tictactoe-history/internal/server"
	"ctchen222/tictactoe-history/internal/session"
	"ctchen222/tictactoe-history/internal/telemetry"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const sweepInterval = time.Minute

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.Init(cfg.LogLevel, cfg.Telemetry.Enabled)
	if cfg.LogLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("error shutting down telemetry", "error", err)
		}
	}()

	metrics, err := telemetry.NewMetrics(nil)
	if err != nil {
		return err
	}

	secret := []byte(cfg.Session.Secret)
	if len(secret) == 0 {
		if secret, err = session.RandomSecret(32); err != nil {
			return err
		}
		slog.Warn("no session secret configured, using a random one; sessions will not survive a restart")
	}
	tokens := session.NewTokens(secret, cfg.Session.TTL)

	h := hub.NewHub()
	go h.Run(ctx)

	store, broadcaster, closeBackend, err := newBackend(ctx, cfg, h)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeBackend(); err != nil {
			slog.Error("error closing session backend", "error", err)
		}
	}()

	games := service.NewGameService(store, broadcaster, metrics)
	srv := server.NewServer(h, games, tokens, server.Options{
		ServiceName:  cfg.Telemetry.ServiceName,
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.SecureCookie,
	})

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: srv.Engine(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server started", "addr", cfg.HTTP.Addr, "session.backend", cfg.Session.Backend)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("server exiting")
	return nil
}

// newBackend builds the configured session store and the broadcaster that
// reaches every tab of a session. With redis, renders are relayed to the other
// instances sharing it. The returned func releases the backend.
func newBackend(ctx context.Context, cfg *config.Config, h *hub.Hub) (session.Store, service.Broadcaster, func() error, error) {
	switch cfg.Session.Backend {
	case config.BackendRedis:
		rdb, err := session.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			return nil, nil, nil, err
		}
		relay := events.NewRelay(rdb, h)
		if err := relay.Start(ctx); err != nil {
			rdb.Close()
			return nil, nil, nil, err
		}
		return session.NewRedisStore(rdb, cfg.Session.TTL), relay, rdb.Close, nil
	default:
		store := session.NewMemoryStore(cfg.Session.TTL)
		go store.RunSweeper(ctx, sweepInterval)
		return store, h, func() error { return nil }, nil
	}
}
