package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkordes/tagbot/internal/bot"
	"github.com/pkordes/tagbot/internal/command"
	"github.com/pkordes/tagbot/internal/config"
	"github.com/pkordes/tagbot/internal/database"
	"github.com/pkordes/tagbot/internal/discord"
	"github.com/pkordes/tagbot/internal/handler"
	"github.com/pkordes/tagbot/internal/metrics"
	"github.com/pkordes/tagbot/internal/service"
)

func init() {
	rootCmd.AddCommand(runCmd)
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Connect to Discord and serve commands until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runBot,
}

func runBot(cmd *cobra.Command, _ []string) error {
	// --- Config -----------------------------------------------------------
	// Validated before anything is opened so a missing token fails fast.
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// --- Logger -----------------------------------------------------------
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database ---------------------------------------------------------
	db, err := database.Open(ctx, database.Options{Path: cfg.Database.Path, URL: cfg.Database.URL})
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()
	results, err := db.Migrate(ctx)
	if err != nil {
		return err
	}
	logger.Info("database ready", "dialect", db.Dialect(), "migrations_applied", len(results))

	// --- Commands ---------------------------------------------------------
	tagService := service.NewTagService(db.Tags())

	registry := metrics.NewRegistry()
	router := command.NewRouter(cfg.Bot.Prefix, logger,
		command.WithObserver(metrics.NewCommands(registry)))
	if _, err := bot.Register(router, tagService); err != nil {
		return fmt.Errorf("register commands: %w", err)
	}

	// --- HTTP Server ------------------------------------------------------
	var srv *http.Server
	serverErr := make(chan error, 1)
	if !cfg.HTTP.Disabled {
		// Explicit timeouts prevent slowloris and resource exhaustion attacks.
		srv = &http.Server{
			Addr: ":" + cfg.HTTP.Port,
			Handler: handler.NewRouter(handler.NewServer(tagService, db), handler.RouterOptions{
				Logger:      logger,
				CORSOrigins: cfg.HTTP.CORSOrigins,
				Metrics:     metrics.Handler(registry),
			}),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		}
		go func() {
			logger.Info("http server starting", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErr <- err
			}
		}()
	}

	// --- Gateway ----------------------------------------------------------
	gateway, err := discord.New(cfg.Bot.Token, router, logger)
	if err != nil {
		return err
	}
	if err := gateway.Open(); err != nil {
		shutdownHTTP(logger, srv)
		return err
	}
	logger.Info("bot running", "prefix", router.Prefix())

	// Wait for an OS signal or a fatal HTTP error, then give in-flight
	// requests up to 15 seconds to complete.
	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-serverErr:
		logger.Error("http server error", "error", runErr)
	}

	if err := gateway.Close(); err != nil {
		logger.Error("failed to close gateway", "error", err)
	}
	shutdownHTTP(logger, srv)
	logger.Info("bot stopped")
	return runErr
}

func shutdownHTTP(logger *slog.Logger, srv *http.Server) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("http shutdown error", "error", err)
	}
}

// newLogger returns a JSON logger at level, falling back to info when the
// level does not parse.
func newLogger(w io.Writer, level string) *slog.Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: logLevel}))
}

