// Package main runs the Genesys deck checker REST API server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ramonehamilton/genesys-companion/internal/api"
	"github.com/ramonehamilton/genesys-companion/internal/app"
	"github.com/ramonehamilton/genesys-companion/internal/config"
	"github.com/ramonehamilton/genesys-companion/internal/logging"
	"github.com/ramonehamilton/genesys-companion/internal/version"
)

var (
	configPath = flag.String("config", config.Path(), "Configuration file")
	port       = flag.Int("port", 0, "API server port (overrides config)")
	dbPath     = flag.String("db-path", "", "Database path (overrides config)")
	pointsPath = flag.String("points", "", "Point list JSON (overrides config)")
	offline    = flag.Bool("offline", false, "Never contact the remote card database")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "apiserver: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env file is fine.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg, err := config.LoadFrom(*configPath)
	if err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	if *port != 0 {
		cfg.API.Port = *port
	}
	if *dbPath != "" {
		cfg.Storage.Path = *dbPath
	}
	if *pointsPath != "" {
		cfg.Genesys.PointsPath = *pointsPath
	}
	if *offline {
		cfg.Cards.Offline = true
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Debug:  cfg.App.DebugMode,
	})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := application.Close(); err != nil {
			logger.Warn("Error closing storage", zap.Error(err))
		}
	}()

	server := api.NewServer(&api.Config{
		Port:           cfg.API.Port,
		AllowedOrigins: cfg.API.AllowedOrigins,
		Logger:         logger,
		Metrics:        application.Metrics(),
	}, &api.Facades{
		Deck:   application.Deck,
		Points: application.Points,
		Card:   application.Cards,
	})

	if w := application.Watcher(); w != nil {
		w.OnReload(server.NewPointsObserver().OnReload)
	}

	if err := server.Start(); err != nil {
		return err
	}

	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		if err := application.Watch(ctx); err != nil {
			logger.Error("Point list watcher stopped", zap.Error(err))
		}
	}()

	logger.Info("API server running",
		zap.String("version", version.GetVersion()),
		zap.Int("port", cfg.API.Port),
		zap.String("points", cfg.Genesys.PointsPath),
		zap.String("database", cfg.Storage.Path),
		zap.Bool("offline", application.Offline()))

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("Error during shutdown", zap.Error(err))
	}
	<-watchDone
	return nil
}
