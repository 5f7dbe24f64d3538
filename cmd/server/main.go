package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vidwarden/vidwarden/internal/audit"
	"github.com/vidwarden/vidwarden/internal/auth"
	"github.com/vidwarden/vidwarden/internal/config"
	"github.com/vidwarden/vidwarden/internal/oauth"
	"github.com/vidwarden/vidwarden/internal/server"
	"github.com/vidwarden/vidwarden/internal/storage/boltdb"
	"github.com/vidwarden/vidwarden/internal/storage/sqlite"
	"github.com/vidwarden/vidwarden/internal/youtube"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "vidwarden: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.KeystorePassphrase == "" {
		return fmt.Errorf("VIDWARDEN_KEYSTORE_PASSPHRASE must be set")
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("starting vidwarden",
		"version", Version, "build_date", BuildDate, "git_commit", GitCommit)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Credential store (encrypted, bbolt)
	boltStorage, err := boltdb.New(ctx, cfg.BoltPath)
	if err != nil {
		return fmt.Errorf("failed to open credential database: %w", err)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close credential database", "error", err)
		}
	}()

	// Audit log (sqlite)
	sqliteStorage, err := sqlite.New(ctx, cfg.SQLitePath)
	if err != nil {
		return fmt.Errorf("failed to open audit database: %w", err)
	}
	defer func() {
		if err := sqliteStorage.Close(); err != nil {
			logger.Error("failed to close audit database", "error", err)
		}
	}()

	oauthClient := oauth.NewClient(cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI)

	credStore := auth.NewStore(boltStorage, oauthClient, cfg.KeystorePassphrase, logger)
	if err := credStore.Load(ctx); err != nil {
		// Not fatal: the server can run unauthenticated until the auth
		// tool is used, and reads may work via API key.
		logger.Warn("no operator credential loaded", "error", err)
	}

	coordinator := auth.NewCoordinator(credStore, cfg.TokenSkew, cfg.RefreshTimeout, logger)

	recorder := audit.NewRecorder(sqliteStorage, logger)
	defer func() {
		if err := recorder.Close(); err != nil {
			logger.Error("failed to drain audit recorder", "error", err)
		}
	}()

	ytClient := youtube.NewClient()
	gateway := youtube.NewService(ytClient, coordinator, recorder, cfg.APIKey, cfg.CallTimeout, logger)

	handler := server.Router(server.Deps{
		Logger:  logger,
		Gateway: gateway,
		Events:  recorder,
		Creds:   credStore,
		Version: Version,
	})
	srv := server.New(cfg.ListenAddr, handler, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func printVersion() {
	fmt.Printf("Vidwarden Server\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
