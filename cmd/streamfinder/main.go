package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	sqliteadapter "github.com/ericfisherdev/streamfinder/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/streamfinder/internal/adapter/driven/stremio"
	"github.com/ericfisherdev/streamfinder/internal/adapter/driven/tmdb"
	"github.com/ericfisherdev/streamfinder/internal/adapter/driven/webstreamr"
	httphandler "github.com/ericfisherdev/streamfinder/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/streamfinder/internal/adapter/driving/web"
	"github.com/ericfisherdev/streamfinder/internal/application"
	"github.com/ericfisherdev/streamfinder/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"addon_url", cfg.AddonURL,
		"preferred_provider", cfg.PreferredProvider,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire driven adapters.
	sessionStore := sqliteadapter.NewSessionRepo(db)
	stremioClient := stremio.NewClient(cfg.StremioAPIURL)
	streamSource := webstreamr.NewClient(cfg.AddonURL)

	var metadata httphandler.MetadataClient
	if cfg.HasTMDBKey() {
		metadata = tmdb.NewClient(cfg.TMDBAPIKey)
		slog.Info("tmdb client created")
	} else {
		slog.Info("no tmdb api key configured, metadata search disabled")
	}

	// 6. Create services.
	sessionSvc := application.NewSessionService(sessionStore, stremioClient, slog.Default())
	streamSvc := application.NewStreamService(streamSource, cfg.PreferredProvider)

	// 7. Create HTTP handler and register API routes.
	apiHandler := httphandler.NewHandler(sessionSvc, streamSvc, stremioClient, metadata, cfg.CookieMaxAge, slog.Default())
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, apiHandler)

	// 8. Create web handler and register page routes.
	webHandler := webhandler.NewHandler(sessionSvc, cfg.StremioWebURL, slog.Default())
	webhandler.RegisterRoutes(mux, webHandler)

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, slog.Default())

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
		}
	}()

	slog.Info("streamfinder started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 10. Graceful shutdown with 10s timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
