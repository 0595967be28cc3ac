package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/nexwaste/nexwaste-backend/api/routes"
	"github.com/nexwaste/nexwaste-backend/internal/catalog"
	"github.com/nexwaste/nexwaste-backend/internal/geocode"
	"github.com/nexwaste/nexwaste-backend/internal/identity"
	"github.com/nexwaste/nexwaste-backend/internal/pickups"
	"github.com/nexwaste/nexwaste-backend/internal/profiles"
	"github.com/nexwaste/nexwaste-backend/pkg/auth/session"
	"github.com/nexwaste/nexwaste-backend/pkg/config"
	"github.com/nexwaste/nexwaste-backend/pkg/docstore"
	"github.com/nexwaste/nexwaste-backend/pkg/docstore/gormstore"
	"github.com/nexwaste/nexwaste-backend/pkg/docstore/redisfeed"
	"github.com/nexwaste/nexwaste-backend/pkg/logger"
	"github.com/nexwaste/nexwaste-backend/pkg/metrics"
	"github.com/nexwaste/nexwaste-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx := context.Background()

	conn, err := gormstore.Open(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "failed to open database", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap redis", err)
		os.Exit(1)
	}

	feed := docstore.NewFeed()
	store := gormstore.New(conn, feed, logg)
	if cfg.FeatureFlags.AutoMigrate {
		if err := store.AutoMigrate(ctx); err != nil {
			logg.Error(ctx, "failed to migrate documents table", err)
			os.Exit(1)
		}
	}

	bridge, err := redisfeed.Start(ctx, redisClient, feed, logg)
	if err != nil {
		logg.Error(ctx, "failed to start change feed bridge", err)
		os.Exit(1)
	}
	store.WithNotifier(bridge)

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(ctx, "failed to create session manager", err)
		os.Exit(1)
	}

	cat := catalog.Default()
	provider := identity.NewLocalProvider(store, sessionManager, cfg.JWT, cfg.Password, logg)
	profileSvc := profiles.NewService(store, logg)
	pickupSvc := pickups.NewService(pickups.NewRepository(store), cat, logg)
	geocoder := geocode.NewClient(cfg.Geocode)

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Redis:       redisClient,
		Sessions:    sessionManager,
		Provider:    provider,
		Profiles:    profileSvc,
		Pickups:     pickupSvc,
		Catalog:     cat,
		Geocoder:    geocoder,
		Metrics:     httpMetrics,
		Registry:    registry,
		StorePinger: store,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	startCtx := logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(startCtx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(startCtx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(startCtx, "signal", sig.String()), "shutting down")

		shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()

		var closeErr error
		closeErr = multierr.Append(closeErr, server.Shutdown(shutdownCtx))
		bridge.Close()
		closeErr = multierr.Append(closeErr, redisClient.Close())
		closeErr = multierr.Append(closeErr, gormstore.Close(conn))
		if closeErr != nil {
			logg.Error(startCtx, "shutdown finished with errors", closeErr)
			os.Exit(1)
		}
		logg.Info(startCtx, "shutdown complete")
	}
}
