package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"

	"github.com/bastabarriere/api/pkg/adminauth"
	"github.com/bastabarriere/api/pkg/env"
	"github.com/bastabarriere/api/pkg/geocoding"
	"github.com/bastabarriere/api/pkg/logger"
	"github.com/bastabarriere/api/pkg/reports"
	"github.com/bastabarriere/api/pkg/whttp"
)

const ServiceName = "server"

func init() {
	logger.InitGlobalSlog(ServiceName)
}

func main() {
	db, err := sql.Open("pgx", os.Getenv("DATABASE_URL"))
	if err != nil {
		panic(fmt.Errorf("unable to open db conn: %w", err))
	}

	defer func() {
		err = db.Close()
		if err != nil {
			slog.Error("error closing db connection", "error", err.Error())
		}
	}()

	if err := db.Ping(); err != nil {
		panic(fmt.Errorf("unable to ping database: %w", err))
	} else {
		slog.Info("connected to the database successfully")
	}

	jwtSecret, err := env.MustGet("JWT_SECRET")
	if err != nil {
		panic(err)
	}

	adminPassword, err := env.MustGet("ADMIN_PASSWORD")
	if err != nil {
		panic(err)
	}

	cfg := geocoding.FromEnv()

	s := &server{
		resolver: newResolver(cfg),
		reverse:  geocoding.NewOSMReverseGeocoder(),
		reports:  reports.NewPgRepository(db),
		admin:    adminauth.NewService(jwtSecret, adminPassword),
	}

	r := s.router(env.Get("LOG_LEVEL", "") == "debug")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	port := env.Get("PORT", "8080")

	srv := &http.Server{Addr: fmt.Sprintf(":%s", port), Handler: r}
	go func() {
		slog.Info(fmt.Sprintf("serving HTTP on :%s", port))

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server shutdown abruptly", "error", err.Error())
		} else {
			slog.Info("server shutdown gracefully")
		}

		stop()
	}()

	// Listen for OS interrupt
	<-ctx.Done()
	stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("server forced to shutdown", "error", err.Error())
	}

	slog.Info("server exited")
}

// newResolver builds the provider chain from whatever credentials are
// present. Vendors without credentials simply never enter the chain.
func newResolver(cfg geocoding.Config) *geocoding.Resolver {
	httpClient := whttp.NewLoggingClientWithTimeout(cfg.ProviderTimeout)

	var primary, secondary geocoding.Provider

	if cfg.GoogleAPIKey != "" {
		primary = geocoding.NewGoogleClient(cfg.GoogleAPIKey, cfg.CountryCode, cfg.Municipality, httpClient)
	} else {
		slog.Info("GOOGLE_MAPS_API_KEY not set, skipping google provider")
	}

	if cfg.MapboxToken != "" {
		secondary = geocoding.NewMapboxClient(cfg.MapboxToken, cfg.CountryCode, httpClient)
	} else {
		slog.Info("MAPBOX_TOKEN not set, skipping mapbox provider")
	}

	fallback := geocoding.NewNominatimClient(cfg, httpClient)

	return geocoding.NewResolver(cfg, primary, secondary, fallback)
}
