package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/megano/shop-backend/api/routes"
	authsvc "github.com/megano/shop-backend/internal/auth"
	basketsvc "github.com/megano/shop-backend/internal/basket"
	"github.com/megano/shop-backend/internal/catalog"
	ordersvc "github.com/megano/shop-backend/internal/orders"
	profilesvc "github.com/megano/shop-backend/internal/profile"
	reviewsvc "github.com/megano/shop-backend/internal/reviews"
	"github.com/megano/shop-backend/pkg/auth/session"
	"github.com/megano/shop-backend/pkg/config"
	"github.com/megano/shop-backend/pkg/db"
	"github.com/megano/shop-backend/pkg/logger"
	"github.com/megano/shop-backend/pkg/metrics"
	"github.com/megano/shop-backend/pkg/migrate"
	"github.com/megano/shop-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	gdb := dbClient.DB()

	authService, err := authsvc.NewService(authsvc.NewRepository(gdb), dbClient, sessionManager, cfg.JWT, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(catalog.NewRepository(gdb))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	reviewsService, err := reviewsvc.NewService(reviewsvc.NewRepository(gdb), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create reviews service", err)
		os.Exit(1)
	}
	basketService, err := basketsvc.NewService(basketsvc.NewRepository(gdb), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create basket service", err)
		os.Exit(1)
	}
	ordersService, err := ordersvc.NewService(ordersvc.NewRepository(gdb), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	profileService, err := profilesvc.NewService(profilesvc.NewRepository(gdb), cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create profile service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	router := routes.NewRouter(routes.Deps{
		Config:         cfg,
		Logger:         logg,
		Redis:          redisClient,
		Sessions:       sessionManager,
		HTTPMetrics:    httpMetrics,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		DBPinger:       dbClient,
		RedisPinger:    redisClient,
		Auth:           authService,
		Catalog:        catalogService,
		Reviews:        reviewsService,
		Basket:         basketService,
		Orders:         ordersService,
		Profile:        profileService,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down api server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
			os.Exit(1)
		}
	}
}
