package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/canteenhub/canteen-backend/api/controllers"
	"github.com/canteenhub/canteen-backend/api/routes"
	"github.com/canteenhub/canteen-backend/internal/accounts"
	"github.com/canteenhub/canteen-backend/internal/dishes"
	"github.com/canteenhub/canteen-backend/internal/menus"
	"github.com/canteenhub/canteen-backend/internal/restaurants"
	"github.com/canteenhub/canteen-backend/internal/session"
	"github.com/canteenhub/canteen-backend/pkg/config"
	"github.com/canteenhub/canteen-backend/pkg/db"
	"github.com/canteenhub/canteen-backend/pkg/env"
	"github.com/canteenhub/canteen-backend/pkg/identity"
	"github.com/canteenhub/canteen-backend/pkg/logger"
	"github.com/canteenhub/canteen-backend/pkg/metrics"
	"github.com/canteenhub/canteen-backend/pkg/migrate"
	"github.com/canteenhub/canteen-backend/pkg/redis"
	"github.com/canteenhub/canteen-backend/pkg/storage/blob"
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

	identityClient, err := identity.NewClient(cfg.Identity, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create identity client", err)
		os.Exit(1)
	}

	blobClient, err := blob.NewClient(cfg.Blob, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create blob client", err)
		os.Exit(1)
	}

	accountsRepo := accounts.NewRepository(dbClient.DB())
	dishesRepo := dishes.NewRepository(dbClient.DB())
	restaurantsRepo := restaurants.NewRepository(dbClient.DB())
	menusRepo := menus.NewRepository(dbClient.DB())

	sessionService, err := session.NewService(accountsRepo, identityClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create session service", err)
		os.Exit(1)
	}

	accountsService, err := accounts.NewService(accountsRepo, restaurantsRepo, identityClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create accounts service", err)
		os.Exit(1)
	}

	dishesService, err := dishes.NewService(dishesRepo, accountsRepo, blobClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create dishes service", err)
		os.Exit(1)
	}

	restaurantsService, err := restaurants.NewService(restaurantsRepo, accountsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create restaurants service", err)
		os.Exit(1)
	}

	menusService, err := menus.NewService(menusRepo, accountsRepo, restaurantsRepo, dishesRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create menus service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	httpMetrics := metrics.NewHTTPMetrics(registry)

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			controllers.ReadinessDeps{
				DB:       dbClient,
				Redis:    redisClient,
				Identity: identityClient,
				Blob:     blobClient,
			},
			redisClient,
			httpMetrics,
			registry,
			routes.Services{
				Session:     sessionService,
				Accounts:    accountsService,
				Dishes:      dishesService,
				Restaurants: restaurantsService,
				Menus:       menusService,
			},
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
