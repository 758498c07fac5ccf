package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ducvu/wasteflow-backend/api/routes"
	"github.com/ducvu/wasteflow-backend/internal/depots"
	"github.com/ducvu/wasteflow-backend/internal/dispatch"
	"github.com/ducvu/wasteflow-backend/internal/notifications"
	"github.com/ducvu/wasteflow-backend/internal/orders"
	routesvc "github.com/ducvu/wasteflow-backend/internal/routes"
	"github.com/ducvu/wasteflow-backend/internal/solver"
	"github.com/ducvu/wasteflow-backend/internal/vehicles"
	"github.com/ducvu/wasteflow-backend/pkg/config"
	"github.com/ducvu/wasteflow-backend/pkg/db"
	"github.com/ducvu/wasteflow-backend/pkg/logger"
	"github.com/ducvu/wasteflow-backend/pkg/metrics"
	"github.com/ducvu/wasteflow-backend/pkg/migrate"
	"github.com/ducvu/wasteflow-backend/pkg/redis"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	ordersRepo := orders.NewRepository(dbClient.DB())
	vehiclesRepo := vehicles.NewRepository(dbClient.DB())
	depotsRepo := depots.NewRepository(dbClient.DB())
	routesRepo := routesvc.NewRepository(dbClient.DB())
	dispatchRepo := dispatch.NewRepository(dbClient.DB())
	notificationsRepo := notifications.NewRepository(dbClient.DB())

	notificationsService, err := notifications.NewService(notificationsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create notifications service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	vehiclesService, err := vehicles.NewService(vehiclesRepo, depotsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create vehicles service", err)
		os.Exit(1)
	}

	depotsService, err := depots.NewService(depotsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create depots service", err)
		os.Exit(1)
	}

	routesService, err := routesvc.NewService(dbClient, routesRepo, ordersRepo, vehiclesRepo, notificationsService, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create routes service", err)
		os.Exit(1)
	}

	solverClient, err := solver.NewClient(cfg.Solver,
		solver.WithMetrics(metrics.NewSolverMetrics(prometheus.DefaultRegisterer)))
	if err != nil {
		logg.Error(context.Background(), "failed to create solver client", err)
		os.Exit(1)
	}

	dispatchService, err := dispatch.NewService(
		cfg.Dispatch,
		dbClient,
		dispatchRepo,
		routesRepo,
		ordersRepo,
		vehiclesRepo,
		depotsRepo,
		solverClient,
		notificationsService,
		redisClient,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create dispatch service", err)
		os.Exit(1)
	}

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
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			ordersService,
			vehiclesService,
			depotsService,
			dispatchService,
			routesService,
			notificationsService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
