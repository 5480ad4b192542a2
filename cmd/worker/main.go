package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	catalogmemory "github.com/bookworks/bookstore-api/internal/domains/catalog/adapters/memory"
	ordermemory "github.com/bookworks/bookstore-api/internal/domains/orders/adapters/memory"
	orderpostgres "github.com/bookworks/bookstore-api/internal/domains/orders/adapters/persistence/postgres"
	orderapp "github.com/bookworks/bookstore-api/internal/domains/orders/application"
	orderports "github.com/bookworks/bookstore-api/internal/domains/orders/ports"
	orderworkflows "github.com/bookworks/bookstore-api/internal/durable/temporal/workflows/orders"
	"github.com/bookworks/bookstore-api/internal/platform/migrations"
	platformobservability "github.com/bookworks/bookstore-api/internal/platform/observability"
	platformpostgres "github.com/bookworks/bookstore-api/internal/platform/postgres"
	orderactivities "github.com/bookworks/bookstore-api/internal/platform/temporal/activities/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "bookstore-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	orderService, cleanupService := buildOrderService(ctx, logger)
	defer cleanupService()
	activities := orderactivities.NewActivities(orderService)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.OrderCreationTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.OrderCreationWorkflow, workflow.RegisterOptions{Name: orderworkflows.OrderCreationWorkflowName})
	w.RegisterActivityWithOptions(activities.CreateOrder, activity.RegisterOptions{Name: orderactivities.CreateOrderActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.OrderCreationTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

func buildOrderService(ctx context.Context, logger *slog.Logger) (orderports.Service, func()) {
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		logger.Warn("POSTGRES_DSN not set, worker falling back to in-memory order storage")
		catalogRepo := catalogmemory.NewRepository()
		service := orderapp.NewService(
			ordermemory.NewRepository(),
			ordermemory.NewLedger(catalogRepo),
			ordermemory.NewIdempotencyStore(),
			ordermemory.AllowAllEligibility{},
			orderapp.WithLogger(logger),
		)
		return service, func() {}
	}
	db, err := platformpostgres.Connect(ctx, dsn)
	if err != nil {
		logger.Error("worker failed to connect to postgres", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := migrations.Run(db); err != nil {
		logger.Error("worker failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("worker failed to unwrap postgres connection", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("worker order storage configured with postgres")
	service := orderapp.NewService(
		orderpostgres.NewRepository(db),
		orderpostgres.NewLedger(db),
		orderpostgres.NewIdempotencyStore(db),
		orderpostgres.NewEligibilityChecker(db),
		orderapp.WithLogger(logger),
	)
	return service, func() { _ = sqlDB.Close() }
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
