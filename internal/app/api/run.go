package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	cartcatalog "github.com/bookworks/bookstore-api/internal/domains/cart/adapters/catalog"
	carthttp "github.com/bookworks/bookstore-api/internal/domains/cart/adapters/http"
	cartmemory "github.com/bookworks/bookstore-api/internal/domains/cart/adapters/memory"
	cartpostgres "github.com/bookworks/bookstore-api/internal/domains/cart/adapters/persistence/postgres"
	cartredis "github.com/bookworks/bookstore-api/internal/domains/cart/adapters/redis"
	cartapp "github.com/bookworks/bookstore-api/internal/domains/cart/application"
	cartports "github.com/bookworks/bookstore-api/internal/domains/cart/ports"
	cataloghttp "github.com/bookworks/bookstore-api/internal/domains/catalog/adapters/http"
	catalogmemory "github.com/bookworks/bookstore-api/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/bookworks/bookstore-api/internal/domains/catalog/adapters/persistence/postgres"
	catalogapp "github.com/bookworks/bookstore-api/internal/domains/catalog/application"
	catalogports "github.com/bookworks/bookstore-api/internal/domains/catalog/ports"
	orderhttp "github.com/bookworks/bookstore-api/internal/domains/orders/adapters/http"
	ordermemory "github.com/bookworks/bookstore-api/internal/domains/orders/adapters/memory"
	ordermessaging "github.com/bookworks/bookstore-api/internal/domains/orders/adapters/messaging"
	orderobs "github.com/bookworks/bookstore-api/internal/domains/orders/adapters/observability"
	orderpostgres "github.com/bookworks/bookstore-api/internal/domains/orders/adapters/persistence/postgres"
	orderworkflows "github.com/bookworks/bookstore-api/internal/domains/orders/adapters/workflows"
	orderapp "github.com/bookworks/bookstore-api/internal/domains/orders/application"
	orderports "github.com/bookworks/bookstore-api/internal/domains/orders/ports"
	platformmessaging "github.com/bookworks/bookstore-api/internal/platform/messaging"
	"github.com/bookworks/bookstore-api/internal/platform/migrations"
	platformobservability "github.com/bookworks/bookstore-api/internal/platform/observability"
	platformpostgres "github.com/bookworks/bookstore-api/internal/platform/postgres"
)

// Run boots the bookstore HTTP API with observability, repositories,
// messaging, and workflows wired.
func Run(ctx context.Context) error {
	const serviceName = "bookstore-api"

	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	db, cleanupDB := connectPostgres(ctx, cfg, logger)
	defer cleanupDB()
	if db != nil {
		if err := migrations.Run(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	catalogRepo := buildCatalogRepository(db, logger)
	catalogService := catalogapp.NewService(catalogRepo)

	publisher, cleanupBroker := buildEventPublisher(cfg, logger)
	defer cleanupBroker()

	orderService := buildOrderService(db, catalogRepo, publisher, instruments)

	var workflowOrchestrator orderports.WorkflowOrchestrator = orderworkflows.NewInlineOrderWorkflows(orderService)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running order creation inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		workflowOrchestrator = orderworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	cartRepo, cleanupCart := buildCartRepository(ctx, cfg, db, logger)
	defer cleanupCart()
	cartService := cartapp.NewService(cartRepo, cartcatalog.NewAvailability(catalogRepo))

	handlers := APIHandlers{
		BookAPI:  cataloghttp.NewBookAPI(catalogService),
		OrderAPI: orderhttp.NewOrderAPI(orderService, workflowOrchestrator),
		CartAPI:  carthttp.NewCartAPI(cartService),
	}

	router := NewRouter(handlers, otelgin.Middleware(serviceName))
	addr := ":" + cfg.Port
	logger.Info("bookstore API listening", slog.String("addr", addr))
	if err := router.Run(addr); err != nil {
		logger.Error("bookstore API server exited", slog.String("addr", addr), slog.String("error", err.Error()))
		return err
	}
	return nil
}

func connectPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*gorm.DB, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, falling back to in-memory repositories")
		return nil, func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Warn("failed to unwrap postgres connection, falling back to in-memory repositories", slog.String("error", err.Error()))
		return nil, func() {}
	}
	logger.Info("postgres connection established")
	return db, func() { _ = sqlDB.Close() }
}

func buildCatalogRepository(db *gorm.DB, logger *slog.Logger) catalogports.Repository {
	if db != nil {
		logger.Info("catalog repository configured with postgres")
		return catalogpostgres.NewRepository(db)
	}
	return catalogmemory.NewRepository()
}

// buildOrderService assembles the order workflow over the same storage
// as the catalog so reservations and order rows commit together.
func buildOrderService(db *gorm.DB, catalogRepo catalogports.Repository, publisher orderports.EventPublisher, instruments *platformobservability.Instruments) orderports.Service {
	var (
		repo        orderports.Repository
		ledger      orderports.InventoryLedger
		idempotency orderports.IdempotencyStore
		eligibility orderports.EligibilityChecker
	)
	if db != nil {
		repo = orderpostgres.NewRepository(db)
		ledger = orderpostgres.NewLedger(db)
		idempotency = orderpostgres.NewIdempotencyStore(db)
		eligibility = orderpostgres.NewEligibilityChecker(db)
	} else {
		repo = ordermemory.NewRepository()
		ledger = ordermemory.NewLedger(catalogRepo)
		idempotency = ordermemory.NewIdempotencyStore()
		eligibility = ordermemory.AllowAllEligibility{}
	}
	core := orderapp.NewService(repo, ledger, idempotency, eligibility,
		orderapp.WithEvents(publisher),
		orderapp.WithLogger(instruments.Logger),
	)
	return orderobs.New(core,
		orderobs.WithLogger(instruments.Logger),
		orderobs.WithTracer(instruments.Tracer("internal.orders.application")),
		orderobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
}

func buildEventPublisher(cfg Config, logger *slog.Logger) (orderports.EventPublisher, func()) {
	if cfg.AMQPURL == "" {
		logger.Warn("AMQP_URL not set, order events disabled")
		return ordermessaging.NoopPublisher{}, func() {}
	}
	broker, err := platformmessaging.Connect(cfg.AMQPURL, platformmessaging.WithLogger(logger))
	if err != nil {
		logger.Warn("failed to connect to rabbitmq, order events disabled", slog.String("error", err.Error()))
		return ordermessaging.NoopPublisher{}, func() {}
	}
	publisher, err := ordermessaging.NewPublisher(broker)
	if err != nil {
		logger.Warn("failed to declare order events queue, order events disabled", slog.String("error", err.Error()))
		_ = broker.Close()
		return ordermessaging.NoopPublisher{}, func() {}
	}
	logger.Info("order events configured with rabbitmq", slog.String("queue", ordermessaging.OrderEventsQueue))
	return publisher, func() { _ = broker.Close() }
}

func buildCartRepository(ctx context.Context, cfg Config, db *gorm.DB, logger *slog.Logger) (cartports.Repository, func()) {
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("failed to connect to redis, falling back for cart storage", slog.String("error", err.Error()))
			_ = redisClient.Close()
		} else {
			logger.Info("cart repository configured with redis")
			opts := []cartredis.Option{}
			if cfg.CartTTLHours > 0 {
				opts = append(opts, cartredis.WithTTL(time.Duration(cfg.CartTTLHours)*time.Hour))
			}
			return cartredis.NewRepository(redisClient, opts...), func() { _ = redisClient.Close() }
		}
	}
	if db != nil {
		logger.Info("cart repository configured with postgres")
		return cartpostgres.NewRepository(db), func() {}
	}
	logger.Warn("cart repository falling back to in-memory storage")
	return cartmemory.NewRepository(), func() {}
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	logger := workerlog.NewStructuredLogger(effectiveLogger(instruments))
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    logger,
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
