package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/grocery-service/internal/api/http"
	"github.com/spec-kit/grocery-service/internal/api/http/handlers"
	"github.com/spec-kit/grocery-service/internal/auth"
	"github.com/spec-kit/grocery-service/internal/config"
	"github.com/spec-kit/grocery-service/internal/events"
	"github.com/spec-kit/grocery-service/internal/observability"
	"github.com/spec-kit/grocery-service/internal/persistence"
	"github.com/spec-kit/grocery-service/internal/repository"
	"github.com/spec-kit/grocery-service/internal/service"
	"github.com/spec-kit/grocery-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	pool := pg.PoolHandle()
	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pool, logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	customerRepo := repository.NewCustomerRepository(pool)
	staffRepo := repository.NewStaffRepository(pool)
	staffRoleRepo := repository.NewStaffRoleRepository(pool)
	productRepo := repository.NewProductRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	addressRepo := repository.NewAddressRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	lineRepo := repository.NewOrderLineRepository(pool)
	historyRepo := repository.NewOrderHistoryRepository(pool)
	resetRepo := repository.NewPasswordResetRepository(pool)

	var (
		sessions     auth.SessionStore
		guard        service.CheckoutGuard
		redisChecker handlers.Pinger
	)
	if client := redis.Handle(); client != nil {
		sessions = auth.NewRedisSessionStore(client)
		guard = service.NewRedisCheckoutGuard(client)
		redisChecker = redis
	} else {
		sessions = auth.NewMemorySessionStore()
		guard = service.NewMemoryCheckoutGuard()
	}

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	var (
		publisher *events.KafkaPublisher
		forwarder *worker.EventForwarder
	)
	if cfg.Kafka.Enabled() {
		publisher = events.NewKafkaPublisher(events.NewKafkaWriter(cfg.Kafka), logger)
		forwarder = worker.NewEventForwarder(publisher, cfg.Kafka.ForwardBuffer, 0, logger, metrics)
	}
	notifications := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(ctx, dispatcher, notifications, forwarder)

	resolver := service.NewIdentityResolver(customerRepo, staffRepo, logger)
	tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		CustomerRepo: customerRepo,
		StaffRepo:    staffRepo,
		Resolver:     resolver,
		Tokens:       tokens,
		Sessions:     sessions,
		ResetRepo:    resetRepo,
		Dispatcher:   dispatcher,
		Logger:       logger,
	})
	orderService := service.NewOrderService(cfg.Checkout, service.OrderDependencies{
		OrderRepo:   orderRepo,
		LineRepo:    lineRepo,
		HistoryRepo: historyRepo,
		ProductRepo: productRepo,
		AddressRepo: addressRepo,
		Dispatcher:  dispatcher,
		Guard:       guard,
		Metrics:     metrics,
		Logger:      logger,
	})
	assignmentService := service.NewAssignmentService(service.AssignmentDependencies{
		OrderRepo:  orderRepo,
		StaffRepo:  staffRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	staffService := service.NewStaffService(cfg.Auth, service.StaffDependencies{
		CustomerRepo:  customerRepo,
		StaffRepo:     staffRepo,
		StaffRoleRepo: staffRoleRepo,
	})
	catalogService := service.NewCatalogService(service.CatalogDependencies{
		ProductRepo:  productRepo,
		CategoryRepo: categoryRepo,
	})
	addressService := service.NewAddressService(addressRepo)

	runStartupTasks(ctx, pg.Available(), []startupTask{
		{name: "legacy_notes_backfill", run: service.NewNotesBackfill(orderRepo, logger).Run},
		{name: "staff_role_seed", run: staffService.SeedRoles},
	}, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  cfg.App.RequestTimeout(),
		WriteTimeout: cfg.App.RequestTimeout(),
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redisChecker, metrics),
		Auth:           handlers.NewAuthHandler(authService, cfg.Auth.ExposeResetToken && !cfg.App.Production()),
		Catalog:        handlers.NewCatalogHandler(catalogService),
		Orders:         handlers.NewOrdersHandler(orderService, assignmentService),
		Staff:          handlers.NewStaffHandler(staffService),
		Addresses:      handlers.NewAddressesHandler(addressService),
		AuthMiddleware: auth.NewAuthMiddleware(tokens, sessions, resolver),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
	if forwarder != nil {
		forwarder.Stop()
	}
	if err := publisher.Close(); err != nil {
		logger.Warn("kafka writer close", zap.Error(err))
	}
}

// startupTask is a one-off database job run before the server starts.
type startupTask struct {
	name string
	run  func(context.Context) (int, error)
}

// runStartupTasks runs each task in order. Failures are logged and do not
// stop the server; without a database every task is skipped.
func runStartupTasks(ctx context.Context, databaseReady bool, tasks []startupTask, logger *zap.Logger) {
	if !databaseReady {
		names := make([]string, 0, len(tasks))
		for _, task := range tasks {
			names = append(names, task.name)
		}
		logger.Warn("postgres unavailable; skipping startup tasks", zap.Strings("tasks", names))
		return
	}
	for _, task := range tasks {
		affected, err := task.run(ctx)
		if err != nil {
			logger.Warn("startup task failed", zap.String("task", task.name), zap.Error(err))
			continue
		}
		if affected > 0 {
			logger.Info("startup task applied", zap.String("task", task.name), zap.Int("rows", affected))
		}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
