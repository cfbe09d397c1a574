package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httpapi "github.com/destekhq/ticket-core/internal/api/http"
	"github.com/destekhq/ticket-core/internal/api/http/handlers"
	"github.com/destekhq/ticket-core/internal/config"
	"github.com/destekhq/ticket-core/internal/events"
	"github.com/destekhq/ticket-core/internal/lifecycle"
	"github.com/destekhq/ticket-core/internal/observability"
	"github.com/destekhq/ticket-core/internal/persistence"
	"github.com/destekhq/ticket-core/internal/repository"
	"github.com/destekhq/ticket-core/internal/service"
	"github.com/destekhq/ticket-core/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()

	postgres, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("connect postgres", zap.Error(err))
	}
	defer postgres.Close()

	if cfg.Postgres.RunMigrations && postgres.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, postgres.PoolHandle(), logger); err != nil {
			logger.Fatal("run migrations", zap.Error(err))
		}
	}

	redisStore := persistence.NewRedis(cfg.Redis, logger)
	defer redisStore.Close()

	pool := postgres.PoolHandle()
	ticketRepo := repository.NewTicketRepository(pool)
	messageRepo := repository.NewTicketMessageRepository(pool)
	statusRepo := repository.NewCachedStatusRepository(repository.NewStatusRepository(pool), redisStore.Client)
	priorityRepo := repository.NewCachedPriorityRepository(repository.NewPriorityRepository(pool), redisStore.Client)
	customerRepo := repository.NewCustomerRepository(pool)
	agentRepo := repository.NewAgentRepository(pool)

	catalog, err := lifecycle.LoadCatalog(ctx, statusRepo, cfg.Lifecycle)
	if err != nil {
		logger.Fatal("resolve status catalog", zap.Error(err))
	}
	policy := lifecycle.NewPolicy(catalog, cfg.Lifecycle.AssignNotePrefix)

	resolver := service.NewIdentityResolver(agentRepo, customerRepo)
	snapshots := service.NewSnapshotBuilder(statusRepo, priorityRepo, customerRepo, agentRepo, messageRepo)
	dispatcher := events.NewInMemoryDispatcher()

	ticketService := service.NewTicketService(cfg.Lifecycle, service.TicketDependencies{
		TicketRepo:   ticketRepo,
		MessageRepo:  messageRepo,
		StatusRepo:   statusRepo,
		PriorityRepo: priorityRepo,
		CustomerRepo: customerRepo,
		AgentRepo:    agentRepo,
		Policy:       policy,
		Resolver:     resolver,
		Snapshots:    snapshots,
		Dispatcher:   dispatcher,
	})

	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: cfg.App.Env == "production",
	})

	httpapi.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())
	httpapi.RegisterRoutes(app,
		handlers.NewTicketsHandler(ticketService),
		handlers.NewAgentsHandler(ticketService),
		handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, postgres, redisStore),
		metrics,
	)

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("http server stopped", zap.Error(err))
		}
	}()

	waitForShutdown(app, logger)
}

func waitForShutdown(app *fiber.App, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
