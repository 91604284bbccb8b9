package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/merchant-crm/internal/api/http"
	"github.com/spec-kit/merchant-crm/internal/api/http/handlers"
	"github.com/spec-kit/merchant-crm/internal/auth"
	"github.com/spec-kit/merchant-crm/internal/cache"
	"github.com/spec-kit/merchant-crm/internal/enrich"
	"github.com/spec-kit/merchant-crm/internal/events"
	"github.com/spec-kit/merchant-crm/internal/observability"
	"github.com/spec-kit/merchant-crm/internal/persistence"
	"github.com/spec-kit/merchant-crm/internal/repository"
	"github.com/spec-kit/merchant-crm/internal/service"
	"github.com/spec-kit/merchant-crm/internal/worker"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

// wiring carries the optional collaborators a command chooses to provide.
type wiring struct {
	cache      cache.ViewCache
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
}

type services struct {
	profiles   repository.ProfileRepository
	tickets    *service.TicketService
	contacts   *service.ContactService
	tasks      *service.TaskService
	activities *service.ActivityService
	auth       *service.AuthService
}

func buildServices(rt *env, w wiring) services {
	pool := rt.pg.PoolHandle()
	profiles := repository.NewProfileRepository(pool)
	enricher := enrich.NewEnricher(profiles, repository.NewMerchantRepository(pool), rt.logger)

	tickets := service.NewTicketService(service.TicketDependencies{
		TicketRepo: repository.NewTicketRepository(pool),
		Enricher:   enricher,
		Cache:      w.cache,
		Dispatcher: w.dispatcher,
		Metrics:    w.metrics,
		Logger:     rt.logger,
	})
	contacts := service.NewContactService(service.ContactDependencies{
		ContactRepo: repository.NewContactRepository(pool),
		Cache:       w.cache,
		Dispatcher:  w.dispatcher,
		Logger:      rt.logger,
	})
	return services{
		profiles:   profiles,
		tickets:    tickets,
		contacts:   contacts,
		tasks:      service.NewTaskService(repository.NewTaskRepository(pool), enricher, w.cache, rt.logger),
		activities: service.NewActivityService(repository.NewActivityRepository(pool), enricher, w.cache, rt.logger),
		auth:       service.NewAuthService(rt.cfg.Auth, profiles),
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.close()
	cfg, logger := rt.cfg, rt.logger

	shutdownTracing := observability.SetupTracing(ctx, cfg.Telemetry, logger)
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			logger.Warn("tracing shutdown", zap.Error(err))
		}
	}()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, rt.pg.PoolHandle(), logger); err != nil {
			return err
		}
	}

	redis, redisErr := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var viewCache cache.ViewCache = cache.Noop{}
	switch {
	case !cfg.Cache.Enabled:
		logger.Info("view cache disabled")
	case redisErr != nil:
		logger.Warn("redis unreachable; serving views uncached", zap.Error(redisErr))
	default:
		viewCache = cache.NewRedisCache(redis.Client, cfg.Cache.Prefix, cfg.Cache.TTL())
	}

	kafka := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if !kafka.Enabled() {
		logger.Info("kafka publisher disabled")
	}
	publisher := worker.NewPublishWorker(kafka, 0, logger)
	publisher.Start()
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Warn("publisher close", zap.Error(err))
		}
	}()

	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, publisher, logger))

	metrics := observability.NewMetrics()
	svc := buildServices(rt, wiring{cache: viewCache, dispatcher: dispatcher, metrics: metrics})
	authMiddleware := auth.NewAuthMiddleware(svc.auth.TokenManager(), svc.profiles)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, cfg.Telemetry.ServiceName, logger, metrics, cfg.App.RequestTimeout())
	health := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, map[string]handlers.Pinger{
		"postgres": rt.pg,
		"redis":    redis,
	}, metrics)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         health,
		Auth:           handlers.NewAuthHandler(svc.auth),
		Tickets:        handlers.NewTicketsHandler(svc.tickets),
		Board:          handlers.NewBoardHandler(svc.tickets, logger),
		Contacts:       handlers.NewContactsHandler(svc.contacts),
		CRM:            handlers.NewCRMHandler(svc.tasks, svc.activities),
		AuthMiddleware: authMiddleware,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.App.Addr()))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(ctx.Err()))
	}
	return app.ShutdownWithTimeout(shutdownTimeout)
}
