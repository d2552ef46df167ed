package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/apply-loan/internal/api/http"
	"github.com/spec-kit/apply-loan/internal/api/http/handlers"
	"github.com/spec-kit/apply-loan/internal/auth"
	"github.com/spec-kit/apply-loan/internal/config"
	"github.com/spec-kit/apply-loan/internal/events"
	"github.com/spec-kit/apply-loan/internal/observability"
	"github.com/spec-kit/apply-loan/internal/persistence"
	"github.com/spec-kit/apply-loan/internal/repository"
	"github.com/spec-kit/apply-loan/internal/service"
	"github.com/spec-kit/apply-loan/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	terms, err := config.LoadTerms(cfg.Terms.File)
	if err != nil {
		logger.Fatal("failed to load loan terms", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	var sessions repository.SessionRepository
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		sessions = repository.NewRedisSessionRepository(redis.Client, cfg.Session.KeyPrefix, cfg.Session.TTL())
	default:
		memory := repository.NewMemorySessionRepository(cfg.Session.TTL())
		defer memory.Stop()
		sessions = memory
	}
	logger.Info("form sessions configured", zap.String("store", cfg.Session.Store), zap.Duration("ttl", cfg.Session.TTL()))

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	service.NewNotificationService(dispatcher, logger, cfg.Notification).RegisterHandlers()

	originator := service.NewSimulatedOriginator(cfg.Submission.Delay, cfg.Submission.FailAll)
	pool := worker.NewSubmissionPool(originator, cfg.Submission.Workers, cfg.Submission.QueueSize, logger)

	locks := service.NewSessionLocks()
	formService := service.NewFormService(service.FormDependencies{
		Sessions:   sessions,
		Locks:      locks,
		Submitter:  pool,
		Dispatcher: dispatcher,
		Metrics:    metrics,
		Logger:     logger,
		Terms:      *terms,
	})
	tutorialService := service.NewTutorialService(sessions, locks, terms.Tutorial)

	pool.Start(ctx, formService.CompleteSubmission)

	tokens := auth.NewTokenManager(cfg.Session.JWTSecret, cfg.Session.TTL())

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	presenter := handlers.NewPresenter(*terms, tutorialService)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:            handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, redis, metrics),
		Loan:              handlers.NewLoanHandler(formService, tutorialService, presenter),
		Sessions:          handlers.NewSessionHandler(formService, tutorialService, tokens, presenter),
		SessionMiddleware: auth.NewSessionMiddleware(tokens),
		RateLimiter:       httptransport.NewRateLimiter(cfg.RateLimit),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.Shutdown(); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	pool.Stop()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
