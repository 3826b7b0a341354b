package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/pmpulse/status-engine/internal/config"
	"github.com/pmpulse/status-engine/internal/handler"
	"github.com/pmpulse/status-engine/internal/infra/postgresql"
	"github.com/pmpulse/status-engine/internal/infra/postgresql/migrations"
	infraredis "github.com/pmpulse/status-engine/internal/infra/redis"
	"github.com/pmpulse/status-engine/internal/observability"
	"github.com/pmpulse/status-engine/internal/push"
	"github.com/pmpulse/status-engine/internal/repository"
	"github.com/pmpulse/status-engine/internal/scheduler"
	"github.com/pmpulse/status-engine/internal/service"
	"github.com/pmpulse/status-engine/internal/transport"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	if err := run(cfg, logger); err != nil {
		logger.Fatal("status-engine exited", zap.Error(err))
	}
}

func run(cfg *config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgresql.NewPostgres(cfg.DatabaseDSN)
	if err != nil {
		return fmt.Errorf("postgres initialization failed: %w", err)
	}

	if err := migrations.Migrate(db); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("postgres underlying db init failed: %w", err)
	}
	defer sqlDB.Close()

	rdb, err := infraredis.NewRedis(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis initialization failed: %w", err)
	}
	defer rdb.Close()

	metrics := observability.NewMetrics()

	projects := repository.NewGormProjectRepo(db)
	milestones := repository.NewGormMilestoneRepo(db)
	categories := repository.NewGormCategoryRepo(db)
	notifications := repository.NewGormNotificationRepo(db)

	pusher, err := push.NewRedisPusher(rdb)
	if err != nil {
		return fmt.Errorf("pusher initialization failed: %w", err)
	}

	notifier, err := service.NewNotifier(
		projects, milestones, categories, notifications, pusher,
		cfg.PaymentGraceMonths, cfg.StaleAfter(), metrics, logger,
	)
	if err != nil {
		return fmt.Errorf("notifier initialization failed: %w", err)
	}

	engine := scheduler.NewEngine(cfg.FireTimeout(), logger)

	checks, err := service.NewCheckScheduler(
		engine, categories, notifier,
		cfg.PaymentGraceMonths, cfg.StaleAfter(), metrics, logger,
	)
	if err != nil {
		return fmt.Errorf("check scheduler initialization failed: %w", err)
	}

	projectService, err := service.NewProjectService(projects, milestones, checks, logger)
	if err != nil {
		return fmt.Errorf("project service initialization failed: %w", err)
	}
	milestoneService, err := service.NewMilestoneService(milestones, projects, checks, cfg.PaymentGraceMonths, logger)
	if err != nil {
		return fmt.Errorf("milestone service initialization failed: %w", err)
	}
	notificationService, err := service.NewNotificationService(notifications, categories, logger)
	if err != nil {
		return fmt.Errorf("notification service initialization failed: %w", err)
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(logger),
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(transport.Correlation())
	app.Use(metrics.HTTPMiddleware())

	handler.RegisterHealthRoutes(app, sqlDB, rdb, checks.PendingChecks)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	if err := handler.RegisterProjectRoutes(app, projectService); err != nil {
		return fmt.Errorf("project route registration failed: %w", err)
	}
	if err := handler.RegisterMilestoneRoutes(app, milestoneService); err != nil {
		return fmt.Errorf("milestone route registration failed: %w", err)
	}
	if err := handler.RegisterNotificationRoutes(app, notificationService); err != nil {
		return fmt.Errorf("notification route registration failed: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("status-engine api started", zap.Int("port", cfg.APIPort))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.APIPort)); err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")

		if err := app.ShutdownWithTimeout(cfg.ShutdownGrace()); err != nil {
			logger.Warn("api shutdown incomplete", zap.Error(err))
		}

		drainCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownGrace())
		defer cancel()
		if err := engine.Shutdown(drainCtx); err != nil {
			logger.Warn("engine drain incomplete", zap.Error(err))
		}
		return nil
	})

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return err
	}

	logger.Info("status-engine stopped")
	return nil
}
