package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/evalsuite-api/internal/config"
	"github.com/noah-isme/evalsuite-api/internal/database"
	"github.com/noah-isme/evalsuite-api/internal/handler"
	"github.com/noah-isme/evalsuite-api/internal/middleware"
	"github.com/noah-isme/evalsuite-api/internal/repository"
	"github.com/noah-isme/evalsuite-api/internal/router"
	"github.com/noah-isme/evalsuite-api/internal/service"
	applog "github.com/noah-isme/evalsuite-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, logCloser := applog.New(applog.Options{
		Service: cfg.AppName,
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: os.Stdout,
	})
	defer logCloser.Close()

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to connect to database")
	}

	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis not configured, leaderboard cache and cross-node fan-out disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Close()
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	eventRepo := repository.NewEventRepository(db)
	rosterRepo := repository.NewRosterRepository(db)
	activityRepo := repository.NewActivityLogRepository(db)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	broadcaster := service.NewScoreboardBroadcaster(redisClient, natsConn, cfg.RealtimeChannel, logger)
	broadcaster.Start(rootCtx)

	store := service.NewActiveEventStore(eventRepo, redisClient, cfg.CacheTTL, broadcaster, logger)
	activityService := service.NewActivityService(activityRepo, logger)
	eventService := service.NewEventService(store, eventRepo, rosterRepo, activityService, validate, service.EventDefaults{
		Title:             cfg.EventTitle,
		Subtitle:          cfg.EventSubtitle,
		Year:              cfg.EventYear,
		Organization:      cfg.EventOrg,
		OrganizationShort: cfg.EventOrgShort,
		SystemName:        cfg.EventSystemName,
	}, logger)
	evaluationService := service.NewEvaluationService(store, validate, logger)
	configService := service.NewConfigService(rosterRepo, store, activityService, validate, logger)

	if err := configService.LoadRosterFile(rootCtx, cfg.RosterFile); err != nil {
		logger.Fatal().Err(err).Str("path", cfg.RosterFile).Msg("failed to seed roster")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{
		Logger:       &logger,
		AllowOrigins: cfg.CORSOrigins,
		AccessLog:    cfg.AccessLog,
	})
	router.Register(app, cfg, router.Dependencies{
		EventHandler:      handler.NewEventHandler(eventService, broadcaster, logger),
		EvaluationHandler: handler.NewEvaluationHandler(evaluationService, logger),
		ConfigHandler:     handler.NewConfigHandler(configService, logger),
		ActivityHandler:   handler.NewActivityHandler(activityService, logger),
		Health: handler.HealthDependencies{
			DB:    db,
			Redis: redisClient,
			NATS:  natsConn,
		},
		JWTMiddleware: middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, cfg.ShutdownDeadline, logger)
}

func waitForShutdown(app *fiber.App, deadline time.Duration, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	if deadline <= 0 {
		deadline = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), deadline)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
