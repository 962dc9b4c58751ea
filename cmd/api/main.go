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

	"github.com/campushire/placement-api/internal/config"
	"github.com/campushire/placement-api/internal/database"
	"github.com/campushire/placement-api/internal/events"
	"github.com/campushire/placement-api/internal/handler"
	"github.com/campushire/placement-api/internal/middleware"
	"github.com/campushire/placement-api/internal/models"
	"github.com/campushire/placement-api/internal/repository"
	"github.com/campushire/placement-api/internal/router"
	"github.com/campushire/placement-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.JobDrive{},
		&models.Application{},
		&models.PlacedStudent{},
		&models.DeletionRequest{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Redis and NATS are optional backends; the service degrades to
	// single-node operation without them.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, eligible cache and event relay disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Drain() //nolint:errcheck
	} else {
		logger.Warn().Msg("nats url not set, cross-node event relay disabled")
	}

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()

	bus := events.New(redisClient, natsConn, cfg.EventChannel, logger)
	bus.Start(runCtx)

	validate := validator.New(validator.WithRequiredStructEnabled())

	driveRepo := repository.NewDriveRepository(db)
	applicationRepo := repository.NewApplicationRepository(db)
	userRepo := repository.NewUserRepository(db)
	placedRepo := repository.NewPlacedStudentRepository(db)
	deletionRepo := repository.NewDeletionRequestRepository(db)

	driveService := service.NewDriveService(driveRepo, applicationRepo, userRepo, redisClient, cfg.EligibleCacheTTL, cfg.PlacedCTCThresholdLPA, validate, bus, logger)
	roundService := service.NewRoundService(driveRepo, userRepo, bus, logger)
	placementService := service.NewPlacementService(driveRepo, applicationRepo, placedRepo, userRepo, bus, logger)
	deletionService := service.NewDeletionService(deletionRepo, driveRepo, validate, bus, logger)

	sweeper := service.NewDriveSweeper(driveRepo, bus, cfg.SweepSchedule, logger)
	if err := sweeper.Start(runCtx); err != nil {
		log.Fatalf("failed to start deadline sweeper: %v", err)
	}

	driveHandler := handler.NewDriveHandler(driveService, roundService, logger)
	placementHandler := handler.NewPlacementHandler(placementService, logger)
	deletionHandler := handler.NewDeletionHandler(deletionService, logger)
	eventsHandler := handler.NewEventsHandler(bus, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DriveHandler:     driveHandler,
		PlacementHandler: placementHandler,
		DeletionHandler:  deletionHandler,
		EventsHandler:    eventsHandler,
		JWTMiddleware:    middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopRun)
}

func waitForShutdown(app *fiber.App, stopRun context.CancelFunc) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()
	stopRun()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
