package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/portalacademico/portal-backend/internal/cache"
	"github.com/portalacademico/portal-backend/internal/config"
	"github.com/portalacademico/portal-backend/internal/database"
	"github.com/portalacademico/portal-backend/internal/handler"
	"github.com/portalacademico/portal-backend/internal/logger"
	"github.com/portalacademico/portal-backend/internal/messaging"
	"github.com/portalacademico/portal-backend/internal/repository"
	"github.com/portalacademico/portal-backend/internal/router"
	"github.com/portalacademico/portal-backend/internal/service"
	"github.com/portalacademico/portal-backend/internal/validator"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting Portal Academico Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Cache Store ───────────────────────────────────────────────────
	// Redis when configured, otherwise an in-process store so the app
	// runs without external infrastructure.
	var cacheStore cache.Store
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedisClient(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		cacheStore = cache.NewRedisStore(rdb, log)
	} else {
		log.Info().Msg("REDIS_URL not set, using in-process cache")
		cacheStore = cache.NewMemoryStore()
	}

	// ─── Event Publisher ───────────────────────────────────────────────
	var publisher messaging.Publisher
	if cfg.AMQPURL != "" {
		publisher, err = messaging.NewRabbitMQPublisher(cfg.AMQPURL, cfg.AMQPQueue)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to RabbitMQ")
		}
	} else {
		log.Info().Msg("AMQP_URL not set, enrollment events disabled")
		publisher = messaging.NewNoopPublisher()
	}
	defer publisher.Close()

	// ─── Initialize Repositories ───────────────────────────────────────
	courseRepo := repository.NewCourseRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// ─── Initialize Services ──────────────────────────────────────────
	catalogCache := service.NewCatalogCache(cacheStore, log)
	authService := service.NewAuthService(cfg, userRepo)
	catalogService := service.NewCatalogService(courseRepo, catalogCache, cacheStore, log)
	courseService := service.NewCourseService(courseRepo, catalogCache, log)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, publisher, log)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Catalog:     handler.NewCatalogHandler(catalogService),
		Enrollment:  handler.NewEnrollmentHandler(enrollmentService, catalogService),
		Coordinator: handler.NewCoordinatorHandler(courseService, enrollmentService),
	}

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(authService, handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
