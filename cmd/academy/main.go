package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Freeeeeet/artacademy/internal/app"
	"github.com/Freeeeeet/artacademy/internal/config"
	"github.com/Freeeeeet/artacademy/internal/controller"
	"github.com/Freeeeeet/artacademy/internal/controller/httpapi"
	"github.com/Freeeeeet/artacademy/internal/notifier"
	"github.com/Freeeeeet/artacademy/internal/repository"
	"github.com/Freeeeeet/artacademy/internal/service"
	"github.com/Freeeeeet/artacademy/internal/videoroom"
	"github.com/Freeeeeet/artacademy/migrations"
	"github.com/gin-gonic/gin"
	"github.com/go-telegram/bot"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := app.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Academy stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	pool, err := pgxpool.New(ctx, cfg.GetDBDSN())
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return err
	}

	migrator, err := app.NewMigrator(pool, migrations.FS, logger)
	if err != nil {
		return err
	}
	if err := migrator.Run(ctx); err != nil {
		migrator.Close()
		return err
	}
	migrator.Close()

	courseRepo := repository.NewCourseRepository(pool)
	enrollmentRepo := repository.NewEnrollmentRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	announcementRepo := repository.NewAnnouncementRepository(pool)
	materialRepo := repository.NewMaterialRepository(pool)

	var (
		mirrors []service.Mirror
		tgBot   *bot.Bot
	)
	if cfg.TelegramEnabled() {
		tgBot, err = bot.New(cfg.TelegramToken)
		if err != nil {
			return err
		}
		mirrors = append(mirrors, notifier.NewTelegramMirror(tgBot, cfg.TelegramChat(), logger))
	}

	announcementService := service.NewAnnouncementService(announcementRepo, time.Now, logger, mirrors...)
	accessService := service.NewAccessService(enrollmentRepo, time.Now, logger)
	courseService := service.NewCourseService(courseRepo, materialRepo, accessService, logger)
	enrollmentService := service.NewEnrollmentService(enrollmentRepo, courseRepo, logger)
	sessionService := service.NewSessionService(sessionRepo, courseRepo, announcementService, time.Now, logger)

	video, err := videoroom.NewURLProvider(cfg.VideoBaseURL)
	if err != nil {
		return err
	}

	scheduler := app.NewScheduler(sessionService, cfg.SweepInterval, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	if tgBot != nil {
		botController := controller.NewBotController(tgBot, sessionService, announcementService, cfg.PublicBaseURL, logger)
		if err := botController.RegisterHandlers(ctx); err != nil {
			logger.Warn("Telegram bot commands are unavailable", zap.Error(err))
		}
		go botController.Start(ctx)
	}

	handler := httpapi.NewHandler(
		accessService,
		courseService,
		enrollmentService,
		sessionService,
		announcementService,
		video,
		cfg.PaymentWebhookSecret,
		logger,
	)
	router := httpapi.NewRouter(handler, httpapi.NewTokenVerifier(cfg.JWTSecret), logger)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", cfg.HTTPAddr), zap.String("environment", cfg.Environment))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
