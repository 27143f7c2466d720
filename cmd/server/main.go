package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/seminarhub/backend/internal/api"
	"github.com/seminarhub/backend/internal/app"
	"github.com/seminarhub/backend/internal/config"
	"github.com/seminarhub/backend/internal/notify"
	"github.com/seminarhub/backend/internal/repository"
	"github.com/seminarhub/backend/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting seminarhub backend",
		zap.String("environment", cfg.Environment),
		zap.String("addr", cfg.HTTPAddr),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	store := repository.NewStore(pool)
	hub := notify.NewHub(logger)

	deviceService := service.NewDeviceService(store, cfg.SessionTTL, logger)

	services := api.Services{
		Users:    service.NewUserService(store, logger),
		Boards:   service.NewBoardService(store, store, hub, logger),
		Cards:    service.NewCardService(store, store, hub, logger),
		Seminars: service.NewSeminarService(store, hub, logger),
		Courses:  service.NewCourseService(store, store, logger),
		Bookings: service.NewBookingService(store, store, hub, logger),
		Devices:  deviceService,
	}

	scheduler := app.NewScheduler(deviceService, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	server := api.NewServer(services, hub, cfg.JWTSecret, logger)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(cfg.HTTPAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	case sig := <-quit:
		logger.Info("Shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped")
}
