package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"orderdesk/internal/config"
	"orderdesk/internal/database"
	"orderdesk/internal/handler"
	"orderdesk/internal/notify"
	"orderdesk/internal/repository"
	"orderdesk/internal/service"
	"orderdesk/internal/storage"
	"orderdesk/internal/worker"
)

func main() {
	cfg := config.New()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := notify.NewHub()

	// Storage
	var repo *repository.Repository
	if cfg.DatabaseURI != "" {
		db, err := database.NewDB(ctx, cfg.DatabaseURI)
		if err != nil {
			slog.Error("failed to connect to DB", "error", err)
			os.Exit(1)
		}
		defer database.CloseDB(db)

		if err := database.InitSchema(ctx, db); err != nil {
			slog.Error("failed to init DB schema", "error", err)
			os.Exit(1)
		}
		repo = repository.New(db)

		listener := notify.NewPGListener(cfg.DatabaseURI, hub)
		go listener.Start(ctx)
	} else {
		slog.Warn("DATABASE_URI is empty, orders are kept in memory")
		repo = repository.NewMemory(hub)
	}

	var sessions storage.KV
	if cfg.RedisAddr != "" {
		rdb, err := storage.NewRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, 0, cfg.SessionTTL)
		if err != nil {
			slog.Error("failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()
		sessions = rdb
	} else {
		sessions = storage.NewMemory()
	}

	// Services
	couponSvc := service.NewCouponService(repo.Coupons)
	orderSvc := service.NewOrderService(repo.Orders, couponSvc, hub)
	trackingSvc := service.NewTrackingService(sessions)
	svc := handler.Services{
		Auth:     service.NewAuthService(cfg.StaffPasswordHash, cfg.JWTSecret),
		Coupons:  couponSvc,
		Orders:   orderSvc,
		Menu:     service.NewMenuService(repo.Menu),
		Stats:    service.NewStatsService(repo.Orders, repo.Menu),
		Tracking: trackingSvc,
		Checkout: service.NewCheckoutService(orderSvc, trackingSvc),
		Sessions: sessions,
	}
	if cfg.StaffPasswordHash == "" {
		slog.Warn("STAFF_PASSWORD_HASH is empty, staff login is disabled")
	}

	// Worker
	var alerters []service.Alerter
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		alerters = append(alerters, service.NewTelegramClient(cfg.TelegramAPIURL, cfg.TelegramBotToken, cfg.TelegramChatID, cfg.Currency))
	}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaAlerter := service.NewKafkaAlerter(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.Currency)
		defer func() {
			if err := kafkaAlerter.Close(); err != nil {
				slog.Error("failed to close kafka writer", "error", err)
			}
		}()
		alerters = append(alerters, kafkaAlerter)
	}
	if len(alerters) > 0 {
		alertWorker := worker.NewAlertWorker(repo.Orders, cfg.AlertInterval, alerters...)
		go alertWorker.Start(ctx)
	}

	srv := &http.Server{
		Addr: cfg.RunAddress,
		Handler: handler.NewRouter(svc, handler.RouterConfig{
			JWTSecret:      cfg.JWTSecret,
			AllowedOrigins: cfg.AllowedOrigins,
			SessionTTL:     cfg.SessionTTL,
		}),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		BaseContext:  func(net.Listener) context.Context { return ctx },
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	slog.Info("starting server", "addr", cfg.RunAddress)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	slog.Info("shutting down...")

	cancel() // stop listener, worker and open event streams
	ctxShut, cancelShut := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShut()

	if err := srv.Shutdown(ctxShut); err != nil {
		slog.Error("server shutdown failed", "error", err)
	}

	slog.Info("server stopped")
}
