package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mwhayford/rentledger/internal/application/services"
	"github.com/mwhayford/rentledger/internal/config"
	"github.com/mwhayford/rentledger/internal/events"
	"github.com/mwhayford/rentledger/internal/infrastructure/dedup"
	"github.com/mwhayford/rentledger/internal/infrastructure/persistence/postgres"
	"github.com/mwhayford/rentledger/internal/infrastructure/processor"
	"github.com/mwhayford/rentledger/internal/interfaces/rest/handlers"
	"github.com/mwhayford/rentledger/internal/webhook"
	"github.com/mwhayford/rentledger/internal/worker"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := cfg.Logger.NewLogger()
	slog.SetDefault(logger)

	logger.Info("starting rentledger service",
		"port", cfg.Server.Port,
		"log_level", cfg.Logger.Level,
	)

	ctx := context.Background()
	db, err := postgres.Connect(ctx, &cfg.Database, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	redisClient := dedup.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	outboxRepo := postgres.NewOutboxRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db, outboxRepo)
	subscriptionRepo := postgres.NewSubscriptionRepository(db, outboxRepo)
	methodRepo := postgres.NewPaymentMethodRepository(db)
	webhookEventRepo := postgres.NewWebhookEventRepository(db)

	eventDedup := dedup.NewLayered(
		dedup.NewRedisDedup(redisClient, cfg.Redis),
		webhookEventRepo,
	)

	processorClient := processor.NewClient(cfg.Processor)

	paymentService := services.NewPaymentService(paymentRepo, processorClient, logger)
	subscriptionService := services.NewSubscriptionService(subscriptionRepo, paymentRepo, processorClient, logger)
	methodService := services.NewPaymentMethodService(methodRepo, logger)
	queryService := services.NewQueryService(paymentRepo, subscriptionRepo, methodRepo)

	webhookRouter := webhook.NewRouter(eventDedup, logger)
	webhook.NewPaymentReconciler(paymentRepo, logger).Register(webhookRouter)
	webhook.NewSubscriptionReconciler(subscriptionRepo, paymentRepo, logger).Register(webhookRouter)

	h := handlers.NewHandlers(
		paymentService,
		subscriptionService,
		methodService,
		queryService,
		webhookRouter,
		cfg.Webhook.Secret,
		logger,
	)

	router := handlers.NewRouter(h, cfg.Server.ReadTimeout, logger)

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	outboxRelay := worker.NewOutboxRelay(
		outboxRepo,
		events.NewLogPublisher(logger),
		cfg.Worker.Interval,
		cfg.Worker.BatchSize,
		logger,
	)

	workerCtx, cancelWorkers := context.WithCancel(context.Background())
	defer cancelWorkers()

	go outboxRelay.Start(workerCtx)

	go func() {
		logger.Info("server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	cancelWorkers()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server exited")
}
