package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"pos/internal/app"
	"pos/internal/config"
	"pos/internal/gateway"
	"pos/internal/handler"
	internalRedis "pos/internal/redis"
	"pos/internal/repository/postgres"
	"pos/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server, reconciler := wireServer(db, redisClient, nrApp, cfg)

	// Background sweep of stale pending payments.
	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	defer sweepCancel()
	go reconciler.Run(sweepCtx)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")
	sweepCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server and
// the reconciler whose sweep loop main runs in the background.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*http.Server, *service.ReconcilerService) {
	// Initialize Redis stores.
	lockStore := internalRedis.NewLockStore(redisClient)
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	orderRepo := postgres.NewOrderRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	txManager := postgres.NewTxManager(db)

	// Initialize the payment gateway client.
	gatewayClient := gateway.NewClient(gateway.ClientConfig{
		BaseURL:     cfg.Gateway.BaseURL,
		APIToken:    cfg.Gateway.APIToken,
		CallbackURL: cfg.Gateway.CallbackURL,
		Timeout:     cfg.Gateway.Timeout,
		MaxAttempts: cfg.Gateway.MaxAttempts,
		Backoff:     cfg.Gateway.Backoff,
	})

	// Initialize services.
	notificationService := service.NewNotificationService()
	receiptService := service.NewReceiptService(notificationService)
	orderService := service.NewOrderService(txManager, orderRepo)
	paymentService := service.NewPaymentService(
		txManager, orderRepo, paymentRepo, gatewayClient,
		lockStore, cacheStore, notificationService,
		cfg.Gateway.Currency, cfg.Gateway.CallbackURL,
	)
	reconciler := service.NewReconcilerService(
		txManager, orderRepo, paymentRepo, gatewayClient,
		cacheStore, notificationService,
		service.ReconcilerConfig{
			PollInterval:    cfg.Reconciler.PollInterval,
			MaxPollAttempts: cfg.Reconciler.MaxPollAttempts,
			SweepInterval:   cfg.Reconciler.SweepInterval,
			StaleAfter:      cfg.Reconciler.StaleAfter,
			SweepBatchSize:  cfg.Reconciler.SweepBatchSize,
		},
	)

	// Initialize handlers.
	orderHandler := handler.NewOrderHandler(orderService, paymentService, receiptService)
	paymentHandler := handler.NewPaymentHandler(paymentService, reconciler, cacheStore)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		OrderHandler:   orderHandler,
		PaymentHandler: paymentHandler,
		RedisClient:    redisClient,
		NewRelicApp:    nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, reconciler
}
