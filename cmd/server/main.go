package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"provider-subscription-api/internal/api"
	"provider-subscription-api/internal/config"
	"provider-subscription-api/internal/database"
	"provider-subscription-api/internal/middleware"
	"provider-subscription-api/internal/services"
	"provider-subscription-api/pkg/logging"

	"github.com/gin-gonic/gin"
)

func main() {
	// Initialize configuration
	if err := config.InitConfig(); err != nil {
		log.Fatal("Failed to initialize config:", err)
	}
	cfg := config.AppConfig

	// Initialize logging
	if err := logging.InitLogging(cfg.LogLevel); err != nil {
		log.Fatal("Failed to initialize logging:", err)
	}
	defer logging.Sync()

	// Initialize database
	if err := database.InitDatabase(); err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer database.CloseDatabase()

	store := database.NewStore(database.GetDB())
	redisService := services.NewRedisService(database.GetRedis())
	clock := services.SystemClock{}

	dispatcher := services.NewDispatcher(30*time.Second,
		services.NewWebhookNotifier(cfg.WebhookCallbackURL, cfg.WebhookSecret),
		services.NewBrevoService(cfg),
	)

	providerService := services.NewProviderService(store, clock)
	subscriptionService := services.NewSubscriptionService(store, redisService, redisService, dispatcher, clock,
		services.SubscriptionServiceConfig{
			LockTTL:       time.Duration(cfg.ActionLockSeconds) * time.Second,
			RenewalWindow: time.Duration(cfg.RenewalLimitMinutes) * time.Minute,
		})
	offerService := services.NewOfferService(store, clock)

	health := func(ctx context.Context) (error, error) {
		return database.Ping(ctx, database.GetDB(), database.GetRedis())
	}

	// Set Gin mode
	gin.SetMode(cfg.Mode)

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	handler := api.NewHandler(providerService, subscriptionService, offerService, health, cfg.ServiceName)
	api.SetupRoutes(r, handler, cfg.AdminAPIKey)

	if cfg.AdminAPIKey == "" {
		logging.Warnf("ADMIN_API_KEY is not set, admin endpoints will reject every request")
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logging.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	logging.Infof("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Errorf("Server shutdown failed: %v", err)
	}

	// flush pending notifications
	dispatcher.Wait()
}
