package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/api/routes"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/config"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/handlers"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/logging"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/metrics"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories/memory"
	mongorepo "github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/seed"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/gateway"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/jwt"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/mongodb"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/payments"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	if cfg.JWT.Secret == "" {
		slog.Error("JWT secret is required (JWT_SECRET)")
		os.Exit(1)
	}

	ctx := context.Background()
	repos, closeStorage, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("Failed to open storage", "driver", cfg.Storage.Driver, "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	m := metrics.New()

	settingsService := services.NewSettingsService(repos.Settings, cfg.Notifications.DefaultGateway, cfg.Demo.DurationDays)
	notificationService := services.NewNotificationService(repos.Notifications, settingsService, m, gateways(cfg)...)
	paymentClient := payments.NewClient(cfg.Payments.BaseURL, cfg.Payments.APIKey, cfg.Payments.MockAPI)

	ledgerService := services.NewLedgerService(repos, m)
	authService := services.NewAuthService(repos.Users, settingsService, cfg.JWT.Secret, cfg.JWT.ExpiresIn)
	userService := services.NewUserService(repos.Users, ledgerService, paymentClient, notificationService, cfg.Subscription.Price, cfg.Subscription.Currency)
	rewardService := services.NewRewardService(repos, ledgerService, notificationService, m, cfg.Rewards.CodeTTLDays)
	raffleService := services.NewRaffleService(repos, ledgerService, notificationService, m)
	surveyService := services.NewSurveyService(repos, ledgerService, notificationService)
	triviaService := services.NewTriviaService(repos, ledgerService)
	purchaseService := services.NewPurchaseService(repos, ledgerService, paymentClient, notificationService)

	if cfg.Seed.AdminEmail != "" {
		if err := authService.EnsureAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword); err != nil {
			slog.Error("Failed to ensure admin account", "error", err)
			os.Exit(1)
		}
	}
	if cfg.Seed.Catalog {
		if _, err := seed.Catalog(ctx, repos.Rewards, seed.Services{
			Rewards:   rewardService,
			Raffles:   raffleService,
			Surveys:   surveyService,
			Trivia:    triviaService,
			Purchases: purchaseService,
		}, time.Now()); err != nil {
			slog.Error("Failed to seed catalog", "error", err)
			os.Exit(1)
		}
	}

	gin.SetMode(gin.ReleaseMode)
	router := routes.SetupRouter(cfg, routes.HandlerDependencies{
		AuthHandler:           handlers.NewAuthHandler(authService),
		UserHandler:           handlers.NewUserHandler(userService, ledgerService),
		RewardHandler:         handlers.NewRewardHandler(rewardService),
		RaffleHandler:         handlers.NewRaffleHandler(raffleService),
		SurveyHandler:         handlers.NewSurveyHandler(surveyService),
		TriviaHandler:         handlers.NewTriviaHandler(triviaService),
		PurchaseHandler:       handlers.NewPurchaseHandler(purchaseService),
		NotificationHandler:   handlers.NewNotificationHandler(notificationService),
		SystemSettingsHandler: handlers.NewSystemSettingsHandler(settingsService),
		TokenParser:           authService,
		Metrics:               m,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Server.Port, "storage", cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server")

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("Server exiting")
}

// openStorage builds the repositories for the configured driver
func openStorage(ctx context.Context, cfg *config.Config) (*repositories.Registry, func(), error) {
	if cfg.Storage.Driver == "memory" {
		slog.Warn("Using in-memory storage; data is lost on restart")
		return memory.NewRegistry(), func() {}, nil
	}

	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Error("Error disconnecting from MongoDB", "error", err)
		}
	}

	db := client.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		closeFn()
		return nil, nil, err
	}
	slog.Info("Connected to MongoDB", "database", cfg.MongoDB.Database)
	return mongorepo.NewRegistry(db), closeFn, nil
}

// gateways returns the configured delivery gateways in fallback order
func gateways(cfg *config.Config) []gateway.Gateway {
	var out []gateway.Gateway
	if cfg.Notifications.Push.BaseURL != "" {
		tokens := jwt.NewTokenService(cfg.Notifications.Push.APISecret, "bridgetunes-rewards", 5*time.Minute)
		out = append(out, gateway.NewPushGateway(cfg.Notifications.Push.BaseURL, tokens))
	}
	if cfg.Notifications.Webhook.BaseURL != "" {
		out = append(out, gateway.NewWebhookGateway(cfg.Notifications.Webhook.BaseURL, cfg.Notifications.Webhook.APISecret))
	}
	if cfg.Notifications.MockGateway || len(out) == 0 {
		out = append(out, gateway.NewMockGateway())
	}
	return out
}
