// Command import-rewards loads a reward catalog CSV into MongoDB.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/config"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/logging"
	mongorepo "github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories/mongodb"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/seed"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/mongodb"
	"github.com/joho/godotenv"
)

var errUsage = errors.New("CSV file path is required as a command line argument")

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}
	if err := run(os.Args[1:]); err != nil {
		slog.Error("Reward import failed", "error", err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logging.Setup(cfg.LogLevel, cfg.LogFile)

	if len(args) < 1 {
		return errUsage
	}
	csvFilePath := args[0]

	ctx := context.Background()
	client, err := mongodb.NewClient(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			slog.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}()

	db := client.Database(cfg.MongoDB.Database)
	if err := mongorepo.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	repos := mongorepo.NewRegistry(db)
	rewardService := services.NewRewardService(repos, services.NewLedgerService(repos, nil), nil, nil, cfg.Rewards.CodeTTLDays)

	file, err := os.Open(csvFilePath)
	if err != nil {
		return fmt.Errorf("failed to open CSV file %s: %w", csvFilePath, err)
	}
	defer file.Close()

	result, err := seed.ImportRewards(ctx, file, rewardService, repos.Rewards)
	if err != nil {
		return fmt.Errorf("failed to import rewards: %w", err)
	}
	for _, msg := range result.Errors {
		slog.Warn("Row skipped", "reason", msg)
	}
	slog.Info("Rewards imported", "imported", result.Imported, "skipped", result.Skipped)
	return nil
}
