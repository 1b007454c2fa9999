package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server        ServerConfig
	Storage       StorageConfig
	MongoDB       MongoDBConfig
	JWT           JWTConfig
	Demo          DemoConfig
	Subscription  SubscriptionConfig
	Rewards       RewardsConfig
	Payments      PaymentsConfig
	Notifications NotificationsConfig
	RateLimit     RateLimitConfig
	Seed          SeedConfig
	LogLevel      string
	LogFile       string
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port            string
	AllowedHosts    []string
	ShutdownTimeout time.Duration
}

// StorageConfig selects the repository implementation
type StorageConfig struct {
	Driver string // mongodb or memory
}

// MongoDBConfig holds MongoDB-specific configuration
type MongoDBConfig struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// JWTConfig holds JWT-specific configuration
type JWTConfig struct {
	Secret    string
	ExpiresIn int // seconds
}

// DemoConfig holds the demo period applied to new users
type DemoConfig struct {
	DurationDays int
}

// SubscriptionConfig holds the price charged on subscribe
type SubscriptionConfig struct {
	Price    float64
	Currency string
}

// RewardsConfig holds reward redemption settings
type RewardsConfig struct {
	CodeTTLDays int
}

// PaymentsConfig holds payment provider configuration
type PaymentsConfig struct {
	BaseURL string
	APIKey  string
	MockAPI bool
}

// NotificationsConfig holds notification gateway configuration
type NotificationsConfig struct {
	DefaultGateway string
	MockGateway    bool
	Push           GatewayConfig
	Webhook        GatewayConfig
}

// GatewayConfig holds the endpoint and secret of one delivery gateway
type GatewayConfig struct {
	BaseURL   string
	APISecret string
}

// RateLimitConfig holds per-client request limits for the auth endpoints
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// SeedConfig controls catalog seeding at startup
type SeedConfig struct {
	Catalog       bool
	AdminEmail    string
	AdminPassword string
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set defaults; viper only unmarshals env overrides for keys it already knows
	setDefaults()

	// Read configuration
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if config file is not found, we'll use environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	// Unmarshal configuration
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	// Hosting platforms inject these directly
	config.Server.Port = GetEnv("PORT", config.Server.Port)
	config.Server.AllowedHosts = GetEnvAsSlice("CORS_ORIGINS", ",", config.Server.AllowedHosts)

	return &config, nil
}

// setDefaults sets default values for configuration
func setDefaults() {
	viper.SetDefault("Server.Port", "4000")
	viper.SetDefault("Server.AllowedHosts", []string{"localhost:3000"})
	viper.SetDefault("Server.ShutdownTimeout", 5*time.Second)
	viper.SetDefault("Storage.Driver", "mongodb")
	viper.SetDefault("MongoDB.URI", "mongodb://localhost:27017")
	viper.SetDefault("MongoDB.Database", "bridgetunes-rewards")
	viper.SetDefault("MongoDB.Timeout", 10*time.Second)
	viper.SetDefault("JWT.Secret", "")
	viper.SetDefault("JWT.ExpiresIn", 24*60*60) // 24 hours
	viper.SetDefault("Demo.DurationDays", 7)
	viper.SetDefault("Subscription.Price", 1000.0)
	viper.SetDefault("Subscription.Currency", "NGN")
	viper.SetDefault("Rewards.CodeTTLDays", 30)
	viper.SetDefault("Payments.BaseURL", "")
	viper.SetDefault("Payments.APIKey", "")
	viper.SetDefault("Payments.MockAPI", true)
	viper.SetDefault("Notifications.DefaultGateway", "MOCK")
	viper.SetDefault("Notifications.MockGateway", true)
	viper.SetDefault("Notifications.Push.BaseURL", "")
	viper.SetDefault("Notifications.Push.APISecret", "")
	viper.SetDefault("Notifications.Webhook.BaseURL", "")
	viper.SetDefault("Notifications.Webhook.APISecret", "")
	viper.SetDefault("RateLimit.RequestsPerMinute", 30)
	viper.SetDefault("RateLimit.Burst", 10)
	viper.SetDefault("Seed.Catalog", true)
	viper.SetDefault("Seed.AdminEmail", "")
	viper.SetDefault("Seed.AdminPassword", "")
	viper.SetDefault("LogLevel", "info")
	viper.SetDefault("LogFile", "")
}
