package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"time"

	"carrygo/pkg/client"
	"carrygo/pkg/logger"
)

type Config struct {
	MongoURI          string
	MongoDatabaseName string
	MongoConnTimeout  time.Duration

	Port string

	RateLimitRequests int
	RateLimitWindow   time.Duration

	RequestTimeout time.Duration
	IdempotencyTTL time.Duration
	MaxRequestSize int

	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration

	TripsBaseURL        string
	ShipmentsBaseURL    string
	TransactionsBaseURL string

	TransactionEventsTopic    string
	TransactionEventsDLQTopic string
	NotificationsGroupID      string

	DefaultMaxPackages  int
	MaxTripWeightKg     float64
	MaxShipmentWeightKg float64
	DefaultCurrency     string
	CapacityLockTTL     time.Duration

	Log    *logger.Logger
	Client *client.Client
}

func Load(serviceName string) *Config {
	cfg := &Config{
		MongoURI:          getEnvStr(EnvMongoURI, DefaultMongoURI),
		MongoDatabaseName: getEnvStr(EnvMongoDatabaseName, DefaultMongoDatabaseName),
		MongoConnTimeout:  getEnvDuration(EnvMongoConnTimeout, DefaultMongoConnTimeout),

		Port: getEnvStr(EnvPort, DefaultPort),

		RateLimitRequests: getEnvNum(EnvRateLimitRequests, DefaultRateLimitRequests),
		RateLimitWindow:   getEnvDuration(EnvRateLimitWindow, DefaultRateLimitWindow),

		RequestTimeout: getEnvDuration(EnvRequestTimeout, DefaultRequestTimeout),
		IdempotencyTTL: getEnvDuration(EnvIdempotencyTTL, DefaultIdempotencyTTL),
		MaxRequestSize: getEnvNum(EnvMaxRequestSize, DefaultMaxRequestSize),

		ReadTimeout:     getEnvDuration(EnvReadTimeout, DefaultReadTimeout),
		WriteTimeout:    getEnvDuration(EnvWriteTimeout, DefaultWriteTimeout),
		IdleTimeout:     getEnvDuration(EnvIdleTimeout, DefaultIdleTimeout),
		ShutdownTimeout: getEnvDuration(EnvShutdownTimeout, DefaultShutdownTimeout),

		TripsBaseURL:        getEnvStr(EnvTripsBaseURL, DefaultTripsBaseURL),
		ShipmentsBaseURL:    getEnvStr(EnvShipmentsBaseURL, DefaultShipmentsBaseURL),
		TransactionsBaseURL: getEnvStr(EnvTransactionsBaseURL, DefaultTransactionsBaseURL),

		TransactionEventsTopic:    getEnvStr(EnvTransactionEventsTopic, DefaultTransactionEventsTopic),
		TransactionEventsDLQTopic: getEnvStr(EnvTransactionEventsDLQTopic, DefaultTransactionEventsDLQTopic),
		NotificationsGroupID:      getEnvStr(EnvNotificationsGroupID, DefaultNotificationsGroupID),

		DefaultMaxPackages:  getEnvNum(EnvDefaultMaxPackages, DefaultDefaultMaxPackages),
		MaxTripWeightKg:     getEnvFloat(EnvMaxTripWeightKg, DefaultMaxTripWeightKg),
		MaxShipmentWeightKg: getEnvFloat(EnvMaxShipmentWeightKg, DefaultMaxShipmentWeightKg),
		DefaultCurrency:     getEnvStr(EnvDefaultCurrency, DefaultDefaultCurrency),
		CapacityLockTTL:     getEnvDuration(EnvCapacityLockTTL, DefaultCapacityLockTTL),

		Log: logger.New(logger.Config{
			Level:     getEnvStr(EnvLogLevel, DefaultLogLevel),
			Format:    logger.JSON,
			AddSource: true,
			Service:   serviceName,
		}),
		Client: client.NewClient(),
	}

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal(err.Error())
	}
	cfg.LogConfiguration()
	return cfg
}

func (cfg *Config) SetMongo() {
	cfg.Client.SetMongo(cfg.Log, cfg.MongoURI, cfg.MongoConnTimeout)
}

func (cfg *Config) SetServiceClients() {
	cfg.Client.SetServiceClients(cfg.TripsBaseURL, cfg.ShipmentsBaseURL, cfg.TransactionsBaseURL)
}

func (cfg *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(cfg.Port); err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("Port must be between 1 and 65535, got: %s", cfg.Port))
	}

	if cfg.MongoURI == "" {
		errs = append(errs, "MongoURI cannot be empty")
	} else if !regexp.MustCompile(`^mongodb(\+srv)?://`).MatchString(cfg.MongoURI) {
		errs = append(errs, fmt.Sprintf("MongoURI must start with 'mongodb://' or 'mongodb+srv://', got: %s", cfg.MongoURI))
	}

	if cfg.MongoDatabaseName == "" {
		errs = append(errs, "MongoDatabaseName cannot be empty")
	}

	for name, d := range map[string]time.Duration{
		"MongoConnTimeout": cfg.MongoConnTimeout,
		"RateLimitWindow":  cfg.RateLimitWindow,
		"RequestTimeout":   cfg.RequestTimeout,
		"IdempotencyTTL":   cfg.IdempotencyTTL,
		"ReadTimeout":      cfg.ReadTimeout,
		"WriteTimeout":     cfg.WriteTimeout,
		"IdleTimeout":      cfg.IdleTimeout,
		"ShutdownTimeout":  cfg.ShutdownTimeout,
		"CapacityLockTTL":  cfg.CapacityLockTTL,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Sprintf("%s must be positive, got: %s", name, d))
		}
	}

	if cfg.RateLimitRequests <= 0 {
		errs = append(errs, fmt.Sprintf("RateLimitRequests must be positive, got: %d", cfg.RateLimitRequests))
	}
	if cfg.MaxRequestSize <= 0 {
		errs = append(errs, fmt.Sprintf("MaxRequestSize must be positive, got: %d", cfg.MaxRequestSize))
	}

	if cfg.DefaultMaxPackages < 1 {
		errs = append(errs, fmt.Sprintf("DefaultMaxPackages must be at least 1, got: %d", cfg.DefaultMaxPackages))
	}
	if cfg.MaxTripWeightKg <= 0 {
		errs = append(errs, fmt.Sprintf("MaxTripWeightKg must be positive, got: %f", cfg.MaxTripWeightKg))
	}
	if cfg.MaxShipmentWeightKg <= 0 {
		errs = append(errs, fmt.Sprintf("MaxShipmentWeightKg must be positive, got: %f", cfg.MaxShipmentWeightKg))
	}
	if cfg.MaxShipmentWeightKg > cfg.MaxTripWeightKg {
		errs = append(errs, fmt.Sprintf("MaxShipmentWeightKg (%f) must be <= MaxTripWeightKg (%f)", cfg.MaxShipmentWeightKg, cfg.MaxTripWeightKg))
	}
	if len(cfg.DefaultCurrency) != 3 {
		errs = append(errs, fmt.Sprintf("DefaultCurrency must be a 3-letter ISO code, got: %s", cfg.DefaultCurrency))
	}

	if len(errs) > 0 {
		errMsg := "Configuration validation failed:\n"
		for i, e := range errs {
			errMsg += fmt.Sprintf("  %d. %s\n", i+1, e)
		}
		return fmt.Errorf("%s", errMsg)
	}

	return nil
}

func (cfg *Config) LogConfiguration() {
	cfg.Log.Info("Configuration loaded successfully",
		"mongo_uri", redactMongoURI(cfg.MongoURI),
		"mongo_database", cfg.MongoDatabaseName,
		"mongo_conn_timeout", cfg.MongoConnTimeout,
		"port", cfg.Port,
		"rate_limit_requests", cfg.RateLimitRequests,
		"rate_limit_window", cfg.RateLimitWindow,
		"request_timeout", cfg.RequestTimeout,
		"idempotency_ttl", cfg.IdempotencyTTL,
		"max_request_size", cfg.MaxRequestSize,
		"read_timeout", cfg.ReadTimeout,
		"write_timeout", cfg.WriteTimeout,
		"idle_timeout", cfg.IdleTimeout,
		"shutdown_timeout", cfg.ShutdownTimeout,
		"trips_base_url", cfg.TripsBaseURL,
		"shipments_base_url", cfg.ShipmentsBaseURL,
		"transactions_base_url", cfg.TransactionsBaseURL,
		"transaction_events_topic", cfg.TransactionEventsTopic,
		"transaction_events_dlq_topic", cfg.TransactionEventsDLQTopic,
		"notifications_group_id", cfg.NotificationsGroupID,
		"default_max_packages", cfg.DefaultMaxPackages,
		"max_trip_weight_kg", cfg.MaxTripWeightKg,
		"max_shipment_weight_kg", cfg.MaxShipmentWeightKg,
		"default_currency", cfg.DefaultCurrency,
		"capacity_lock_ttl", cfg.CapacityLockTTL,
	)
}

func redactMongoURI(uri string) string {
	credentialRegex := regexp.MustCompile(`(mongodb(\+srv)?://)[^:]+:[^@]+@`)
	return credentialRegex.ReplaceAllString(uri, "${1}***:***@")
}

func getEnvStr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvNum(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func (cfg *Config) GracefulShutdown() {
	cfg.Client.GracefulShutdown(cfg.Log)
}

func NormalizePaginationLimit(limit int) int {
	if limit <= 0 {
		limit = 10
	} else if limit > DefaultPaginationLimit {
		limit = DefaultPaginationLimit
	}
	return limit
}

func NormalizeOffset(offset int64) int64 {
	return max(0, offset)
}
