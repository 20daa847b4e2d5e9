package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "carrygo"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTripsBaseURL        = "http://localhost:8081"
	DefaultShipmentsBaseURL    = "http://localhost:8082"
	DefaultTransactionsBaseURL = "http://localhost:8083"

	DefaultTransactionEventsTopic    = "transaction-events"
	DefaultTransactionEventsDLQTopic = "transaction-events-dlq"
	DefaultNotificationsGroupID      = "notifications"

	// A traveler carries one package unless they explicitly raise the limit.
	DefaultDefaultMaxPackages  = 1
	DefaultMaxTripWeightKg     = 100.0
	DefaultMaxShipmentWeightKg = 50.0
	DefaultDefaultCurrency     = "USD"
	DefaultCapacityLockTTL     = 10 * time.Second

	DefaultPaginationLimit = 100
)
