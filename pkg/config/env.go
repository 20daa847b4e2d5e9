package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvTripsBaseURL        = "TRIPS_BASE_URL"
	EnvShipmentsBaseURL    = "SHIPMENTS_BASE_URL"
	EnvTransactionsBaseURL = "TRANSACTIONS_BASE_URL"

	EnvTransactionEventsTopic    = "TRANSACTION_EVENTS_TOPIC"
	EnvTransactionEventsDLQTopic = "TRANSACTION_EVENTS_DLQ_TOPIC"
	EnvNotificationsGroupID      = "NOTIFICATIONS_GROUP_ID"

	EnvDefaultMaxPackages  = "DEFAULT_MAX_PACKAGES"
	EnvMaxTripWeightKg     = "MAX_TRIP_WEIGHT_KG"
	EnvMaxShipmentWeightKg = "MAX_SHIPMENT_WEIGHT_KG"
	EnvDefaultCurrency     = "DEFAULT_CURRENCY"
	EnvCapacityLockTTL     = "CAPACITY_LOCK_TTL"
)
