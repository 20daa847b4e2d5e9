package main

import (
	"carrygo/internal/transactions/events"
	"carrygo/internal/transactions/handler"
	"carrygo/internal/transactions/repository"
	"carrygo/internal/transactions/service"
	"carrygo/internal/transactions/validator"
	"carrygo/pkg/app"
	"carrygo/pkg/config"
	"carrygo/pkg/kafka"
	kafka_config "carrygo/pkg/kafka/config"
	kafka_middleware "carrygo/pkg/kafka/middleware"
)

const ServiceName = "transactions"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	producer := initProducer(cfg)
	defer func() {
		if err := producer.Close(); err != nil {
			cfg.Log.Error("Failed to close Kafka producer", "error", err)
		}
	}()

	cfg.Log.Info("Starting Transactions service")
	transactionService := initServices(cfg, producer)
	serverApp := app.NewApplication(cfg, handler.NewTransactionHandler(transactionService, cfg.Log))
	serverApp.Run()
}

func initProducer(cfg *config.Config) *kafka.Producer {
	kafkaCfg := kafka_config.Load()
	producer, err := kafka.NewProducer(kafkaCfg, cfg.TransactionEventsTopic, cfg.TransactionEventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	producer.Use(kafka_middleware.LoggingProducerMiddleware())
	producer.Use(kafka_middleware.MetricsProducerMiddleware())
	return producer
}

func initServices(cfg *config.Config, producer *kafka.Producer) service.TransactionService {
	transactionValidator := validator.NewTransactionValidator(cfg)
	transactionRepo := repository.NewMongoTransactionRepository(cfg)
	lockRepo := repository.NewMongoTripLockRepository(cfg)
	publisher := events.NewPublisher(producer, ServiceName, cfg.Log)

	transactionService := service.NewTransactionService(
		transactionRepo,
		lockRepo,
		transactionValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Transaction service initialized",
		"database", cfg.MongoDatabaseName,
		"events_topic", cfg.TransactionEventsTopic,
	)
	return transactionService
}
