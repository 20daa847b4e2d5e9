package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"carrygo/internal/notifications"
	"carrygo/pkg/config"
	"carrygo/pkg/kafka"
	kafka_config "carrygo/pkg/kafka/config"
	kafka_middleware "carrygo/pkg/kafka/middleware"
)

const ServiceName = "notifications"

func main() {
	cfg := config.Load(ServiceName)
	defer cfg.GracefulShutdown()

	dispatcher := notifications.NewDispatcher(cfg.Log)

	kafkaCfg := kafka_config.Load()
	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		cfg.TransactionEventsTopic,
		cfg.NotificationsGroupID,
		cfg.TransactionEventsDLQTopic,
		dispatcher.Handle,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware())
	consumer.Use(kafka_middleware.MetricsConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting Notifications service",
		"topic", cfg.TransactionEventsTopic,
		"group_id", cfg.NotificationsGroupID,
	)

	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close Kafka consumer", "error", err)
	}
	cfg.Log.Info("Notifications service stopped")
}
