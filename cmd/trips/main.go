package main

import (
	"carrygo/internal/trips/handler"
	"carrygo/internal/trips/repository"
	"carrygo/internal/trips/service"
	"carrygo/internal/trips/validator"
	"carrygo/pkg/app"
	"carrygo/pkg/config"
)

const ServiceName = "trips"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Trips service")
	tripService := initServices(cfg)
	serverApp := app.NewApplication(cfg, handler.NewTripHandler(tripService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.TripService {
	tripValidator := validator.NewTripValidator(cfg)
	tripRepo := repository.NewMongoTripRepository(cfg)
	tripService := service.NewTripService(
		tripRepo,
		tripValidator,
		cfg,
	)

	cfg.Log.Info("Trip service initialized", "database", cfg.MongoDatabaseName)
	return tripService
}
