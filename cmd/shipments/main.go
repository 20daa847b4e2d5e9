package main

import (
	"carrygo/internal/shipments/handler"
	"carrygo/internal/shipments/repository"
	"carrygo/internal/shipments/service"
	"carrygo/internal/shipments/validator"
	"carrygo/pkg/app"
	"carrygo/pkg/config"
)

const ServiceName = "shipments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Shipments service")
	shipmentService := initServices(cfg)
	serverApp := app.NewApplication(cfg, handler.NewShipmentHandler(shipmentService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ShipmentService {
	shipmentValidator := validator.NewShipmentValidator(cfg)
	shipmentRepo := repository.NewMongoShipmentRepository(cfg)
	shipmentService := service.NewShipmentService(
		shipmentRepo,
		shipmentValidator,
		cfg,
	)

	cfg.Log.Info("Shipment service initialized", "database", cfg.MongoDatabaseName)
	return shipmentService
}
