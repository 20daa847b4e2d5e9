package main

import (
	"carrygo/internal/matcher/handlers"
	"carrygo/internal/matcher/service"
	"carrygo/pkg/app"
	"carrygo/pkg/config"
)

const ServiceName = "matcher"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetServiceClients()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Matcher service",
		"trips_base_url", cfg.TripsBaseURL,
		"shipments_base_url", cfg.ShipmentsBaseURL,
		"transactions_base_url", cfg.TransactionsBaseURL,
	)

	matcherService := service.NewMatcherService(cfg.Client, cfg.Log)
	cfg.Log.Info("Matcher service initialized", "flows", matcherService.AvailableFlows())

	serverApp := app.NewApplication(cfg, handlers.NewFlowHandler(matcherService, cfg.Log))
	serverApp.Run()
}
