package service

import (
	"fmt"

	"carrygo/internal/matcher/core"
	"carrygo/internal/matcher/flows"
	"carrygo/pkg/client"
	"carrygo/pkg/logger"
)

// MatcherService runs the registered matching flows over the trips,
// shipments and transactions services.
type MatcherService struct {
	engine *core.Engine
	client *client.Client
	log    *logger.Logger
}

func NewMatcherService(client *client.Client, log *logger.Logger) *MatcherService {
	return &MatcherService{
		engine: core.NewEngine(
			flows.MatchShipment(),
			flows.RequestMatch(),
		),
		client: client,
		log:    log,
	}
}

func (s *MatcherService) ExecuteFlow(flowName string, input map[string]any) (map[string]any, error) {
	ctx := core.NewFlowContext(input, s.client, s.log)
	if err := s.engine.Run(flowName, ctx); err != nil {
		return nil, fmt.Errorf("flow execution failed: %w", err)
	}
	return ctx.Output, nil
}

func (s *MatcherService) AvailableFlows() []string {
	return s.engine.Flows()
}
