package flows

import (
	"fmt"

	"carrygo/internal/matcher/core"
	"carrygo/pkg/capacity"
	"carrygo/pkg/model"
	"carrygo/pkg/sealer"
)

// MatchCandidate is one compatible trip offered to the sender, carrying an
// opaque match token that pins the shipment-trip pair for request_match.
type MatchCandidate struct {
	Trip       *capacity.TripView `json:"trip"`
	MatchToken string             `json:"match_token"`
}

// MatchShipment finds trips that can still carry the shipment.
// Steps: load the shipment, search compatible trips by its weight and route,
// seal each candidate pair into a match token.
func MatchShipment() core.Flow {
	return core.NewFlow("match_shipment",
		core.NewStep("load_shipment", loadShipment),
		core.NewStep("search_compatible_trips", searchCompatibleTrips),
		core.NewStep("seal_candidates", sealCandidates),
	)
}

func loadShipment(ctx *core.FlowContext) error {
	shipmentID := ctx.ExtractString(ShipmentID)
	if core.IsMissing(shipmentID) {
		return core.MissingParamErr(ShipmentID)
	}

	resp, err := ctx.Client.Shipments.GetByID(shipmentID)
	if err != nil {
		return err
	}
	shipment, err := ctx.Client.Shipments.DecodeShipment(resp)
	if err != nil {
		return err
	}

	if shipment.Status != model.ShipmentStatusPendingMatch {
		return fmt.Errorf("shipment [%s] is not awaiting a match (status %s)", shipmentID, shipment.Status)
	}

	ctx.Process[Shipment] = shipment
	return nil
}

func searchCompatibleTrips(ctx *core.FlowContext) error {
	shipment := ctx.Process[Shipment].(*model.Shipment)

	resp, err := ctx.Client.Trips.SearchCompatible(
		shipment.Weight,
		shipment.DepartureCity,
		shipment.ArrivalCity,
		MaxCandidatesPerSearch,
		0,
	)
	if err != nil {
		return err
	}
	trips, _, err := ctx.Client.Trips.DecodeTrips(resp)
	if err != nil {
		return err
	}

	ctx.Process[Candidates] = trips
	return nil
}

func sealCandidates(ctx *core.FlowContext) error {
	shipment := ctx.Process[Shipment].(*model.Shipment)
	trips := ctx.Process[Candidates].([]*capacity.TripView)

	candidates := make([]*MatchCandidate, 0, len(trips))
	for _, trip := range trips {
		token, err := sealer.CreateMatchToken(shipment.ID, trip.ID)
		if err != nil {
			return fmt.Errorf("failed to seal match token for trip [%s]: %w", trip.ID, err)
		}
		candidates = append(candidates, &MatchCandidate{
			Trip:       trip,
			MatchToken: token,
		})
	}

	ctx.Output[ShipmentID] = shipment.ID
	ctx.Output["matches"] = candidates
	return nil
}
