package flows

import (
	"encoding/json"
	"fmt"
	"sync"

	"carrygo/internal/matcher/core"
	"carrygo/pkg/capacity"
	"carrygo/pkg/model"
	"carrygo/pkg/sealer"
)

// RequestMatch opens a PENDING transaction between a shipment and a trip.
// The pair comes either from a sealed match token or from explicit ids.
// Capacity is checked client-side first for fast failure; the transactions
// service re-checks it authoritatively at confirmation time.
func RequestMatch() core.Flow {
	return core.NewFlow("request_match",
		core.NewStep("resolve_pair", resolvePair),
		core.NewStep("load_documents", loadDocuments),
		core.NewStep("verify_compatibility", verifyCompatibility),
		core.NewStep("create_transaction", createTransaction),
	)
}

func resolvePair(ctx *core.FlowContext) error {
	if token := ctx.ExtractString(MatchToken); !core.IsMissing(token) {
		shipmentID, tripID, err := sealer.ParseMatchToken(token)
		if err != nil {
			return fmt.Errorf("invalid match token: %w", err)
		}
		ctx.Process[ShipmentID] = shipmentID
		ctx.Process[TripID] = tripID
		return nil
	}

	shipmentID := ctx.ExtractString(ShipmentID)
	if core.IsMissing(shipmentID) {
		return core.MissingParamErr(ShipmentID)
	}
	tripID := ctx.ExtractString(TripID)
	if core.IsMissing(tripID) {
		return core.MissingParamErr(TripID)
	}

	ctx.Process[ShipmentID] = shipmentID
	ctx.Process[TripID] = tripID
	return nil
}

func loadDocuments(ctx *core.FlowContext) error {
	shipmentID := ctx.Process[ShipmentID].(string)
	tripID := ctx.Process[TripID].(string)

	var shipment *model.Shipment
	var trip *capacity.TripView
	var errShipment, errTrip error

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		core.RunWithRateLimitedConcurrency(func() {
			resp, err := ctx.Client.Shipments.GetByID(shipmentID)
			if err != nil {
				errShipment = err
				return
			}
			shipment, errShipment = ctx.Client.Shipments.DecodeShipment(resp)
		})
	}()

	go func() {
		defer wg.Done()
		core.RunWithRateLimitedConcurrency(func() {
			resp, err := ctx.Client.Trips.GetByID(tripID)
			if err != nil {
				errTrip = err
				return
			}
			trip, errTrip = ctx.Client.Trips.DecodeTrip(resp)
		})
	}()

	wg.Wait()
	if errShipment != nil {
		return fmt.Errorf("failed to load shipment [%s]: %w", shipmentID, errShipment)
	}
	if errTrip != nil {
		return fmt.Errorf("failed to load trip [%s]: %w", tripID, errTrip)
	}

	ctx.Process[Shipment] = shipment
	ctx.Process[Trip] = trip
	return nil
}

func verifyCompatibility(ctx *core.FlowContext) error {
	shipment := ctx.Process[Shipment].(*model.Shipment)
	trip := ctx.Process[Trip].(*capacity.TripView)

	if shipment.Status != model.ShipmentStatusPendingMatch {
		return fmt.Errorf("shipment [%s] is not awaiting a match (status %s)", shipment.ID, shipment.Status)
	}
	if !trip.IsBookable() {
		return fmt.Errorf("trip [%s] is not accepting new transactions (status %s)", trip.ID, trip.Status)
	}
	if !trip.Accepts(shipment.Weight) {
		return fmt.Errorf("trip [%s] cannot fit %.1f kg (remaining %.1f kg, %d slots)",
			trip.ID, shipment.Weight, trip.RemainingWeight, trip.RemainingPackages)
	}

	return nil
}

func createTransaction(ctx *core.FlowContext) error {
	shipment := ctx.Process[Shipment].(*model.Shipment)
	trip := ctx.Process[Trip].(*capacity.TripView)

	body := map[string]any{
		ShipmentID: shipment.ID,
		TripID:     trip.ID,
	}
	if price, ok := ctx.ExtractFloat(AgreedPrice); ok {
		body[AgreedPrice] = price
	}

	resp, err := ctx.Client.Transactions.Create(body)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	var wrapper struct {
		Data struct {
			Transaction  *model.Transaction `json:"transaction"`
			SecurityCode string             `json:"security_code"`
		} `json:"data"`
	}
	if err := json.Unmarshal(resp.Body, &wrapper); err != nil {
		return fmt.Errorf("could not decode transaction create response: %w", err)
	}

	ctx.Output["transaction"] = wrapper.Data.Transaction
	// Relayed to the sender exactly once; the transactions API never
	// serializes it again.
	ctx.Output["security_code"] = wrapper.Data.SecurityCode
	return nil
}
