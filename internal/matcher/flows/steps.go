package flows

// Keys shared between steps through the flow context.
const (
	ShipmentID  = "shipment_id"
	TripID      = "trip_id"
	MatchToken  = "match_token"
	AgreedPrice = "agreed_price"

	Shipment   = "shipment"
	Trip       = "trip"
	Candidates = "candidates"

	MaxCandidatesPerSearch = 20
)
