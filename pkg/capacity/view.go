package capacity

import "carrygo/pkg/model"

// TripView is the API representation of a trip annotated with its derived
// capacity report. The report fields are inlined into the trip JSON.
type TripView struct {
	*model.Trip
	Report
}

// NewTripView evaluates the trip's capacity from its transaction set and
// attaches the report.
func NewTripView(trip *model.Trip, transactions []*model.Transaction) *TripView {
	return &TripView{
		Trip:   trip,
		Report: Evaluate(trip, transactions),
	}
}
