package model

import "time"

const (
	ShipmentStatusPendingMatch = "PENDING_MATCH"
	ShipmentStatusMatched      = "MATCHED"
	ShipmentStatusInTransit    = "IN_TRANSIT"
	ShipmentStatusDelivered    = "DELIVERED"
	ShipmentStatusCanceled     = "CANCELED"
)

// Shipment is a sender's package waiting for a traveler.
// Weight is in kilograms; dimensions are in centimeters and optional.
// Partial dimension data is common and tolerated: volume is only derivable
// when all three dimensions are present.
type Shipment struct {
	ID               string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	SenderPhone      string    `json:"sender_phone" bson:"sender_phone" validate:"required,e164"`
	Description      string    `json:"description" bson:"description" validate:"required,min=2,max=500"`
	Weight           float64   `json:"weight" bson:"weight" validate:"required,gt=0"`
	Length           *float64  `json:"length,omitempty" bson:"length,omitempty" validate:"omitempty,gt=0"`
	Width            *float64  `json:"width,omitempty" bson:"width,omitempty" validate:"omitempty,gt=0"`
	Height           *float64  `json:"height,omitempty" bson:"height,omitempty" validate:"omitempty,gt=0"`
	DepartureCity    string    `json:"departure_city" bson:"departure_city" validate:"required,min=2,max=100"`
	DepartureCountry string    `json:"departure_country" bson:"departure_country" validate:"required,min=2,max=100"`
	ArrivalCity      string    `json:"arrival_city" bson:"arrival_city" validate:"required,min=2,max=100"`
	ArrivalCountry   string    `json:"arrival_country" bson:"arrival_country" validate:"required,min=2,max=100"`
	ProposedPrice    float64   `json:"proposed_price" bson:"proposed_price" validate:"required,gt=0"`
	Currency         string    `json:"currency" bson:"currency" validate:"required,iso4217"`
	Status           string    `json:"status" bson:"status" validate:"required,oneof=PENDING_MATCH MATCHED IN_TRANSIT DELIVERED CANCELED"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type ShipmentUpdate struct {
	Description      string   `json:"description,omitempty" validate:"omitempty,min=2,max=500"`
	Weight           *float64 `json:"weight,omitempty" validate:"omitempty,gt=0"`
	Length           *float64 `json:"length,omitempty" validate:"omitempty,gt=0"`
	Width            *float64 `json:"width,omitempty" validate:"omitempty,gt=0"`
	Height           *float64 `json:"height,omitempty" validate:"omitempty,gt=0"`
	DepartureCity    string   `json:"departure_city,omitempty" validate:"omitempty,min=2,max=100"`
	DepartureCountry string   `json:"departure_country,omitempty" validate:"omitempty,min=2,max=100"`
	ArrivalCity      string   `json:"arrival_city,omitempty" validate:"omitempty,min=2,max=100"`
	ArrivalCountry   string   `json:"arrival_country,omitempty" validate:"omitempty,min=2,max=100"`
	ProposedPrice    *float64 `json:"proposed_price,omitempty" validate:"omitempty,gt=0"`
	Currency         string   `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Status           string   `json:"status,omitempty" validate:"omitempty,oneof=PENDING_MATCH MATCHED IN_TRANSIT DELIVERED CANCELED"`
}

// Snapshot captures the capacity-relevant physical attributes of the shipment
// at transaction creation time.
func (s *Shipment) Snapshot() PackageSnapshot {
	return PackageSnapshot{
		Weight: s.Weight,
		Length: s.Length,
		Width:  s.Width,
		Height: s.Height,
	}
}
