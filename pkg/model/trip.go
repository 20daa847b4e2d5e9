package model

import "time"

const (
	TripStatusAvailable       = "AVAILABLE"
	TripStatusPartiallyBooked = "PARTIALLY_BOOKED"
	TripStatusFullyBooked     = "FULLY_BOOKED"
	TripStatusCompleted       = "COMPLETED"
	TripStatusCanceled        = "CANCELED"
)

// Trip is a traveler's offer to carry packages along a route.
// AvailableWeight is in kilograms, AvailableVolume in liters.
// AvailableVolume is optional: a nil value means the traveler declared no
// volume limit, which is not the same as a zero limit.
type Trip struct {
	ID               string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	TravelerPhone    string     `json:"traveler_phone" bson:"traveler_phone" validate:"required,e164"`
	DepartureCity    string     `json:"departure_city" bson:"departure_city" validate:"required,min=2,max=100"`
	DepartureCountry string     `json:"departure_country" bson:"departure_country" validate:"required,min=2,max=100"`
	ArrivalCity      string     `json:"arrival_city" bson:"arrival_city" validate:"required,min=2,max=100"`
	ArrivalCountry   string     `json:"arrival_country" bson:"arrival_country" validate:"required,min=2,max=100"`
	DepartureTime    time.Time  `json:"departure_time" bson:"departure_time" validate:"required"`
	ArrivalTime      time.Time  `json:"arrival_time" bson:"arrival_time" validate:"required,gtfield=DepartureTime"`
	AvailableWeight  float64    `json:"available_weight" bson:"available_weight" validate:"required,gt=0"`
	AvailableVolume  *float64   `json:"available_volume,omitempty" bson:"available_volume,omitempty" validate:"omitempty,gt=0"`
	MaxPackages      int        `json:"max_packages" bson:"max_packages" validate:"required,min=1,max=50"`
	PricePerKg       float64    `json:"price_per_kg" bson:"price_per_kg" validate:"required,gt=0"`
	MinimumPrice     float64    `json:"minimum_price" bson:"minimum_price" validate:"omitempty,gte=0"`
	Currency         string     `json:"currency" bson:"currency" validate:"required,iso4217"`
	Status           string     `json:"status" bson:"status" validate:"required,oneof=AVAILABLE PARTIALLY_BOOKED FULLY_BOOKED COMPLETED CANCELED"`
	CreatedAt        time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

type TripUpdate struct {
	DepartureCity    string     `json:"departure_city,omitempty" validate:"omitempty,min=2,max=100"`
	DepartureCountry string     `json:"departure_country,omitempty" validate:"omitempty,min=2,max=100"`
	ArrivalCity      string     `json:"arrival_city,omitempty" validate:"omitempty,min=2,max=100"`
	ArrivalCountry   string     `json:"arrival_country,omitempty" validate:"omitempty,min=2,max=100"`
	DepartureTime    *time.Time `json:"departure_time,omitempty" validate:"omitempty"`
	ArrivalTime      *time.Time `json:"arrival_time,omitempty" validate:"omitempty"`
	AvailableWeight  *float64   `json:"available_weight,omitempty" validate:"omitempty,gt=0"`
	AvailableVolume  *float64   `json:"available_volume,omitempty" validate:"omitempty,gt=0"`
	MaxPackages      *int       `json:"max_packages,omitempty" validate:"omitempty,min=1,max=50"`
	PricePerKg       *float64   `json:"price_per_kg,omitempty" validate:"omitempty,gt=0"`
	MinimumPrice     *float64   `json:"minimum_price,omitempty" validate:"omitempty,gte=0"`
	Currency         string     `json:"currency,omitempty" validate:"omitempty,iso4217"`
	Status           string     `json:"status,omitempty" validate:"omitempty,oneof=AVAILABLE PARTIALLY_BOOKED FULLY_BOOKED COMPLETED CANCELED"`
}

// IsBookable reports whether new transactions may still be opened against the trip.
func (t *Trip) IsBookable() bool {
	return t.Status == TripStatusAvailable || t.Status == TripStatusPartiallyBooked
}
