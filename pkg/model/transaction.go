package model

import "time"

const (
	TransactionStatusPending    = "PENDING"
	TransactionStatusConfirmed  = "CONFIRMED"
	TransactionStatusInProgress = "IN_PROGRESS"
	TransactionStatusDelivered  = "DELIVERED"
	TransactionStatusDisputed   = "DISPUTED"
	TransactionStatusCanceled   = "CANCELED"
	TransactionStatusCompleted  = "COMPLETED"
)

// PackageSnapshot is the shipment's weight and dimensions frozen into the
// transaction document, so capacity accounting for a trip is a single
// collection scan rather than a per-transaction shipment lookup.
type PackageSnapshot struct {
	Weight float64  `json:"weight" bson:"weight" validate:"required,gt=0"`
	Length *float64 `json:"length,omitempty" bson:"length,omitempty" validate:"omitempty,gt=0"`
	Width  *float64 `json:"width,omitempty" bson:"width,omitempty" validate:"omitempty,gt=0"`
	Height *float64 `json:"height,omitempty" bson:"height,omitempty" validate:"omitempty,gt=0"`
}

// Transaction links exactly one shipment to one trip. The sender and traveler
// phones are denormalized from the shipment and trip owners at creation time.
// The security code is the delivery-confirmation secret shared with the
// sender; it is never serialized into API responses.
type Transaction struct {
	ID            string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	ShipmentID    string          `json:"shipment_id" bson:"shipment_id" validate:"required,mongodb"`
	TripID        string          `json:"trip_id" bson:"trip_id" validate:"required,mongodb"`
	SenderPhone   string          `json:"sender_phone" bson:"sender_phone" validate:"required,e164"`
	TravelerPhone string          `json:"traveler_phone" bson:"traveler_phone" validate:"required,e164"`
	AgreedPrice   float64         `json:"agreed_price" bson:"agreed_price" validate:"required,gt=0"`
	Currency      string          `json:"currency" bson:"currency" validate:"required,iso4217"`
	SecurityCode  string          `json:"-" bson:"security_code" validate:"required,len=6,numeric"`
	Package       PackageSnapshot `json:"package" bson:"package" validate:"required"`
	Status        string          `json:"status" bson:"status" validate:"required,oneof=PENDING CONFIRMED IN_PROGRESS DELIVERED DISPUTED CANCELED COMPLETED"`
	ConfirmedAt   *time.Time      `json:"confirmed_at,omitempty" bson:"confirmed_at,omitempty"`
	PickedUpAt    *time.Time      `json:"picked_up_at,omitempty" bson:"picked_up_at,omitempty"`
	DeliveredAt   *time.Time      `json:"delivered_at,omitempty" bson:"delivered_at,omitempty"`
	// Payment capture is simulated: amount and timestamp only, no gateway.
	PaymentCapturedAt *time.Time `json:"payment_captured_at,omitempty" bson:"payment_captured_at,omitempty"`
	PaymentAmount     float64    `json:"payment_amount,omitempty" bson:"payment_amount,omitempty"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at" validate:"omitempty"`
}

// HoldsCapacity reports whether the transaction currently counts against its
// trip's capacity. Membership in the closed active set, not a blacklist:
// unknown statuses never hold capacity.
func (t *Transaction) HoldsCapacity() bool {
	return t.Status == TransactionStatusConfirmed || t.Status == TransactionStatusInProgress
}
