package model

import "time"

// TripLock is an advisory lock serializing capacity-affecting confirmations
// on a single trip. The _id is derived from the trip id, so a unique-key
// violation on insert means another confirmation is in flight.
type TripLock struct {
	ID        string    `bson:"_id" json:"id"`
	TripID    string    `bson:"trip_id" json:"trip_id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
