package repository

import (
	"context"
	"fmt"
	"time"

	txerrors "carrygo/internal/transactions/errors"
	"carrygo/pkg/config"
	"carrygo/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const TripLocksCollection = "trip_locks"

// TripLockRepository serializes capacity-affecting confirmations per trip.
// Acquire inserts a lock document whose _id is derived from the trip id; a
// duplicate-key error means another confirmation holds the lock. Stale locks
// from crashed holders are reaped by a TTL index on expires_at.
type TripLockRepository interface {
	Acquire(ctx context.Context, tripID string) error
	Release(ctx context.Context, tripID string) error
}

type mongoTripLockRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoTripLockRepository(cfg *config.Config) TripLockRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoTripLockRepository{
		cfg:        cfg,
		collection: db.Collection(TripLocksCollection),
	}
}

func lockID(tripID string) string {
	return "trip-lock:" + tripID
}

func (r *mongoTripLockRepository) Acquire(ctx context.Context, tripID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC()
	lock := model.TripLock{
		ID:        lockID(tripID),
		TripID:    tripID,
		ExpiresAt: now.Add(r.cfg.CapacityLockTTL),
		CreatedAt: now,
	}

	_, err := r.collection.InsertOne(ctx, lock)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: trip %s", txerrors.ErrLockHeld, tripID)
		}
		return fmt.Errorf("failed to acquire trip lock: %w", err)
	}

	return nil
}

func (r *mongoTripLockRepository) Release(ctx context.Context, tripID string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": lockID(tripID)}); err != nil {
		return fmt.Errorf("failed to release trip lock: %w", err)
	}
	return nil
}
