package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	txerrors "carrygo/internal/transactions/errors"
	"carrygo/pkg/config"
	mongotx "carrygo/pkg/db/mongo"
	"carrygo/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName      = "transactions"
	TripsCollection     = "trips"
	ShipmentsCollection = "shipments"
)

// TransactionRepository persists transactions and reaches into the trip and
// shipment collections of the shared database, so lifecycle transitions can
// update all three documents inside one Mongo session.
type TransactionRepository interface {
	Create(ctx context.Context, tx *model.Transaction) error
	FindByID(ctx context.Context, id string) (*model.Transaction, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Transaction, error)
	Count(ctx context.Context) (int64, error)
	FindByTrip(ctx context.Context, tripID string, limit int, offset int64) ([]*model.Transaction, error)
	CountByTrip(ctx context.Context, tripID string) (int64, error)
	FindHoldingCapacity(ctx context.Context, tripID string) ([]*model.Transaction, error)
	UpdateTransition(ctx context.Context, id string, update bson.M) error

	FindTrip(ctx context.Context, tripID string) (*model.Trip, error)
	UpdateTripStatus(ctx context.Context, tripID string, status string) error
	FindShipment(ctx context.Context, shipmentID string) (*model.Shipment, error)
	UpdateShipmentStatus(ctx context.Context, shipmentID string, status string) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoTransactionRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	trips      *mongo.Collection
	shipments  *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoTransactionRepository(cfg *config.Config) TransactionRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoTransactionRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		trips:      db.Collection(TripsCollection),
		shipments:  db.Collection(ShipmentsCollection),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

func (r *mongoTransactionRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoTransactionRepository) Create(ctx context.Context, tx *model.Transaction) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	tx.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		tx.ID = oid.Hex()
	}

	return nil
}

func (r *mongoTransactionRepository) FindByID(ctx context.Context, id string) (*model.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", txerrors.ErrInvalidID, id)
	}

	var tx model.Transaction
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", txerrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return &tx, nil
}

func (r *mongoTransactionRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []*model.Transaction
	if err = cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return txs, nil
}

func (r *mongoTransactionRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *mongoTransactionRepository) FindByTrip(ctx context.Context, tripID string, limit int, offset int64) ([]*model.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"trip_id": tripID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find transactions for trip [%s]: %w", tripID, err)
	}
	defer cursor.Close(ctx)

	var txs []*model.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return txs, nil
}

func (r *mongoTransactionRepository) CountByTrip(ctx context.Context, tripID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"trip_id": tripID})
	if err != nil {
		return 0, fmt.Errorf("failed to count transactions for trip [%s]: %w", tripID, err)
	}
	return count, nil
}

// FindHoldingCapacity returns the trip's transactions whose status currently
// holds capacity. Used for the capacity re-check under the confirmation lock.
func (r *mongoTransactionRepository) FindHoldingCapacity(ctx context.Context, tripID string) ([]*model.Transaction, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"trip_id": tripID,
		"status": bson.M{"$in": []string{
			model.TransactionStatusConfirmed,
			model.TransactionStatusInProgress,
		}},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find active transactions for trip [%s]: %w", tripID, err)
	}
	defer cursor.Close(ctx)

	var txs []*model.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions: %w", err)
	}

	return txs, nil
}

// UpdateTransition applies a $set document built by the service for one
// lifecycle transition (status plus its timestamp fields).
func (r *mongoTransactionRepository) UpdateTransition(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", txerrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": update})
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", txerrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoTransactionRepository) FindTrip(ctx context.Context, tripID string) (*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(tripID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid trip id %s", txerrors.ErrInvalidID, tripID)
	}

	var trip model.Trip
	err = r.trips.FindOne(ctx, bson.M{"_id": objectID}).Decode(&trip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: trip %s", txerrors.ErrNotFound, tripID)
		}
		return nil, fmt.Errorf("failed to find trip: %w", err)
	}
	return &trip, nil
}

func (r *mongoTransactionRepository) UpdateTripStatus(ctx context.Context, tripID string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(tripID)
	if err != nil {
		return fmt.Errorf("%w: invalid trip id %s", txerrors.ErrInvalidID, tripID)
	}

	result, err := r.trips.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update trip status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: trip %s", txerrors.ErrNotFound, tripID)
	}

	return nil
}

func (r *mongoTransactionRepository) FindShipment(ctx context.Context, shipmentID string) (*model.Shipment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(shipmentID)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid shipment id %s", txerrors.ErrInvalidID, shipmentID)
	}

	var shipment model.Shipment
	err = r.shipments.FindOne(ctx, bson.M{"_id": objectID}).Decode(&shipment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: shipment %s", txerrors.ErrNotFound, shipmentID)
		}
		return nil, fmt.Errorf("failed to find shipment: %w", err)
	}
	return &shipment, nil
}

func (r *mongoTransactionRepository) UpdateShipmentStatus(ctx context.Context, shipmentID string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(shipmentID)
	if err != nil {
		return fmt.Errorf("%w: invalid shipment id %s", txerrors.ErrInvalidID, shipmentID)
	}

	result, err := r.shipments.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update shipment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: shipment %s", txerrors.ErrNotFound, shipmentID)
	}

	return nil
}

func (r *mongoTransactionRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
