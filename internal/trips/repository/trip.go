package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	triperrors "carrygo/internal/trips/errors"
	"carrygo/pkg/capacity"
	"carrygo/pkg/config"
	mongotx "carrygo/pkg/db/mongo"
	"carrygo/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "trips"

	// Transactions live in the same database; reading them here keeps
	// capacity evaluation a single snapshot instead of a service hop.
	TransactionsCollection = "transactions"
)

type mongoTripRepository struct {
	cfg          *config.Config
	db           *mongo.Database
	collection   *mongo.Collection
	transactions *mongo.Collection
	txManager    mongotx.TransactionManager
}

type TripRepository interface {
	capacity.SnapshotReader

	Create(ctx context.Context, trip *model.Trip) error
	FindByID(ctx context.Context, id string) (*model.Trip, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Trip, error)
	Update(ctx context.Context, id string, trip *model.Trip) (*mongo.UpdateResult, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	Count(ctx context.Context) (int64, error)

	FindByRoute(ctx context.Context, departureCity, arrivalCity string, limit int, offset int64) ([]*model.Trip, error)
	CountByRoute(ctx context.Context, departureCity, arrivalCity string) (int64, error)
	FindTransactionsForTrips(ctx context.Context, tripIDs []string) (map[string][]*model.Transaction, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoTripRepository(cfg *config.Config) TripRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoTripRepository{
		cfg:          cfg,
		db:           db,
		collection:   db.Collection(CollectionName),
		transactions: db.Collection(TransactionsCollection),
		txManager:    mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

// withTimeout wraps the context with a timeout unless already inside a
// transaction, where wrapping the SessionContext would break session
// semantics.
func (r *mongoTripRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoTripRepository) Create(ctx context.Context, trip *model.Trip) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	trip.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, trip)
	if err != nil {
		return fmt.Errorf("failed to create trip: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		trip.ID = oid.Hex()
	}

	return nil
}

func (r *mongoTripRepository) FindByID(ctx context.Context, id string) (*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", triperrors.ErrInvalidID, id)
	}

	var trip model.Trip
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&trip)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", triperrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find trip: %w", err)
	}
	return &trip, nil
}

func (r *mongoTripRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "departure_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query trips: %w", err)
	}
	defer cursor.Close(ctx)

	var trips []*model.Trip
	if err = cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips: %w", err)
	}

	return trips, nil
}

func (r *mongoTripRepository) Update(ctx context.Context, id string, trip *model.Trip) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", triperrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"departure_city":    trip.DepartureCity,
			"departure_country": trip.DepartureCountry,
			"arrival_city":      trip.ArrivalCity,
			"arrival_country":   trip.ArrivalCountry,
			"departure_time":    trip.DepartureTime,
			"arrival_time":      trip.ArrivalTime,
			"available_weight":  trip.AvailableWeight,
			"available_volume":  trip.AvailableVolume,
			"max_packages":      trip.MaxPackages,
			"price_per_kg":      trip.PricePerKg,
			"minimum_price":     trip.MinimumPrice,
			"currency":          trip.Currency,
			"status":            trip.Status,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update trip: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", triperrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoTripRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", triperrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update trip status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", triperrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoTripRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count trips: %w", err)
	}
	return count, nil
}

func (r *mongoTripRepository) routeFilter(departureCity, arrivalCity string) bson.M {
	filter := bson.M{
		"status": bson.M{"$in": []string{model.TripStatusAvailable, model.TripStatusPartiallyBooked}},
	}
	if departureCity != "" {
		filter["departure_city"] = departureCity
	}
	if arrivalCity != "" {
		filter["arrival_city"] = arrivalCity
	}
	return filter
}

func (r *mongoTripRepository) FindByRoute(ctx context.Context, departureCity, arrivalCity string, limit int, offset int64) ([]*model.Trip, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "departure_time", Value: 1}})

	cursor, err := r.collection.Find(ctx, r.routeFilter(departureCity, arrivalCity), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find trips by route: %w", err)
	}
	defer cursor.Close(ctx)

	var trips []*model.Trip
	if err := cursor.All(ctx, &trips); err != nil {
		return nil, fmt.Errorf("failed to decode trips: %w", err)
	}

	return trips, nil
}

func (r *mongoTripRepository) CountByRoute(ctx context.Context, departureCity, arrivalCity string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.routeFilter(departureCity, arrivalCity))
	if err != nil {
		return 0, fmt.Errorf("failed to count trips by route: %w", err)
	}
	return count, nil
}

// TripSnapshot implements capacity.SnapshotReader: the trip plus every
// transaction referencing it, in one consistent read.
func (r *mongoTripRepository) TripSnapshot(ctx context.Context, tripID string) (*capacity.Snapshot, error) {
	trip, err := r.FindByID(ctx, tripID)
	if err != nil {
		if errors.Is(err, triperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", capacity.ErrTripNotFound, tripID)
		}
		return nil, err
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.transactions.Find(ctx, bson.M{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for trip [%s]: %w", tripID, err)
	}
	defer cursor.Close(ctx)

	var txs []*model.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions for trip [%s]: %w", tripID, err)
	}

	return &capacity.Snapshot{Trip: trip, Transactions: txs}, nil
}

func (r *mongoTripRepository) FindTransactionsForTrips(ctx context.Context, tripIDs []string) (map[string][]*model.Transaction, error) {
	result := make(map[string][]*model.Transaction, len(tripIDs))
	if len(tripIDs) == 0 {
		return result, nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.transactions.Find(ctx, bson.M{"trip_id": bson.M{"$in": tripIDs}})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions for trips: %w", err)
	}
	defer cursor.Close(ctx)

	var txs []*model.Transaction
	if err := cursor.All(ctx, &txs); err != nil {
		return nil, fmt.Errorf("failed to decode transactions for trips: %w", err)
	}

	for _, tx := range txs {
		result[tx.TripID] = append(result[tx.TripID], tx)
	}

	return result, nil
}

func (r *mongoTripRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
