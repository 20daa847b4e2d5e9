package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	shipmenterrors "carrygo/internal/shipments/errors"
	"carrygo/pkg/config"
	mongotx "carrygo/pkg/db/mongo"
	"carrygo/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "shipments"
)

type mongoShipmentRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type ShipmentRepository interface {
	Create(ctx context.Context, shipment *model.Shipment) error
	FindByID(ctx context.Context, id string) (*model.Shipment, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Shipment, error)
	Update(ctx context.Context, id string, shipment *model.Shipment) (*mongo.UpdateResult, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	Count(ctx context.Context) (int64, error)

	FindByPhone(ctx context.Context, phone string, limit int, offset int64) ([]*model.Shipment, error)
	CountByPhone(ctx context.Context, phone string) (int64, error)
	FindPendingByRoute(ctx context.Context, departureCity, arrivalCity string, limit int, offset int64) ([]*model.Shipment, error)
	CountPendingByRoute(ctx context.Context, departureCity, arrivalCity string) (int64, error)

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoShipmentRepository(cfg *config.Config) ShipmentRepository {
	db := cfg.Client.Mongo.Client.Database(cfg.MongoDatabaseName)
	return &mongoShipmentRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo.Client),
	}
}

func (r *mongoShipmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
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

func (r *mongoShipmentRepository) Create(ctx context.Context, shipment *model.Shipment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	shipment.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, shipment)
	if err != nil {
		return fmt.Errorf("failed to create shipment: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		shipment.ID = oid.Hex()
	}

	return nil
}

func (r *mongoShipmentRepository) FindByID(ctx context.Context, id string) (*model.Shipment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shipmenterrors.ErrInvalidID, id)
	}

	var shipment model.Shipment
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&shipment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", shipmenterrors.ErrNotFound, id)
		}
		return nil, fmt.Errorf("failed to find shipment: %w", err)
	}
	return &shipment, nil
}

func (r *mongoShipmentRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Shipment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query shipments: %w", err)
	}
	defer cursor.Close(ctx)

	var shipments []*model.Shipment
	if err = cursor.All(ctx, &shipments); err != nil {
		return nil, fmt.Errorf("failed to decode shipments: %w", err)
	}

	return shipments, nil
}

func (r *mongoShipmentRepository) Update(ctx context.Context, id string, shipment *model.Shipment) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shipmenterrors.ErrInvalidID, id)
	}

	update := bson.M{
		"$set": bson.M{
			"description":       shipment.Description,
			"weight":            shipment.Weight,
			"length":            shipment.Length,
			"width":             shipment.Width,
			"height":            shipment.Height,
			"departure_city":    shipment.DepartureCity,
			"departure_country": shipment.DepartureCountry,
			"arrival_city":      shipment.ArrivalCity,
			"arrival_country":   shipment.ArrivalCountry,
			"proposed_price":    shipment.ProposedPrice,
			"currency":          shipment.Currency,
			"status":            shipment.Status,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update shipment: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, fmt.Errorf("%w: %s", shipmenterrors.ErrNotFound, id)
	}

	return result, nil
}

func (r *mongoShipmentRepository) UpdateStatus(ctx context.Context, id string, status string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", shipmenterrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": objectID},
		bson.M{"$set": bson.M{"status": status}},
	)
	if err != nil {
		return fmt.Errorf("failed to update shipment status: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", shipmenterrors.ErrNotFound, id)
	}

	return nil
}

func (r *mongoShipmentRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count shipments: %w", err)
	}
	return count, nil
}

func (r *mongoShipmentRepository) FindByPhone(ctx context.Context, phone string, limit int, offset int64) ([]*model.Shipment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"sender_phone": phone}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find shipments for phone [%s]: %w", phone, err)
	}
	defer cursor.Close(ctx)

	var shipments []*model.Shipment
	if err := cursor.All(ctx, &shipments); err != nil {
		return nil, fmt.Errorf("failed to decode shipments: %w", err)
	}

	return shipments, nil
}

func (r *mongoShipmentRepository) CountByPhone(ctx context.Context, phone string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"sender_phone": phone})
	if err != nil {
		return 0, fmt.Errorf("failed to count shipments for phone [%s]: %w", phone, err)
	}
	return count, nil
}

func (r *mongoShipmentRepository) pendingRouteFilter(departureCity, arrivalCity string) bson.M {
	filter := bson.M{"status": model.ShipmentStatusPendingMatch}
	if departureCity != "" {
		filter["departure_city"] = departureCity
	}
	if arrivalCity != "" {
		filter["arrival_city"] = arrivalCity
	}
	return filter
}

func (r *mongoShipmentRepository) FindPendingByRoute(ctx context.Context, departureCity, arrivalCity string, limit int, offset int64) ([]*model.Shipment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetLimit(int64(limit)).
		SetSkip(offset).
		SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, r.pendingRouteFilter(departureCity, arrivalCity), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending shipments by route: %w", err)
	}
	defer cursor.Close(ctx)

	var shipments []*model.Shipment
	if err := cursor.All(ctx, &shipments); err != nil {
		return nil, fmt.Errorf("failed to decode shipments: %w", err)
	}

	return shipments, nil
}

func (r *mongoShipmentRepository) CountPendingByRoute(ctx context.Context, departureCity, arrivalCity string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, r.pendingRouteFilter(departureCity, arrivalCity))
	if err != nil {
		return 0, fmt.Errorf("failed to count pending shipments by route: %w", err)
	}
	return count, nil
}

func (r *mongoShipmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
