package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"carrygo/internal/migrations/mongo/validators"
)

var (
	TripsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "traveler_phone", Value: 1}}},
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "departure_city", Value: 1},
			{Key: "arrival_city", Value: 1},
		}},
		{Keys: bson.D{{Key: "departure_time", Value: 1}}},
	}

	ShipmentsIndexes = []mongo.IndexModel{
		{Keys: bson.D{{Key: "sender_phone", Value: 1}}},
		{Keys: bson.D{
			{Key: "status", Value: 1},
			{Key: "departure_city", Value: 1},
			{Key: "arrival_city", Value: 1},
		}},
	}

	// trip_id + status serves the capacity scan: every read of a trip's
	// consumed capacity filters on exactly these two fields.
	TransactionsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "trip_id", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{{Key: "shipment_id", Value: 1}}},
		{Keys: bson.D{{Key: "sender_phone", Value: 1}}},
		{Keys: bson.D{{Key: "traveler_phone", Value: 1}}},
	}

	// Expired advisory locks are reaped by Mongo itself.
	TripLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{Keys: bson.D{{Key: "trip_id", Value: 1}}},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("Running CarryGo Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"trips": {
			Indexes:   TripsIndexes,
			Validator: validators.TripValidator,
		},
		"shipments": {
			Indexes:   ShipmentsIndexes,
			Validator: validators.ShipmentValidator,
		},
		"transactions": {
			Indexes:   TransactionsIndexes,
			Validator: validators.TransactionValidator,
		},
		"trip_locks": {
			Indexes: TripLocksIndexes,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("Creating collection: %s\n", name)
		opts := options.CreateCollection()
		if validator != nil {
			opts.SetValidator(validator)
		}
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	if validator == nil {
		return nil
	}

	fmt.Printf("Collection %s already exists, updating validator\n", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		fmt.Printf("Warning: failed updating validator for %s: %v\n", name, err)
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("Ensured indexes for %s\n", name)
	return nil
}
