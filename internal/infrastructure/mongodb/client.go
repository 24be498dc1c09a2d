package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection = "users"
	itemsCollection = "plaid_items"
)

// Connect establishes the MongoDB connection and verifies it with a ping.
// The returned close function disconnects the client.
func Connect(ctx context.Context, uri, database string) (*mongo.Database, func(context.Context) error, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("mongodb: connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongodb: ping: %w", err)
	}

	slog.InfoContext(ctx, "connected to mongodb", "database", database)
	return client.Database(database), client.Disconnect, nil
}

// EnsureIndexes creates the unique indexes the repositories rely on. Safe to
// call on every startup; index creation is idempotent.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "subject", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("mongodb: users index: %w", err)
	}

	_, err = db.Collection(itemsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "item_id", Value: 1}},
		Options: unique,
	})
	if err != nil {
		return fmt.Errorf("mongodb: items index: %w", err)
	}

	return nil
}
