package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned by every store when the requested document does
// not exist. Handlers map it to a 404 response.
var ErrNotFound = errors.New("store: document not found")

func ConnectMongo() (*mongo.Database, error) {
	uri := os.Getenv("MONGO_URI")
	if uri == "" {
		uri = "mongodb://localhost:27017"
	}

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "vidtube"
	}

	var client *mongo.Client
	var err error

	// Retry up to 10 times, waiting 3 seconds between attempts
	for i := 1; i <= 10; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err = mongo.Connect(ctx, options.Client().ApplyURI(uri))
		if err == nil {
			err = client.Ping(ctx, nil)
			if err == nil {
				cancel()
				fmt.Println("Connected to MongoDB!")
				return client.Database(dbName), nil
			}
			fmt.Printf("Attempt %d: MongoDB not ready: %v\n", i, err)
		} else {
			fmt.Printf("Attempt %d: failed to connect to MongoDB: %v\n", i, err)
		}
		cancel()

		time.Sleep(3 * time.Second)
	}

	return nil, fmt.Errorf("could not connect to MongoDB after multiple attempts: %w", err)
}

// EnsureIndexes creates the indexes the stores rely on. The unique
// (subscriber, channel) index backs the toggle's no-duplicate-edge invariant.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection("subscriptions").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "subscriber", Value: 1}, {Key: "channel", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("subscriptions index: %w", err)
	}

	_, err = db.Collection("videos").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("videos index: %w", err)
	}

	_, err = db.Collection("tweets").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "owner", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("tweets index: %w", err)
	}

	return nil
}
