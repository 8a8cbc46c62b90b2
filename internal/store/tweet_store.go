package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vidtube/vidtube-server/internal/models"
)

type TweetStore interface {
	CreateTweet(ctx context.Context, tweet *models.Tweet) error
	GetTweetByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error)
	GetTweetsByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Tweet, error)
	UpdateTweet(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error)
	DeleteTweet(ctx context.Context, id primitive.ObjectID) error
}

type MongoTweetStore struct {
	db *mongo.Database
}

func NewMongoTweetStore(db *mongo.Database) *MongoTweetStore {
	if db == nil {
		panic("db cannot be nil for MongoTweetStore")
	}
	return &MongoTweetStore{db: db}
}

func (ms *MongoTweetStore) tweets() *mongo.Collection {
	return ms.db.Collection("tweets")
}

func (ms *MongoTweetStore) CreateTweet(ctx context.Context, tweet *models.Tweet) error {
	_, err := ms.tweets().InsertOne(ctx, tweet)
	return err
}

func (ms *MongoTweetStore) GetTweetByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	var tweet models.Tweet
	err := ms.tweets().FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&tweet)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (ms *MongoTweetStore) GetTweetsByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Tweet, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := ms.tweets().Find(ctx, bson.D{{Key: "owner", Value: owner}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tweets := []models.Tweet{}
	if err := cursor.All(ctx, &tweets); err != nil {
		return nil, err
	}
	return tweets, nil
}

func (ms *MongoTweetStore) UpdateTweet(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "content", Value: content},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}}

	var tweet models.Tweet
	err := ms.tweets().FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&tweet)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tweet, nil
}

func (ms *MongoTweetStore) DeleteTweet(ctx context.Context, id primitive.ObjectID) error {
	result, err := ms.tweets().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
