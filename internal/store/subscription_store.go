package store

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/vidtube-server/internal/models"
)

// SubscriberProfile is the reduced profile returned when listing the
// subscribers of a channel.
type SubscriberProfile struct {
	SubscriberID primitive.ObjectID `bson:"subscriberId" json:"subscriberId"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email" json:"email"`
	Avatar       string             `bson:"avatar" json:"avatar"`
}

// ChannelProfile is the reduced profile returned when listing the channels
// a user has subscribed to.
type ChannelProfile struct {
	ChannelID primitive.ObjectID `bson:"channelId" json:"channelId"`
	Username  string             `bson:"username" json:"username"`
	Email     string             `bson:"email" json:"email"`
	Avatar    string             `bson:"avatar" json:"avatar"`
}

type SubscriptionStore interface {
	FindSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error)
	CreateSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) error
	DeleteSubscription(ctx context.Context, id primitive.ObjectID) error
	ListChannelSubscribers(ctx context.Context, channel primitive.ObjectID) ([]SubscriberProfile, error)
	ListSubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]ChannelProfile, error)
}

type MongoSubscriptionStore struct {
	db *mongo.Database
}

func NewMongoSubscriptionStore(db *mongo.Database) *MongoSubscriptionStore {
	if db == nil {
		panic("db cannot be nil for MongoSubscriptionStore")
	}
	return &MongoSubscriptionStore{db: db}
}

func (ms *MongoSubscriptionStore) subscriptions() *mongo.Collection {
	return ms.db.Collection("subscriptions")
}

func (ms *MongoSubscriptionStore) FindSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error) {
	filter := bson.D{
		{Key: "subscriber", Value: subscriber},
		{Key: "channel", Value: channel},
	}

	var subscription models.Subscription
	err := ms.subscriptions().FindOne(ctx, filter).Decode(&subscription)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &subscription, nil
}

func (ms *MongoSubscriptionStore) CreateSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) error {
	_, err := ms.subscriptions().InsertOne(ctx, models.Subscription{
		ID:         primitive.NewObjectID(),
		Subscriber: subscriber,
		Channel:    channel,
		CreatedAt:  time.Now().UTC(),
	})
	return err
}

func (ms *MongoSubscriptionStore) DeleteSubscription(ctx context.Context, id primitive.ObjectID) error {
	result, err := ms.subscriptions().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// profilePipeline joins one side of the edge to the users collection and
// projects a reduced profile under the given output field names.
func profilePipeline(match bson.D, localField, idField string) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: localField},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "profile"},
		}}},
		bson.D{{Key: "$unwind", Value: "$profile"}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: idField, Value: "$profile._id"},
			{Key: "username", Value: "$profile.username"},
			{Key: "email", Value: "$profile.email"},
			{Key: "avatar", Value: "$profile.avatar"},
		}}},
	}
}

func (ms *MongoSubscriptionStore) ListChannelSubscribers(ctx context.Context, channel primitive.ObjectID) ([]SubscriberProfile, error) {
	pipeline := profilePipeline(bson.D{{Key: "channel", Value: channel}}, "subscriber", "subscriberId")

	cursor, err := ms.subscriptions().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	subscribers := []SubscriberProfile{}
	if err := cursor.All(ctx, &subscribers); err != nil {
		return nil, err
	}
	return subscribers, nil
}

func (ms *MongoSubscriptionStore) ListSubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]ChannelProfile, error) {
	pipeline := profilePipeline(bson.D{{Key: "subscriber", Value: subscriber}}, "channel", "channelId")

	cursor, err := ms.subscriptions().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	channels := []ChannelProfile{}
	if err := cursor.All(ctx, &channels); err != nil {
		return nil, err
	}
	return channels, nil
}
