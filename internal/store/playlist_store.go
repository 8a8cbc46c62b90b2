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

// PlaylistWithVideos is a playlist whose video references have been
// resolved to full video documents via $lookup.
type PlaylistWithVideos struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description" json:"description"`
	Owner       primitive.ObjectID `bson:"owner" json:"owner"`
	Videos      []models.Video     `bson:"videos" json:"videos"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type PlaylistStore interface {
	CreatePlaylist(ctx context.Context, playlist *models.Playlist) error
	GetPlaylistByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error)
	GetPlaylistWithVideos(ctx context.Context, id primitive.ObjectID) (*PlaylistWithVideos, error)
	GetPlaylistsByOwner(ctx context.Context, owner primitive.ObjectID) ([]PlaylistWithVideos, error)
	UpdatePlaylist(ctx context.Context, id primitive.ObjectID, name, description string) (*models.Playlist, error)
	DeletePlaylist(ctx context.Context, id primitive.ObjectID) error
	AddVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error)
	RemoveVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error)
}

type MongoPlaylistStore struct {
	db *mongo.Database
}

func NewMongoPlaylistStore(db *mongo.Database) *MongoPlaylistStore {
	if db == nil {
		panic("db cannot be nil for MongoPlaylistStore")
	}
	return &MongoPlaylistStore{db: db}
}

func (ms *MongoPlaylistStore) playlists() *mongo.Collection {
	return ms.db.Collection("playlists")
}

func (ms *MongoPlaylistStore) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	_, err := ms.playlists().InsertOne(ctx, playlist)
	return err
}

func (ms *MongoPlaylistStore) GetPlaylistByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	var playlist models.Playlist
	err := ms.playlists().FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&playlist)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}

// populatePipeline resolves the videos array against the videos collection.
func populatePipeline(match bson.D) mongo.Pipeline {
	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "videos"},
			{Key: "localField", Value: "videos"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "videos"},
		}}},
	}
}

func (ms *MongoPlaylistStore) GetPlaylistWithVideos(ctx context.Context, id primitive.ObjectID) (*PlaylistWithVideos, error) {
	pipeline := populatePipeline(bson.D{{Key: "_id", Value: id}})

	cursor, err := ms.playlists().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []PlaylistWithVideos
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, ErrNotFound
	}
	return &results[0], nil
}

func (ms *MongoPlaylistStore) GetPlaylistsByOwner(ctx context.Context, owner primitive.ObjectID) ([]PlaylistWithVideos, error) {
	pipeline := populatePipeline(bson.D{{Key: "owner", Value: owner}})

	cursor, err := ms.playlists().Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	playlists := []PlaylistWithVideos{}
	if err := cursor.All(ctx, &playlists); err != nil {
		return nil, err
	}
	return playlists, nil
}

func (ms *MongoPlaylistStore) UpdatePlaylist(ctx context.Context, id primitive.ObjectID, name, description string) (*models.Playlist, error) {
	return ms.findOneAndUpdate(ctx, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: name},
		{Key: "description", Value: description},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

func (ms *MongoPlaylistStore) DeletePlaylist(ctx context.Context, id primitive.ObjectID) error {
	result, err := ms.playlists().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddVideo is idempotent: $addToSet leaves the playlist unchanged when the
// video is already a member.
func (ms *MongoPlaylistStore) AddVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error) {
	return ms.findOneAndUpdate(ctx, playlistID, bson.D{
		{Key: "$addToSet", Value: bson.D{{Key: "videos", Value: videoID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	})
}

func (ms *MongoPlaylistStore) RemoveVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error) {
	return ms.findOneAndUpdate(ctx, playlistID, bson.D{
		{Key: "$pull", Value: bson.D{{Key: "videos", Value: videoID}}},
		{Key: "$set", Value: bson.D{{Key: "updatedAt", Value: time.Now().UTC()}}},
	})
}

func (ms *MongoPlaylistStore) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.D) (*models.Playlist, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var playlist models.Playlist
	err := ms.playlists().FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&playlist)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &playlist, nil
}
