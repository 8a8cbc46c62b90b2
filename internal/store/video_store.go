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

type SortType string

const (
	SortAscending  SortType = "asc"
	SortDescending SortType = "desc"
)

// sortable fields for the video listing; anything else falls back to createdAt.
var validSortFields = map[string]bool{
	"createdAt": true,
	"views":     true,
	"duration":  true,
	"title":     true,
}

func ValidateSortBy(field string) string {
	if validSortFields[field] {
		return field
	}
	return "createdAt"
}

type ListVideosParams struct {
	Owner    primitive.ObjectID
	Query    string
	SortBy   string
	SortType SortType
	Page     int
	Limit    int
}

type OwnerProfile struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Username string             `bson:"username" json:"username"`
	Avatar   string             `bson:"avatar" json:"avatar"`
}

type VideoListEntry struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description" json:"description"`
	Thumbnail   string             `bson:"thumbnail" json:"thumbnail"`
	Duration    float64            `bson:"duration" json:"duration"`
	Views       int64              `bson:"views" json:"views"`
	IsPublished bool               `bson:"isPublished" json:"isPublished"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	Owner       OwnerProfile       `bson:"owner" json:"owner"`
}

type VideoListResponse struct {
	Videos      []VideoListEntry `json:"videos"`
	Page        int              `json:"page"`
	Limit       int              `json:"limit"`
	TotalVideos int              `json:"totalVideos"`
	TotalPages  int              `json:"totalPages"`
}

type VideoUpdates struct {
	Title       string
	Description string
	Thumbnail   string // empty keeps the current thumbnail
}

type VideoStore interface {
	ListVideos(ctx context.Context, params ListVideosParams) (*VideoListResponse, error)
	CreateVideo(ctx context.Context, video *models.Video) error
	GetVideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	UpdateVideo(ctx context.Context, id primitive.ObjectID, updates VideoUpdates) (*models.Video, error)
	DeleteVideo(ctx context.Context, id primitive.ObjectID) error
	SetPublishStatus(ctx context.Context, id primitive.ObjectID, published bool) (*models.Video, error)
	IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
}

type MongoVideoStore struct {
	db *mongo.Database
}

func NewMongoVideoStore(db *mongo.Database) *MongoVideoStore {
	if db == nil {
		panic("db cannot be nil for MongoVideoStore")
	}
	return &MongoVideoStore{db: db}
}

func (ms *MongoVideoStore) videos() *mongo.Collection {
	return ms.db.Collection("videos")
}

// buildListPipeline assembles the discovery aggregation: match on owner and
// title, join the owner profile, project the list-view fields, sort, then
// facet into the requested page and a total count so both branches see the
// same match set. Tie order on equal sort keys follows the store's natural
// order and is not part of the contract.
func buildListPipeline(params ListVideosParams) mongo.Pipeline {
	skip := (params.Page - 1) * params.Limit

	sortOrder := -1
	if params.SortType == SortAscending {
		sortOrder = 1
	}

	return mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{
			{Key: "owner", Value: params.Owner},
			{Key: "title", Value: bson.D{
				{Key: "$regex", Value: params.Query},
				{Key: "$options", Value: "i"},
			}},
		}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "owner"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "owner"},
		}}},
		bson.D{{Key: "$unwind", Value: "$owner"}},
		bson.D{{Key: "$project", Value: bson.D{
			{Key: "title", Value: 1},
			{Key: "description", Value: 1},
			{Key: "createdAt", Value: 1},
			{Key: "views", Value: 1},
			{Key: "isPublished", Value: 1},
			{Key: "thumbnail", Value: 1},
			{Key: "duration", Value: 1},
			{Key: "owner._id", Value: 1},
			{Key: "owner.username", Value: 1},
			{Key: "owner.avatar", Value: 1},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: params.SortBy, Value: sortOrder}}}},
		bson.D{{Key: "$facet", Value: bson.D{
			{Key: "data", Value: bson.A{
				bson.D{{Key: "$skip", Value: skip}},
				bson.D{{Key: "$limit", Value: params.Limit}},
			}},
			{Key: "totalCount", Value: bson.A{
				bson.D{{Key: "$count", Value: "count"}},
			}},
		}}},
	}
}

func totalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

type listFacetResult struct {
	Data       []VideoListEntry `bson:"data"`
	TotalCount []struct {
		Count int `bson:"count"`
	} `bson:"totalCount"`
}

func (ms *MongoVideoStore) ListVideos(ctx context.Context, params ListVideosParams) (*VideoListResponse, error) {
	cursor, err := ms.videos().Aggregate(ctx, buildListPipeline(params))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []listFacetResult
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}

	response := &VideoListResponse{
		Videos: []VideoListEntry{},
		Page:   params.Page,
		Limit:  params.Limit,
	}

	if len(results) > 0 {
		response.Videos = append(response.Videos, results[0].Data...)
		if len(results[0].TotalCount) > 0 {
			response.TotalVideos = results[0].TotalCount[0].Count
		}
	}
	response.TotalPages = totalPages(response.TotalVideos, params.Limit)

	return response, nil
}

func (ms *MongoVideoStore) CreateVideo(ctx context.Context, video *models.Video) error {
	_, err := ms.videos().InsertOne(ctx, video)
	return err
}

func (ms *MongoVideoStore) GetVideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	var video models.Video
	err := ms.videos().FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&video)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}

func (ms *MongoVideoStore) UpdateVideo(ctx context.Context, id primitive.ObjectID, updates VideoUpdates) (*models.Video, error) {
	set := bson.D{
		{Key: "title", Value: updates.Title},
		{Key: "description", Value: updates.Description},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}
	if updates.Thumbnail != "" {
		set = append(set, bson.E{Key: "thumbnail", Value: updates.Thumbnail})
	}

	return ms.findOneAndUpdate(ctx, id, bson.D{{Key: "$set", Value: set}})
}

func (ms *MongoVideoStore) DeleteVideo(ctx context.Context, id primitive.ObjectID) error {
	result, err := ms.videos().DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (ms *MongoVideoStore) SetPublishStatus(ctx context.Context, id primitive.ObjectID, published bool) (*models.Video, error) {
	return ms.findOneAndUpdate(ctx, id, bson.D{{Key: "$set", Value: bson.D{
		{Key: "isPublished", Value: published},
		{Key: "updatedAt", Value: time.Now().UTC()},
	}}})
}

// IncrementViews is a single atomic $inc; concurrent viewers never lose an
// increment and the count only moves up.
func (ms *MongoVideoStore) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	return ms.findOneAndUpdate(ctx, id, bson.D{{Key: "$inc", Value: bson.D{
		{Key: "views", Value: 1},
	}}})
}

func (ms *MongoVideoStore) findOneAndUpdate(ctx context.Context, id primitive.ObjectID, update bson.D) (*models.Video, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var video models.Video
	err := ms.videos().FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: id}}, update, opts).Decode(&video)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &video, nil
}
