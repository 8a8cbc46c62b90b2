package handlers

import (
	"context"
	"io"
	"log"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/vidtube-server/internal/media"
	"github.com/vidtube/vidtube-server/internal/middlewares"
	"github.com/vidtube/vidtube-server/internal/models"
	"github.com/vidtube/vidtube-server/internal/store"
)

func testLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

// withUser binds an authenticated user to the request the same way the
// authenticate middleware does.
func withUser(r *http.Request, user *models.User) *http.Request {
	ctx := context.WithValue(r.Context(), middlewares.UserContextKey, user)
	return r.WithContext(ctx)
}

// MockVideoStore implements store.VideoStore for testing.
type MockVideoStore struct {
	ListVideosFunc       func(ctx context.Context, params store.ListVideosParams) (*store.VideoListResponse, error)
	CreateVideoFunc      func(ctx context.Context, video *models.Video) error
	GetVideoByIDFunc     func(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
	UpdateVideoFunc      func(ctx context.Context, id primitive.ObjectID, updates store.VideoUpdates) (*models.Video, error)
	DeleteVideoFunc      func(ctx context.Context, id primitive.ObjectID) error
	SetPublishStatusFunc func(ctx context.Context, id primitive.ObjectID, published bool) (*models.Video, error)
	IncrementViewsFunc   func(ctx context.Context, id primitive.ObjectID) (*models.Video, error)
}

func (m *MockVideoStore) ListVideos(ctx context.Context, params store.ListVideosParams) (*store.VideoListResponse, error) {
	if m.ListVideosFunc != nil {
		return m.ListVideosFunc(ctx, params)
	}
	return &store.VideoListResponse{Videos: []store.VideoListEntry{}}, nil
}

func (m *MockVideoStore) CreateVideo(ctx context.Context, video *models.Video) error {
	if m.CreateVideoFunc != nil {
		return m.CreateVideoFunc(ctx, video)
	}
	return nil
}

func (m *MockVideoStore) GetVideoByID(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	if m.GetVideoByIDFunc != nil {
		return m.GetVideoByIDFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *MockVideoStore) UpdateVideo(ctx context.Context, id primitive.ObjectID, updates store.VideoUpdates) (*models.Video, error) {
	if m.UpdateVideoFunc != nil {
		return m.UpdateVideoFunc(ctx, id, updates)
	}
	return nil, store.ErrNotFound
}

func (m *MockVideoStore) DeleteVideo(ctx context.Context, id primitive.ObjectID) error {
	if m.DeleteVideoFunc != nil {
		return m.DeleteVideoFunc(ctx, id)
	}
	return store.ErrNotFound
}

func (m *MockVideoStore) SetPublishStatus(ctx context.Context, id primitive.ObjectID, published bool) (*models.Video, error) {
	if m.SetPublishStatusFunc != nil {
		return m.SetPublishStatusFunc(ctx, id, published)
	}
	return nil, store.ErrNotFound
}

func (m *MockVideoStore) IncrementViews(ctx context.Context, id primitive.ObjectID) (*models.Video, error) {
	if m.IncrementViewsFunc != nil {
		return m.IncrementViewsFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

// MockUserStore implements store.UserStore for testing.
type MockUserStore struct {
	GetUserByIDFunc func(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

func (m *MockUserStore) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if m.GetUserByIDFunc != nil {
		return m.GetUserByIDFunc(ctx, id)
	}
	return &models.User{ID: id}, nil
}

// MockPlaylistStore implements store.PlaylistStore for testing.
type MockPlaylistStore struct {
	CreatePlaylistFunc        func(ctx context.Context, playlist *models.Playlist) error
	GetPlaylistByIDFunc       func(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error)
	GetPlaylistWithVideosFunc func(ctx context.Context, id primitive.ObjectID) (*store.PlaylistWithVideos, error)
	GetPlaylistsByOwnerFunc   func(ctx context.Context, owner primitive.ObjectID) ([]store.PlaylistWithVideos, error)
	UpdatePlaylistFunc        func(ctx context.Context, id primitive.ObjectID, name, description string) (*models.Playlist, error)
	DeletePlaylistFunc        func(ctx context.Context, id primitive.ObjectID) error
	AddVideoFunc              func(ctx context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error)
	RemoveVideoFunc           func(ctx context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error)
}

func (m *MockPlaylistStore) CreatePlaylist(ctx context.Context, playlist *models.Playlist) error {
	if m.CreatePlaylistFunc != nil {
		return m.CreatePlaylistFunc(ctx, playlist)
	}
	return nil
}

func (m *MockPlaylistStore) GetPlaylistByID(ctx context.Context, id primitive.ObjectID) (*models.Playlist, error) {
	if m.GetPlaylistByIDFunc != nil {
		return m.GetPlaylistByIDFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *MockPlaylistStore) GetPlaylistWithVideos(ctx context.Context, id primitive.ObjectID) (*store.PlaylistWithVideos, error) {
	if m.GetPlaylistWithVideosFunc != nil {
		return m.GetPlaylistWithVideosFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *MockPlaylistStore) GetPlaylistsByOwner(ctx context.Context, owner primitive.ObjectID) ([]store.PlaylistWithVideos, error) {
	if m.GetPlaylistsByOwnerFunc != nil {
		return m.GetPlaylistsByOwnerFunc(ctx, owner)
	}
	return []store.PlaylistWithVideos{}, nil
}

func (m *MockPlaylistStore) UpdatePlaylist(ctx context.Context, id primitive.ObjectID, name, description string) (*models.Playlist, error) {
	if m.UpdatePlaylistFunc != nil {
		return m.UpdatePlaylistFunc(ctx, id, name, description)
	}
	return nil, store.ErrNotFound
}

func (m *MockPlaylistStore) DeletePlaylist(ctx context.Context, id primitive.ObjectID) error {
	if m.DeletePlaylistFunc != nil {
		return m.DeletePlaylistFunc(ctx, id)
	}
	return store.ErrNotFound
}

func (m *MockPlaylistStore) AddVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error) {
	if m.AddVideoFunc != nil {
		return m.AddVideoFunc(ctx, playlistID, videoID)
	}
	return nil, store.ErrNotFound
}

func (m *MockPlaylistStore) RemoveVideo(ctx context.Context, playlistID, videoID primitive.ObjectID) (*models.Playlist, error) {
	if m.RemoveVideoFunc != nil {
		return m.RemoveVideoFunc(ctx, playlistID, videoID)
	}
	return nil, store.ErrNotFound
}

// MockTweetStore implements store.TweetStore for testing.
type MockTweetStore struct {
	CreateTweetFunc      func(ctx context.Context, tweet *models.Tweet) error
	GetTweetByIDFunc     func(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error)
	GetTweetsByOwnerFunc func(ctx context.Context, owner primitive.ObjectID) ([]models.Tweet, error)
	UpdateTweetFunc      func(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error)
	DeleteTweetFunc      func(ctx context.Context, id primitive.ObjectID) error
}

func (m *MockTweetStore) CreateTweet(ctx context.Context, tweet *models.Tweet) error {
	if m.CreateTweetFunc != nil {
		return m.CreateTweetFunc(ctx, tweet)
	}
	return nil
}

func (m *MockTweetStore) GetTweetByID(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
	if m.GetTweetByIDFunc != nil {
		return m.GetTweetByIDFunc(ctx, id)
	}
	return nil, store.ErrNotFound
}

func (m *MockTweetStore) GetTweetsByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Tweet, error) {
	if m.GetTweetsByOwnerFunc != nil {
		return m.GetTweetsByOwnerFunc(ctx, owner)
	}
	return []models.Tweet{}, nil
}

func (m *MockTweetStore) UpdateTweet(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
	if m.UpdateTweetFunc != nil {
		return m.UpdateTweetFunc(ctx, id, content)
	}
	return nil, store.ErrNotFound
}

func (m *MockTweetStore) DeleteTweet(ctx context.Context, id primitive.ObjectID) error {
	if m.DeleteTweetFunc != nil {
		return m.DeleteTweetFunc(ctx, id)
	}
	return store.ErrNotFound
}

// MockSubscriptionStore implements store.SubscriptionStore for testing.
// When Edges is set the find/create/delete methods maintain it in memory,
// which lets toggle tests observe real state transitions.
type MockSubscriptionStore struct {
	Edges map[primitive.ObjectID]*models.Subscription

	FindSubscriptionFunc       func(ctx context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error)
	CreateSubscriptionFunc     func(ctx context.Context, subscriber, channel primitive.ObjectID) error
	DeleteSubscriptionFunc     func(ctx context.Context, id primitive.ObjectID) error
	ListChannelSubscribersFunc func(ctx context.Context, channel primitive.ObjectID) ([]store.SubscriberProfile, error)
	ListSubscribedChannelsFunc func(ctx context.Context, subscriber primitive.ObjectID) ([]store.ChannelProfile, error)
}

func (m *MockSubscriptionStore) FindSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) (*models.Subscription, error) {
	if m.FindSubscriptionFunc != nil {
		return m.FindSubscriptionFunc(ctx, subscriber, channel)
	}
	for _, edge := range m.Edges {
		if edge.Subscriber == subscriber && edge.Channel == channel {
			return edge, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockSubscriptionStore) CreateSubscription(ctx context.Context, subscriber, channel primitive.ObjectID) error {
	if m.CreateSubscriptionFunc != nil {
		return m.CreateSubscriptionFunc(ctx, subscriber, channel)
	}
	if m.Edges == nil {
		m.Edges = map[primitive.ObjectID]*models.Subscription{}
	}
	id := primitive.NewObjectID()
	m.Edges[id] = &models.Subscription{ID: id, Subscriber: subscriber, Channel: channel}
	return nil
}

func (m *MockSubscriptionStore) DeleteSubscription(ctx context.Context, id primitive.ObjectID) error {
	if m.DeleteSubscriptionFunc != nil {
		return m.DeleteSubscriptionFunc(ctx, id)
	}
	if _, ok := m.Edges[id]; !ok {
		return store.ErrNotFound
	}
	delete(m.Edges, id)
	return nil
}

func (m *MockSubscriptionStore) ListChannelSubscribers(ctx context.Context, channel primitive.ObjectID) ([]store.SubscriberProfile, error) {
	if m.ListChannelSubscribersFunc != nil {
		return m.ListChannelSubscribersFunc(ctx, channel)
	}
	return []store.SubscriberProfile{}, nil
}

func (m *MockSubscriptionStore) ListSubscribedChannels(ctx context.Context, subscriber primitive.ObjectID) ([]store.ChannelProfile, error) {
	if m.ListSubscribedChannelsFunc != nil {
		return m.ListSubscribedChannelsFunc(ctx, subscriber)
	}
	return []store.ChannelProfile{}, nil
}

// MockUploader implements media.Uploader for testing.
type MockUploader struct {
	UploadFunc func(ctx context.Context, localPath string, contentType string) (*media.UploadResult, error)
}

func (m *MockUploader) Upload(ctx context.Context, localPath string, contentType string) (*media.UploadResult, error) {
	if m.UploadFunc != nil {
		return m.UploadFunc(ctx, localPath, contentType)
	}
	return &media.UploadResult{URL: "https://cdn.example.com/object"}, nil
}
