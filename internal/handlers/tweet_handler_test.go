package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/vidtube-server/internal/models"
	"github.com/vidtube/vidtube-server/internal/store"
)

func newTweetRouter(th *TweetHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/tweets", th.HandlerCreateTweet)
	r.Get("/tweets/user/{userId}", th.HandlerGetUserTweets)
	r.Patch("/tweets/{tweetId}", th.HandlerUpdateTweet)
	r.Delete("/tweets/{tweetId}", th.HandlerDeleteTweet)
	return r
}

func TestHandlerCreateTweet(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}

	var created *models.Tweet
	tweetStore := &MockTweetStore{
		CreateTweetFunc: func(ctx context.Context, tweet *models.Tweet) error {
			created = tweet
			return nil
		},
	}

	th := NewTweetHandler(tweetStore, testLogger())
	r := newTweetRouter(th)

	body := jsonBody(t, map[string]string{"content": "hello world"})
	req := withUser(httptest.NewRequest("POST", "/tweets", body), user)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, created)
	assert.Equal(t, user.ID, created.Owner)
	assert.Equal(t, "hello world", created.Content)
}

func TestHandlerCreateTweet_ContentValidation(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}

	tests := []struct {
		name    string
		content string
		wantOK  bool
	}{
		{"Empty content", "", false},
		{"Whitespace only", "   ", false},
		{"Exactly at the limit", strings.Repeat("a", models.TweetMaxLength), true},
		{"One over the limit", strings.Repeat("a", models.TweetMaxLength+1), false},
		// multi-byte runes count as one character each
		{"Multibyte at the limit", strings.Repeat("é", models.TweetMaxLength), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			storeCalled := false
			tweetStore := &MockTweetStore{
				CreateTweetFunc: func(ctx context.Context, tweet *models.Tweet) error {
					storeCalled = true
					return nil
				},
			}

			th := NewTweetHandler(tweetStore, testLogger())
			r := newTweetRouter(th)

			body := jsonBody(t, map[string]string{"content": tt.content})
			req := withUser(httptest.NewRequest("POST", "/tweets", body), user)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			if tt.wantOK {
				assert.Equal(t, http.StatusCreated, rec.Code)
				assert.True(t, storeCalled)
			} else {
				assert.Equal(t, http.StatusBadRequest, rec.Code)
				assert.False(t, storeCalled, "invalid content must not reach the store")
			}
		})
	}
}

func TestHandlerGetUserTweets(t *testing.T) {
	user := &models.User{ID: primitive.NewObjectID()}

	t.Run("Other user's tweets are forbidden", func(t *testing.T) {
		th := NewTweetHandler(&MockTweetStore{}, testLogger())
		r := newTweetRouter(th)

		req := withUser(httptest.NewRequest("GET", "/tweets/user/"+primitive.NewObjectID().Hex(), nil), user)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("No tweets", func(t *testing.T) {
		th := NewTweetHandler(&MockTweetStore{}, testLogger())
		r := newTweetRouter(th)

		req := withUser(httptest.NewRequest("GET", "/tweets/user/"+user.ID.Hex(), nil), user)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Own tweets", func(t *testing.T) {
		tweetStore := &MockTweetStore{
			GetTweetsByOwnerFunc: func(ctx context.Context, owner primitive.ObjectID) ([]models.Tweet, error) {
				return []models.Tweet{{ID: primitive.NewObjectID(), Content: "first", Owner: owner}}, nil
			},
		}
		th := NewTweetHandler(tweetStore, testLogger())
		r := newTweetRouter(th)

		req := withUser(httptest.NewRequest("GET", "/tweets/user/"+user.ID.Hex(), nil), user)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHandlerUpdateTweet(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID()}
	tweetID := primitive.NewObjectID()

	tweetStore := &MockTweetStore{
		GetTweetByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
			if id == tweetID {
				return &models.Tweet{ID: tweetID, Content: "old", Owner: owner.ID}, nil
			}
			return nil, store.ErrNotFound
		},
		UpdateTweetFunc: func(ctx context.Context, id primitive.ObjectID, content string) (*models.Tweet, error) {
			return &models.Tweet{ID: id, Content: content, Owner: owner.ID}, nil
		},
	}

	th := NewTweetHandler(tweetStore, testLogger())
	r := newTweetRouter(th)

	t.Run("Owner updates", func(t *testing.T) {
		body := jsonBody(t, map[string]string{"content": "new"})
		req := withUser(httptest.NewRequest("PATCH", "/tweets/"+tweetID.Hex(), body), owner)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		envelope := decodeEnvelope(t, rec.Body)
		data := envelope["data"].(map[string]any)
		assert.Equal(t, "new", data["content"])
	})

	t.Run("Unknown tweet", func(t *testing.T) {
		body := jsonBody(t, map[string]string{"content": "new"})
		req := withUser(httptest.NewRequest("PATCH", "/tweets/"+primitive.NewObjectID().Hex(), body), owner)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Non-owner is forbidden", func(t *testing.T) {
		intruder := &models.User{ID: primitive.NewObjectID()}
		body := jsonBody(t, map[string]string{"content": "new"})
		req := withUser(httptest.NewRequest("PATCH", "/tweets/"+tweetID.Hex(), body), intruder)
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestHandlerDeleteTweet(t *testing.T) {
	owner := &models.User{ID: primitive.NewObjectID()}
	tweetID := primitive.NewObjectID()

	deleted := false
	tweetStore := &MockTweetStore{
		GetTweetByIDFunc: func(ctx context.Context, id primitive.ObjectID) (*models.Tweet, error) {
			return &models.Tweet{ID: tweetID, Owner: owner.ID}, nil
		},
		DeleteTweetFunc: func(ctx context.Context, id primitive.ObjectID) error {
			deleted = true
			return nil
		},
	}

	th := NewTweetHandler(tweetStore, testLogger())
	r := newTweetRouter(th)

	req := withUser(httptest.NewRequest("DELETE", "/tweets/"+tweetID.Hex(), nil), owner)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, deleted)
}
