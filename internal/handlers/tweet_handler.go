package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/vidtube-server/internal/middlewares"
	"github.com/vidtube/vidtube-server/internal/models"
	"github.com/vidtube/vidtube-server/internal/store"
	"github.com/vidtube/vidtube-server/internal/utils"
)

type TweetHandler struct {
	TweetStore store.TweetStore
	Logger     *log.Logger
}

func NewTweetHandler(tweetStore store.TweetStore, logger *log.Logger) *TweetHandler {
	return &TweetHandler{
		TweetStore: tweetStore,
		Logger:     logger,
	}
}

type tweetRequest struct {
	Content string `json:"content"`
}

func (th *TweetHandler) HandlerCreateTweet(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewares.GetUserFromContext(r)
	if !ok {
		th.Logger.Println("No user found in context.")
		utils.WriteError(w, http.StatusUnauthorized, "Not Authorized")
		return
	}

	content, ok := th.tweetContent(w, r)
	if !ok {
		return
	}

	now := time.Now().UTC()
	tweet := &models.Tweet{
		ID:        primitive.NewObjectID(),
		Content:   content,
		Owner:     user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := th.TweetStore.CreateTweet(r.Context(), tweet); err != nil {
		th.Logger.Println("Error creating tweet in store:", err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, tweet, "Tweet created successfully")
}

func (th *TweetHandler) HandlerGetUserTweets(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewares.GetUserFromContext(r)
	if !ok {
		th.Logger.Println("No user found in context.")
		utils.WriteError(w, http.StatusUnauthorized, "Not Authorized")
		return
	}

	userIDStr := chi.URLParam(r, "userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		th.Logger.Printf("Error: invalid userId '%s': %v", userIDStr, err)
		utils.WriteError(w, http.StatusBadRequest, "Invalid userId format")
		return
	}

	if userID != user.ID {
		utils.WriteError(w, http.StatusForbidden, "Access denied")
		return
	}

	tweets, err := th.TweetStore.GetTweetsByOwner(r.Context(), userID)
	if err != nil {
		th.Logger.Println("Error getting tweets from store:", err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if len(tweets) == 0 {
		utils.WriteError(w, http.StatusNotFound, "No tweets found")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, tweets, "Tweets are fetched successfully")
}

func (th *TweetHandler) HandlerUpdateTweet(w http.ResponseWriter, r *http.Request) {
	tweetID, ok := th.tweetIDParam(w, r)
	if !ok {
		return
	}

	content, ok := th.tweetContent(w, r)
	if !ok {
		return
	}

	if _, ok := th.ownedTweet(w, r, tweetID, "update"); !ok {
		return
	}

	updated, err := th.TweetStore.UpdateTweet(r.Context(), tweetID, content)
	if err != nil {
		th.writeStoreError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, updated, "Tweet updated successfully")
}

func (th *TweetHandler) HandlerDeleteTweet(w http.ResponseWriter, r *http.Request) {
	tweetID, ok := th.tweetIDParam(w, r)
	if !ok {
		return
	}

	if _, ok := th.ownedTweet(w, r, tweetID, "delete"); !ok {
		return
	}

	if err := th.TweetStore.DeleteTweet(r.Context(), tweetID); err != nil {
		th.writeStoreError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, nil, "Tweet is deleted successfully")
}

// tweetContent decodes and validates the request body. Length is counted
// in runes, matching the platform's 280-character bound.
func (th *TweetHandler) tweetContent(w http.ResponseWriter, r *http.Request) (string, bool) {
	var body tweetRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return "", false
	}

	content := strings.TrimSpace(body.Content)
	if content == "" {
		utils.WriteError(w, http.StatusBadRequest, "Content is required")
		return "", false
	}
	if utf8.RuneCountInString(content) > models.TweetMaxLength {
		utils.WriteError(w, http.StatusBadRequest, "Tweet must be under 280 characters")
		return "", false
	}

	return content, true
}

func (th *TweetHandler) tweetIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id := chi.URLParam(r, "tweetId")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "tweetId is required")
		return primitive.NilObjectID, false
	}

	tweetID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		th.Logger.Printf("Error: invalid tweetId '%s': %v", id, err)
		utils.WriteError(w, http.StatusBadRequest, "Invalid tweetId format")
		return primitive.NilObjectID, false
	}

	return tweetID, true
}

func (th *TweetHandler) ownedTweet(w http.ResponseWriter, r *http.Request, tweetID primitive.ObjectID, action string) (*models.Tweet, bool) {
	user, ok := middlewares.GetUserFromContext(r)
	if !ok {
		th.Logger.Println("No user found in context.")
		utils.WriteError(w, http.StatusUnauthorized, "Not Authorized")
		return nil, false
	}

	tweet, err := th.TweetStore.GetTweetByID(r.Context(), tweetID)
	if err != nil {
		th.writeStoreError(w, err)
		return nil, false
	}

	if tweet.Owner != user.ID {
		th.Logger.Printf("User %s is not the owner of tweet %s", user.ID.Hex(), tweetID.Hex())
		utils.WriteError(w, http.StatusForbidden, "You are not authorized to "+action+" this tweet")
		return nil, false
	}

	return tweet, true
}

func (th *TweetHandler) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, "Tweet does not exist")
		return
	}
	th.Logger.Println("Store error:", err)
	utils.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
}
