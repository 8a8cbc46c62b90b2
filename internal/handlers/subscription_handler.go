package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/vidtube-server/internal/middlewares"
	"github.com/vidtube/vidtube-server/internal/models"
	"github.com/vidtube/vidtube-server/internal/store"
	"github.com/vidtube/vidtube-server/internal/utils"
)

type SubscriptionHandler struct {
	SubscriptionStore store.SubscriptionStore
	Logger            *log.Logger
}

func NewSubscriptionHandler(subscriptionStore store.SubscriptionStore, logger *log.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{
		SubscriptionStore: subscriptionStore,
		Logger:            logger,
	}
}

// HandlerToggleSubscription flips the (subscriber, channel) edge: removes
// it when present, creates it when absent. Two consecutive toggles land
// back on the original state.
func (sh *SubscriptionHandler) HandlerToggleSubscription(w http.ResponseWriter, r *http.Request) {
	user, channelID, ok := sh.channelRequest(w, r, "channelId")
	if !ok {
		return
	}

	if channelID == user.ID {
		utils.WriteError(w, http.StatusBadRequest, "You cannot subscribe to your own channel")
		return
	}

	existing, err := sh.SubscriptionStore.FindSubscription(r.Context(), user.ID, channelID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		sh.Logger.Println("Error finding subscription:", err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if existing != nil {
		if err := sh.SubscriptionStore.DeleteSubscription(r.Context(), existing.ID); err != nil {
			sh.Logger.Println("Error deleting subscription:", err)
			utils.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		utils.WriteSuccess(w, http.StatusOK, utils.Envelope{"subscribed": false}, "Unsubscribed successfully")
		return
	}

	if err := sh.SubscriptionStore.CreateSubscription(r.Context(), user.ID, channelID); err != nil {
		sh.Logger.Println("Error creating subscription:", err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, utils.Envelope{"subscribed": true}, "Subscribed successfully")
}

func (sh *SubscriptionHandler) HandlerGetChannelSubscribers(w http.ResponseWriter, r *http.Request) {
	user, channelID, ok := sh.channelRequest(w, r, "channelId")
	if !ok {
		return
	}

	if channelID != user.ID {
		utils.WriteError(w, http.StatusForbidden, "Access denied: Not your channel")
		return
	}

	subscribers, err := sh.SubscriptionStore.ListChannelSubscribers(r.Context(), channelID)
	if err != nil {
		sh.Logger.Println("Error getting subscribers from store:", err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if len(subscribers) == 0 {
		utils.WriteError(w, http.StatusNotFound, "No subscribers found")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, subscribers, "Channel subscribers fetched successfully")
}

func (sh *SubscriptionHandler) HandlerGetSubscribedChannels(w http.ResponseWriter, r *http.Request) {
	user, subscriberID, ok := sh.channelRequest(w, r, "subscriberId")
	if !ok {
		return
	}

	if subscriberID != user.ID {
		utils.WriteError(w, http.StatusForbidden, "Access denied: Not your subscriptions")
		return
	}

	channels, err := sh.SubscriptionStore.ListSubscribedChannels(r.Context(), subscriberID)
	if err != nil {
		sh.Logger.Println("Error getting subscribed channels from store:", err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if len(channels) == 0 {
		utils.WriteError(w, http.StatusNotFound, "No subscribed channels found")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, channels, "Subscribed channels fetched successfully")
}

func (sh *SubscriptionHandler) channelRequest(w http.ResponseWriter, r *http.Request, param string) (*models.User, primitive.ObjectID, bool) {
	user, ok := middlewares.GetUserFromContext(r)
	if !ok {
		sh.Logger.Println("No user found in context.")
		utils.WriteError(w, http.StatusUnauthorized, "Not Authorized")
		return nil, primitive.NilObjectID, false
	}

	idStr := chi.URLParam(r, param)
	if idStr == "" {
		utils.WriteError(w, http.StatusBadRequest, param+" is required")
		return nil, primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(idStr)
	if err != nil {
		sh.Logger.Printf("Error: invalid %s '%s': %v", param, idStr, err)
		utils.WriteError(w, http.StatusBadRequest, "Invalid "+param+" format")
		return nil, primitive.NilObjectID, false
	}

	return user, id, true
}
