package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/vidtube/vidtube-server/internal/middlewares"
	"github.com/vidtube/vidtube-server/internal/models"
	"github.com/vidtube/vidtube-server/internal/store"
	"github.com/vidtube/vidtube-server/internal/utils"
)

type PlaylistHandler struct {
	PlaylistStore store.PlaylistStore
	Logger        *log.Logger
}

func NewPlaylistHandler(playlistStore store.PlaylistStore, logger *log.Logger) *PlaylistHandler {
	return &PlaylistHandler{
		PlaylistStore: playlistStore,
		Logger:        logger,
	}
}

type playlistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (ph *PlaylistHandler) HandlerCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewares.GetUserFromContext(r)
	if !ok {
		ph.Logger.Println("No user found in context.")
		utils.WriteError(w, http.StatusUnauthorized, "Not Authorized")
		return
	}

	var body playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Description = strings.TrimSpace(body.Description)
	if body.Name == "" || body.Description == "" {
		utils.WriteError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	now := time.Now().UTC()
	playlist := &models.Playlist{
		ID:          primitive.NewObjectID(),
		Name:        body.Name,
		Description: body.Description,
		Owner:       user.ID,
		Videos:      []primitive.ObjectID{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := ph.PlaylistStore.CreatePlaylist(r.Context(), playlist); err != nil {
		ph.Logger.Println("Error creating playlist in store:", err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	utils.WriteSuccess(w, http.StatusCreated, playlist, "Playlist Created")
}

// HandlerGetUserPlaylists returns the caller's own playlists with their
// video references resolved. Another user's playlists are off limits.
func (ph *PlaylistHandler) HandlerGetUserPlaylists(w http.ResponseWriter, r *http.Request) {
	user, ok := middlewares.GetUserFromContext(r)
	if !ok {
		ph.Logger.Println("No user found in context.")
		utils.WriteError(w, http.StatusUnauthorized, "Not Authorized")
		return
	}

	userIDStr := chi.URLParam(r, "userId")
	userID, err := primitive.ObjectIDFromHex(userIDStr)
	if err != nil {
		ph.Logger.Printf("Error: invalid userId '%s': %v", userIDStr, err)
		utils.WriteError(w, http.StatusBadRequest, "Invalid userId format")
		return
	}

	if userID != user.ID {
		utils.WriteError(w, http.StatusForbidden, "Access denied")
		return
	}

	playlists, err := ph.PlaylistStore.GetPlaylistsByOwner(r.Context(), userID)
	if err != nil {
		ph.Logger.Println("Error getting playlists from store:", err)
		utils.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	if len(playlists) == 0 {
		utils.WriteError(w, http.StatusNotFound, "Playlists not found")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, playlists, "Playlists fetched successfully")
}

func (ph *PlaylistHandler) HandlerGetPlaylistByID(w http.ResponseWriter, r *http.Request) {
	playlistID, ok := ph.playlistIDParam(w, r)
	if !ok {
		return
	}

	playlist, err := ph.PlaylistStore.GetPlaylistWithVideos(r.Context(), playlistID)
	if err != nil {
		ph.writeStoreError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, playlist, "Playlist fetched successfully")
}

func (ph *PlaylistHandler) HandlerUpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID, ok := ph.playlistIDParam(w, r)
	if !ok {
		return
	}

	var body playlistRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		utils.WriteError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	body.Name = strings.TrimSpace(body.Name)
	body.Description = strings.TrimSpace(body.Description)
	if body.Name == "" || body.Description == "" {
		utils.WriteError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	if _, ok := ph.ownedPlaylist(w, r, playlistID, "update"); !ok {
		return
	}

	updated, err := ph.PlaylistStore.UpdatePlaylist(r.Context(), playlistID, body.Name, body.Description)
	if err != nil {
		ph.writeStoreError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, updated, "Playlist updated successfully")
}

func (ph *PlaylistHandler) HandlerDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID, ok := ph.playlistIDParam(w, r)
	if !ok {
		return
	}

	if _, ok := ph.ownedPlaylist(w, r, playlistID, "delete"); !ok {
		return
	}

	if err := ph.PlaylistStore.DeletePlaylist(r.Context(), playlistID); err != nil {
		ph.writeStoreError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, nil, "Playlist deleted successfully")
}

func (ph *PlaylistHandler) HandlerAddVideoToPlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID, videoID, ok := ph.membershipParams(w, r)
	if !ok {
		return
	}

	if _, ok := ph.ownedPlaylist(w, r, playlistID, "add video to"); !ok {
		return
	}

	added, err := ph.PlaylistStore.AddVideo(r.Context(), playlistID, videoID)
	if err != nil {
		ph.writeStoreError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, added, "Video added successfully")
}

func (ph *PlaylistHandler) HandlerRemoveVideoFromPlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID, videoID, ok := ph.membershipParams(w, r)
	if !ok {
		return
	}

	if _, ok := ph.ownedPlaylist(w, r, playlistID, "remove video from"); !ok {
		return
	}

	removed, err := ph.PlaylistStore.RemoveVideo(r.Context(), playlistID, videoID)
	if err != nil {
		ph.writeStoreError(w, err)
		return
	}

	utils.WriteSuccess(w, http.StatusOK, removed, "Video removed successfully")
}

func (ph *PlaylistHandler) playlistIDParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id := chi.URLParam(r, "playlistId")
	if id == "" {
		utils.WriteError(w, http.StatusBadRequest, "playlistId is missing")
		return primitive.NilObjectID, false
	}

	playlistID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		ph.Logger.Printf("Error: invalid playlistId '%s': %v", id, err)
		utils.WriteError(w, http.StatusBadRequest, "Invalid playlistId format")
		return primitive.NilObjectID, false
	}

	return playlistID, true
}

func (ph *PlaylistHandler) membershipParams(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, primitive.ObjectID, bool) {
	playlistID, ok := ph.playlistIDParam(w, r)
	if !ok {
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	videoIDStr := chi.URLParam(r, "videoId")
	videoID, err := primitive.ObjectIDFromHex(videoIDStr)
	if err != nil {
		ph.Logger.Printf("Error: invalid videoId '%s': %v", videoIDStr, err)
		utils.WriteError(w, http.StatusBadRequest, "Invalid Id format")
		return primitive.NilObjectID, primitive.NilObjectID, false
	}

	return playlistID, videoID, true
}

func (ph *PlaylistHandler) ownedPlaylist(w http.ResponseWriter, r *http.Request, playlistID primitive.ObjectID, action string) (*models.Playlist, bool) {
	user, ok := middlewares.GetUserFromContext(r)
	if !ok {
		ph.Logger.Println("No user found in context.")
		utils.WriteError(w, http.StatusUnauthorized, "Not Authorized")
		return nil, false
	}

	playlist, err := ph.PlaylistStore.GetPlaylistByID(r.Context(), playlistID)
	if err != nil {
		ph.writeStoreError(w, err)
		return nil, false
	}

	if playlist.Owner != user.ID {
		ph.Logger.Printf("User %s is not the owner of playlist %s", user.ID.Hex(), playlistID.Hex())
		utils.WriteError(w, http.StatusForbidden, "You are not authorized to "+action+" this playlist")
		return nil, false
	}

	return playlist, true
}

func (ph *PlaylistHandler) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteError(w, http.StatusNotFound, "Playlist not found")
		return
	}
	ph.Logger.Println("Store error:", err)
	utils.WriteError(w, http.StatusInternalServerError, "Internal Server Error")
}
