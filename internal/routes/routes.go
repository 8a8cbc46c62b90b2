package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"

	"github.com/vidtube/vidtube-server/internal/app"
	"github.com/vidtube/vidtube-server/internal/utils"
)

func SetupRoutes(app *app.Application) *chi.Mux {
	r := chi.NewRouter()

	r.Use(httprate.LimitAll(200, time.Minute))
	r.Use(app.MiddlewareHandler.RequestLogger)
	r.Use(app.MiddlewareHandler.Security)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.WriteSuccess(w, http.StatusOK, nil, "OK")
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httprate.LimitAll(100, time.Minute))
		r.Use(app.MiddlewareHandler.Cors)
		r.Use(app.MiddlewareHandler.Authenticate)

		r.Route("/videos", func(r chi.Router) {
			r.Get("/", app.VideoHandler.HandlerListVideos)
			r.Post("/", app.VideoHandler.HandlerPublishVideo)
			r.Get("/{videoId}", app.VideoHandler.HandlerGetVideoByID)
			r.Patch("/{videoId}", app.VideoHandler.HandlerUpdateVideo)
			r.Delete("/{videoId}", app.VideoHandler.HandlerDeleteVideo)
			r.Patch("/{videoId}/toggle-publish", app.VideoHandler.HandlerTogglePublishStatus)
			r.Patch("/{videoId}/views", app.VideoHandler.HandlerIncrementView)
		})

		r.Route("/playlists", func(r chi.Router) {
			r.Post("/", app.PlaylistHandler.HandlerCreatePlaylist)
			r.Get("/user/{userId}", app.PlaylistHandler.HandlerGetUserPlaylists)
			r.Get("/{playlistId}", app.PlaylistHandler.HandlerGetPlaylistByID)
			r.Patch("/{playlistId}", app.PlaylistHandler.HandlerUpdatePlaylist)
			r.Delete("/{playlistId}", app.PlaylistHandler.HandlerDeletePlaylist)
			r.Patch("/{playlistId}/videos/{videoId}", app.PlaylistHandler.HandlerAddVideoToPlaylist)
			r.Delete("/{playlistId}/videos/{videoId}", app.PlaylistHandler.HandlerRemoveVideoFromPlaylist)
		})

		r.Route("/tweets", func(r chi.Router) {
			r.Post("/", app.TweetHandler.HandlerCreateTweet)
			r.Get("/user/{userId}", app.TweetHandler.HandlerGetUserTweets)
			r.Patch("/{tweetId}", app.TweetHandler.HandlerUpdateTweet)
			r.Delete("/{tweetId}", app.TweetHandler.HandlerDeleteTweet)
		})

		r.Route("/subscriptions", func(r chi.Router) {
			r.Post("/channel/{channelId}", app.SubscriptionHandler.HandlerToggleSubscription)
			r.Get("/channel/{channelId}/subscribers", app.SubscriptionHandler.HandlerGetChannelSubscribers)
			r.Get("/user/{subscriberId}/channels", app.SubscriptionHandler.HandlerGetSubscribedChannels)
		})
	})

	return r
}
