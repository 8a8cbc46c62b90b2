package app

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"github.com/vidtube/vidtube-server/internal/auth"
	"github.com/vidtube/vidtube-server/internal/handlers"
	"github.com/vidtube/vidtube-server/internal/media"
	"github.com/vidtube/vidtube-server/internal/middlewares"
	"github.com/vidtube/vidtube-server/internal/store"
)

type Application struct {
	Logger              *log.Logger
	Authenticator       *auth.Authenticator
	MiddlewareHandler   *middlewares.MiddlewareHandler
	VideoHandler        *handlers.VideoHandler
	PlaylistHandler     *handlers.PlaylistHandler
	TweetHandler        *handlers.TweetHandler
	SubscriptionHandler *handlers.SubscriptionHandler
	db                  *mongo.Database
}

func NewApplication() (*Application, error) {
	logger := log.New(os.Stdout, "LOGGING: ", log.Ldate|log.Ltime)

	db, err := store.ConnectMongo()
	if err != nil {
		logger.Println("Error connecting to db")
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := store.EnsureIndexes(ctx, db); err != nil {
		logger.Println("PANIC: index creation failed, exiting...")
		return nil, err
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, errors.New("JWT_SECRET must be set")
	}

	authenticator, err := auth.NewAuthenticator(secret, 24*time.Hour)
	if err != nil {
		return nil, err
	}

	uploader, err := media.NewS3Uploader()
	if err != nil {
		logger.Println("Error initializing media storage")
		return nil, err
	}

	userStore := store.NewMongoUserStore(db)
	videoStore := store.NewMongoVideoStore(db)
	playlistStore := store.NewMongoPlaylistStore(db)
	tweetStore := store.NewMongoTweetStore(db)
	subscriptionStore := store.NewMongoSubscriptionStore(db)

	videoHandler := handlers.NewVideoHandler(videoStore, userStore, uploader, logger)
	playlistHandler := handlers.NewPlaylistHandler(playlistStore, logger)
	tweetHandler := handlers.NewTweetHandler(tweetStore, logger)
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionStore, logger)

	middlewareHandler := middlewares.NewMiddlewareHandler(logger, authenticator)

	app := &Application{
		Logger:              logger,
		Authenticator:       authenticator,
		MiddlewareHandler:   middlewareHandler,
		VideoHandler:        videoHandler,
		PlaylistHandler:     playlistHandler,
		TweetHandler:        tweetHandler,
		SubscriptionHandler: subscriptionHandler,
		db:                  db,
	}

	return app, nil
}
