package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/blog-be/internal/api"
	"github.com/isdelr/blog-be/internal/auth"
	"github.com/isdelr/blog-be/internal/config"
	"github.com/isdelr/blog-be/internal/database"
	"github.com/isdelr/blog-be/internal/logger"
	"github.com/isdelr/blog-be/internal/monitoring"
	"github.com/isdelr/blog-be/internal/services"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, !cfg.IsProduction())

	ctx := context.Background()

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	// Set up the credential store
	userService, closeUsers, err := services.OpenUserStore(ctx, db, services.UserStoreOptions{
		Backend:       cfg.UserStore,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
		BcryptCost:    cfg.BcryptCost,
	})
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.UserStore).Msg("Failed to initialize user store")
	}
	log.Info().Str("store", cfg.UserStore).Msg("User store ready")

	var identities auth.IdentityLookup = userService
	if cfg.RedisURL != "" {
		rdb, err := database.NewRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		defer rdb.Close()
		identities = services.NewCachedUserLookup(userService, rdb, cfg.UserCacheTTL)
		log.Info().Dur("ttl", cfg.UserCacheTTL).Msg("Identity cache enabled")
	}

	tokens, err := auth.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTExpire)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token issuer")
	}

	// Set up services
	eventService := services.NewEventService(db)
	postService := services.NewPostService(db)
	categoryService := services.NewCategoryService(db)

	// Set up and run the background event pruner
	pruner, err := monitoring.NewEventPruner(eventService, cfg.EventPruneCron, cfg.EventRetention)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize event pruner")
	}
	pruner.Start()

	// Set up router
	router := api.NewRouter(cfg.AllowedOrigins, api.Services{
		Users:      userService,
		Posts:      postService,
		Categories: categoryService,
		Events:     eventService,
		Tokens:     tokens,
		Auth:       auth.NewAuthenticator(tokens, identities),
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe()")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	pruner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := closeUsers(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Failed to close user store")
	}

	log.Info().Msg("Server exiting")
}
