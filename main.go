package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/todoshare-be/internal/api"
	"github.com/isdelr/todoshare-be/internal/auth"
	"github.com/isdelr/todoshare-be/internal/broadcast"
	"github.com/isdelr/todoshare-be/internal/config"
	"github.com/isdelr/todoshare-be/internal/logger"
	"github.com/isdelr/todoshare-be/internal/monitoring"
	"github.com/isdelr/todoshare-be/internal/mw"
	"github.com/isdelr/todoshare-be/internal/presence"
	"github.com/isdelr/todoshare-be/internal/seed"
	"github.com/isdelr/todoshare-be/internal/services"
	"github.com/isdelr/todoshare-be/internal/store"
	"github.com/isdelr/todoshare-be/internal/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("dev", "info")
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.Env, cfg.LogLevel)

	// In-memory state
	directory := store.NewDirectory()
	lists := store.NewListStore(directory)
	registry := presence.NewRegistry()

	// Set up WebSocket Hub
	hub := websocket.NewHub(registry)
	go hub.Run()

	broadcaster := broadcast.NewBroadcaster(registry, hub)
	tokens := auth.NewProvider(cfg.JWTSecret, cfg.TokenTTL)

	// Set up services
	userService := services.NewUserService(directory, tokens)
	activityService := services.NewActivityService(lists)
	listService := services.NewListService(lists, directory, broadcaster, activityService)

	if cfg.SeedSampleData {
		if err := seed.Load(userService, lists); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed sample data")
		}
	}

	// Set up and run the background stats updater
	statUpdater := monitoring.NewStatUpdater(userService.UserCount, lists.ListCount)
	go statUpdater.Run()

	// Set up and run the activity pruner
	scheduler, err := monitoring.NewScheduler(activityService, cfg.ActivityPruneSchedule, cfg.ActivityRetention)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create scheduler")
	}
	go scheduler.Run()

	authLimiter := mw.NewRateLimiter(rate.Limit(cfg.AuthRateLimit), cfg.AuthRateBurst, 10*time.Minute)

	// Set up router
	router := api.NewRouter(api.Deps{
		UserService:     userService,
		ListService:     listService,
		ActivityService: activityService,
		Verifier:        tokens,
		Hub:             hub,
		Presence:        registry,
		Access:          lists,
		AuthLimiter:     authLimiter,
		AllowedOrigins:  cfg.AllowedOrigins,
		TokenTTL:        cfg.TokenTTL,
		SecureCookies:   !cfg.IsDev(),
		TrustProxy:      cfg.TrustProxy,
	})

	// Set up server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statUpdater.Stop()
	scheduler.Stop()
	authLimiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}
