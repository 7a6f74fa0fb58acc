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

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/isdelr/placeit-be/internal/api"
	"github.com/isdelr/placeit-be/internal/auth"
	"github.com/isdelr/placeit-be/internal/config"
	"github.com/isdelr/placeit-be/internal/database"
	"github.com/isdelr/placeit-be/internal/geocoder"
	"github.com/isdelr/placeit-be/internal/logger"
	"github.com/isdelr/placeit-be/internal/monitoring"
	"github.com/isdelr/placeit-be/internal/observability"
	"github.com/isdelr/placeit-be/internal/predictor"
	"github.com/isdelr/placeit-be/internal/services"
	"github.com/isdelr/placeit-be/internal/store"
	"github.com/isdelr/placeit-be/internal/web"
	"github.com/isdelr/placeit-be/internal/websocket"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.LogLevel, cfg.LogFormat)

	// Set up credential store
	userStore, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to initialize credential store")
	}
	defer closeStore()

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	// Set up upstream clients
	nominatim := geocoder.NewNominatim(cfg.GeocoderURL, cfg.GeocoderUserAgent, cfg.UpstreamTimeout)
	var geo geocoder.Geocoder = nominatim
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		geo = geocoder.NewCached(nominatim, rdb, cfg.GeocodeCacheTTL, cfg.UpstreamTimeout)
		log.Info().Str("addr", cfg.RedisAddr).Dur("ttl", cfg.GeocodeCacheTTL).Msg("Geocode cache enabled")
	}
	predictorClient := predictor.NewClient(cfg.PredictorURL, cfg.UpstreamTimeout)

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(userStore, tokens, cfg.BcryptCost)
	analysisService := services.NewAnalysisService(geo, predictorClient, hub)

	// Set up and run the background stats updater
	statUpdater := monitoring.NewStatUpdater(cfg.StatInterval)
	go statUpdater.Run()

	// Set up and run the upstream monitor
	scheduler := monitoring.NewScheduler(cfg.HealthSchedule, cfg.UpstreamTimeout,
		monitoring.Target{Name: "geocoder", URL: nominatim.BaseURL()},
		monitoring.Target{Name: "predictor", URL: predictorClient.BaseURL()},
	)
	if err := scheduler.Run(); err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.HealthSchedule).Msg("Failed to start upstream monitor")
	}

	healthService := services.NewHealthService(userStore, scheduler, statUpdater)

	renderer, err := web.NewRenderer()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to parse page templates")
	}

	// Set up router
	router := api.NewRouter(api.RouterParams{
		Hub:              hub,
		Tokens:           tokens,
		UserService:      userService,
		AnalysisService:  analysisService,
		HealthChecker:    healthService,
		Renderer:         renderer,
		Metrics:          observability.NewMetrics(),
		AllowedOrigins:   cfg.AllowedOrigins,
		Production:       cfg.IsProduction(),
		MapTilerKey:      cfg.MapTilerKey,
		AnalyzeRateLimit: cfg.AnalyzeRateLimit,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("env", cfg.AppEnv).Str("store", userStore.Name()).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	statUpdater.Stop()
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	hub.Stop()

	log.Info().Msg("Server exiting")
}

// openStore opens the configured credential store and applies its schema.
func openStore(cfg *config.Config) (store.UserStore, func(), error) {
	switch cfg.StoreDriver {
	case config.StoreMongo:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		client, db, err := database.NewMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigrateMongo(ctx, db); err != nil {
			_ = client.Disconnect(context.Background())
			return nil, nil, err
		}
		closeFn := func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to disconnect from MongoDB")
			}
		}
		return store.NewMongoStore(db), closeFn, nil

	case config.StoreSQLite:
		db, err := database.New(cfg.DatabasePath)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Migrate(db); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("apply database migrations: %w", err)
		}
		return store.NewSQLiteStore(db), func() { db.Close() }, nil

	case config.StorePostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		db, err := database.NewPostgres(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := database.MigratePostgres(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return store.NewPostgresStore(db), func() { db.Close() }, nil

	default:
		log.Warn().Msg("Using the in-memory credential store; accounts are lost on restart")
		return store.NewMemoryStore(), func() {}, nil
	}
}
