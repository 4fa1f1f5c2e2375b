package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"tourism-system/internal/cache"
	"tourism-system/internal/clients/geocode"
	"tourism-system/internal/clients/meteo"
	"tourism-system/internal/clients/overpass"
	"tourism-system/internal/config"
	httphandler "tourism-system/internal/http"
	"tourism-system/internal/metrics"
	"tourism-system/internal/repo"
	"tourism-system/internal/services/places"
	"tourism-system/internal/services/tourism"
	"tourism-system/internal/services/weather"
)

func main() {
	var (
		port = flag.String("port", "", "Port to run the server on (overrides PORT)")
	)
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	if *port != "" {
		cfg.Server.Port = *port
	}

	setupLogger(cfg.Log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info().Str("port", cfg.Server.Port).Msg("Starting tourism system")

	// Database for the query-history log.
	pool, err := repo.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := repo.InitSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize schema")
	}
	history := repo.NewHistoryRepository(pool)

	// Cache backend for upstream results.
	appCache, err := newCache(cfg.Cache)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize cache")
	}
	defer appCache.Close()

	if mem, ok := appCache.(*cache.MemoryCache); ok {
		go observeCacheStats(ctx, mem)
	}

	// Collaborator clients and fact agents.
	geocoder := geocode.NewClient(cfg.Geocoding.BaseURL, cfg.Geocoding.UserAgent, cfg.Geocoding.Timeout, appCache)
	weatherClient := meteo.NewClient(cfg.Weather.BaseURL, cfg.Weather.Timeout)
	placesClient := overpass.NewClient(cfg.Places.BaseURL, cfg.Places.Timeout, cfg.Places.RadiusM)

	weatherAgent := weather.NewAgent(geocoder, weatherClient, appCache)
	placesAgent := places.NewAgent(geocoder, placesClient, appCache)
	tourismService := tourism.NewService(weatherAgent, placesAgent)

	router := httphandler.NewRouter()
	handler := httphandler.NewTourismHandler(tourismService, history)
	router.RegisterTourismRoutes(handler)
	router.RegisterHealthRoutes()
	router.RegisterMetricsRoutes()

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
	}

	log.Info().Msg("Server stopped")
}

func setupLogger(cfg config.LogConfig) {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

func newCache(cfg config.CacheConfig) (cache.Cache, error) {
	if cfg.Backend == "redis" {
		return cache.NewRedisCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	}
	return cache.NewMemoryCache(), nil
}

func observeCacheStats(ctx context.Context, mem *cache.MemoryCache) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			total, active := mem.Stats()
			metrics.ObserveCache(total, active)
		}
	}
}
