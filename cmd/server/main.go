package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lingolink/relay-server-go/internal/archive"
	"github.com/lingolink/relay-server-go/internal/config"
	"github.com/lingolink/relay-server-go/internal/database"
	"github.com/lingolink/relay-server-go/internal/handler"
	"github.com/lingolink/relay-server-go/internal/jobs"
	"github.com/lingolink/relay-server-go/internal/middleware"
	"github.com/lingolink/relay-server-go/internal/redis"
	"github.com/lingolink/relay-server-go/internal/registry"
	"github.com/lingolink/relay-server-go/internal/service"
	"github.com/lingolink/relay-server-go/internal/store"
	"github.com/lingolink/relay-server-go/internal/translate"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	redisClient, err := redis.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}
	defer redisClient.Close()
	log.Info().Msg("redis connected")

	// The archive is optional: without a database, room lifecycle rows are
	// simply not recorded.
	var recorder archive.Recorder = archive.Noop{}
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to database")
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
		if err := db.Ping(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to ping database")
		}
		cancel()

		pg := archive.NewPostgresRecorder(db)
		ctx, cancel = context.WithTimeout(context.Background(), config.DBPingTimeout)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate archive schema")
		}
		cancel()
		recorder = pg
		log.Info().Msg("database connected, archive enabled")
	}

	sessionStore := store.NewRedisStore(redisClient)
	reg := registry.New()
	defer reg.Close()

	var translator translate.Translator = translate.Noop{}
	if cfg.TranslatorURL != "" {
		translator = translate.NewHTTPTranslator(cfg.TranslatorURL, cfg.TranslatorAPIKey)
		log.Info().Str("url", cfg.TranslatorURL).Msg("translator configured")
	} else {
		log.Warn().Msg("no translator configured, messages pass through untranslated")
	}

	pairingService := service.NewPairingService(
		sessionStore, reg, recorder,
		cfg.TokenTTL(), cfg.ListenTokenTTL(), cfg.RoomTTL(),
	)
	relayService := service.NewRelayService(sessionStore, reg, translator)
	presenceService := service.NewPresenceService(sessionStore, reg, recorder, cfg.RoomTTL())
	rateLimiter := service.NewRateLimiter(redisClient.Client)

	tokenHandler := handler.NewTokenHandler(pairingService)
	wsHandler := handler.NewWSHandler(pairingService, relayService, presenceService, reg)

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)
	tokenRateLimit := middleware.NewIPRateLimitMiddleware(
		rateLimiter, config.TokenIssueRateLimitPerMin, time.Minute, "tokens",
	)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"connections": reg.Count(),
			"timestamp":   time.Now().UnixMilli(),
		})
	})

	r.Route("/v1", func(r chi.Router) {
		// The websocket route must stay outside the request timeout and
		// body limit, both of which would kill long-lived connections.
		r.Get("/ws", wsHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
			r.Use(bodyLimitMiddleware.Handler)
			r.With(tokenRateLimit.Handler).Mount("/tokens", tokenHandler.Routes())
		})
	})

	cleanupJob := jobs.NewCleanupJob(sessionStore, recorder, config.CleanupJobInterval)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
