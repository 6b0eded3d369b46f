package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/doSwayamCode/chitrakaar/config"
	"github.com/doSwayamCode/chitrakaar/game"
	"github.com/doSwayamCode/chitrakaar/migrations"
	"github.com/doSwayamCode/chitrakaar/storage"
	"github.com/doSwayamCode/chitrakaar/words"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const SHUTDOWN_TIMEOUT = 5 * time.Second

func CreateServer(allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetTrustedProxies([]string{"127.0.0.1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"})
	r.GET("/health", func(ctx *gin.Context) { ctx.String(200, "healthy") })

	r.Use(func(ctx *gin.Context) {
		origin := ctx.Request.Header.Get("Origin")

		if slices.Contains(allowedOrigins, origin) {
			ctx.Next()
			return
		}
		ctx.String(http.StatusForbidden, "forbidden origin")
		ctx.Abort()
	})

	r.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders: []string{
			"Content-Type",
			"Upgrade",
			"Connection",
			"Sec-WebSocket-Key",
			"Sec-WebSocket-Version",
			"Sec-WebSocket-Extensions",
			"Sec-WebSocket-Protocol",
		},
	}))

	return r
}

func registerRoutes(r *gin.Engine, h *game.GameHandler) {
	r.GET("/ws", h.WebsocketHandler)

	api := r.Group("/api")
	api.GET("/avatars", h.AvatarsHandler)
	api.GET("/modes", h.ModesHandler)
	api.GET("/stats", h.StatsHandler)
	api.GET("/gallery", h.GalleryHandler)
	api.GET("/leaderboard", h.LeaderboardHandler)
}

func setupLogger(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
}

type store interface {
	game.GallerySaver
	game.ScoreRecorder
	game.GalleryReader
	game.LeaderboardReader
}

// openStore returns nil when persistence is not configured or unreachable;
// the game then runs without gallery and leaderboard.
func openStore(ctx context.Context, cfg config.Config) (store, func()) {
	switch cfg.StoreBackend {
	case "postgres":
		if err := migrations.Migrate(cfg.PostgresURL); err != nil {
			log.Error().Err(err).Msg("migrations failed, running without persistence")
			return nil, func() {}
		}
		repo, err := storage.NewPostgresRepo(ctx, cfg.PostgresURL)
		if err != nil {
			log.Error().Err(err).Msg("postgres unavailable, running without persistence")
			return nil, func() {}
		}
		return repo, repo.Close
	case "mongo":
		repo, err := storage.NewMongoRepo(ctx, cfg.MongoURI)
		if err != nil {
			log.Error().Err(err).Msg("mongo unavailable, running without persistence")
			return nil, func() {}
		}
		return repo, func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
			defer cancel()
			repo.Close(closeCtx)
		}
	}
	log.Info().Msg("no store configured, gallery and leaderboard disabled")
	return nil, func() {}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogger(cfg)
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, os.Interrupt)
	defer stop()

	st, closeStore := openStore(ctx, cfg)
	defer closeStore()

	deps := game.RoomDeps{Clock: game.RealClock(), Words: words.Default()}
	var galleryReader game.GalleryReader
	var leaderboard game.LeaderboardReader
	if st != nil {
		deps.Gallery, deps.Scores = st, st
		galleryReader, leaderboard = st, st
	}

	tickerGen := game.NewTickerGen()
	registry := game.NewRegistry(game.RegistryOptions{
		MaxRooms:  cfg.MaxRooms,
		Retention: cfg.RoomRetention,
	}, deps, tickerGen)

	sweepStarted := make(chan struct{})
	go registry.SweepLoop(ctx, cfg.SweepInterval, sweepStarted)
	<-sweepStarted

	gameHandler := game.NewGameHandler(registry, galleryReader, leaderboard, tickerGen)

	r := CreateServer(cfg.AllowedOrigins)
	registerRoutes(r, gameHandler)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received, notifying rooms")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), SHUTDOWN_TIMEOUT)
	defer cancel()

	registry.Shutdown(shutdownCtx)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown")
	}
	if err := gameHandler.Wait(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("connections still open at deadline")
	}
	log.Info().Msg("shutting down now")
}
