package main // Entry point package

import (
	"context"
	"time"

	"github.com/joho/godotenv"    // loads .env files in development
	"github.com/labstack/echo/v4" // Echo web framework
	"go.uber.org/zap"             // structured logging

	"github.com/matiloti/flashcards-backend-sub001/internal/config"
	"github.com/matiloti/flashcards-backend-sub001/internal/database"
	"github.com/matiloti/flashcards-backend-sub001/internal/handler"
	"github.com/matiloti/flashcards-backend-sub001/internal/middleware"
	"github.com/matiloti/flashcards-backend-sub001/internal/queue"
	"github.com/matiloti/flashcards-backend-sub001/internal/repository"
	"github.com/matiloti/flashcards-backend-sub001/internal/router"
	"github.com/matiloti/flashcards-backend-sub001/internal/service"
)

func main() {
	_ = godotenv.Load() // best-effort; real deployments set env vars directly

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalw("database connection failed", "error", err)
	}
	defer func() { _ = db.Close() }()

	// Redis is optional: without it the limiter and cache become
	// pass-throughs and the API still works.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Warn("redis unavailable; rate limiting and response caching disabled")
	}

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	decks := repository.NewDeckRepo(db)
	cards := repository.NewCardRepo(db)
	study := repository.NewStudyRepo(db)

	authSvc := service.NewAuthService(cfg, users, tokens)
	studySvc := service.NewStudyService(decks, cards, study, queue.NewAMQPPublisher(log))

	// Background maintenance: purge refresh tokens whose expiry or
	// revocation is past the retention window, and consume completion
	// events into the study activity log.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.StartTokenPurge(ctx, tokens,
		time.Duration(cfg.PurgeIntervalMin)*time.Minute,
		time.Duration(cfg.TokenRetentionDay)*24*time.Hour,
		log)
	go queue.StartSessionConsumer(log)

	e := echo.New()
	e.HideBanner = true

	router.RegisterRoutes(e)
	router.RegisterAPI(e, cfg, router.Handlers{
		Auth:  handler.NewAuthHandler(authSvc),
		Decks: handler.NewDeckHandler(decks),
		Cards: handler.NewCardHandler(decks, cards),
		Study: handler.NewStudyHandler(studySvc),
	}, router.Middlewares{
		RateLimit: middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb),
		Cache:     middleware.NewRedisCache(config.LoadCacheConfig(), rdb),
	})

	addr := ":" + cfg.Port
	log.Infow("listening", "addr", addr, "env", cfg.Env)
	if err := e.Start(addr); err != nil {
		log.Fatalw("server stopped", "error", err)
	}
}
