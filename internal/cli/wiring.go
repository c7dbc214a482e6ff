package cli

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"quiz-player/internal/app"
	"quiz-player/internal/config"
	"quiz-player/internal/infra/api"
	"quiz-player/internal/infra/memory"
	pgloader "quiz-player/internal/infra/postgres"
	rediscache "quiz-player/internal/infra/redis"
	"quiz-player/internal/infra/sqlite"
)

// buildService assembles the quiz service from config. The returned cleanup
// releases every connection it opened.
func buildService(ctx context.Context, cfg config.Config) (*app.QuizService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	loader, closeLoader, err := buildLoader(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeLoader)

	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
	}
	redisTTL := config.TTLDuration(cfg.Redis.TTL, 10*time.Minute)

	exerciseTTL := config.TTLDuration(cfg.Exercise.TTL, 10*time.Minute)
	var quizRepo app.QuizRepository
	if redisClient != nil {
		quizRepo = rediscache.NewQuizRepository(redisClient, loader, exerciseTTL)
	} else {
		quizRepo = memory.NewQuizRepository(loader, exerciseTTL)
	}

	var store app.SessionRepository
	if redisClient != nil {
		store = rediscache.NewSessionStore(redisClient, redisTTL)
	} else {
		store = memory.NewSessionStore()
	}

	service := app.NewQuizService(store, quizRepo,
		app.WithSessionTicker(app.NewRealTicker, config.TTLDuration(cfg.Session.Tick, time.Second)),
		app.WithRetention(config.TTLDuration(cfg.Session.Retention, 10*time.Minute)),
	)
	return service, cleanup, nil
}

// buildLoader picks the exercise source: Postgres, then SQLite, then the
// dashboard API.
func buildLoader(ctx context.Context, cfg config.Config) (memory.QuizLoader, func(), error) {
	switch {
	case cfg.Postgres.URL != "":
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("loading exercises from postgres")
		return pgloader.NewQuizLoader(pool, cfg.API.BaseURL), pool.Close, nil
	case cfg.SQLite.Path != "":
		store, err := sqlite.Open(ctx, cfg.SQLite.Path, cfg.API.BaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("loading exercises from sqlite %s", cfg.SQLite.Path)
		return store, func() { _ = store.Close() }, nil
	default:
		timeout := config.TTLDuration(cfg.API.Timeout, 15*time.Second)
		return api.NewClient(cfg.API.BaseURL, &http.Client{Timeout: timeout}), func() {}, nil
	}
}
