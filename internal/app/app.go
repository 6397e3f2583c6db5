// Package app собирает приложение: конфиг, логгер, хранилище, кеш,
// сервисы и дерево CLI-команд.
package app

import (
	"context"
	"log/slog"

	"github.com/subtrackhq/subtrack/internal/cache"
	"github.com/subtrackhq/subtrack/internal/config"
	"github.com/subtrackhq/subtrack/internal/lib/jwt"
	"github.com/subtrackhq/subtrack/internal/lib/sl"
	authservice "github.com/subtrackhq/subtrack/internal/services/auth"
	subservice "github.com/subtrackhq/subtrack/internal/services/subscription"
	"github.com/subtrackhq/subtrack/internal/storage"
)

// App держит собранные зависимости приложения.
type App struct {
	cfg     *config.Config
	log     *slog.Logger
	storage *storage.FileStorage
	subs    *subservice.SubscriptionService
	auth    *authservice.AuthService
}

// New инициализирует хранилище, кеш и сервисы. Недоступный redis не
// мешает работе: приложение продолжает без кеша.
func New(ctx context.Context, cfg *config.Config, log *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	var resultCache subservice.Cache = cache.Noop{}
	if cfg.RedisConnection.Addr != "" {
		redisCache, err := cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			log.Warn("redis unavailable, running without cache", sl.Err(err))
		} else {
			resultCache = redisCache
		}
	}

	maker := jwt.NewMaker(cfg.Session.SecretKey, cfg.Session.TokenTTL)
	subs := subservice.NewSubscriptionService(db, resultCache, cfg.RedisConnection.CacheTTL, log)
	auth := authservice.New(db, db, maker, log)

	return &App{
		cfg:     cfg,
		log:     log,
		storage: db,
		subs:    subs,
		auth:    auth,
	}, nil
}

// Run выполняет CLI-команду.
func (a *App) Run(ctx context.Context) error {
	return a.rootCmd().ExecuteContext(ctx)
}
