package setup

import (
	"github.com/seojin-dev/goboard/internal/cache"
	"github.com/seojin-dev/goboard/internal/cache/memory"
	"github.com/seojin-dev/goboard/internal/cache/redis"
	"github.com/seojin-dev/goboard/internal/config"
	"github.com/seojin-dev/goboard/internal/handler"
	"github.com/seojin-dev/goboard/internal/jwt"
	"github.com/seojin-dev/goboard/internal/logger"
	"github.com/seojin-dev/goboard/internal/middleware"
	"github.com/seojin-dev/goboard/internal/sanitize"
	"github.com/seojin-dev/goboard/internal/service"
	"github.com/seojin-dev/goboard/internal/storage/pg"
)

// Dependencies struct to hold all initialized dependencies.
type Dependencies struct {
	Storage        *pg.Storage
	Cache          cache.Cache
	Handler        *handler.Handler
	AuthMiddleware *middleware.Auth
	Config         *config.Config
}

// SetupDependencies initializes all dependencies required for the application.
func SetupDependencies(cfg *config.Config) (*Dependencies, error) {
	storage, err := pg.New(cfg)
	if err != nil {
		return nil, err
	}

	c := newCache(cfg)
	jwtService := jwt.New(cfg.JwtKey(), cfg.JwtTTL())

	auth := service.NewAuth(storage, jwtService)
	user := service.NewUser(storage)
	post := service.NewPost(storage, c, sanitize.NewStrict(), sanitize.New())
	comment := service.NewComment(storage, c, sanitize.New(), cfg.Public.PostsPerPage)
	views := service.NewViewTracker(storage, c, nil)

	h := handler.New(auth, user, post, comment, views, storage, cfg)

	return &Dependencies{
		Storage:        storage,
		Cache:          c,
		Handler:        h,
		AuthMiddleware: middleware.NewAuth(jwtService),
		Config:         cfg,
	}, nil
}

// newCache picks redis when an address is configured, otherwise the
// in-process cache. Single-instance deployments run fine without redis.
func newCache(cfg *config.Config) cache.Cache {
	if cfg.Public.Redis.Addr != "" {
		logger.Log.Info("using redis cache", "addr", cfg.Public.Redis.Addr)
		return redis.New(redis.Config{
			Addr:     cfg.Public.Redis.Addr,
			Db:       cfg.Public.Redis.Db,
			Password: cfg.RedisPassword(),
		})
	}
	logger.Log.Info("using in-memory cache")
	return memory.New()
}
