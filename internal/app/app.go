// Package app wires configuration into the stores, services and HTTP
// modules shared by the api and admin binaries.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"entity-api/internal/core/auth"
	"entity-api/internal/core/cache"
	"entity-api/internal/core/config"
	"entity-api/internal/core/database"
	"entity-api/internal/domain"
	"entity-api/internal/repo"
	"entity-api/internal/service"
	"entity-api/internal/transport/http/handler"
	"entity-api/internal/transport/http/router"
)

type App struct {
	DB       *gorm.DB
	Cache    *cache.Cache // nil when redis.addr is empty
	JWT      *auth.JWTer
	Users    *repo.Repository[domain.User, *domain.User]
	Units    *repo.Repository[domain.Unit, *domain.Unit]
	UserSvc  *service.UserService
	AuthSvc  *service.AuthService
	Registry *router.Registry

	log *zap.Logger
}

func NewJWTer(a config.Auth) *auth.JWTer {
	return &auth.JWTer{
		Secret:   []byte(a.Secret),
		Issuer:   a.Issuer,
		Audience: a.Audience,
		TTL:      a.TTL(),
		Leeway:   a.Leeway(),
	}
}

// New opens the database (migrating it when configured), connects the
// optional user cache and builds every module. Close releases what it opened.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowQueryMs:        cfg.DB.SlowQueryMs,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			_ = database.Close(db)
			return nil, fmt.Errorf("automigrate: %w", err)
		}
		log.Info("automigrate done")
	}

	a := &App{DB: db, JWT: NewJWTer(cfg.Auth), log: log}

	var lookup repo.UserLookup = repo.NewGormUserLookup(db)
	var evicter service.Evicter
	if cfg.Redis.Enabled() {
		a.Cache = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := a.Cache.Ping(pingCtx); err != nil {
			// lookups fall back to the database while redis is unreachable
			log.Warn("redis unreachable", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		}
		cached := repo.NewCachedUserLookup(lookup, a.Cache, time.Duration(cfg.Redis.UserTTLSec)*time.Second, log)
		lookup, evicter = cached, cached
	}

	a.Users = repo.New[domain.User](db, log, lookup)
	a.Units = repo.New[domain.Unit](db, log, lookup)
	a.UserSvc = service.NewUserService(a.Users, evicter, log)
	a.AuthSvc = service.NewAuthService(lookup, a.JWT, log)

	a.Registry = router.NewRegistry(
		handler.NewAuthHandler(a.AuthSvc),
		handler.NewUserHandler(a.UserSvc),
		handler.NewResource[domain.Unit]("/api/units", a.Units),
		handler.NewAdminHandler(a.Units, a.Users),
	)
	return a, nil
}

func (a *App) Close() {
	if a.Cache != nil {
		if err := a.Cache.Close(); err != nil {
			a.log.Warn("close redis", zap.Error(err))
		}
	}
	if err := database.Close(a.DB); err != nil {
		a.log.Warn("close database", zap.Error(err))
	}
}
