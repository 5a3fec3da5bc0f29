package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"entity-api/internal/core/cache"
	"entity-api/internal/domain"
)

// UserLookup resolves the user behind a login claim.
type UserLookup interface {
	GetUser(ctx context.Context, login string) (*domain.User, error)
}

type GormUserLookup struct{ db *gorm.DB }

func NewGormUserLookup(db *gorm.DB) *GormUserLookup { return &GormUserLookup{db: db} }

func (l *GormUserLookup) GetUser(ctx context.Context, login string) (*domain.User, error) {
	if login == "" {
		return nil, nil
	}
	var u domain.User
	err := l.db.WithContext(ctx).Where("login = ?", login).Take(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find user by login: %w", err)
	}
	return &u, nil
}

// CachedUserLookup keeps resolved users in Redis for a short TTL. Unknown
// logins are not cached, and Redis failures fall back to the inner lookup.
type CachedUserLookup struct {
	inner UserLookup
	cache *cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

func NewCachedUserLookup(inner UserLookup, c *cache.Cache, ttl time.Duration, log *zap.Logger) *CachedUserLookup {
	return &CachedUserLookup{inner: inner, cache: c, ttl: ttl, log: log}
}

func userKey(login string) string { return "user:login:" + login }

func (l *CachedUserLookup) GetUser(ctx context.Context, login string) (*domain.User, error) {
	if login == "" {
		return nil, nil
	}
	u, err := cache.GetOrLoadJSON(l.cache, ctx, userKey(login), l.ttl, func(ctx context.Context) (*domain.User, error) {
		return l.inner.GetUser(ctx, login)
	})
	if err != nil {
		l.log.Warn("cached user lookup failed, querying store", zap.String("login", login), zap.Error(err))
		return l.inner.GetUser(ctx, login)
	}
	return u, nil
}

// Forget drops the cached entry for login.
func (l *CachedUserLookup) Forget(ctx context.Context, login string) {
	if err := l.cache.Delete(ctx, userKey(login)); err != nil {
		l.log.Warn("evict cached user failed", zap.String("login", login), zap.Error(err))
	}
}
