package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"entity-api/internal/core/database"
	"entity-api/internal/domain"
	"entity-api/internal/repo"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func newUserRepo(t *testing.T) (*repo.Repository[domain.User, *domain.User], *gorm.DB) {
	db := setupTestDB(t)
	return repo.New[domain.User](db, zaptest.NewLogger(t), repo.NewGormUserLookup(db)), db
}

var ctx = context.Background()
