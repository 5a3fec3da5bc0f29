package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"entity-api/internal/core/database"
	"entity-api/internal/core/logger"
	"entity-api/internal/domain"
)

// Repository implements the common persistence operations for any entity
// embedding domain.BaseEntity.
type Repository[T any, PT interface {
	*T
	domain.Entity
}] struct {
	db    *gorm.DB
	log   *zap.Logger
	users UserLookup
	now   func() time.Time
}

func New[T any, PT interface {
	*T
	domain.Entity
}](db *gorm.DB, log *zap.Logger, users UserLookup) *Repository[T, PT] {
	return &Repository[T, PT]{db: db, log: log, users: users, now: time.Now}
}

func (r *Repository[T, PT]) entityName() string {
	var zero T
	return fmt.Sprintf("%T", zero)
}

// FindByID returns (nil, nil) when no row has the given id.
func (r *Repository[T, PT]) FindByID(ctx context.Context, id uuid.UUID) (*T, error) {
	var e T
	err := r.db.WithContext(ctx).Scopes(ByID(id)).Take(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", r.entityName(), id, err)
	}
	return &e, nil
}

func (r *Repository[T, PT]) Get(ctx context.Context, preds ...Predicate) ([]T, error) {
	var out []T
	if err := r.db.WithContext(ctx).Scopes(scopes(preds)...).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", r.entityName(), err)
	}
	return out, nil
}

// GetWithInclude eagerly loads the given relationship paths ("Unit",
// "Users", "Users.Unit"). Each path is fetched by its own query.
func (r *Repository[T, PT]) GetWithInclude(ctx context.Context, includes ...string) ([]T, error) {
	return r.GetWithIncludeWhere(ctx, nil, includes...)
}

func (r *Repository[T, PT]) GetWithIncludeWhere(ctx context.Context, pred Predicate, includes ...string) ([]T, error) {
	q := r.db.WithContext(ctx)
	for _, inc := range includes {
		q = q.Preload(inc)
	}
	if pred != nil {
		q = q.Scopes(pred)
	}
	var out []T
	if err := q.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("list %s with %v: %w", r.entityName(), includes, err)
	}
	return out, nil
}

func (r *Repository[T, PT]) Exists(ctx context.Context, preds ...Predicate) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(new(T)).Scopes(scopes(preds)...).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("count %s: %w", r.entityName(), err)
	}
	return n > 0, nil
}

// Create assigns a new id and creation metadata on behalf of actor and
// inserts the entity's own columns. A unique key violation yields
// domain.ErrConflict.
func (r *Repository[T, PT]) Create(ctx context.Context, actor domain.Actor, entity *T) (*T, error) {
	actorID, err := r.actorID(ctx, actor)
	if err != nil {
		return nil, err
	}
	PT(entity).Audit().Stamp(actorID, r.now())

	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(entity).Error; err != nil {
		if database.IsDuplicateKey(err) {
			return nil, fmt.Errorf("create %s: %w", r.entityName(), domain.ErrConflict)
		}
		logger.WithContext(ctx, r.log).Error("create failed", zap.String("entity", r.entityName()), zap.Error(err))
		return nil, fmt.Errorf("create %s: %w", r.entityName(), err)
	}
	logger.WithContext(ctx, r.log).Debug("entity created",
		zap.String("entity", r.entityName()), zap.Stringer("id", PT(entity).Audit().ID))
	return entity, nil
}

// Update replaces every non-system column of the stored row with the values
// of entity. It returns (nil, nil) when the id is unknown, otherwise the row
// as persisted. Concurrent updates are last-write-wins.
func (r *Repository[T, PT]) Update(ctx context.Context, actor domain.Actor, entity *T) (*T, error) {
	base := PT(entity).Audit()
	existing, err := r.FindByID(ctx, base.ID)
	if err != nil || existing == nil {
		return nil, err
	}
	actorID, err := r.actorID(ctx, actor)
	if err != nil {
		return nil, err
	}
	base.Restamp(PT(existing).Audit(), actorID, r.now())

	err = r.db.WithContext(ctx).
		Model(entity).
		Select("*").
		Omit(clause.Associations, "id", "created_at", "created_by").
		Updates(entity).Error
	if err != nil {
		if database.IsDuplicateKey(err) {
			return nil, fmt.Errorf("update %s %s: %w", r.entityName(), base.ID, domain.ErrConflict)
		}
		return nil, fmt.Errorf("update %s %s: %w", r.entityName(), base.ID, err)
	}
	return r.FindByID(ctx, base.ID)
}

// Delete removes the row permanently. An unknown id is an invalid argument.
func (r *Repository[T, PT]) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("delete %s %s: %w", r.entityName(), id, domain.ErrInvalidArgument)
	}
	if err := r.db.WithContext(ctx).Delete(existing).Error; err != nil {
		return fmt.Errorf("delete %s %s: %w", r.entityName(), id, err)
	}
	logger.WithContext(ctx, r.log).Debug("entity deleted", zap.String("entity", r.entityName()), zap.Stringer("id", id))
	return nil
}

// GetUser resolves the user a login claim refers to. Empty or unknown
// logins resolve to nil.
func (r *Repository[T, PT]) GetUser(ctx context.Context, login string) (*domain.User, error) {
	if login == "" || r.users == nil {
		return nil, nil
	}
	return r.users.GetUser(ctx, login)
}

func (r *Repository[T, PT]) actorID(ctx context.Context, actor domain.Actor) (*uuid.UUID, error) {
	if actor.Anonymous() {
		return nil, nil
	}
	u, err := r.GetUser(ctx, actor.Login)
	if err != nil {
		return nil, fmt.Errorf("resolve actor %q: %w", actor.Login, err)
	}
	if u == nil {
		return nil, nil
	}
	id := u.ID
	return &id, nil
}
