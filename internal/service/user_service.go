package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/mehanizm/iuliia-go"
	"go.uber.org/zap"

	"entity-api/internal/core/logger"
	"entity-api/internal/domain"
	"entity-api/internal/repo"
)

// UserStore is the persistence the user service needs. *repo.Repository for
// domain.User satisfies it.
type UserStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Exists(ctx context.Context, preds ...repo.Predicate) (bool, error)
	Create(ctx context.Context, actor domain.Actor, u *domain.User) (*domain.User, error)
	Update(ctx context.Context, actor domain.Actor, u *domain.User) (*domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Evicter drops cached state kept for a login.
type Evicter interface {
	Forget(ctx context.Context, login string)
}

type UserService struct {
	store   UserStore
	evicter Evicter
	log     *zap.Logger
}

// NewUserService wires the service. evicter may be nil when no user cache is configured.
func NewUserService(store UserStore, evicter Evicter, log *zap.Logger) *UserService {
	return &UserService{store: store, evicter: evicter, log: log}
}

func (s *UserService) IsUserExist(ctx context.Context, login string) (bool, error) {
	return s.store.Exists(ctx, repo.ByLogin(login))
}

// GenerateLogin derives "{name initial}.[{patronymic initial}.]{surname}" from
// "Surname Name [Patronymic]", transliterated with the Moscow Metro scheme and
// lowercased. It returns "" when fewer than two name parts are present.
// Uniqueness is not checked.
func GenerateLogin(fullName string) string {
	parts := strings.Fields(strings.ToLower(iuliia.Mosmetro.Translate(fullName)))
	if len(parts) < 2 {
		return ""
	}
	var b strings.Builder
	b.WriteString(initial(parts[1]))
	b.WriteByte('.')
	if len(parts) > 2 {
		b.WriteString(initial(parts[2]))
		b.WriteByte('.')
	}
	b.WriteString(parts[0])
	return b.String()
}

func initial(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	return string(r)
}

// CreateUser assigns the first free login out of base, base0, base1, ... and
// persists the user. Two concurrent calls may pick the same candidate; the
// loser gets domain.ErrConflict from the unique index.
func (s *UserService) CreateUser(ctx context.Context, actor domain.Actor, u *domain.User) (*domain.User, error) {
	base := GenerateLogin(u.Name)
	if base == "" {
		return nil, fmt.Errorf("generate login for %q: %w", u.Name, domain.ErrInvalidArgument)
	}

	login := base
	for i := 0; ; i++ {
		taken, err := s.IsUserExist(ctx, login)
		if err != nil {
			return nil, fmt.Errorf("check login %q: %w", login, err)
		}
		if !taken {
			break
		}
		login = base + strconv.Itoa(i)
	}

	u.Login = login
	created, err := s.store.Create(ctx, actor, u)
	if err != nil {
		return nil, err
	}
	logger.WithContext(ctx, s.log).Info("user created",
		zap.String("user_login", created.Login), zap.Stringer("id", created.ID))
	return created, nil
}

func (s *UserService) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.store.FindByID(ctx, id)
}

// Create is CreateUser; a client supplied login is ignored.
func (s *UserService) Create(ctx context.Context, actor domain.Actor, u *domain.User) (*domain.User, error) {
	return s.CreateUser(ctx, actor, u)
}

func (s *UserService) Update(ctx context.Context, actor domain.Actor, u *domain.User) (*domain.User, error) {
	prev, err := s.store.FindByID(ctx, u.ID)
	if err != nil || prev == nil {
		return nil, err
	}
	updated, err := s.store.Update(ctx, actor, u)
	if err != nil {
		return nil, err
	}
	s.forget(ctx, prev.Login)
	return updated, nil
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	prev, err := s.store.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	if prev != nil {
		s.forget(ctx, prev.Login)
	}
	return nil
}

func (s *UserService) forget(ctx context.Context, login string) {
	if s.evicter != nil && login != "" {
		s.evicter.Forget(ctx, login)
	}
}
