package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"entity-api/internal/domain"
	"entity-api/internal/repo"
	"entity-api/internal/service"
)

func init() { gin.SetMode(gin.TestMode) }

// racingStore reports every login as free and then loses the insert to the
// unique index, as a concurrent creator would make it.
type racingStore struct{ mock.Mock }

func (s *racingStore) FindByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := s.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (s *racingStore) Exists(ctx context.Context, preds ...repo.Predicate) (bool, error) {
	args := s.Called(ctx, preds)
	return args.Bool(0), args.Error(1)
}

func (s *racingStore) Create(ctx context.Context, actor domain.Actor, u *domain.User) (*domain.User, error) {
	args := s.Called(ctx, actor, u)
	out, _ := args.Get(0).(*domain.User)
	return out, args.Error(1)
}

func (s *racingStore) Update(ctx context.Context, actor domain.Actor, u *domain.User) (*domain.User, error) {
	args := s.Called(ctx, actor, u)
	out, _ := args.Get(0).(*domain.User)
	return out, args.Error(1)
}

func (s *racingStore) Delete(ctx context.Context, id uuid.UUID) error {
	return s.Called(ctx, id).Error(0)
}

func post(r http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUserHandler_LostLoginRace(t *testing.T) {
	store := new(racingStore)
	store.On("Exists", mock.Anything, mock.Anything).Return(false, nil)
	store.On("Create", mock.Anything, mock.Anything, mock.Anything).Return(nil, domain.ErrConflict)

	r := gin.New()
	h := NewUserHandler(service.NewUserService(store, nil, zaptest.NewLogger(t)))
	h.MountAPI(r.Group(""), r.Group(""))

	w := post(r, "/api/users/initNewUser", `{"name":"Petrov Anton"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "create user failed")

	w = post(r, "/api/users/create", `{"name":"Petrov Anton"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	store.AssertNumberOfCalls(t, "Create", 2)
}

type unitReader struct{ units []domain.Unit }

func (u unitReader) GetWithInclude(context.Context, ...string) ([]domain.Unit, error) {
	return u.units, nil
}

type userReader struct{ calls int }

func (u *userReader) GetWithIncludeWhere(context.Context, repo.Predicate, ...string) ([]domain.User, error) {
	u.calls++
	return nil, nil
}

func TestAdminHandler_UnitIDQuery(t *testing.T) {
	users := &userReader{}
	r := gin.New()
	NewAdminHandler(unitReader{}, users).MountAdmin(r.Group(""))

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	w := get("/users?unitId=" + strings.ToUpper(uuid.NewString()))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"total":0,"items":[]}`, w.Body.String())

	w = get("/users?unitId=nope")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid unitId")
	assert.Equal(t, 1, users.calls)

	w = get("/units")
	assert.Equal(t, http.StatusOK, w.Code)
}
