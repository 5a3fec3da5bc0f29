package ez

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entity-api/internal/domain"
	mdw "entity-api/internal/transport/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := RegisterValidators(); err != nil {
		panic(err)
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{fmt.Errorf("find: %w", domain.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("create: %w", domain.ErrConflict), http.StatusConflict},
		{domain.ErrNotAuthenticated, http.StatusBadRequest},
		{fmt.Errorf("delete: %w", domain.ErrInvalidArgument), http.StatusInternalServerError},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{NotFound("gone"), http.StatusNotFound},
		{BadRequest("bad"), http.StatusBadRequest},
		{Internal("create failed", domain.ErrConflict), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.code, FromError(tt.err).Code)
		})
	}

	assert.Equal(t, "internal error", FromError(errors.New("secret dsn leaked")).Msg)
}

type memStore struct {
	rows map[uuid.UUID]*domain.Unit
	last domain.Actor
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*domain.Unit, error) {
	return s.rows[id], nil
}

func (s *memStore) Create(_ context.Context, actor domain.Actor, u *domain.Unit) (*domain.Unit, error) {
	s.last = actor
	u.ID = uuid.New()
	s.rows[u.ID] = u
	return u, nil
}

func (s *memStore) Update(_ context.Context, actor domain.Actor, u *domain.Unit) (*domain.Unit, error) {
	s.last = actor
	if _, ok := s.rows[u.ID]; !ok {
		return nil, nil
	}
	s.rows[u.ID] = u
	return u, nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := s.rows[id]; !ok {
		return fmt.Errorf("delete %s: %w", id, domain.ErrInvalidArgument)
	}
	delete(s.rows, id)
	return nil
}

func newCrudEngine(store *memStore) *gin.Engine {
	r := gin.New()
	g := r.Group("/api", func(c *gin.Context) { c.Set(mdw.KeyLogin, "a.admin"); c.Next() })
	Crud[domain.Unit](CrudConfig[domain.Unit]{Group: g, Path: "/units", Store: store})
	return r
}

func call(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCrud(t *testing.T) {
	store := &memStore{rows: map[uuid.UUID]*domain.Unit{}}
	r := newCrudEngine(store)

	w := call(r, http.MethodPost, "/api/units/create", `{"name":"HQ"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, "a.admin", store.last.Login)
	require.Len(t, store.rows, 1)
	var id uuid.UUID
	for k := range store.rows {
		id = k
	}

	w = call(r, http.MethodGet, "/api/units/"+id.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"HQ"`)

	w = call(r, http.MethodGet, "/api/units/"+uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodGet, "/api/units/"+strings.ToUpper(id.String()), "")
	assert.Equal(t, http.StatusOK, w.Code, "ids are case insensitive")

	w = call(r, http.MethodGet, "/api/units/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodDelete, "/api/units/delete/not-a-uuid", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodPut, "/api/units/update", fmt.Sprintf(`{"id":%q,"name":"Head Office"}`, id))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Head Office", store.rows[id].Name)

	w = call(r, http.MethodPut, "/api/units/update", fmt.Sprintf(`{"id":%q,"name":"X"}`, uuid.New()))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = call(r, http.MethodPost, "/api/units/create", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code, "name is required")

	w = call(r, http.MethodDelete, "/api/units/delete/"+strings.ToUpper(id.String()), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w = call(r, http.MethodDelete, "/api/units/delete/"+id.String(), "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"code":500,"msg":"internal error","data":{}}`, w.Body.String())
}

func TestIDParamUUID(t *testing.T) {
	id := uuid.New()

	got, err := IDParam{ID: strings.ToUpper(id.String())}.UUID()
	require.NoError(t, err)
	assert.Equal(t, id, got)

	got, err = IDParam{ID: "{" + id.String() + "}"}.UUID()
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = IDParam{ID: "nope"}.UUID()
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, FromError(err).Code)
}

func TestFullnameValidator(t *testing.T) {
	r := gin.New()
	RegisterAction(New(r.Group("")), Action[domain.User, string]{
		Method:  http.MethodPost,
		Path:    "/u",
		Binder:  BindJSON,
		Handler: func(_ *gin.Context, in *domain.User) (string, error) { return in.Name, nil },
	})

	cases := []struct {
		body string
		code int
	}{
		{`{"name":"Ivanov Ivan"}`, http.StatusOK},
		{`{"name":"Иванов Иван Иванович"}`, http.StatusOK},
		{`{"name":"Madonna"}`, http.StatusBadRequest},
		{`{"name":"R2 D2"}`, http.StatusBadRequest},
		{`{"name":"One Two Three Four"}`, http.StatusBadRequest},
		{`{}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, call(r, http.MethodPost, "/u", tc.body).Code, tc.body)
	}
}
