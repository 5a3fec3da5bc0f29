package router

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"entity-api/internal/core/auth"
	"entity-api/internal/core/config"
	"entity-api/internal/core/database"
	"entity-api/internal/domain"
	"entity-api/internal/repo"
	"entity-api/internal/service"
	"entity-api/internal/transport/http/handler"
)

type app struct {
	api   *gin.Engine
	admin *gin.Engine
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	db, err := database.NewGorm(database.Opts{
		Driver:       "sqlite",
		DSN:          ":memory:",
		MaxOpenConns: 1,
		LogLevel:     "silent",
	}, log)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	lookup := repo.NewGormUserLookup(db)
	users := repo.New[domain.User](db, log, lookup)
	units := repo.New[domain.Unit](db, log, lookup)
	jwter := &auth.JWTer{
		Secret:   []byte("secret_secretDefaultKey!"),
		Issuer:   "MyAuthServer",
		Audience: "MyAuthClient",
		TTL:      10 * time.Minute,
	}
	userSvc := service.NewUserService(users, nil, log)
	authSvc := service.NewAuthService(lookup, jwter, log)

	reg := NewRegistry(
		handler.NewAuthHandler(authSvc),
		handler.NewUserHandler(userSvc),
		handler.NewResource[domain.Unit]("/api/units", units),
		handler.NewAdminHandler(units, users),
	)
	lim := config.Limits{RPS: 1000, Burst: 1000, MaxConcurrency: 16, MaxBodyBytes: 1 << 20, TimeoutSec: 5}

	api, err := NewAPIEngine(log, lim, jwter, reg)
	require.NoError(t, err)
	admin, err := NewAdminEngine(log, lim, jwter, reg)
	require.NoError(t, err)
	return &app{api: api, admin: admin}
}

func send(h http.Handler, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *app) login(t *testing.T, login string) string {
	t.Helper()
	w := send(a.api, http.MethodGet, "/auth/"+login, "", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	tok := decode[service.Token](t, w)
	require.Equal(t, login, tok.Username)
	return tok.AccessToken
}

func TestInitNewUserTwiceGetsSuffixedLogin(t *testing.T) {
	a := newApp(t)

	w := send(a.api, http.MethodPost, "/api/users/initNewUser", "", `{"name":"Иванов Иван Иванович"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[domain.User](t, w)
	assert.Equal(t, "i.i.ivanov", first.Login)
	assert.Nil(t, first.CreatedBy)

	w = send(a.api, http.MethodPost, "/api/users/initNewUser", "", `{"name":"Иванов Иван Иванович"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	second := decode[domain.User](t, w)
	assert.Equal(t, "i.i.ivanov0", second.Login)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestInitNewUserValidatesName(t *testing.T) {
	a := newApp(t)

	w := send(a.api, http.MethodPost, "/api/users/initNewUser", "", `{"name":"Prince"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(a.api, http.MethodPost, "/api/users/initNewUser", "", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthEndpoints(t *testing.T) {
	a := newApp(t)
	require.Equal(t, http.StatusCreated,
		send(a.api, http.MethodPost, "/api/users/initNewUser", "", `{"name":"Petrov Anton"}`).Code)

	tok := a.login(t, "a.petrov")

	w := send(a.api, http.MethodGet, "/auth/ghost", "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"code":404,"msg":"Not Found","data":{}}`, w.Body.String())

	w = send(a.api, http.MethodGet, "/auth/logout", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(a.api, http.MethodGet, "/auth/logout", tok, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"a.petrov"}`, w.Body.String())
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	a := newApp(t)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/api/users/7d0c5c0e-6f4a-4b8e-9a43-1f7d3c1b2a10", ""},
		{http.MethodPost, "/api/users/create", `{"name":"Petrov Anton"}`},
		{http.MethodPut, "/api/units/update", `{"name":"HQ"}`},
		{http.MethodDelete, "/api/units/delete/7d0c5c0e-6f4a-4b8e-9a43-1f7d3c1b2a10", ""},
	} {
		w := send(a.api, tc.method, tc.path, "", tc.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)

		w = send(a.api, tc.method, tc.path, "forged.token.value", tc.body)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tc.method, tc.path)
	}
}

func TestCrudLifecycle(t *testing.T) {
	a := newApp(t)
	w := send(a.api, http.MethodPost, "/api/users/initNewUser", "", `{"name":"Sidorov Petr"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	me := decode[domain.User](t, w)
	tok := a.login(t, "p.sidorov")

	// unit created on behalf of the caller
	w = send(a.api, http.MethodPost, "/api/units/create", tok, `{"name":"Accounting"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	unit := decode[domain.Unit](t, w)
	require.NotNil(t, unit.CreatedBy)
	assert.Equal(t, me.ID, *unit.CreatedBy)

	// authenticated create ignores the client supplied login
	w = send(a.api, http.MethodPost, "/api/users/create", tok,
		fmt.Sprintf(`{"name":"Kuznetsova Olga","login":"root","unitId":%q}`, unit.ID))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	olga := decode[domain.User](t, w)
	assert.Equal(t, "o.kuznetsova", olga.Login)
	require.NotNil(t, olga.UnitID)
	assert.Equal(t, unit.ID, *olga.UnitID)

	w = send(a.api, http.MethodGet, "/api/users/"+olga.ID.String(), tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, olga.ID, decode[domain.User](t, w).ID)

	w = send(a.api, http.MethodGet, "/api/users/"+strings.ToUpper(olga.ID.String()), tok, "")
	require.Equal(t, http.StatusOK, w.Code, "upper case GUID")
	assert.Equal(t, olga.ID, decode[domain.User](t, w).ID)

	w = send(a.api, http.MethodGet, "/api/users/not-a-uuid", tok, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	// update is a full replace; unitId omitted clears it
	w = send(a.api, http.MethodPut, "/api/users/update", tok,
		fmt.Sprintf(`{"id":%q,"login":"o.kuznetsova","name":"Kuznetsova Olga Petrovna"}`, olga.ID))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[domain.User](t, w)
	assert.Equal(t, "Kuznetsova Olga Petrovna", updated.Name)
	assert.Nil(t, updated.UnitID)
	require.NotNil(t, updated.ModifiedBy)
	assert.Equal(t, me.ID, *updated.ModifiedBy)
	assert.WithinDuration(t, olga.CreatedAt, updated.CreatedAt, time.Millisecond)

	w = send(a.api, http.MethodPut, "/api/units/update", tok,
		`{"id":"7d0c5c0e-6f4a-4b8e-9a43-1f7d3c1b2a10","name":"Nowhere"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// login collision on update
	w = send(a.api, http.MethodPut, "/api/users/update", tok,
		fmt.Sprintf(`{"id":%q,"login":"p.sidorov","name":"Kuznetsova Olga"}`, olga.ID))
	assert.Equal(t, http.StatusConflict, w.Code)

	w = send(a.api, http.MethodDelete, "/api/users/delete/"+olga.ID.String(), tok, "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = send(a.api, http.MethodGet, "/api/users/"+olga.ID.String(), tok, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = send(a.api, http.MethodDelete, "/api/users/delete/"+olga.ID.String(), tok, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdminReadModels(t *testing.T) {
	a := newApp(t)
	require.Equal(t, http.StatusCreated,
		send(a.api, http.MethodPost, "/api/users/initNewUser", "", `{"name":"Admin Anna"}`).Code)
	tok := a.login(t, "a.admin")

	w := send(a.api, http.MethodPost, "/api/units/create", tok, `{"name":"Ops"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	ops := decode[domain.Unit](t, w)
	w = send(a.api, http.MethodPost, "/api/users/create", tok, fmt.Sprintf(`{"name":"Orlov Oleg","unitId":%q}`, ops.ID))
	require.Equal(t, http.StatusCreated, w.Code)

	w = send(a.admin, http.MethodGet, "/admin/v1/units", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(a.admin, http.MethodGet, "/admin/v1/units", tok, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	unitList := decode[struct {
		Total int           `json:"total"`
		Items []domain.Unit `json:"items"`
	}](t, w)
	require.Equal(t, 1, unitList.Total)
	require.Len(t, unitList.Items[0].Users, 1)
	assert.Equal(t, "o.orlov", unitList.Items[0].Users[0].Login)

	w = send(a.admin, http.MethodGet, "/admin/v1/users?unitId="+ops.ID.String(), tok, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	userList := decode[struct {
		Total int           `json:"total"`
		Items []domain.User `json:"items"`
	}](t, w)
	require.Equal(t, 1, userList.Total)
	require.NotNil(t, userList.Items[0].Unit)
	assert.Equal(t, "Ops", userList.Items[0].Unit.Name)

	w = send(a.admin, http.MethodGet, "/admin/v1/users", tok, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, decode[struct {
		Total int `json:"total"`
	}](t, w).Total)

	w = send(a.admin, http.MethodGet, "/admin/v1/users?unitId=nope", tok, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = send(a.admin, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "entity_api_http_requests_total")

	assert.Equal(t, http.StatusOK, send(a.admin, http.MethodGet, "/health", "", "").Code)
	assert.Equal(t, http.StatusOK, send(a.api, http.MethodGet, "/health", "", "").Code)
}

func TestRegistryMountsByPriority(t *testing.T) {
	var order []string
	reg := NewRegistry(
		modFunc{name: "late", prio: 200, order: &order},
		modFunc{name: "default", prio: -1, order: &order},
		modFunc{name: "early", prio: 1, order: &order},
	)
	r := gin.New()
	reg.MountAllAPI(r.Group(""), r.Group(""))
	assert.Equal(t, []string{"early", "default", "late"}, order)
}

type modFunc struct {
	name  string
	prio  int
	order *[]string
}

func (m modFunc) MountAPI(_, _ *gin.RouterGroup) { *m.order = append(*m.order, m.name) }

func (m modFunc) Priority() int {
	if m.prio < 0 {
		return 100
	}
	return m.prio
}
