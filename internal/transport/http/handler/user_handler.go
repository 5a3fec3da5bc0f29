package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"entity-api/internal/domain"
	"entity-api/internal/service"
	"entity-api/internal/transport/http/ez"
)

// UserHandler serves /api/users. Creation always goes through login
// generation, and initNewUser is open to anonymous callers. A login lost to a
// concurrent initNewUser is a server error there; the authenticated create
// answers it with 409.
type UserHandler struct {
	svc *service.UserService
}

func NewUserHandler(svc *service.UserService) *UserHandler { return &UserHandler{svc: svc} }

func (h *UserHandler) Priority() int { return 20 }

func (h *UserHandler) MountAPI(public, protected *gin.RouterGroup) {
	ez.Crud[domain.User](ez.CrudConfig[domain.User]{Group: protected, Path: "/api/users", Store: h.svc})

	ez.RegisterAction(ez.New(public), ez.Action[domain.User, *domain.User]{
		Method: http.MethodPost,
		Path:   "/api/users/initNewUser",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *domain.User) (*domain.User, error) {
			u, err := h.svc.CreateUser(c.Request.Context(), ez.Actor(c), in)
			if errors.Is(err, domain.ErrConflict) {
				return nil, ez.Internal("create user failed", err)
			}
			return u, err
		},
	})
}
