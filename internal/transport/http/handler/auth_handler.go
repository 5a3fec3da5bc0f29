package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"entity-api/internal/service"
	"entity-api/internal/transport/http/ez"
	mdw "entity-api/internal/transport/http/middleware"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler { return &AuthHandler{svc: svc} }

func (h *AuthHandler) Priority() int { return 10 }

type loginParam struct {
	Login string `uri:"login" binding:"required"`
}

type logoutOut struct {
	Username string `json:"username"`
}

func (h *AuthHandler) MountAPI(public, protected *gin.RouterGroup) {
	ez.RegisterAction(ez.New(public), ez.Action[loginParam, *service.Token]{
		Method: http.MethodGet,
		Path:   "/auth/:login",
		Binder: ez.BindURI,
		Handler: func(c *gin.Context, in *loginParam) (*service.Token, error) {
			return h.svc.IssueToken(c.Request.Context(), in.Login)
		},
	})

	ez.RegisterAction(ez.New(protected), ez.Action[struct{}, logoutOut]{
		Method: http.MethodGet,
		Path:   "/auth/logout",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (logoutOut, error) {
			login := mdw.Login(c)
			if err := h.svc.Revoke(c.Request.Context(), login); err != nil {
				return logoutOut{}, err
			}
			return logoutOut{Username: login}, nil
		},
	})
}
