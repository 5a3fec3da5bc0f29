package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"entity-api/internal/domain"
	"entity-api/internal/repo"
	"entity-api/internal/transport/http/ez"
)

type UnitReader interface {
	GetWithInclude(ctx context.Context, includes ...string) ([]domain.Unit, error)
}

type UserReader interface {
	GetWithIncludeWhere(ctx context.Context, pred repo.Predicate, includes ...string) ([]domain.User, error)
}

// AdminHandler serves read models with their relationships loaded.
type AdminHandler struct {
	units UnitReader
	users UserReader
}

func NewAdminHandler(units UnitReader, users UserReader) *AdminHandler {
	return &AdminHandler{units: units, users: users}
}

type usersQuery struct {
	UnitID string `form:"unitId"`
}

type listOut[T any] struct {
	Total int `json:"total"`
	Items []T `json:"items"`
}

func newList[T any](items []T) listOut[T] {
	if items == nil {
		items = []T{}
	}
	return listOut[T]{Total: len(items), Items: items}
}

func (h *AdminHandler) MountAdmin(admin *gin.RouterGroup) {
	e := ez.New(admin)

	// GET /admin/v1/units  units with their members
	ez.RegisterAction(e, ez.Action[struct{}, listOut[domain.Unit]]{
		Method: http.MethodGet,
		Path:   "/units",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (listOut[domain.Unit], error) {
			units, err := h.units.GetWithInclude(c.Request.Context(), "Users")
			if err != nil {
				return listOut[domain.Unit]{}, err
			}
			return newList(units), nil
		},
	})

	// GET /admin/v1/users?unitId=  users with their unit
	ez.RegisterAction(e, ez.Action[usersQuery, listOut[domain.User]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *usersQuery) (listOut[domain.User], error) {
			preds := []repo.Predicate{repo.OrderBy("login")}
			if in.UnitID != "" {
				unitID, err := uuid.Parse(in.UnitID)
				if err != nil {
					return listOut[domain.User]{}, ez.BadRequest("invalid unitId")
				}
				preds = append(preds, repo.Where("unit_id = ?", unitID))
			}
			users, err := h.users.GetWithIncludeWhere(c.Request.Context(), repo.All(preds...), "Unit")
			if err != nil {
				return listOut[domain.User]{}, err
			}
			return newList(users), nil
		},
	})
}
