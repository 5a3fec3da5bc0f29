package ez

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"entity-api/internal/domain"
)

// Store is the persistence a CRUD resource is served from.
// *repo.Repository satisfies it for every entity.
type Store[T any] interface {
	FindByID(ctx context.Context, id uuid.UUID) (*T, error)
	Create(ctx context.Context, actor domain.Actor, entity *T) (*T, error)
	Update(ctx context.Context, actor domain.Actor, entity *T) (*T, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type IDParam struct {
	ID string `uri:"id" binding:"required"`
}

// UUID parses the id in any form uuid.Parse accepts, upper case included.
// A malformed id is a 404.
func (p IDParam) UUID() (uuid.UUID, error) {
	id, err := uuid.Parse(p.ID)
	if err != nil {
		return uuid.Nil, &AErr{Code: http.StatusNotFound, Err: err}
	}
	return id, nil
}

type CrudConfig[T any] struct {
	Group *gin.RouterGroup
	Path  string
	Store Store[T]
}

// Crud mounts
//
//	GET    {path}/:id         200 entity | 404
//	POST   {path}/create      201 entity
//	PUT    {path}/update      200 entity | 404
//	DELETE {path}/delete/:id  204
func Crud[T any](cfg CrudConfig[T]) {
	e := New(cfg.Group)
	store := cfg.Store

	RegisterAction(e, Action[IDParam, *T]{
		Method: http.MethodGet,
		Path:   cfg.Path + "/:id",
		Binder: BindURI,
		Handler: func(c *gin.Context, in *IDParam) (*T, error) {
			id, err := in.UUID()
			if err != nil {
				return nil, err
			}
			m, err := store.FindByID(c.Request.Context(), id)
			if err != nil {
				return nil, err
			}
			if m == nil {
				return nil, NotFound("")
			}
			return m, nil
		},
	})

	RegisterAction(e, Action[T, *T]{
		Method: http.MethodPost,
		Path:   cfg.Path + "/create",
		Binder: BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *T) (*T, error) {
			return store.Create(c.Request.Context(), Actor(c), in)
		},
	})

	RegisterAction(e, Action[T, *T]{
		Method: http.MethodPut,
		Path:   cfg.Path + "/update",
		Binder: BindJSON,
		Handler: func(c *gin.Context, in *T) (*T, error) {
			m, err := store.Update(c.Request.Context(), Actor(c), in)
			if err != nil {
				return nil, err
			}
			if m == nil {
				return nil, NotFound("")
			}
			return m, nil
		},
	})

	RegisterAction(e, Action[IDParam, struct{}]{
		Method: http.MethodDelete,
		Path:   cfg.Path + "/delete/:id",
		Binder: BindURI,
		Status: http.StatusNoContent,
		Handler: func(c *gin.Context, in *IDParam) (struct{}, error) {
			id, err := in.UUID()
			if err != nil {
				return struct{}{}, err
			}
			return struct{}{}, store.Delete(c.Request.Context(), id)
		},
	})
}
