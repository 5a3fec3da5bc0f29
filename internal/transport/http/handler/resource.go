package handler

import (
	"github.com/gin-gonic/gin"

	"entity-api/internal/transport/http/ez"
)

// Resource serves the generic authenticated CRUD routes for one entity.
type Resource[T any] struct {
	Path     string
	Store    ez.Store[T]
	priority int
}

func NewResource[T any](path string, store ez.Store[T]) *Resource[T] {
	return &Resource[T]{Path: path, Store: store, priority: 50}
}

func (h *Resource[T]) Priority() int { return h.priority }

func (h *Resource[T]) MountAPI(_, protected *gin.RouterGroup) {
	ez.Crud[T](ez.CrudConfig[T]{Group: protected, Path: h.Path, Store: h.Store})
}
