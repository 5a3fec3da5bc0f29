package ez

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"entity-api/internal/domain"
	mdw "entity-api/internal/transport/http/middleware"
	resp "entity-api/internal/transport/http/response"
)

// EZ registers actions on a router group.
type EZ struct{ g *gin.RouterGroup }

func New(g *gin.RouterGroup) EZ { return EZ{g: g} }

type Binder string

const (
	BindJSON  Binder = "json"  // request body
	BindQuery Binder = "query" // ?a=b
	BindURI   Binder = "uri"   // path parameters; a mismatch is a 404
	BindNone  Binder = "none"
)

// AErr is an error with the HTTP status it should be answered with.
type AErr struct {
	Code int
	Msg  string
	Err  error
}

func (e *AErr) Error() string {
	if e.Msg != "" {
		return e.Msg
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "action error"
}

func (e *AErr) Unwrap() error { return e.Err }

func BadRequest(msg string) error { return &AErr{Code: resp.CodeBadRequest, Msg: msg} }
func NotFound(msg string) error   { return &AErr{Code: resp.CodeNotFound, Msg: msg} }
func Internal(msg string, err error) error {
	return &AErr{Code: resp.CodeServerError, Msg: msg, Err: err}
}

// FromError maps err to the status and message sent to the client. Causes
// of server errors are not exposed.
func FromError(err error) *AErr {
	var ae *AErr
	switch {
	case errors.As(err, &ae):
		return ae
	case errors.Is(err, domain.ErrNotFound):
		return &AErr{Code: resp.CodeNotFound, Err: err}
	case errors.Is(err, domain.ErrConflict):
		return &AErr{Code: resp.CodeConflict, Msg: "already exists", Err: err}
	case errors.Is(err, domain.ErrNotAuthenticated):
		return &AErr{Code: resp.CodeBadRequest, Msg: "not authenticated", Err: err}
	case errors.Is(err, context.DeadlineExceeded):
		return &AErr{Code: resp.CodeTimeout, Msg: "timeout", Err: err}
	default:
		return &AErr{Code: resp.CodeServerError, Msg: "internal error", Err: err}
	}
}

func bindError(b Binder, err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return &AErr{Code: resp.CodeTooLarge, Msg: "request body too large", Err: err}
	case b == BindURI:
		return &AErr{Code: resp.CodeNotFound, Err: err}
	default:
		return &AErr{Code: resp.CodeBadRequest, Msg: err.Error(), Err: err}
	}
}

// Action describes one endpoint: I is bound from the request, O is written
// as the JSON body with Status (200 by default, 204 writes no body).
type Action[I any, O any] struct {
	Method  string
	Path    string
	Binder  Binder
	Status  int
	Handler func(c *gin.Context, in *I) (O, error)
}

func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	status := a.Status
	if status == 0 {
		status = http.StatusOK
	}

	h := func(c *gin.Context) {
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		case BindURI:
			bindErr = c.ShouldBindUri(&in)
		}
		if bindErr != nil {
			fail(c, bindError(a.Binder, bindErr))
			return
		}

		out, err := a.Handler(c, &in)
		if err != nil {
			fail(c, err)
			return
		}
		if status == http.StatusNoContent {
			c.Status(status)
			return
		}
		c.JSON(status, out)
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default:
		e.g.POST(a.Path, h)
	}
}

func fail(c *gin.Context, err error) {
	ae := FromError(err)
	_ = c.Error(err)
	resp.Abort(c, ae.Code, ae.Msg)
}

// Actor is the caller a write is attributed to.
func Actor(c *gin.Context) domain.Actor {
	return domain.Actor{Login: mdw.Login(c)}
}
