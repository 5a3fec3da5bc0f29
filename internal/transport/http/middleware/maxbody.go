package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "entity-api/internal/transport/http/response"
)

// MaxBodyBytes caps the request body. Handlers that hit the cap while binding
// get 413 instead of a bind error.
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
		if c.Writer.Written() {
			return
		}
		for _, e := range c.Errors {
			var tooLarge *http.MaxBytesError
			if errors.As(e.Err, &tooLarge) {
				resp.Abort(c, resp.CodeTooLarge, "request body too large")
				return
			}
		}
	}
}
