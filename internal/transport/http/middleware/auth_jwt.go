package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"entity-api/internal/core/auth"
	"entity-api/internal/core/logger"
	resp "entity-api/internal/transport/http/response"
)

const KeyLogin = "login"

// TokenParser validates a bearer token. *auth.JWTer satisfies it.
type TokenParser interface {
	Parse(token string) (*auth.Claims, error)
}

// AuthJWT rejects requests without a valid bearer token with 401 and exposes
// the caller's login to later handlers.
func AuthJWT(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.Abort(c, resp.CodeUnauthorized, "missing token")
			return
		}
		claims, err := p.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			_ = c.Error(err)
			resp.Abort(c, resp.CodeUnauthorized, "invalid token")
			return
		}
		c.Set(KeyLogin, claims.Name)
		c.Request = c.Request.WithContext(logger.WithLogin(c.Request.Context(), claims.Name))
		c.Next()
	}
}

// Login returns the authenticated caller's login, or "" on anonymous routes.
func Login(c *gin.Context) string { return c.GetString(KeyLogin) }
