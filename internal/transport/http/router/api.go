package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"entity-api/internal/core/config"
	"entity-api/internal/core/server"
	"entity-api/internal/transport/http/ez"
	mdw "entity-api/internal/transport/http/middleware"
)

// NewAPIEngine builds the public server: /auth and /api routes from the
// registered modules behind the shared middleware chain.
func NewAPIEngine(l *zap.Logger, lim config.Limits, tokens mdw.TokenParser, reg *Registry) (*gin.Engine, error) {
	if err := ez.RegisterValidators(); err != nil {
		return nil, err
	}
	r := server.NewRouter(l)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.MaxConcurrency),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second),
		mdw.Metrics("api"),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })

	public := r.Group("")
	protected := r.Group("")
	protected.Use(mdw.AuthJWT(tokens))

	reg.MountAllAPI(public, protected)
	return r, nil
}
