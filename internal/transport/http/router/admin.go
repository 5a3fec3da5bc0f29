package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"entity-api/internal/core/config"
	"entity-api/internal/core/server"
	"entity-api/internal/transport/http/ez"
	mdw "entity-api/internal/transport/http/middleware"
)

// NewAdminEngine builds the operator server: health, Prometheus metrics and
// the authenticated /admin/v1 read models.
func NewAdminEngine(l *zap.Logger, lim config.Limits, tokens mdw.TokenParser, reg *Registry) (*gin.Engine, error) {
	if err := ez.RegisterValidators(); err != nil {
		return nil, err
	}
	r := server.NewRouter(l)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimitPerIP(rate.Limit(lim.RPS), lim.Burst),
		mdw.ConcurrencyLimit(lim.MaxConcurrency),
		mdw.MaxBodyBytes(lim.MaxBodyBytes),
		mdw.Timeout(time.Duration(lim.TimeoutSec)*time.Second),
		mdw.Metrics("admin"),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := r.Group("/admin/v1")
	admin.Use(mdw.AuthJWT(tokens))
	reg.MountAllAdmin(admin)

	return r, nil
}
