package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"user-account-service/internal/core/server"
	"user-account-service/internal/feature/user"
	"user-account-service/internal/transport/http/handler"
	mdw "user-account-service/internal/transport/http/middleware"
)

type Options struct {
	RequestTimeout time.Duration
	MaxInFlight    int64
	MaxBodyBytes   int64
}

// Pinger reports store liveness for /health; nil means always healthy.
type Pinger func(ctx context.Context) error

func NewAPIEngine(l *zap.Logger, svc *user.Service, ping Pinger, o Options) *gin.Engine {
	r := server.NewRouter(l)
	r.Use(
		mdw.RequestID(),
		mdw.Metrics(),
		mdw.AccessLog(l),
		mdw.ConcurrencyLimit(o.MaxInFlight),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
		mdw.Timeout(o.RequestTimeout),
	)

	r.GET("/health", func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				l.Warn("health check failed", zap.Error(err))
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.NewUserHandler(svc).Mount(r.Group("/users"))

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Route not found"})
	})
	return r
}
