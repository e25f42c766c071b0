// Package httpapi exposes the allocation engine over HTTP with gin.
package httpapi

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// NewRouter builds the gin engine: CORS for any origin, zap request logging,
// panic recovery, the API routes and /metrics.
func NewRouter(h *Handler, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))

	router.Use(ZapLogger(logger.Named("HTTP")))
	router.Use(gin.Recovery())

	h.Register(router)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
