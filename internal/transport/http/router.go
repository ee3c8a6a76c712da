package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"live-poll-service/internal/metrics"
)

// NewRouter mounts the liveness probe, Prometheus metrics and the WebSocket endpoint.
func NewRouter(ws *WSHandler) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), metrics.Middleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", metrics.Handler())
	r.GET("/ws", gin.WrapF(ws.ServeWS))
	return r
}
