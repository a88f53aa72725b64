package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/twhispers/twhispers/internal/ws"
)

// SetupRoutes configures all application routes and middleware.
func SetupRoutes(router *gin.Engine, env *Env, gatherer prometheus.Gatherer) {
	router.Use(RequestIDMiddleware())
	router.Use(LoggerMiddleware(env.Logger))
	router.Use(RecoveryMiddleware(env.Logger))
	router.Use(env.Metrics.Middleware())
	router.Use(SecurityHeadersMiddleware())

	// Open policy: any origin, method and header.
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"*"}
	corsConfig.ExposeHeaders = []string{"Content-Length", requestIDHeader}
	router.Use(cors.New(corsConfig))

	router.GET("/confessions", env.GetConfessions)
	router.POST("/confessions", env.CreateConfession)
	router.POST("/confessions/:id/upvote", env.Upvote)
	router.POST("/confessions/:id/downvote", env.Downvote)
	router.GET("/confession/filter", env.FilterByDate)

	router.GET("/ws", func(c *gin.Context) {
		ws.ServeWs(env.Hub, c.Writer, c.Request)
	})

	router.GET("/healthz", env.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}
