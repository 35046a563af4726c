package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/shelfscout/shelfscout-backend/internal/handlers"
	"github.com/shelfscout/shelfscout-backend/internal/middleware"
)

type RouterConfig struct {
	ServiceName          string
	ResolveHandler       *handlers.ResolveHandler
	RequestLogMiddleware *middleware.RequestLogMiddleware
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{
			"http://localhost:80",
			"http://localhost:3000",
			"http://localhost:5174",
		},
		AllowMethods:     []string{"GET", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))
	router.Use(otelgin.Middleware(cfg.ServiceName))
	if cfg.RequestLogMiddleware != nil {
		router.Use(cfg.RequestLogMiddleware.Log())
	}

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")
	{
		api.GET("/resolve", cfg.ResolveHandler.Resolve)
	}

	return router
}
