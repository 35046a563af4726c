package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shelfscout/shelfscout-backend/internal/logger"
)

type RequestLogMiddleware struct {
	log *logger.Logger
}

func NewRequestLogMiddleware(log *logger.Logger) *RequestLogMiddleware {
	middlewareLogger := log.With("Middleware", "RequestLogMiddleware")
	return &RequestLogMiddleware{log: middlewareLogger}
}

func (rl *RequestLogMiddleware) Log() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rl.log.Info("Request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
