package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Skryldev/recipebook/core"
)

// HandlePanics turns a panic inside a handler into a 500 response.
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		if err, ok := recovered.(error); ok {
			c.String(http.StatusInternalServerError, err.Error())
		}
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// LoggingMiddleware logs one line per request. Server errors log at error
// level.
func LoggingMiddleware(logger core.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := logger.Info
		if c.Writer.Status() >= http.StatusInternalServerError {
			log = logger.Error
		}
		log("http.request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
		)
	}
}
