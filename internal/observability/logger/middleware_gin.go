package logger

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-Id"

// MiddlewareConfig tunes the request logger.
type MiddlewareConfig struct {
	// SkipPaths are request paths logged at debug instead of info
	// (health and metrics scrapes).
	SkipPaths []string
}

// GinMiddleware assigns a request id, echoes it in the response and logs the
// request with masked headers once it completes.
func GinMiddleware(cfg MiddlewareConfig) gin.HandlerFunc {
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		log := FromContext(c.Request.Context()).With(
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.Any("headers", MaskHeaders(c.Request.Header)),
		)
		if _, ok := skip[c.Request.URL.Path]; ok {
			log.Debug("http request")
			return
		}
		log.Info("http request")
	}
}
