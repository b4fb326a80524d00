package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/salesagent-backend/internal/platform/ctxutil"
	"github.com/yungbote/salesagent-backend/internal/platform/logger"
)

// Handlers may set these keys on the gin context to tag the access log line.
const (
	KeyUserID    = "user_id"
	KeySessionID = "session_id"
)

func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if log == nil {
			return
		}

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		fields = append(fields, ctxutil.LogFields(c.Request.Context())...)
		if v := c.GetString(KeyUserID); v != "" {
			fields = append(fields, "user_id", v)
		}
		if v := c.GetString(KeySessionID); v != "" {
			fields = append(fields, "session_id", v)
		}
		if len(c.Errors) > 0 {
			fields = append(fields, "error", c.Errors.Last().Error())
		}

		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}
