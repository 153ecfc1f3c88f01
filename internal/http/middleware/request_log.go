package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/grindgrid/grindgrid-backend/internal/platform/ctxutil"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
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
		rd := ctxutil.GetRequestData(c.Request.Context())

		fields := []interface{}{
			"method", strings.ToUpper(c.Request.Method),
			"path", path,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		fields = append(fields, ctxutil.TraceFields(c.Request.Context())...)
		if rd != nil && rd.Resolved && rd.Authenticated {
			fields = append(fields, "user_id", rd.UserID.String())
		}
		if cache := c.Writer.Header().Get(headerCache); cache != "" {
			fields = append(fields, "cache", cache)
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
