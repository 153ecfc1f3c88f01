package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grindgrid/grindgrid-backend/internal/platform/cache"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
	"github.com/grindgrid/grindgrid-backend/internal/services"
)

const headerCache = "X-Cache"

type captureWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *captureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *captureWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageCache serves authenticated dashboard GETs from the per-user page cache
// and stores successful renders. Requests with a query string are not cached.
func PageCache(log *logger.Logger, pages cache.PageCache, sessions services.SessionResolver) gin.HandlerFunc {
	log = log.With("Middleware", "PageCache")
	return func(c *gin.Context) {
		if pages == nil || c.Request.Method != http.MethodGet || c.Request.URL.RawQuery != "" {
			c.Next()
			return
		}
		state := sessions.Resolve(c.Request.Context())
		if !state.Authenticated {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		path := c.Request.URL.Path

		page, hit, err := pages.Get(ctx, state.UserID, path)
		if err != nil {
			log.Warn("Page cache read failed", "path", path, "error", err)
		}
		if hit {
			c.Header(headerCache, "HIT")
			c.Data(page.Status, page.ContentType, page.Body)
			c.Abort()
			return
		}

		c.Header(headerCache, "MISS")
		w := &captureWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		if w.Status() != http.StatusOK || c.IsAborted() {
			return
		}
		if err := pages.Set(ctx, state.UserID, path, &cache.Page{
			Status:      w.Status(),
			ContentType: w.Header().Get("Content-Type"),
			Body:        append([]byte(nil), w.body.Bytes()...),
		}); err != nil {
			log.Warn("Page cache write failed", "path", path, "error", err)
		}
	}
}
