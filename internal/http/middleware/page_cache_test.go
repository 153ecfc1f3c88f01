package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/grindgrid/grindgrid-backend/internal/platform/cache"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

func TestPageCacheMissThenHit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pages := cache.NewMemory(0, 0)
	res := &stubResolver{state: complete}
	renders := 0

	r := gin.New()
	r.Use(PageCache(logger.Nop(), pages, res))
	r.GET("/dashboard", func(c *gin.Context) {
		renders++
		c.JSON(http.StatusOK, gin.H{"average_progress": 40})
	})

	first := serve(r, "/dashboard")
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("first X-Cache: got=%q want=MISS", got)
	}
	second := serve(r, "/dashboard")
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Fatalf("second X-Cache: got=%q want=HIT", got)
	}
	if second.Body.String() != first.Body.String() {
		t.Fatalf("cached body: got=%q want=%q", second.Body.String(), first.Body.String())
	}
	if renders != 1 {
		t.Fatalf("renders: got=%d want=1", renders)
	}

	if err := pages.Invalidate(t.Context(), complete.UserID, "/dashboard"); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if got := serve(r, "/dashboard").Header().Get("X-Cache"); got != "MISS" {
		t.Fatalf("after invalidation X-Cache: got=%q want=MISS", got)
	}
}

func TestPageCacheSkipsAnonymousAndQueries(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pages := cache.NewMemory(0, 0)
	res := &stubResolver{state: anon}

	r := gin.New()
	r.Use(PageCache(logger.Nop(), pages, res))
	r.GET("/dashboard", func(c *gin.Context) { c.String(http.StatusOK, "x") })

	if got := serve(r, "/dashboard").Header().Get("X-Cache"); got != "" {
		t.Fatalf("anonymous X-Cache: got=%q want empty", got)
	}
	res.state = complete
	if got := serve(r, "/dashboard?tab=2").Header().Get("X-Cache"); got != "" {
		t.Fatalf("query X-Cache: got=%q want empty", got)
	}
}

func TestPageCacheDoesNotStoreErrors(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pages := cache.NewMemory(0, 0)
	res := &stubResolver{state: complete}

	r := gin.New()
	r.Use(PageCache(logger.Nop(), pages, res))
	r.GET("/dashboard", func(c *gin.Context) { c.String(http.StatusInternalServerError, "boom") })

	serve(r, "/dashboard")
	if _, hit, _ := pages.Get(t.Context(), complete.UserID, "/dashboard"); hit {
		t.Fatalf("500 response was cached")
	}
}
