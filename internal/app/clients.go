package app

import (
	"context"
	"fmt"

	"github.com/grindgrid/grindgrid-backend/internal/platform/cache"
	"github.com/grindgrid/grindgrid-backend/internal/platform/gemini"
	"github.com/grindgrid/grindgrid-backend/internal/platform/gotrue"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type Clients struct {
	Pages  cache.PageCache
	Gemini gemini.Client
	GoTrue *gotrue.Client

	redis *cache.RedisPageCache
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	var out Clients

	// Page cache
	if cfg.RedisAddr != "" {
		rc, err := cache.NewRedisPageCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.PageCacheTTL,
		}, log)
		if err != nil {
			return Clients{}, fmt.Errorf("init redis page cache: %w", err)
		}
		out.Pages, out.redis = rc, rc
	} else {
		log.Info("REDIS_ADDR not set; using in-process page cache")
		out.Pages = cache.NewMemory(cfg.PageCacheTTL, cfg.PageCacheEntries)
	}

	// Gemini
	if cfg.GeminiAPIKey != "" {
		gc, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, BaseURL: cfg.GeminiBaseURL}, log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init gemini client: %w", err)
		}
		out.Gemini = gc
	} else {
		log.Warn("No Google Generative AI API key configured; the assistant will report a configuration error")
	}

	// Supabase auth
	if cfg.AuthProvider == AuthProviderSupabase {
		gt, err := gotrue.NewClient(gotrue.Config{URL: cfg.SupabaseURL, AnonKey: cfg.SupabaseAnonKey}, log)
		if err != nil {
			out.Close()
			return Clients{}, fmt.Errorf("init gotrue client: %w", err)
		}
		out.GoTrue = gt
	}

	return out, nil
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.redis != nil {
		_ = c.redis.Close()
	}
}
