package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/grindgrid/grindgrid-backend/internal/data/db"
	"github.com/grindgrid/grindgrid-backend/internal/observability"
	apperr "github.com/grindgrid/grindgrid-backend/internal/pkg/errors"
	"github.com/grindgrid/grindgrid-backend/internal/platform/cache"
	"github.com/grindgrid/grindgrid-backend/internal/platform/envutil"
	"github.com/grindgrid/grindgrid-backend/internal/platform/gemini"
)

const (
	AuthProviderSupabase = "supabase"
	AuthProviderLocal    = "local"
)

type Config struct {
	Port      string
	LogMode   string
	PublicURL string

	Postgres db.PostgresConfig

	AuthProvider    string
	SupabaseURL     string
	SupabaseAnonKey string
	JWTSecretKey    string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
	CookieSecure    bool
	CORSOrigins     []string

	GeminiAPIKey    string
	GeminiBaseURL   string
	FallbackModels  []string
	MaxOutputTokens int
	Temperature     float64

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PageCacheTTL  time.Duration

	// PageCacheEntries bounds the in-process cache; Redis ignores it.
	PageCacheEntries int

	Otel observability.OtelConfig
}

// fileConfig holds the non-secret settings a YAML file may provide. Any
// environment variable that is set wins over the file.
type fileConfig struct {
	PublicURL    string   `yaml:"public_url"`
	AuthProvider string   `yaml:"auth_provider"`
	CORSOrigins  []string `yaml:"cors_origins"`
	PageCacheTTL int      `yaml:"page_cache_ttl_seconds"`
	PageEntries  int      `yaml:"page_cache_entries"`
	Gemini       struct {
		FallbackModels  []string `yaml:"fallback_models"`
		MaxOutputTokens int      `yaml:"max_output_tokens"`
		Temperature     float64  `yaml:"temperature"`
	} `yaml:"gemini"`
	Otel struct {
		Enabled     bool    `yaml:"enabled"`
		Endpoint    string  `yaml:"endpoint"`
		SampleRatio float64 `yaml:"sample_ratio"`
	} `yaml:"otel"`
}

func readFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if strings.TrimSpace(path) == "" {
		return fc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fc, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return fc, nil
}

func orDefault[T comparable](v, def T) T {
	var zero T
	if v == zero {
		return def
	}
	return v
}

// LoadConfig reads defaults, then the YAML file named by GRINDGRID_CONFIG,
// then the environment.
func LoadConfig() (Config, error) {
	fc, err := readFileConfig(os.Getenv("GRINDGRID_CONFIG"))
	if err != nil {
		return Config{}, err
	}

	supabaseURL := envutil.String("SUPABASE_URL", "")
	defaultProvider := AuthProviderLocal
	if supabaseURL != "" {
		defaultProvider = AuthProviderSupabase
	}

	fallback := envutil.List("GEMINI_FALLBACK_MODELS")
	if len(fallback) == 0 {
		fallback = fc.Gemini.FallbackModels
	}
	if len(fallback) == 0 {
		fallback = append([]string(nil), gemini.DefaultFallbackModels...)
	}
	origins := envutil.List("CORS_ORIGINS")
	if len(origins) == 0 {
		origins = fc.CORSOrigins
	}

	port := envutil.String("PORT", "8080")
	cfg := Config{
		Port:      port,
		LogMode:   envutil.String("LOG_MODE", "development"),
		PublicURL: envutil.String("PUBLIC_URL", orDefault(fc.PublicURL, "http://localhost:"+port)),

		Postgres: db.PostgresConfig{
			DSN:      envutil.String("DATABASE_URL", ""),
			Host:     envutil.String("POSTGRES_HOST", "localhost"),
			Port:     envutil.String("POSTGRES_PORT", "5432"),
			User:     envutil.String("POSTGRES_USER", "postgres"),
			Password: envutil.String("POSTGRES_PASSWORD", ""),
			Name:     envutil.String("POSTGRES_NAME", "grindgrid"),
			SSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
		},

		AuthProvider:    strings.ToLower(envutil.String("AUTH_PROVIDER", orDefault(fc.AuthProvider, defaultProvider))),
		SupabaseURL:     supabaseURL,
		SupabaseAnonKey: envutil.String("SUPABASE_ANON_KEY", ""),
		JWTSecretKey:    envutil.String("JWT_SECRET_KEY", ""),
		AccessTokenTTL:  envutil.Seconds("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: envutil.Seconds("REFRESH_TOKEN_TTL", 30*24*time.Hour),
		CookieSecure:    envutil.Bool("COOKIE_SECURE", false),
		CORSOrigins:     origins,

		GeminiAPIKey:    envutil.First("GOOGLE_GENERATIVE_AI_API_KEY", "GEMINI_API_KEY"),
		GeminiBaseURL:   envutil.String("GEMINI_BASE_URL", ""),
		FallbackModels:  fallback,
		MaxOutputTokens: envutil.Int("GEMINI_MAX_OUTPUT_TOKENS", orDefault(fc.Gemini.MaxOutputTokens, 1000)),
		Temperature:     envutil.Float("GEMINI_TEMPERATURE", orDefault(fc.Gemini.Temperature, 0.7)),

		RedisAddr:     envutil.String("REDIS_ADDR", ""),
		RedisPassword: envutil.String("REDIS_PASSWORD", ""),
		RedisDB:       envutil.Int("REDIS_DB", 0),
		PageCacheTTL:  envutil.Seconds("PAGE_CACHE_TTL", time.Duration(orDefault(fc.PageCacheTTL, 60))*time.Second),

		PageCacheEntries: envutil.Int("PAGE_CACHE_ENTRIES", orDefault(fc.PageEntries, cache.DefaultMaxEntries)),

		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", fc.Otel.Enabled),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", "grindgrid-backend"),
			Environment: envutil.String("APP_ENV", "development"),
			Version:     envutil.String("APP_VERSION", "dev"),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", fc.Otel.Endpoint),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", orDefault(fc.Otel.SampleRatio, 1)),
		},
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings the selected auth provider needs. A missing
// Gemini key is allowed; the assistant reports it per request.
func (c Config) Validate() error {
	switch c.AuthProvider {
	case AuthProviderSupabase:
		if c.SupabaseURL == "" || c.SupabaseAnonKey == "" {
			return fmt.Errorf("%w: SUPABASE_URL and SUPABASE_ANON_KEY are required for AUTH_PROVIDER=supabase", apperr.ErrConfiguration)
		}
	case AuthProviderLocal:
		if c.JWTSecretKey == "" {
			return fmt.Errorf("%w: JWT_SECRET_KEY is required for AUTH_PROVIDER=local", apperr.ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown AUTH_PROVIDER %q", apperr.ErrConfiguration, c.AuthProvider)
	}
	return nil
}
