package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/grindgrid/grindgrid-backend/internal/http/handlers"
	httpMW "github.com/grindgrid/grindgrid-backend/internal/http/middleware"
	"github.com/grindgrid/grindgrid-backend/internal/platform/cache"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
	"github.com/grindgrid/grindgrid-backend/internal/services"
)

type RouterConfig struct {
	Log         *logger.Logger
	ServiceName string
	CORSOrigins []string

	Sessions          services.SessionResolver
	SessionMiddleware *httpMW.SessionMiddleware
	Pages             cache.PageCache

	PageHandler      *httpH.PageHandler
	AuthHandler      *httpH.AuthHandler
	AssistantHandler *httpH.AssistantHandler
	SkillHandler     *httpH.SkillHandler
	TaskHandler      *httpH.TaskHandler
	NoteHandler      *httpH.NoteHandler
	ProfileHandler   *httpH.ProfileHandler
	HealthHandler    *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(gin.Recovery())
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	if cfg.SessionMiddleware != nil {
		r.Use(cfg.SessionMiddleware.Attach())
	}
	if cfg.Sessions != nil {
		r.Use(httpMW.RouteGuard(cfg.Log, cfg.Sessions))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	// Auth redirects
	if cfg.AuthHandler != nil {
		r.GET("/auth/oauth/:provider", cfg.AuthHandler.OAuth)
		r.GET("/auth/callback", cfg.AuthHandler.Callback)
	}

	// Pages
	if ph := cfg.PageHandler; ph != nil {
		r.GET("/", ph.Landing)
		r.GET("/login", ph.Login)
		r.GET("/signup", ph.Signup)
		r.GET("/onboarding", ph.Onboarding)
		r.POST("/onboarding", ph.CompleteOnboarding)

		dashboard := r.Group("/dashboard")
		if cfg.Pages != nil && cfg.Sessions != nil {
			dashboard.Use(httpMW.PageCache(cfg.Log, cfg.Pages, cfg.Sessions))
		}
		dashboard.GET("", ph.Dashboard)
		dashboard.GET("/skills", ph.Skills)
		dashboard.GET("/tasks", ph.Tasks)
		dashboard.GET("/notes", ph.Notes)
		dashboard.GET("/progress", ph.Progress)
		dashboard.GET("/ai", ph.Assistant)
		dashboard.GET("/settings", ph.Settings)
	}

	api := r.Group("/api")
	{
		if cfg.AuthHandler != nil {
			api.POST("/auth/signup", cfg.AuthHandler.SignUp)
			api.POST("/auth/login", cfg.AuthHandler.Login)
			api.POST("/auth/logout", cfg.AuthHandler.Logout)
		}

		if cfg.AssistantHandler != nil {
			api.POST("/gemini", cfg.AssistantHandler.Generate)
			api.POST("/ai/generate", cfg.AssistantHandler.Generate)
			api.GET("/conversations", cfg.AssistantHandler.Conversations)
		}

		if h := cfg.SkillHandler; h != nil {
			api.GET("/skills", h.List)
			api.POST("/skills", h.Create)
			api.PATCH("/skills/:id", h.Update)
			api.DELETE("/skills/:id", h.Delete)
		}

		if h := cfg.TaskHandler; h != nil {
			api.GET("/tasks", h.List)
			api.POST("/tasks", h.Create)
			api.PATCH("/tasks/:id", h.Update)
			api.DELETE("/tasks/:id", h.Delete)
		}

		if h := cfg.NoteHandler; h != nil {
			api.GET("/notes", h.List)
			api.POST("/notes", h.Create)
			api.PATCH("/notes/:id", h.Update)
			api.DELETE("/notes/:id", h.Delete)
		}

		if cfg.ProfileHandler != nil {
			api.GET("/profile", cfg.ProfileHandler.Get)
			api.PATCH("/profile", cfg.ProfileHandler.Update)
		}
	}

	return r
}
