package app

import (
	"gorm.io/gorm"

	"github.com/grindgrid/grindgrid-backend/internal/http"
	httpH "github.com/grindgrid/grindgrid-backend/internal/http/handlers"
	httpMW "github.com/grindgrid/grindgrid-backend/internal/http/middleware"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type Middleware struct {
	Session *httpMW.SessionMiddleware
	Cookies httpMW.CookieOptions
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Auth      *httpH.AuthHandler
	Pages     *httpH.PageHandler
	Assistant *httpH.AssistantHandler
	Skills    *httpH.SkillHandler
	Tasks     *httpH.TaskHandler
	Notes     *httpH.NoteHandler
	Profile   *httpH.ProfileHandler
}

func wireMiddleware(log *logger.Logger, cfg Config, services Services) Middleware {
	log.Info("Wiring middleware...")
	cookies := httpMW.CookieOptions{Secure: cfg.CookieSecure}
	return Middleware{
		Session: httpMW.NewSessionMiddleware(log, services.Sessions, services.Auth, cookies),
		Cookies: cookies,
	}
}

func wireHandlers(log *logger.Logger, db *gorm.DB, cfg Config, services Services, mw Middleware) Handlers {
	log.Info("Wiring handlers...")
	var health *httpH.HealthHandler
	if sqlDB, err := db.DB(); err == nil {
		health = httpH.NewHealthHandler(sqlDB)
	} else {
		health = httpH.NewHealthHandler(nil)
	}
	return Handlers{
		Health: health,
		Auth:   httpH.NewAuthHandler(log, services.Auth, mw.Cookies, cfg.PublicURL),
		Pages: httpH.NewPageHandler(httpH.PageHandlerDeps{
			Sessions:   services.Sessions,
			Dashboard:  services.Dashboard,
			Skills:     services.Skills,
			Notes:      services.Notes,
			Profiles:   services.Profiles,
			Onboarding: services.Onboarding,
			Assistant:  services.Assistant,
		}),
		Assistant: httpH.NewAssistantHandler(services.Assistant),
		Skills:    httpH.NewSkillHandler(services.Skills),
		Tasks:     httpH.NewTaskHandler(services.Tasks),
		Notes:     httpH.NewNoteHandler(services.Notes),
		Profile:   httpH.NewProfileHandler(services.Profiles),
	}
}

func wireRouter(log *logger.Logger, cfg Config, clients Clients, services Services, handlers Handlers, mw Middleware) http.RouterConfig {
	serviceName := ""
	if cfg.Otel.Enabled {
		serviceName = cfg.Otel.ServiceName
	}
	return http.RouterConfig{
		Log:               log,
		ServiceName:       serviceName,
		CORSOrigins:       cfg.CORSOrigins,
		Sessions:          services.Sessions,
		SessionMiddleware: mw.Session,
		Pages:             clients.Pages,
		PageHandler:       handlers.Pages,
		AuthHandler:       handlers.Auth,
		AssistantHandler:  handlers.Assistant,
		SkillHandler:      handlers.Skills,
		TaskHandler:       handlers.Tasks,
		NoteHandler:       handlers.Notes,
		ProfileHandler:    handlers.Profile,
		HealthHandler:     handlers.Health,
	}
}
