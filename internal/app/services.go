package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/grindgrid/grindgrid-backend/internal/platform/gemini"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
	"github.com/grindgrid/grindgrid-backend/internal/services"
)

type Services struct {
	Identity   services.IdentityProvider
	Sessions   services.SessionResolver
	Auth       services.AuthService
	Onboarding services.OnboardingService
	Skills     services.SkillService
	Tasks      services.TaskService
	Notes      services.NoteService
	Dashboard  services.DashboardService
	Profiles   services.ProfileService
	Assistant  services.AssistantService
}

func wireIdentity(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (services.IdentityProvider, error) {
	switch cfg.AuthProvider {
	case AuthProviderSupabase:
		if clients.GoTrue == nil {
			return nil, fmt.Errorf("supabase identity selected without a gotrue client")
		}
		return services.NewSupabaseIdentity(clients.GoTrue, log), nil
	default:
		local, err := services.NewLocalIdentity(db, log, repos.Account, repos.AuthCode, repos.UserToken, services.LocalIdentityConfig{
			JWTSecret:  cfg.JWTSecretKey,
			AccessTTL:  cfg.AccessTokenTTL,
			RefreshTTL: cfg.RefreshTokenTTL,
			PublicURL:  cfg.PublicURL,
		})
		if err != nil {
			return nil, err
		}
		return local, nil
	}
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) (Services, error) {
	log.Info("Wiring services...")

	identity, err := wireIdentity(db, log, cfg, repos, clients)
	if err != nil {
		return Services{}, fmt.Errorf("init identity provider: %w", err)
	}

	pages := services.NewPageInvalidator(clients.Pages, log)
	sessions := services.NewSessionResolver(log, identity, repos.Profile)

	return Services{
		Identity:   identity,
		Sessions:   sessions,
		Auth:       services.NewAuthService(log, identity, sessions, repos.Profile, pages),
		Onboarding: services.NewOnboardingService(db, log, sessions, repos.Profile, repos.Skill, pages),
		Skills:     services.NewSkillService(db, log, sessions, repos.Skill, repos.Task, repos.Note, pages),
		Tasks:      services.NewTaskService(log, sessions, repos.Task, repos.Skill, pages),
		Notes:      services.NewNoteService(log, sessions, repos.Note, repos.Skill, pages),
		Dashboard:  services.NewDashboardService(log, sessions, repos.Profile, repos.Skill, repos.Task, repos.Note),
		Profiles:   services.NewProfileService(log, sessions, repos.Profile, pages),
		Assistant: services.NewAssistantService(log, sessions, clients.Gemini, repos.Conversation, pages, services.AssistantConfig{
			FallbackModels: cfg.FallbackModels,
			Generation: gemini.GenerationConfig{
				MaxOutputTokens: int32(cfg.MaxOutputTokens),
				Temperature:     float32(cfg.Temperature),
			},
		}),
	}, nil
}
