package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/grindgrid/grindgrid-backend/internal/platform/cache"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

const (
	PathLogin             = "/login"
	PathSignup            = "/signup"
	PathOnboarding        = "/onboarding"
	PathDashboard         = "/dashboard"
	PathDashboardSkills   = "/dashboard/skills"
	PathDashboardTasks    = "/dashboard/tasks"
	PathDashboardNotes    = "/dashboard/notes"
	PathDashboardProgress = "/dashboard/progress"
	PathDashboardAI       = "/dashboard/ai"
	PathDashboardSettings = "/dashboard/settings"
)

var (
	skillViews       = []string{PathDashboard, PathDashboardSkills, PathDashboardTasks, PathDashboardProgress}
	// Deleting a skill also drops its tasks and detaches its notes.
	skillDeleteViews = []string{PathDashboard, PathDashboardSkills, PathDashboardTasks, PathDashboardProgress, PathDashboardNotes}
	taskViews        = []string{PathDashboard, PathDashboardTasks}
	noteViews        = []string{PathDashboard, PathDashboardNotes}
	onboardingViews  = []string{PathDashboard, PathDashboardSkills, PathDashboardSettings}
	profileViews     = []string{PathDashboard, PathDashboardSettings}
	assistantViews   = []string{PathDashboardAI}
)

// PageInvalidator drops cached views after a successful mutation. Failures
// are logged and never surface to the caller.
type PageInvalidator struct {
	pages cache.PageCache
	log   *logger.Logger
}

func NewPageInvalidator(pages cache.PageCache, log *logger.Logger) *PageInvalidator {
	return &PageInvalidator{pages: pages, log: log.With("component", "PageInvalidator")}
}

func (p *PageInvalidator) Invalidate(ctx context.Context, userID uuid.UUID, paths ...string) {
	if p == nil || p.pages == nil || len(paths) == 0 {
		return
	}
	if err := p.pages.Invalidate(ctx, userID, paths...); err != nil {
		p.log.Warn("Page invalidation failed", "user_id", userID, "paths", paths, "error", err)
	}
}

// Forget drops every cached view for userID.
func (p *PageInvalidator) Forget(ctx context.Context, userID uuid.UUID) {
	if p == nil || p.pages == nil {
		return
	}
	if err := p.pages.InvalidateUser(ctx, userID); err != nil {
		p.log.Warn("Page cache purge failed", "user_id", userID, "error", err)
	}
}
