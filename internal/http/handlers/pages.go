package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grindgrid/grindgrid-backend/internal/http/response"
	"github.com/grindgrid/grindgrid-backend/internal/services"
)

// PageHandler serves the JSON view model behind every page.
type PageHandler struct {
	sessions   services.SessionResolver
	dashboard  services.DashboardService
	skills     services.SkillService
	notes      services.NoteService
	profiles   services.ProfileService
	onboarding services.OnboardingService
	assistant  services.AssistantService
}

type PageHandlerDeps struct {
	Sessions   services.SessionResolver
	Dashboard  services.DashboardService
	Skills     services.SkillService
	Notes      services.NoteService
	Profiles   services.ProfileService
	Onboarding services.OnboardingService
	Assistant  services.AssistantService
}

func NewPageHandler(deps PageHandlerDeps) *PageHandler {
	return &PageHandler{
		sessions:   deps.Sessions,
		dashboard:  deps.Dashboard,
		skills:     deps.Skills,
		notes:      deps.Notes,
		profiles:   deps.Profiles,
		onboarding: deps.Onboarding,
		assistant:  deps.Assistant,
	}
}

// GET /
func (h *PageHandler) Landing(c *gin.Context) {
	state := h.sessions.Resolve(c.Request.Context())
	response.RespondOK(c, gin.H{"page": "landing", "session": state})
}

// GET /login
func (h *PageHandler) Login(c *gin.Context) {
	state := h.sessions.Resolve(c.Request.Context())
	if state.Authenticated && state.OnboardingComplete {
		c.Redirect(http.StatusFound, services.PathDashboard)
		return
	}
	response.RespondOK(c, gin.H{"page": "login", "error": c.Query("error"), "session": state})
}

// GET /signup
func (h *PageHandler) Signup(c *gin.Context) {
	state := h.sessions.Resolve(c.Request.Context())
	response.RespondOK(c, gin.H{"page": "signup", "session": state})
}

// GET /onboarding
func (h *PageHandler) Onboarding(c *gin.Context) {
	state := h.sessions.Resolve(c.Request.Context())
	response.RespondOK(c, gin.H{"page": "onboarding", "email": state.Email})
}

// POST /onboarding
// body (json or form): { "username": "...", "skill_name": "...", "deadline": "YYYY-MM-DD" }
func (h *PageHandler) CompleteOnboarding(c *gin.Context) {
	var req services.OnboardingInput
	if err := c.ShouldBind(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	out, err := h.onboarding.Complete(requestDBC(c), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	if c.ContentType() == gin.MIMEPOSTForm {
		c.Redirect(http.StatusSeeOther, services.PathDashboard)
		return
	}
	response.RespondOK(c, out)
}

// GET /dashboard
func (h *PageHandler) Dashboard(c *gin.Context) {
	view, err := h.dashboard.Summary(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /dashboard/skills
func (h *PageHandler) Skills(c *gin.Context) {
	list, err := h.skills.List(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"skills": list})
}

// GET /dashboard/tasks
func (h *PageHandler) Tasks(c *gin.Context) {
	board, err := h.dashboard.TaskBoard(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, board)
}

// GET /dashboard/notes
func (h *PageHandler) Notes(c *gin.Context) {
	list, err := h.notes.List(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"notes": list})
}

// GET /dashboard/progress
func (h *PageHandler) Progress(c *gin.Context) {
	view, err := h.dashboard.Progress(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// GET /dashboard/ai
func (h *PageHandler) Assistant(c *gin.Context) {
	list, err := h.assistant.History(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": list})
}

// GET /dashboard/settings
func (h *PageHandler) Settings(c *gin.Context) {
	view, err := h.profiles.Get(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}
