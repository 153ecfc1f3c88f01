package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/grindgrid/grindgrid-backend/internal/http/response"
	"github.com/grindgrid/grindgrid-backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GET /api/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	view, err := h.profiles.Get(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// PATCH /api/profile
// body: { "full_name": "...", "avatar_url": "...", "website": "..." }
func (h *ProfileHandler) Update(c *gin.Context) {
	var req services.ProfilePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	view, err := h.profiles.Update(requestDBC(c), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}
