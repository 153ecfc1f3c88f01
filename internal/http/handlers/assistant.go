package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/grindgrid/grindgrid-backend/internal/http/response"
	"github.com/grindgrid/grindgrid-backend/internal/services"
)

type AssistantHandler struct {
	assistant services.AssistantService
}

func NewAssistantHandler(assistant services.AssistantService) *AssistantHandler {
	return &AssistantHandler{assistant: assistant}
}

// POST /api/gemini, POST /api/ai/generate
// body: { "prompt": "..." }
func (h *AssistantHandler) Generate(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	// A malformed body is treated as an empty prompt.
	_ = c.ShouldBindJSON(&req)

	text, err := h.assistant.Generate(requestDBC(c), req.Prompt)
	if err != nil {
		ae := services.ClassifyAssistantError(err)
		_ = c.Error(err)
		response.RespondError(c, ae.Status, ae.Code, ae)
		return
	}
	response.RespondOK(c, gin.H{"response": text})
}

// GET /api/conversations
func (h *AssistantHandler) Conversations(c *gin.Context) {
	list, err := h.assistant.History(requestDBC(c))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"conversations": list})
}
