package ai

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/qa-overflow/core-go/internal/modules/content/question"
	"github.com/qa-overflow/core-go/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/questions")
	g.GET("/:id/ai-stream", h.stream)
	g.POST("/:id/ai-response", authMW, h.generate)
}

// GET /questions/:id/ai-stream
func (h *Handler) stream(c *gin.Context) {
	h.svc.StreamAnswer(c, c.Param("id"))
}

// POST /questions/:id/ai-response  [auth]
func (h *Handler) generate(c *gin.Context) {
	q, confidence, err := h.svc.GenerateAnswer(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, question.ErrQuestionNotFound):
			response.NotFoundMsg(c, "Question not found")
		case errors.Is(err, question.ErrPendingAIExists):
			response.BadRequest(c, "This question already has a pending AI response")
		default:
			response.InternalErrorMsg(c, "Failed to generate AI response")
		}
		return
	}

	response.Created(c, gin.H{
		"message":    "AI response generated successfully",
		"question":   q,
		"confidence": confidence,
	})
}
