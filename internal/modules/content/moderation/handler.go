package moderation

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/qa-overflow/core-go/internal/middleware"
	"github.com/qa-overflow/core-go/internal/modules/content/question"
	"github.com/qa-overflow/core-go/internal/pkg/pagination"
	"github.com/qa-overflow/core-go/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW, modMW gin.HandlerFunc) {
	rg.PUT("/questions/:id/answers/:answerId/validate", authMW, modMW, h.validate)
	rg.PUT("/questions/:id/solved", authMW, modMW, h.markSolved)
	rg.GET("/moderation/pending", authMW, modMW, h.pending)
}

type validateDTO struct {
	Action string `json:"action" binding:"required"`
}

// PUT /questions/:id/answers/:answerId/validate  [moderator]
func (h *Handler) validate(c *gin.Context) {
	var dto validateDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	d := Decision{
		QuestionID: c.Param("id"),
		AnswerID:   c.Param("answerId"),
		Action:     Action(dto.Action),
		ActorID:    middleware.CurrentUserID(c),
	}

	q, err := h.svc.Apply(d, middleware.CurrentRole(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, gin.H{
		"message":  fmt.Sprintf("AI response %sd successfully", dto.Action),
		"question": q,
	})
}

// PUT /questions/:id/solved  [moderator]
func (h *Handler) markSolved(c *gin.Context) {
	q, err := h.svc.MarkSolved(c.Param("id"), middleware.CurrentUserID(c), middleware.CurrentRole(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.OK(c, gin.H{
		"message":  "Question marked as solved",
		"question": q,
	})
}

// GET /moderation/pending  [moderator]
func (h *Handler) pending(c *gin.Context) {
	items, pag, err := h.svc.Pending(pagination.FromContext(c), middleware.CurrentRole(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrForbidden):
		response.Forbidden(c, "Insufficient permissions")
	case errors.Is(err, ErrInvalidAction):
		response.BadRequest(c, `Invalid action. Use "approve" or "reject"`)
	case errors.Is(err, question.ErrQuestionNotFound):
		response.NotFoundMsg(c, "Question not found")
	case errors.Is(err, question.ErrAnswerNotFound):
		response.NotFoundMsg(c, "Answer not found")
	case errors.Is(err, question.ErrNotAIAnswer):
		response.BadRequest(c, "This is not an AI-generated answer")
	case errors.Is(err, question.ErrAlreadyValidated):
		response.BadRequest(c, "This AI response has already been validated")
	default:
		response.InternalError(c, err)
	}
}
