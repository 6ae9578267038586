package question

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/qa-overflow/core-go/internal/middleware"
	"github.com/qa-overflow/core-go/internal/pkg/pagination"
	"github.com/qa-overflow/core-go/internal/pkg/response"
)

type Handler struct {
	svc *Service
	// autoGenerate fires after a question is durably created. It runs on its
	// own goroutine; its failure never affects the creation response.
	autoGenerate func(questionID string)
}

func NewHandler(svc *Service, autoGenerate func(questionID string)) *Handler {
	return &Handler{svc: svc, autoGenerate: autoGenerate}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/questions")
	g.GET("", h.list)
	g.GET("/:id", h.show)
	g.POST("", authMW, h.create)

	// Legacy singular path kept for web-client compatibility.
	rg.GET("/question/:id", h.show)
}

// GET /questions
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	items, pag, err := h.svc.List(q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, items, pag)
}

// GET /questions/:id
func (h *Handler) show(c *gin.Context) {
	q, err := h.svc.FindQuestion(c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrQuestionNotFound) {
			response.NotFoundMsg(c, "Question not found")
			return
		}
		response.InternalError(c, err)
		return
	}
	response.OK(c, q)
}

// POST /questions  [auth]
func (h *Handler) create(c *gin.Context) {
	var dto CreateQuestionDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	q, err := h.svc.Create(&dto, middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}

	if h.autoGenerate != nil {
		go h.autoGenerate(q.ID)
	}
	response.Created(c, q)
}
