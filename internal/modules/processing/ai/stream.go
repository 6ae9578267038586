package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/qa-overflow/core-go/internal/modules/content/question"
	"github.com/qa-overflow/core-go/internal/pkg/response"
)

// StreamAnswer generates an answer over SSE. Deltas go out as they arrive;
// the terminal event carries the full text; persistence happens strictly
// after the terminal event so the stored state only ever reflects completed
// generations.
func (s *Service) StreamAnswer(c *gin.Context, questionID string) {
	q, err := s.store.FindQuestion(questionID)
	if err != nil {
		if errors.Is(err, question.ErrQuestionNotFound) {
			response.NotFoundMsg(c, "Question not found")
			return
		}
		response.InternalError(c, err)
		return
	}

	// Checked again under lock at append time; rejecting here avoids
	// streaming a full provider response that append would then drop.
	if q.PendingAIAnswer() != nil {
		response.BadRequest(c, "This question already has a pending AI response")
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)

	prompt := BuildAnswerPrompt(q)
	ctx := c.Request.Context()

	full, err := s.client.GenerateStream(ctx, prompt, func(delta string) {
		s.sendStreamEvent(c, streamEvent{Content: delta})
	})
	if err != nil {
		if ctx.Err() != nil {
			// Client went away mid-stream. Nothing is persisted; the next
			// request regenerates from scratch.
			s.log.Info("answer stream aborted by client", zap.String("question_id", questionID))
			return
		}
		s.log.Error("answer stream failed", zap.String("question_id", questionID), zap.Error(err))
		s.sendStreamError(c, "Failed to generate AI response")
		return
	}

	s.sendStreamEvent(c, streamEvent{IsComplete: true, FullResponse: full})

	if _, err := s.appendPending(questionID, full); err != nil {
		// The client already has the full text; only the stored copy is lost.
		s.log.Error("failed to persist streamed answer",
			zap.String("question_id", questionID), zap.Error(err))
	}
}

func (s *Service) sendStreamEvent(c *gin.Context, event streamEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
	c.Writer.Flush()
}

func (s *Service) sendStreamError(c *gin.Context, message string) {
	payload, _ := json.Marshal(streamErrorEvent{Error: message})
	fmt.Fprintf(c.Writer, "data: %s\n\n", payload)
	c.Writer.Flush()
}
