package ai

import (
	"context"

	"go.uber.org/zap"
)

// AutoGenerate produces an unsolicited answer for a freshly created
// question. Best effort: every failure is logged and swallowed, and the
// question stays answerable by the explicit endpoints.
func (s *Service) AutoGenerate(questionID string) {
	if !s.cfg.AutoGenerate {
		return
	}

	q, err := s.store.FindQuestion(questionID)
	if err != nil {
		s.log.Warn("auto-generate: question lookup failed",
			zap.String("question_id", questionID), zap.Error(err))
		return
	}
	if len(q.Answers) > 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.RequestTimeout())
	defer cancel()

	result, err := s.client.Generate(ctx, BuildAnswerPrompt(q), q.Tags)
	if err != nil {
		s.log.Warn("auto-generate: generation failed",
			zap.String("question_id", questionID), zap.Error(err))
		return
	}

	if _, err := s.appendPending(questionID, result.Text); err != nil {
		s.log.Warn("auto-generate: append failed",
			zap.String("question_id", questionID), zap.Error(err))
		return
	}

	s.log.Info("auto-generated answer",
		zap.String("question_id", questionID),
		zap.Float64("confidence", result.Confidence))
}
