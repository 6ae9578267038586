package ai

import (
	"context"

	"github.com/qa-overflow/core-go/internal/models"
	"github.com/qa-overflow/core-go/internal/modules/content/question"
)

// GenerateAnswer runs the one-shot pipeline for a question: build the
// prompt, call the provider, render and append the result as a pending AI
// answer. Returns the refreshed question and the confidence score.
func (s *Service) GenerateAnswer(ctx context.Context, questionID string) (*models.QuestionModel, float64, error) {
	q, err := s.store.FindQuestion(questionID)
	if err != nil {
		return nil, 0, err
	}

	// Checked again under lock at append time; this check just avoids
	// burning a provider call on a question that already has one pending.
	if q.PendingAIAnswer() != nil {
		return nil, 0, question.ErrPendingAIExists
	}

	result, err := s.client.Generate(ctx, BuildAnswerPrompt(q), q.Tags)
	if err != nil {
		return nil, 0, err
	}

	updated, err := s.appendPending(questionID, result.Text)
	if err != nil {
		return nil, 0, err
	}
	return updated, result.Confidence, nil
}
