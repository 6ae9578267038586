package ai

import (
	"github.com/qa-overflow/core-go/internal/config"
	"github.com/qa-overflow/core-go/internal/models"
	"github.com/qa-overflow/core-go/internal/modules/processing/markdown"
	"go.uber.org/zap"
)

// AnswerStore is the persisted question state the pipeline reads and appends
// to. Implemented by the question service; faked in tests.
type AnswerStore interface {
	FindQuestion(id string) (*models.QuestionModel, error)
	AppendAnswer(questionID string, answer *models.AnswerModel) (*models.QuestionModel, error)
	AIUserID() string
}

// Service drives answer generation: one-shot, streamed, and auto-triggered.
type Service struct {
	store  AnswerStore
	client Generator
	cfg    config.AIConfig
	log    *zap.Logger
}

func NewService(store AnswerStore, client Generator, cfg config.AIConfig, log *zap.Logger) *Service {
	return &Service{store: store, client: client, cfg: cfg, log: log}
}

// appendPending renders the generated markdown and appends it as a pending
// AI answer. Content is tagged html at creation; the raw markdown is kept
// for audit and editing.
func (s *Service) appendPending(questionID, raw string) (*models.QuestionModel, error) {
	answer := &models.AnswerModel{
		AuthorID:           s.store.AIUserID(),
		Text:               markdown.Render(raw),
		ContentKind:        models.ContentHTML,
		RawMarkdown:        raw,
		IsAIGenerated:      true,
		AIValidationStatus: models.AIValidationPending,
	}
	return s.store.AppendAnswer(questionID, answer)
}
