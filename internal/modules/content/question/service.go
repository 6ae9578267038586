package question

import (
	"errors"
	"time"

	"github.com/qa-overflow/core-go/internal/models"
	"github.com/qa-overflow/core-go/internal/pkg/pagination"
	"github.com/qa-overflow/core-go/internal/pkg/response"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrQuestionNotFound = errors.New("question not found")
	ErrAnswerNotFound   = errors.New("answer not found")
	// ErrPendingAIExists guards the one-pending-AI-answer-per-question invariant.
	ErrPendingAIExists = errors.New("question already has a pending AI response")
	ErrNotAIAnswer     = errors.New("answer is not AI-generated")
	// ErrAlreadyValidated rejects a second approve/reject on the same answer.
	ErrAlreadyValidated = errors.New("AI answer has already been validated")
)

// Service owns persisted question and answer state.
type Service struct {
	db  *gorm.DB
	log *zap.Logger

	aiUserID string
}

func NewService(db *gorm.DB, log *zap.Logger) *Service {
	return &Service{db: db, log: log}
}

// EnsureAIUser creates the reserved AI author account if missing and caches
// its id. Call once on startup, before any generation can run.
func (s *Service) EnsureAIUser() error {
	user := models.UserModel{
		Username: models.AIAssistantUsername,
		Name:     "AI Assistant",
		Role:     models.RoleUser,
	}
	if err := s.db.Where("username = ?", models.AIAssistantUsername).
		FirstOrCreate(&user).Error; err != nil {
		return err
	}
	s.aiUserID = user.ID
	return nil
}

// AIUserID returns the reserved AI author account id.
func (s *Service) AIUserID() string { return s.aiUserID }

// FindQuestion loads a question with its answers and author.
func (s *Service) FindQuestion(id string) (*models.QuestionModel, error) {
	var q models.QuestionModel
	err := s.db.
		Preload("Author").
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("Answers.Author").
		First(&q, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuestionNotFound
		}
		return nil, err
	}
	return &q, nil
}

// FindAnswer loads one answer of a question.
func (s *Service) FindAnswer(questionID, answerID string) (*models.AnswerModel, error) {
	var a models.AnswerModel
	err := s.db.First(&a, "id = ? AND question_id = ?", answerID, questionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnswerNotFound
		}
		return nil, err
	}
	return &a, nil
}

// Create persists a new question.
func (s *Service) Create(dto *CreateQuestionDTO, authorID string) (*models.QuestionModel, error) {
	q := models.QuestionModel{
		Title:    dto.Title,
		Text:     dto.Text,
		Tags:     models.StringArray(dto.Tags).Normalize(),
		AuthorID: authorID,
		Status:   models.QuestionOpen,
	}
	if err := s.db.Create(&q).Error; err != nil {
		return nil, err
	}
	return s.FindQuestion(q.ID)
}

// List returns questions ordered newest first.
func (s *Service) List(q pagination.Query) ([]models.QuestionModel, response.Pagination, error) {
	tx := s.db.Model(&models.QuestionModel{}).
		Preload("Author").
		Preload("Answers").
		Order("created_at DESC")
	var items []models.QuestionModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}

// AppendAnswer atomically appends an answer to a question. For AI-authored
// answers it re-checks the pending invariant inside the transaction, with the
// question row locked, and flips hasAIResponse. The check must happen here
// rather than on a state read moments earlier: concurrent triggers race.
func (s *Service) AppendAnswer(questionID string, answer *models.AnswerModel) (*models.QuestionModel, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var q models.QuestionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&q, "id = ?", questionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuestionNotFound
			}
			return err
		}

		if answer.IsAIGenerated {
			var pending int64
			if err := tx.Model(&models.AnswerModel{}).
				Where("question_id = ? AND is_ai_generated = ? AND ai_validation_status = ?",
					questionID, true, models.AIValidationPending).
				Count(&pending).Error; err != nil {
				return err
			}
			if pending > 0 {
				return ErrPendingAIExists
			}
		}

		answer.QuestionID = questionID
		if err := tx.Create(answer).Error; err != nil {
			return err
		}

		if answer.IsAIGenerated && !q.HasAIResponse {
			return tx.Model(&q).Update("has_ai_response", true).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.FindQuestion(questionID)
}

// SetValidationStatus applies a moderation decision to an AI answer.
// Only a pending AI answer may transition, and only once.
func (s *Service) SetValidationStatus(questionID, answerID string, status models.AIValidationStatus, actorID string, at time.Time) (*models.QuestionModel, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var a models.AnswerModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&a, "id = ? AND question_id = ?", answerID, questionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				if findErr := tx.First(&models.QuestionModel{}, "id = ?", questionID).Error; errors.Is(findErr, gorm.ErrRecordNotFound) {
					return ErrQuestionNotFound
				}
				return ErrAnswerNotFound
			}
			return err
		}
		if !a.IsAIGenerated {
			return ErrNotAIAnswer
		}
		if a.AIValidationStatus != models.AIValidationPending {
			return ErrAlreadyValidated
		}
		return tx.Model(&a).Updates(map[string]interface{}{
			"ai_validation_status": status,
			"validated_by":         actorID,
			"validated_at":         at,
		}).Error
	})
	if err != nil {
		return nil, err
	}
	return s.FindQuestion(questionID)
}

// MarkSolved marks a question solved. Re-marking is allowed and overwrites
// the solver reference and timestamp.
func (s *Service) MarkSolved(questionID, actorID string) (*models.QuestionModel, error) {
	now := time.Now()
	res := s.db.Model(&models.QuestionModel{}).
		Where("id = ?", questionID).
		Updates(map[string]interface{}{
			"status":    models.QuestionSolved,
			"solved_by": actorID,
			"solved_at": now,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrQuestionNotFound
	}
	return s.FindQuestion(questionID)
}

// PendingModeration lists questions that have at least one pending AI answer,
// newest first.
func (s *Service) PendingModeration(q pagination.Query) ([]models.QuestionModel, response.Pagination, error) {
	sub := s.db.Model(&models.AnswerModel{}).
		Select("question_id").
		Where("is_ai_generated = ? AND ai_validation_status = ?", true, models.AIValidationPending)

	tx := s.db.Model(&models.QuestionModel{}).
		Preload("Author").
		Preload("Answers").
		Preload("Answers.Author").
		Where("id IN (?)", sub).
		Order("created_at DESC")

	var items []models.QuestionModel
	pag, err := pagination.Paginate(tx, q, &items)
	return items, pag, err
}
