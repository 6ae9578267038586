package moderation

import (
	"errors"
	"time"

	"github.com/qa-overflow/core-go/internal/models"
	"github.com/qa-overflow/core-go/internal/pkg/pagination"
	"github.com/qa-overflow/core-go/internal/pkg/response"
)

// Action is a moderation decision on a pending AI answer.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

var (
	ErrForbidden     = errors.New("insufficient permissions")
	ErrInvalidAction = errors.New(`invalid action, use "approve" or "reject"`)
)

// Store is the persisted question state this module mutates. Implemented by
// the question service; faked in tests.
type Store interface {
	SetValidationStatus(questionID, answerID string, status models.AIValidationStatus, actorID string, at time.Time) (*models.QuestionModel, error)
	MarkSolved(questionID, actorID string) (*models.QuestionModel, error)
	PendingModeration(q pagination.Query) ([]models.QuestionModel, response.Pagination, error)
}

// Decision is one approve/reject request against a specific answer.
type Decision struct {
	QuestionID string
	AnswerID   string
	Action     Action
	ActorID    string
}

// Service enforces the pending → approved/rejected lifecycle.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Apply validates and applies one moderation decision. The store enforces
// that only a pending AI answer may transition, and only once.
func (s *Service) Apply(d Decision, role models.UserRole) (*models.QuestionModel, error) {
	if !role.CanModerate() {
		return nil, ErrForbidden
	}

	var status models.AIValidationStatus
	switch d.Action {
	case ActionApprove:
		status = models.AIValidationApproved
	case ActionReject:
		status = models.AIValidationRejected
	default:
		return nil, ErrInvalidAction
	}

	return s.store.SetValidationStatus(d.QuestionID, d.AnswerID, status, d.ActorID, time.Now())
}

// MarkSolved marks a question solved on behalf of a moderator. Re-marking is
// permitted and overwrites the previous solver and timestamp.
func (s *Service) MarkSolved(questionID, actorID string, role models.UserRole) (*models.QuestionModel, error) {
	if !role.CanModerate() {
		return nil, ErrForbidden
	}
	return s.store.MarkSolved(questionID, actorID)
}

// Pending lists questions awaiting moderation.
func (s *Service) Pending(q pagination.Query, role models.UserRole) ([]models.QuestionModel, response.Pagination, error) {
	if !role.CanModerate() {
		return nil, response.Pagination{}, ErrForbidden
	}
	return s.store.PendingModeration(q)
}
