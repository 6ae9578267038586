package models

import "time"

// AIValidationStatus is the moderation lifecycle of an AI-generated answer.
// Human answers stay at "none"; an AI answer is created "pending" and moves
// exactly once to "approved" or "rejected".
type AIValidationStatus string

const (
	AIValidationNone     AIValidationStatus = "none"
	AIValidationPending  AIValidationStatus = "pending"
	AIValidationApproved AIValidationStatus = "approved"
	AIValidationRejected AIValidationStatus = "rejected"
)

// ContentKind tags the shape of the stored answer text at creation time,
// so render-time shape sniffing is never needed.
type ContentKind string

const (
	ContentMarkdown ContentKind = "markdown"
	ContentHTML     ContentKind = "html"
)

// AnswerModel is one answer attached to a question.
type AnswerModel struct {
	Base
	QuestionID         string             `json:"question_id"  gorm:"index;not null"`
	AuthorID           string             `json:"author_id"    gorm:"index"`
	Author             *UserModel         `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Text               string             `json:"text"         gorm:"type:longtext;not null"`
	ContentKind        ContentKind        `json:"content_kind" gorm:"default:markdown"`
	RawMarkdown        string             `json:"rawMarkdown,omitempty" gorm:"column:raw_markdown;type:longtext"`
	IsAIGenerated      bool               `json:"isAIGenerated"      gorm:"column:is_ai_generated;default:false;index"`
	AIValidationStatus AIValidationStatus `json:"aiValidationStatus" gorm:"column:ai_validation_status;default:none;index"`
	ValidatedByID      *string            `json:"validatedBy"  gorm:"column:validated_by"`
	ValidatedAt        *time.Time         `json:"validatedAt"`
}

func (AnswerModel) TableName() string { return "answers" }
