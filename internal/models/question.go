package models

import "time"

// QuestionStatus is the resolution state of a question.
type QuestionStatus string

const (
	QuestionOpen   QuestionStatus = "open"
	QuestionSolved QuestionStatus = "solved"
)

// QuestionModel is a question with its ordered answers.
type QuestionModel struct {
	Base
	Title         string         `json:"title"          gorm:"not null"`
	Text          string         `json:"text"           gorm:"type:longtext"`
	Tags          StringArray    `json:"tags"           gorm:"type:json"`
	AuthorID      string         `json:"author_id"      gorm:"index"`
	Author        *UserModel     `json:"author,omitempty"    gorm:"foreignKey:AuthorID"`
	Status        QuestionStatus `json:"status"         gorm:"default:open;index"`
	SolvedByID    *string        `json:"solved_by"      gorm:"column:solved_by"`
	SolvedAt      *time.Time     `json:"solved_at"`
	HasAIResponse bool           `json:"hasAIResponse"  gorm:"column:has_ai_response;default:false;index"`
	Answers       []AnswerModel  `json:"answers"        gorm:"foreignKey:QuestionID"`
}

func (QuestionModel) TableName() string { return "questions" }

// PendingAIAnswer returns the answer currently awaiting moderation, if any.
// At most one answer per question may be in this state at a time.
func (q *QuestionModel) PendingAIAnswer() *AnswerModel {
	for i := range q.Answers {
		a := &q.Answers[i]
		if a.IsAIGenerated && a.AIValidationStatus == AIValidationPending {
			return a
		}
	}
	return nil
}
