package question

// CreateQuestionDTO is the payload for creating a question.
type CreateQuestionDTO struct {
	Title string   `json:"title" binding:"required"`
	Text  string   `json:"text"  binding:"required"`
	Tags  []string `json:"tags"`
}
