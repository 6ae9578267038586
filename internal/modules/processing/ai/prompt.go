package ai

import (
	"fmt"
	"strings"

	"github.com/qa-overflow/core-go/internal/models"
)

const answerPromptHeader = "Act as an expert software developer. Answer the following Stack Overflow style question in Markdown format.\n\n"

const answerPromptInstructions = `**Instructions:**
- Answer in complete Markdown format
- Use headings (#, ##, ###) to structure the answer
- Include code examples using ` + "```" + `javascript or the appropriate language
- Use **bold** for important terms
- Use lists with - or numbers where appropriate
- Provide a complete and helpful answer

`

// BuildAnswerPrompt turns a question snapshot into a single generation
// payload. Pure: degenerate input still produces a valid, if minimal, prompt.
func BuildAnswerPrompt(q *models.QuestionModel) string {
	var b strings.Builder
	b.WriteString(answerPromptHeader)
	fmt.Fprintf(&b, "**Title:** %s\n\n", q.Title)
	fmt.Fprintf(&b, "**Question:** %s\n\n", q.Text)

	if len(q.Tags) > 0 {
		fmt.Fprintf(&b, "**Tags:** %s\n\n", strings.Join(q.Tags, ", "))
	}

	if len(q.Answers) > 0 {
		b.WriteString("**Existing answers:**\n")
		for i := range q.Answers {
			fmt.Fprintf(&b, "%d. %s\n", i+1, answerSourceText(&q.Answers[i]))
		}
		b.WriteString("\n**Provide an additional answer or improve on the existing ones using Markdown format.**\n\n")
	} else {
		b.WriteString(answerPromptInstructions)
	}

	return b.String()
}

// answerSourceText prefers the raw markdown kept for AI answers over the
// rendered display form.
func answerSourceText(a *models.AnswerModel) string {
	if a.RawMarkdown != "" {
		return a.RawMarkdown
	}
	return a.Text
}
