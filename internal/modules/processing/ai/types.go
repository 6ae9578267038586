package ai

import "context"

// GenerateResult is the outcome of one one-shot generation call.
type GenerateResult struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Generator is the external model provider surface. The streaming call
// yields deltas in generation order and is not restartable; cancelling ctx
// aborts the upstream request.
type Generator interface {
	Generate(ctx context.Context, prompt string, tags []string) (*GenerateResult, error)
	GenerateStream(ctx context.Context, prompt string, onDelta func(string)) (string, error)
}

// streamEvent is one message of the streaming wire protocol. A partial delta
// carries Content with IsComplete=false; the terminal event carries the
// complete text in FullResponse.
type streamEvent struct {
	Content      string `json:"content"`
	IsComplete   bool   `json:"isComplete"`
	FullResponse string `json:"fullResponse,omitempty"`
}

// streamErrorEvent is the terminal failure message; consumers must stop
// listening when they receive it.
type streamErrorEvent struct {
	Error string `json:"error"`
}
