package ai

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qa-overflow/core-go/internal/config"
	"github.com/qa-overflow/core-go/internal/models"
	"github.com/qa-overflow/core-go/internal/modules/content/question"
)

const testAIUserID = "ai-user-1"

// fakeStore keeps question state in memory and enforces the same pending
// invariant as the real store.
type fakeStore struct {
	mu        sync.Mutex
	questions map[string]*models.QuestionModel
	appends   int
	appendErr error
}

func newFakeStore(questions ...*models.QuestionModel) *fakeStore {
	s := &fakeStore{questions: map[string]*models.QuestionModel{}}
	for _, q := range questions {
		s.questions[q.ID] = q
	}
	return s
}

func (s *fakeStore) FindQuestion(id string) (*models.QuestionModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q, ok := s.questions[id]
	if !ok {
		return nil, question.ErrQuestionNotFound
	}
	copied := *q
	copied.Answers = append([]models.AnswerModel(nil), q.Answers...)
	return &copied, nil
}

func (s *fakeStore) AppendAnswer(questionID string, answer *models.AnswerModel) (*models.QuestionModel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appendErr != nil {
		return nil, s.appendErr
	}
	q, ok := s.questions[questionID]
	if !ok {
		return nil, question.ErrQuestionNotFound
	}
	if answer.IsAIGenerated && q.PendingAIAnswer() != nil {
		return nil, question.ErrPendingAIExists
	}
	answer.QuestionID = questionID
	q.Answers = append(q.Answers, *answer)
	if answer.IsAIGenerated {
		q.HasAIResponse = true
	}
	s.appends++
	copied := *q
	return &copied, nil
}

func (s *fakeStore) AIUserID() string { return testAIUserID }

func (s *fakeStore) appendCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appends
}

// fakeGenerator scripts provider behavior for tests.
type fakeGenerator struct {
	text    string
	deltas  []string
	err     error
	calls   int
	gotTags []string
}

func (g *fakeGenerator) Generate(_ context.Context, _ string, tags []string) (*GenerateResult, error) {
	g.calls++
	g.gotTags = tags
	if g.err != nil {
		return nil, g.err
	}
	return &GenerateResult{Text: g.text, Confidence: EstimateConfidence(g.text, tags)}, nil
}

func (g *fakeGenerator) GenerateStream(ctx context.Context, _ string, onDelta func(string)) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	var full string
	for _, d := range g.deltas {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		full += d
		if onDelta != nil {
			onDelta(d)
		}
	}
	return full, nil
}

func testService(store *fakeStore, gen Generator) *Service {
	return NewService(store, gen, config.AIConfig{AutoGenerate: true}, zap.NewNop())
}

func openQuestion(id string) *models.QuestionModel {
	q := &models.QuestionModel{
		Title:  "How do I center a div?",
		Text:   "It refuses to center.",
		Tags:   models.StringArray{"css"},
		Status: models.QuestionOpen,
	}
	q.ID = id
	return q
}

func TestGenerateAnswerAppendsPending(t *testing.T) {
	store := newFakeStore(openQuestion("q1"))
	gen := &fakeGenerator{text: "Use flexbox."}
	svc := testService(store, gen)

	q, confidence, err := svc.GenerateAnswer(context.Background(), "q1")
	require.NoError(t, err)

	assert.Equal(t, 1, store.appendCount())
	require.Len(t, q.Answers, 1)
	a := q.Answers[0]
	assert.True(t, a.IsAIGenerated)
	assert.Equal(t, models.AIValidationPending, a.AIValidationStatus)
	assert.Equal(t, models.ContentHTML, a.ContentKind)
	assert.Equal(t, "Use flexbox.", a.RawMarkdown)
	assert.Equal(t, testAIUserID, a.AuthorID)
	assert.True(t, q.HasAIResponse)
	assert.Equal(t, EstimateConfidence("Use flexbox.", []string{"css"}), confidence)
}

func TestGenerateAnswerQuestionNotFound(t *testing.T) {
	svc := testService(newFakeStore(), &fakeGenerator{text: "x"})

	_, _, err := svc.GenerateAnswer(context.Background(), "missing")
	assert.ErrorIs(t, err, question.ErrQuestionNotFound)
}

func TestGenerateAnswerPendingAlreadyExists(t *testing.T) {
	q := openQuestion("q1")
	q.Answers = []models.AnswerModel{{
		IsAIGenerated:      true,
		AIValidationStatus: models.AIValidationPending,
	}}
	store := newFakeStore(q)
	gen := &fakeGenerator{text: "x"}
	svc := testService(store, gen)

	_, _, err := svc.GenerateAnswer(context.Background(), "q1")
	assert.ErrorIs(t, err, question.ErrPendingAIExists)
	assert.Zero(t, gen.calls, "must not burn a provider call")
	assert.Zero(t, store.appendCount())
}

func TestGenerateAnswerUpstreamFailureLeavesQuestionUnchanged(t *testing.T) {
	store := newFakeStore(openQuestion("q1"))
	svc := testService(store, &fakeGenerator{err: errors.New("provider down")})

	_, _, err := svc.GenerateAnswer(context.Background(), "q1")
	assert.Error(t, err)
	assert.Zero(t, store.appendCount())

	q, _ := store.FindQuestion("q1")
	assert.Empty(t, q.Answers)
	assert.False(t, q.HasAIResponse)
}

func TestAutoGenerateAppendsForUnansweredQuestion(t *testing.T) {
	store := newFakeStore(openQuestion("q1"))
	svc := testService(store, &fakeGenerator{text: "An answer."})

	svc.AutoGenerate("q1")

	assert.Equal(t, 1, store.appendCount())
	q, _ := store.FindQuestion("q1")
	require.Len(t, q.Answers, 1)
	assert.Equal(t, models.AIValidationPending, q.Answers[0].AIValidationStatus)
}

func TestAutoGenerateSkipsAnsweredQuestion(t *testing.T) {
	q := openQuestion("q1")
	q.Answers = []models.AnswerModel{{Text: "human answer"}}
	store := newFakeStore(q)
	gen := &fakeGenerator{text: "x"}
	svc := testService(store, gen)

	svc.AutoGenerate("q1")

	assert.Zero(t, gen.calls)
	assert.Zero(t, store.appendCount())
}

func TestAutoGenerateDisabledByConfig(t *testing.T) {
	store := newFakeStore(openQuestion("q1"))
	gen := &fakeGenerator{text: "x"}
	svc := NewService(store, gen, config.AIConfig{AutoGenerate: false}, zap.NewNop())

	svc.AutoGenerate("q1")

	assert.Zero(t, gen.calls)
}

func TestAutoGenerateSwallowsFailures(t *testing.T) {
	store := newFakeStore(openQuestion("q1"))
	svc := testService(store, &fakeGenerator{err: errors.New("boom")})

	svc.AutoGenerate("q1")

	assert.Zero(t, store.appendCount())
}
