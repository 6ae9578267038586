// Package reconcile is the consumer side of the answer pipeline: it polls
// question snapshots and subscribes to the generation stream, merging both
// into one client-visible view. The latest full snapshot is authoritative;
// partial stream buffers are discarded once a newer snapshot lands.
package reconcile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/qa-overflow/core-go/internal/models"
)

// RequestState tracks one in-flight AI action per question view. Exactly one
// action may be in flight at a time.
type RequestState int

const (
	StateIdle RequestState = iota
	StateGenerating
	StateDone
	StateFailed
)

func (s RequestState) String() string {
	switch s {
	case StateGenerating:
		return "generating"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "idle"
	}
}

// ErrAnotherInFlight is returned when an AI action is started while one is
// already running for the same view.
var ErrAnotherInFlight = errors.New("an AI request is already in flight for this question")

// ErrNoSnapshot is returned by Poll when the bounded attempts run out
// before the expected state is observed.
var ErrNoSnapshot = errors.New("question snapshot not observed within the attempt budget")

// Client talks to the question API. Credentials are resolved per request
// from an explicit session value with an explicit persisted fallback.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	sessionToken   string
	persistedToken string
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithCredentials supplies the current-session token and the persisted
// fallback used when the session has none.
func WithCredentials(session, persisted string) Option {
	return func(c *Client) {
		c.sessionToken = session
		c.persistedToken = persisted
	}
}

func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	if token := ResolveToken(c.sessionToken, c.persistedToken); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

// FetchQuestion reads one full question snapshot.
func (c *Client) FetchQuestion(ctx context.Context, questionID string) (*models.QuestionModel, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/question/"+questionID)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("question %s not found", questionID)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch question: unexpected status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var q models.QuestionModel
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		return nil, err
	}
	return &q, nil
}

// PollOptions bounds snapshot polling.
type PollOptions struct {
	Attempts int
	Interval time.Duration
	// Until decides when polling may stop. Nil means stop on the first
	// snapshot that carries an AI response.
	Until func(*models.QuestionModel) bool
}

func (o PollOptions) withDefaults() PollOptions {
	if o.Attempts <= 0 {
		o.Attempts = 10
	}
	if o.Interval <= 0 {
		o.Interval = 2 * time.Second
	}
	if o.Until == nil {
		o.Until = func(q *models.QuestionModel) bool { return q.HasAIResponse }
	}
	return o
}

// Poll fetches snapshots on a fixed interval with a bounded attempt count,
// applying each to the view. Returns the first snapshot satisfying Until,
// or ErrNoSnapshot when the budget runs out.
func (c *Client) Poll(ctx context.Context, view *View, questionID string, opts PollOptions) (*models.QuestionModel, error) {
	opts = opts.withDefaults()

	ticker := time.NewTicker(opts.Interval)
	defer ticker.Stop()

	for attempt := 0; attempt < opts.Attempts; attempt++ {
		q, err := c.FetchQuestion(ctx, questionID)
		if err == nil {
			view.ApplySnapshot(q)
			if opts.Until(q) {
				return q, nil
			}
		} else if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// No point waiting out the interval once the budget is spent.
		if attempt == opts.Attempts-1 {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
	return nil, ErrNoSnapshot
}
