package reconcile

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// streamMessage is the union of every stream protocol message shape.
type streamMessage struct {
	Content      string `json:"content"`
	IsComplete   bool   `json:"isComplete"`
	FullResponse string `json:"fullResponse"`
	Error        string `json:"error"`
}

// ErrStreamFailed wraps a terminal error event from the server.
var ErrStreamFailed = errors.New("stream reported a generation failure")

// Stream subscribes to generation for a question, accumulating deltas into
// the view, and returns the terminal full text. The view transitions
// generating -> done on the terminal event, or -> failed on an error event
// or transport failure. Consumers must stop listening after either.
func (c *Client) Stream(ctx context.Context, view *View, questionID string) (string, error) {
	if err := view.Begin(); err != nil {
		return "", err
	}

	full, err := c.consumeStream(ctx, view, questionID)
	if err != nil {
		view.finish(StateFailed)
		return "", err
	}
	view.finish(StateDone)
	return full, nil
}

func (c *Client) consumeStream(ctx context.Context, view *View, questionID string) (string, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/questions/"+questionID+"/ai-stream")
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("stream subscribe: unexpected status %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		var msg streamMessage
		if err := json.Unmarshal([]byte(data), &msg); err != nil {
			continue
		}

		switch {
		case msg.Error != "":
			return "", fmt.Errorf("%w: %s", ErrStreamFailed, msg.Error)
		case msg.IsComplete:
			return msg.FullResponse, nil
		case msg.Content != "":
			view.AppendDelta(msg.Content)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", errors.New("stream closed without a terminal event")
}
