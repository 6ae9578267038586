package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	neturl "net/url"
	"strings"

	anthropicclient "github.com/anthropics/anthropic-sdk-go"
	anthropicoption "github.com/anthropics/anthropic-sdk-go/option"
	openaiclient "github.com/openai/openai-go/v2"
	openaioption "github.com/openai/openai-go/v2/option"
	jetai "go.jetify.com/ai"
	jetapi "go.jetify.com/ai/api"
	jetanthropic "go.jetify.com/ai/provider/anthropic"
	jetopenai "go.jetify.com/ai/provider/openai"

	"github.com/qa-overflow/core-go/internal/config"
)

// ErrUpstreamGeneration wraps any provider-side failure so callers can map
// every upstream problem to one outcome.
var ErrUpstreamGeneration = errors.New("AI generation failed")

// ErrNoProvider means no enabled provider matched the configuration.
var ErrNoProvider = errors.New("no enabled AI provider configured")

const defaultFallbackModel = "gpt-4o-mini"

// ProviderClient is the production Generator. It resolves the configured
// provider per call, so config reloads take effect without rebuilding it.
type ProviderClient struct {
	cfg config.AIConfig
}

func NewProviderClient(cfg config.AIConfig) *ProviderClient {
	return &ProviderClient{cfg: cfg}
}

// Generate runs a one-shot completion and scores the result.
func (p *ProviderClient) Generate(ctx context.Context, prompt string, tags []string) (*GenerateResult, error) {
	provider := selectAIProvider(p.cfg, p.cfg.AnswerModel)
	if provider == nil {
		return nil, ErrNoProvider
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout())
	defer cancel()

	text, err := p.callProvider(ctx, provider, prompt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamGeneration, err)
	}

	return &GenerateResult{
		Text:       text,
		Confidence: EstimateConfidence(text, tags),
	}, nil
}

// GenerateStream runs a streaming completion, invoking onDelta for each
// chunk in generation order, and returns the concatenated full text.
// Providers without a streaming path fall back to one-shot and emit the
// whole text as a single delta.
func (p *ProviderClient) GenerateStream(ctx context.Context, prompt string, onDelta func(string)) (string, error) {
	provider := selectAIProvider(p.cfg, p.cfg.AnswerModel)
	if provider == nil {
		return "", ErrNoProvider
	}

	ctx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout())
	defer cancel()

	if isOpenAICompatibleProviderType(provider.Type) {
		text, err := p.callOpenAICompatibleStream(ctx, provider, prompt, onDelta)
		if err != nil {
			return "", wrapUpstream(ctx, err)
		}
		return text, nil
	}

	model, streamEnabled, err := buildLanguageModel(provider)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstreamGeneration, err)
	}

	if !streamEnabled {
		text, err := p.callProvider(ctx, provider, prompt)
		if err != nil {
			return "", wrapUpstream(ctx, err)
		}
		if onDelta != nil && text != "" {
			onDelta(text)
		}
		return text, nil
	}

	streamResp, err := jetai.StreamText(
		ctx,
		buildPromptMessages(prompt),
		jetai.WithModel(model),
		jetai.WithMaxOutputTokens(p.maxTokens()),
	)
	if err != nil {
		return "", wrapUpstream(ctx, err)
	}

	var full strings.Builder
	for event := range streamResp.Stream {
		switch evt := event.(type) {
		case *jetapi.TextDeltaEvent:
			if evt.TextDelta == "" {
				continue
			}
			full.WriteString(evt.TextDelta)
			if onDelta != nil {
				onDelta(evt.TextDelta)
			}
		case *jetapi.ErrorEvent:
			if evt.Err == nil {
				return "", fmt.Errorf("%w: stream returned an unknown error", ErrUpstreamGeneration)
			}
			return "", wrapUpstream(ctx, fmt.Errorf("%v", evt.Err))
		}
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty response", ErrUpstreamGeneration)
	}
	return text, nil
}

func (p *ProviderClient) callProvider(ctx context.Context, provider *config.AIProvider, prompt string) (string, error) {
	if isOpenAICompatibleProviderType(provider.Type) {
		return p.callOpenAICompatible(ctx, provider, prompt)
	}

	model, _, err := buildLanguageModel(provider)
	if err != nil {
		return "", err
	}
	resp, err := jetai.GenerateText(
		ctx,
		buildPromptMessages(prompt),
		jetai.WithModel(model),
		jetai.WithMaxOutputTokens(p.maxTokens()),
	)
	if err != nil {
		return "", err
	}
	return extractTextFromResponse(resp)
}

func (p *ProviderClient) maxTokens() int {
	if p.cfg.MaxOutputTokens > 0 {
		return p.cfg.MaxOutputTokens
	}
	return 2048
}

// wrapUpstream keeps cancellation distinguishable from provider failure.
func wrapUpstream(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("%w: %v", ErrUpstreamGeneration, err)
}

func (p *ProviderClient) callOpenAICompatible(ctx context.Context, provider *config.AIProvider, prompt string) (string, error) {
	req, err := p.newChatCompletionsRequest(ctx, provider, prompt, false)
	if err != nil {
		return "", err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return "", fmt.Errorf("openai-compatible error: %s", strings.TrimSpace(string(respBody)))
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", err
	}
	if result.Error != nil && strings.TrimSpace(result.Error.Message) != "" {
		return "", fmt.Errorf("openai-compatible error: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", errors.New("empty response from provider")
	}
	return result.Choices[0].Message.Content, nil
}

func (p *ProviderClient) callOpenAICompatibleStream(ctx context.Context, provider *config.AIProvider, prompt string, onDelta func(string)) (string, error) {
	req, err := p.newChatCompletionsRequest(ctx, provider, prompt, true)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("openai-compatible stream error: %s", strings.TrimSpace(string(respBody)))
	}

	var full strings.Builder
	buf := make([]byte, 4096)
	remainder := ""
	done := false

	for !done {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			chunk := remainder + string(buf[:n])
			remainder = ""
			lines := splitLines(chunk)
			for i, line := range lines {
				if i == len(lines)-1 && readErr == nil {
					remainder = line
					continue
				}
				line = strings.TrimSpace(line)
				if !strings.HasPrefix(line, "data:") {
					continue
				}
				data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
				if data == "" {
					continue
				}
				if data == "[DONE]" {
					done = true
					break
				}

				var event struct {
					Choices []struct {
						Delta struct {
							Content string `json:"content"`
						} `json:"delta"`
					} `json:"choices"`
				}
				if err2 := json.Unmarshal([]byte(data), &event); err2 != nil {
					continue
				}
				if len(event.Choices) == 0 || event.Choices[0].Delta.Content == "" {
					continue
				}

				delta := event.Choices[0].Delta.Content
				full.WriteString(delta)
				if onDelta != nil {
					onDelta(delta)
				}
			}
		}

		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", readErr
		}
	}

	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from provider")
	}
	return text, nil
}

func (p *ProviderClient) newChatCompletionsRequest(ctx context.Context, provider *config.AIProvider, prompt string, stream bool) (*http.Request, error) {
	if strings.TrimSpace(provider.APIKey) == "" {
		return nil, errors.New("AI provider api key is empty")
	}

	endpoint := normalizeOpenAICompatibleEndpoint(provider.Endpoint)
	model := strings.TrimSpace(provider.DefaultModel)
	if model == "" {
		model = defaultFallbackModel
	}

	payload := map[string]interface{}{
		"model": model,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
		"max_tokens": p.maxTokens(),
	}
	if stream {
		payload["stream"] = true
	}
	body, _ := json.Marshal(payload)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(provider.APIKey))
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	lines = append(lines, s[start:])
	return lines
}

func buildPromptMessages(prompt string) []jetapi.Message {
	return []jetapi.Message{
		&jetapi.UserMessage{Content: jetapi.ContentFromText(prompt)},
	}
}

func extractTextFromResponse(resp *jetapi.Response) (string, error) {
	if resp == nil {
		return "", errors.New("empty response from provider")
	}

	var full strings.Builder
	for _, block := range resp.Content {
		textBlock, ok := block.(*jetapi.TextBlock)
		if !ok || textBlock.Text == "" {
			continue
		}
		full.WriteString(textBlock.Text)
	}

	text := full.String()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from provider")
	}
	return text, nil
}

// buildLanguageModel wires the jetify abstraction over the provider config.
// Anthropic deliberately reports streaming disabled; its one-shot path is
// used and the caller emits the result as a single delta.
func buildLanguageModel(provider *config.AIProvider) (jetapi.LanguageModel, bool, error) {
	if provider == nil {
		return nil, false, errors.New("AI provider is nil")
	}

	apiKey := strings.TrimSpace(provider.APIKey)
	if apiKey == "" {
		return nil, false, errors.New("AI provider api key is empty")
	}

	modelID := strings.TrimSpace(provider.DefaultModel)
	endpoint := strings.TrimSpace(provider.Endpoint)

	if isAnthropicProviderType(provider.Type) {
		if modelID == "" {
			modelID = "claude-haiku-4-5-20251001"
		}

		opts := []anthropicoption.RequestOption{
			anthropicoption.WithAPIKey(apiKey),
			anthropicoption.WithMaxRetries(0),
		}
		if endpoint != "" {
			opts = append(opts, anthropicoption.WithBaseURL(strings.TrimRight(endpoint, "/")))
		}

		client := anthropicclient.NewClient(opts...)
		model := jetanthropic.NewLanguageModel(modelID, jetanthropic.WithClient(client))
		return model, false, nil
	}

	if modelID == "" {
		modelID = defaultFallbackModel
	}

	opts := []openaioption.RequestOption{
		openaioption.WithAPIKey(apiKey),
		openaioption.WithMaxRetries(0),
	}
	if normalized := normalizeOpenAIBaseURL(endpoint); normalized != "" {
		opts = append(opts, openaioption.WithBaseURL(normalized))
	}

	client := openaiclient.NewClient(opts...)
	model := jetopenai.NewLanguageModel(modelID, jetopenai.WithClient(client))
	return model, true, nil
}

func isOpenAICompatibleProviderType(raw string) bool {
	t := normalizeProviderType(raw)
	return t == "openai-compatible" || t == "openaicompatible"
}

func isAnthropicProviderType(raw string) bool {
	return normalizeProviderType(raw) == "anthropic"
}

func normalizeProviderType(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	t = strings.ReplaceAll(t, "_", "-")
	t = strings.ReplaceAll(t, " ", "")
	return t
}

func normalizeOpenAIBaseURL(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return ""
	}
	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return strings.TrimRight(base, "/")
	}

	path := strings.TrimRight(parsed.Path, "/")
	if !strings.HasSuffix(path, "/v1") {
		if path == "" {
			path = "/v1"
		} else {
			path += "/v1"
		}
	}
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

func normalizeOpenAICompatibleEndpoint(raw string) string {
	base := strings.TrimSpace(raw)
	if base == "" {
		return "https://api.openai.com"
	}

	parsed, err := neturl.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		cleaned := strings.TrimRight(base, "/")
		cleaned = strings.TrimSuffix(cleaned, "/v1")
		return cleaned
	}

	path := strings.TrimRight(parsed.Path, "/")
	path = strings.TrimSuffix(path, "/v1")
	parsed.Path = path
	return strings.TrimRight(parsed.String(), "/")
}

func selectAIProvider(cfg config.AIConfig, assignment *config.AIModelAssignment) *config.AIProvider {
	var providerID string
	var overrideModel string
	if assignment != nil {
		providerID = strings.TrimSpace(assignment.ProviderID)
		overrideModel = strings.TrimSpace(assignment.Model)
	}

	pick := func(provider config.AIProvider) *config.AIProvider {
		selected := provider
		if overrideModel != "" {
			selected.DefaultModel = overrideModel
		}
		return &selected
	}

	if providerID != "" {
		for _, provider := range cfg.Providers {
			if !provider.Enabled {
				continue
			}
			if strings.TrimSpace(provider.ID) != providerID {
				continue
			}
			return pick(provider)
		}
	}

	for _, provider := range cfg.Providers {
		if !provider.Enabled {
			continue
		}
		return pick(provider)
	}

	return nil
}
