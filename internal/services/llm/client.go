// Package llm wraps the chat-completion API used for research, theme
// development, and script/newsletter writing.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"showrunner/internal/config"
	"showrunner/internal/episode"
)

const defaultHTTPTimeout = 120 * time.Second

// Client wraps an OpenAI-compatible chat completion API.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the default API base (useful for tests/mocks).
func WithBaseURL(base string) Option {
	return func(c *Client) {
		base = strings.TrimSpace(base)
		if base != "" {
			c.baseURL = strings.TrimRight(base, "/")
		}
	}
}

// NewClient constructs a chat-completion client from configuration.
func NewClient(cfg config.LLM, opts ...Option) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	client := &Client{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:      strings.TrimSpace(cfg.Model),
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Research produces the editorial content bundle for one episode, steering
// away from previously covered topics.
func (c *Client) Research(ctx context.Context, number int, pastTopics []string) (episode.ContentBundle, error) {
	var bundle episode.ContentBundle
	content, err := c.complete(ctx, researchPrompt, researchUserPrompt(number, pastTopics), true)
	if err != nil {
		return bundle, err
	}
	if err := json.Unmarshal([]byte(content), &bundle); err != nil {
		return bundle, fmt.Errorf("llm research: parse payload: %w", err)
	}
	if bundle.Empty() {
		return bundle, errors.New("llm research: all content sections empty")
	}
	return bundle, nil
}

// DevelopTheme synthesizes a narrative brief connecting the gathered inputs.
func (c *Client) DevelopTheme(ctx context.Context, news []episode.NewsItem, content episode.ContentBundle, insights string) (episode.NarrativeBrief, error) {
	var brief episode.NarrativeBrief
	payload, err := c.complete(ctx, themePrompt, themeUserPrompt(news, content, insights), true)
	if err != nil {
		return brief, err
	}
	if err := json.Unmarshal([]byte(payload), &brief); err != nil {
		return brief, fmt.Errorf("llm theme: parse payload: %w", err)
	}
	brief.Theme = strings.TrimSpace(brief.Theme)
	if brief.Theme == "" {
		return brief, errors.New("llm theme: empty theme")
	}
	return brief, nil
}

// GenerateScript writes the episode script text.
func (c *Client) GenerateScript(ctx context.Context, content episode.ContentBundle, number int, brief episode.NarrativeBrief) (string, error) {
	script, err := c.complete(ctx, scriptPrompt, scriptUserPrompt(content, number, brief), false)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(script) == "" {
		return "", errors.New("llm script: empty script")
	}
	return script, nil
}

// GenerateNewsletter writes the newsletter HTML body.
func (c *Client) GenerateNewsletter(ctx context.Context, content episode.ContentBundle, number int, brief episode.NarrativeBrief) (string, error) {
	html, err := c.complete(ctx, newsletterPrompt, newsletterUserPrompt(content, number, brief), false)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(html) == "" {
		return "", errors.New("llm newsletter: empty body")
	}
	return html, nil
}

func (c *Client) complete(ctx context.Context, system, user string, jsonResponse bool) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("llm: api key required")
	}
	request := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: 0.7,
	}
	if jsonResponse {
		request.Temperature = 0.2
		request.ResponseFormat = map[string]string{"type": "json_object"}
	}

	endpoint, err := url.JoinPath(c.baseURL, "/chat/completions")
	if err != nil {
		return "", fmt.Errorf("llm: build url: %w", err)
	}
	encoded, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("llm: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("llm: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("llm: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return "", fmt.Errorf("llm: decode response: %w", err)
	}
	if completion.Error != nil {
		return "", fmt.Errorf("llm: api error: %s", strings.TrimSpace(completion.Error.Message))
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("llm: empty choices")
	}
	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("llm: empty content")
	}
	return content, nil
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}
