// Package imagery generates episode header artwork. When generation is
// disabled or fails to produce a usable URL, callers fall back to the
// configured stock image.
package imagery

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
)

// Client requests header image generation from an image API.
type Client struct {
	enabled     bool
	apiKey      string
	baseURL     string
	model       string
	fallbackURL string
	httpClient  *http.Client
}

// NewClient constructs an image client from configuration.
func NewClient(cfg config.Images) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		enabled:     cfg.Enabled,
		apiKey:      strings.TrimSpace(cfg.APIKey),
		baseURL:     strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		model:       strings.TrimSpace(cfg.Model),
		fallbackURL: strings.TrimSpace(cfg.FallbackURL),
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the API base (used in tests).
func (c *Client) WithBaseURL(base string) *Client {
	base = strings.TrimSpace(base)
	if base != "" {
		c.baseURL = strings.TrimRight(base, "/")
	}
	return c
}

// WithHTTPClient overrides the HTTP client (used in tests).
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	if client != nil {
		c.httpClient = client
	}
	return c
}

// FallbackURL returns the stock image used when generation is unavailable.
func (c *Client) FallbackURL() string {
	return c.fallbackURL
}

type generationRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	N      int    `json:"n"`
	Size   string `json:"size"`
}

type generationResponse struct {
	Data []struct {
		URL string `json:"url"`
	} `json:"data"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Generate produces a header image for theme and returns its URL. A disabled
// client returns the fallback URL without calling the API.
func (c *Client) Generate(ctx context.Context, theme string) (string, error) {
	if !c.enabled {
		return c.fallbackURL, nil
	}
	if c.apiKey == "" {
		return "", errors.New("images: api key required")
	}
	theme = strings.TrimSpace(theme)
	if theme == "" {
		return "", errors.New("images: theme required")
	}

	request := generationRequest{
		Model:  c.model,
		Prompt: headerPrompt(theme),
		N:      1,
		Size:   "1792x1024",
	}
	encoded, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("images: encode request: %w", err)
	}
	endpoint, err := url.JoinPath(c.baseURL, "/images/generations")
	if err != nil {
		return "", fmt.Errorf("images: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("images: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("images: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("images: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("images: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var generation generationResponse
	if err := json.Unmarshal(body, &generation); err != nil {
		return "", fmt.Errorf("images: decode response: %w", err)
	}
	if generation.Error != nil {
		return "", fmt.Errorf("images: api error: %s", generation.Error.Message)
	}
	if len(generation.Data) == 0 || strings.TrimSpace(generation.Data[0].URL) == "" {
		return "", errors.New("images: response missing image url")
	}
	return generation.Data[0].URL, nil
}

func headerPrompt(theme string) string {
	return "Minimal editorial podcast header illustration, flat design, muted palette, no text. Topic: " + theme
}
