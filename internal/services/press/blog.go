// Package press publishes written episode material: the blog companion post,
// the newsletter campaign, and community announcements.
package press

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

// BlogPost is the material published as the episode companion post.
type BlogPost struct {
	Title        string
	HTML         string
	Excerpt      string
	FeatureImage string
	Tags         []string
	PublishAt    time.Time
}

// BlogClient publishes companion posts to the blog platform.
type BlogClient struct {
	apiKey     string
	baseURL    string
	tags       []string
	httpClient *http.Client
}

// NewBlogClient constructs a blog publisher from configuration.
func NewBlogClient(cfg config.Blog) *BlogClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &BlogClient{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		tags:       cfg.Tags,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the API base (used in tests).
func (b *BlogClient) WithBaseURL(base string) *BlogClient {
	base = strings.TrimSpace(base)
	if base != "" {
		b.baseURL = strings.TrimRight(base, "/")
	}
	return b
}

// WithHTTPClient overrides the HTTP client (used in tests).
func (b *BlogClient) WithHTTPClient(client *http.Client) *BlogClient {
	if client != nil {
		b.httpClient = client
	}
	return b
}

type blogPostPayload struct {
	Title         string   `json:"title"`
	HTML          string   `json:"html"`
	CustomExcerpt string   `json:"custom_excerpt,omitempty"`
	FeatureImage  string   `json:"feature_image,omitempty"`
	Tags          []string `json:"tags,omitempty"`
	Status        string   `json:"status"`
	PublishedAt   string   `json:"published_at,omitempty"`
}

type blogPostEnvelope struct {
	Posts []blogPostPayload `json:"posts"`
}

type blogPostResult struct {
	Posts []struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	} `json:"posts"`
}

// Publish creates a scheduled companion post and returns its public URL.
func (b *BlogClient) Publish(ctx context.Context, post BlogPost) (string, error) {
	if b.apiKey == "" {
		return "", errors.New("blog: api key required")
	}
	if strings.TrimSpace(post.Title) == "" {
		return "", errors.New("blog: post title required")
	}
	if strings.TrimSpace(post.HTML) == "" {
		return "", errors.New("blog: post body required")
	}

	tags := post.Tags
	if len(tags) == 0 {
		tags = b.tags
	}
	payload := blogPostEnvelope{Posts: []blogPostPayload{{
		Title:         post.Title,
		HTML:          post.HTML,
		CustomExcerpt: post.Excerpt,
		FeatureImage:  post.FeatureImage,
		Tags:          tags,
		Status:        "scheduled",
		PublishedAt:   post.PublishAt.UTC().Format(time.RFC3339),
	}}}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("blog: encode post: %w", err)
	}

	endpoint, err := url.JoinPath(b.baseURL, "/posts/")
	if err != nil {
		return "", fmt.Errorf("blog: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("blog: request: %w", err)
	}
	req.Header.Set("Authorization", "Ghost "+b.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("blog: publish failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("blog: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("blog: publish http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var result blogPostResult
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("blog: decode response: %w", err)
	}
	if len(result.Posts) == 0 || strings.TrimSpace(result.Posts[0].URL) == "" {
		return "", errors.New("blog: response missing post url")
	}
	return result.Posts[0].URL, nil
}
