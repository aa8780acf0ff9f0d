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

// SocialClient posts episode announcements to the community platform. A
// disabled configuration yields a client whose Post is a no-op.
type SocialClient struct {
	enabled    bool
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewSocialClient constructs a community announcement client.
func NewSocialClient(cfg config.Social) *SocialClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SocialClient{
		enabled:    cfg.Enabled,
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the API base (used in tests).
func (s *SocialClient) WithBaseURL(base string) *SocialClient {
	base = strings.TrimSpace(base)
	if base != "" {
		s.baseURL = strings.TrimRight(base, "/")
	}
	return s
}

// WithHTTPClient overrides the HTTP client (used in tests).
func (s *SocialClient) WithHTTPClient(client *http.Client) *SocialClient {
	if client != nil {
		s.httpClient = client
	}
	return s
}

// Enabled reports whether announcements are configured.
func (s *SocialClient) Enabled() bool {
	return s.enabled
}

// Post publishes an announcement message. Posting is skipped silently when
// the client is disabled.
func (s *SocialClient) Post(ctx context.Context, message string) error {
	if !s.enabled {
		return nil
	}
	if s.apiKey == "" {
		return errors.New("social: api key required")
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return errors.New("social: message required")
	}

	encoded, err := json.Marshal(map[string]string{"text": message})
	if err != nil {
		return fmt.Errorf("social: encode post: %w", err)
	}
	endpoint, err := url.JoinPath(s.baseURL, "/statuses")
	if err != nil {
		return fmt.Errorf("social: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("social: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("social: post failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("social: post http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
