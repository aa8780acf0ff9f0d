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

// Campaign is the newsletter material scheduled for an episode.
type Campaign struct {
	Subject     string
	PreviewText string
	HTML        string
	SendAt      time.Time
}

// NewsletterClient creates and schedules newsletter campaigns.
type NewsletterClient struct {
	apiKey     string
	baseURL    string
	listID     string
	fromName   string
	replyTo    string
	sendHour   int
	httpClient *http.Client
}

// NewNewsletterClient constructs a newsletter client from configuration.
func NewNewsletterClient(cfg config.Newsletter) *NewsletterClient {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &NewsletterClient{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		listID:     strings.TrimSpace(cfg.ListID),
		fromName:   strings.TrimSpace(cfg.FromName),
		replyTo:    strings.TrimSpace(cfg.ReplyTo),
		sendHour:   cfg.SendHour,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the API base (used in tests).
func (n *NewsletterClient) WithBaseURL(base string) *NewsletterClient {
	base = strings.TrimSpace(base)
	if base != "" {
		n.baseURL = strings.TrimRight(base, "/")
	}
	return n
}

// WithHTTPClient overrides the HTTP client (used in tests).
func (n *NewsletterClient) WithHTTPClient(client *http.Client) *NewsletterClient {
	if client != nil {
		n.httpClient = client
	}
	return n
}

// SendTime returns the campaign delivery time: the publish date at the
// configured send hour, in the publish date's location.
func (n *NewsletterClient) SendTime(publishDate time.Time) time.Time {
	return time.Date(publishDate.Year(), publishDate.Month(), publishDate.Day(),
		n.sendHour, 0, 0, 0, publishDate.Location())
}

type campaignSettings struct {
	SubjectLine string `json:"subject_line"`
	PreviewText string `json:"preview_text,omitempty"`
	FromName    string `json:"from_name"`
	ReplyTo     string `json:"reply_to"`
}

type createCampaignRequest struct {
	Type       string           `json:"type"`
	Recipients map[string]any   `json:"recipients"`
	Settings   campaignSettings `json:"settings"`
}

type createCampaignResponse struct {
	ID string `json:"id"`
}

// Schedule creates a campaign, fills its content, and schedules delivery.
// It returns the platform campaign identifier.
func (n *NewsletterClient) Schedule(ctx context.Context, campaign Campaign) (string, error) {
	if n.apiKey == "" {
		return "", errors.New("newsletter: api key required")
	}
	if strings.TrimSpace(campaign.Subject) == "" {
		return "", errors.New("newsletter: subject required")
	}
	if strings.TrimSpace(campaign.HTML) == "" {
		return "", errors.New("newsletter: campaign body required")
	}

	campaignID, err := n.createCampaign(ctx, campaign)
	if err != nil {
		return "", err
	}
	if err := n.setContent(ctx, campaignID, campaign.HTML); err != nil {
		return "", err
	}
	if err := n.scheduleDelivery(ctx, campaignID, campaign.SendAt); err != nil {
		return "", err
	}
	return campaignID, nil
}

func (n *NewsletterClient) createCampaign(ctx context.Context, campaign Campaign) (string, error) {
	request := createCampaignRequest{
		Type:       "regular",
		Recipients: map[string]any{"list_id": n.listID},
		Settings: campaignSettings{
			SubjectLine: campaign.Subject,
			PreviewText: campaign.PreviewText,
			FromName:    n.fromName,
			ReplyTo:     n.replyTo,
		},
	}
	body, err := n.post(ctx, "/campaigns", request)
	if err != nil {
		return "", err
	}
	var created createCampaignResponse
	if err := json.Unmarshal(body, &created); err != nil {
		return "", fmt.Errorf("newsletter: decode campaign: %w", err)
	}
	if strings.TrimSpace(created.ID) == "" {
		return "", errors.New("newsletter: response missing campaign id")
	}
	return created.ID, nil
}

func (n *NewsletterClient) setContent(ctx context.Context, campaignID, html string) error {
	endpoint, err := url.JoinPath(n.baseURL, "/campaigns/", campaignID, "/content")
	if err != nil {
		return fmt.Errorf("newsletter: build url: %w", err)
	}
	encoded, err := json.Marshal(map[string]string{"html": html})
	if err != nil {
		return fmt.Errorf("newsletter: encode content: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("newsletter: request: %w", err)
	}
	n.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("newsletter: set content failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("newsletter: set content http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (n *NewsletterClient) scheduleDelivery(ctx context.Context, campaignID string, sendAt time.Time) error {
	path := "/campaigns/" + campaignID + "/actions/schedule"
	_, err := n.post(ctx, path, map[string]string{
		"schedule_time": sendAt.UTC().Format(time.RFC3339),
	})
	return err
}

func (n *NewsletterClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	endpoint, err := url.JoinPath(n.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("newsletter: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("newsletter: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("newsletter: request: %w", err)
	}
	n.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("newsletter: request failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("newsletter: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return nil, fmt.Errorf("newsletter: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func (n *NewsletterClient) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+n.apiKey)
}
