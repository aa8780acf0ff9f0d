// Package studio renders episode audio from a script and uploads finished
// episodes to the podcast hosting platform.
package studio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"showrunner/internal/config"
)

// Synthesizer converts script text to narrated audio via a TTS API.
type Synthesizer struct {
	apiKey     string
	baseURL    string
	voiceID    string
	model      string
	httpClient *http.Client
}

// NewSynthesizer constructs a TTS client from configuration.
func NewSynthesizer(cfg config.TTS) *Synthesizer {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Synthesizer{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		voiceID:    strings.TrimSpace(cfg.VoiceID),
		model:      strings.TrimSpace(cfg.Model),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the API base (used in tests).
func (s *Synthesizer) WithBaseURL(base string) *Synthesizer {
	base = strings.TrimSpace(base)
	if base != "" {
		s.baseURL = strings.TrimRight(base, "/")
	}
	return s
}

// WithHTTPClient overrides the HTTP client (used in tests).
func (s *Synthesizer) WithHTTPClient(client *http.Client) *Synthesizer {
	if client != nil {
		s.httpClient = client
	}
	return s
}

type synthesisRequest struct {
	Text          string         `json:"text"`
	ModelID       string         `json:"model_id"`
	VoiceSettings map[string]any `json:"voice_settings"`
}

// Synthesize renders scriptText as narrated audio and writes it to outPath.
func (s *Synthesizer) Synthesize(ctx context.Context, scriptText, outPath string) error {
	if s.apiKey == "" {
		return errors.New("tts: api key required")
	}
	scriptText = strings.TrimSpace(scriptText)
	if scriptText == "" {
		return errors.New("tts: script text required")
	}

	request := synthesisRequest{
		Text:    scriptText,
		ModelID: s.model,
		VoiceSettings: map[string]any{
			"stability":         0.5,
			"similarity_boost":  0.75,
			"style":             0.0,
			"use_speaker_boost": true,
		},
	}
	encoded, err := json.Marshal(request)
	if err != nil {
		return fmt.Errorf("tts: encode request: %w", err)
	}

	endpoint, err := url.JoinPath(s.baseURL, "/text-to-speech/", s.voiceID)
	if err != nil {
		return fmt.Errorf("tts: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("tts: request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tts: request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("tts: http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("tts: create output directory: %w", err)
	}
	out, err := os.OpenFile(outPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("tts: create output file: %w", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("tts: write audio: %w", err)
	}
	return out.Close()
}

// Publisher uploads finished episodes to the hosting platform.
type Publisher struct {
	apiKey     string
	baseURL    string
	showID     string
	httpClient *http.Client
}

// NewPublisher constructs an episode publisher from configuration.
func NewPublisher(cfg config.Podcast) *Publisher {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Publisher{
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		showID:     strings.TrimSpace(cfg.ShowID),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithBaseURL overrides the API base (used in tests).
func (p *Publisher) WithBaseURL(base string) *Publisher {
	base = strings.TrimSpace(base)
	if base != "" {
		p.baseURL = strings.TrimRight(base, "/")
	}
	return p
}

// WithHTTPClient overrides the HTTP client (used in tests).
func (p *Publisher) WithHTTPClient(client *http.Client) *Publisher {
	if client != nil {
		p.httpClient = client
	}
	return p
}

type uploadURLResponse struct {
	URL string `json:"url"`
}

type createEpisodeRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ShowNotes   string `json:"show_notes"`
	PublishDate string `json:"publish_date"`
	AudioURL    string `json:"audio_url"`
	Explicit    bool   `json:"explicit"`
	Language    string `json:"language"`
	ShowID      string `json:"show_id,omitempty"`
}

type createEpisodeResponse struct {
	ID string `json:"id"`
}

// Upload pushes the audio file and creates the hosted episode, returning the
// platform episode identifier. showNotes carries the script text.
func (p *Publisher) Upload(ctx context.Context, audioPath, title, description, showNotes string, publishDate time.Time) (string, error) {
	if p.apiKey == "" {
		return "", errors.New("podcast: api key required")
	}
	audio, err := os.Open(audioPath)
	if err != nil {
		return "", fmt.Errorf("podcast: open audio: %w", err)
	}
	defer audio.Close()

	uploadURL, err := p.requestUploadURL(ctx)
	if err != nil {
		return "", err
	}
	if err := p.putAudio(ctx, uploadURL, audio); err != nil {
		return "", err
	}
	return p.createEpisode(ctx, createEpisodeRequest{
		Name:        title,
		Description: description,
		ShowNotes:   showNotes,
		PublishDate: publishDate.Format(time.RFC3339),
		AudioURL:    uploadURL,
		Language:    "en",
		ShowID:      p.showID,
	})
}

func (p *Publisher) requestUploadURL(ctx context.Context) (string, error) {
	endpoint, err := url.JoinPath(p.baseURL, "/episodes/upload_url")
	if err != nil {
		return "", fmt.Errorf("podcast: build url: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("podcast: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("podcast: upload url request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("podcast: upload url http %d", resp.StatusCode)
	}
	var payload uploadURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("podcast: decode upload url: %w", err)
	}
	if strings.TrimSpace(payload.URL) == "" {
		return "", errors.New("podcast: empty upload url")
	}
	return payload.URL, nil
}

func (p *Publisher) putAudio(ctx context.Context, uploadURL string, audio io.Reader) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, audio)
	if err != nil {
		return fmt.Errorf("podcast: upload request: %w", err)
	}
	req.Header.Set("Content-Type", "audio/mpeg")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("podcast: upload failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("podcast: upload http %d", resp.StatusCode)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (p *Publisher) createEpisode(ctx context.Context, request createEpisodeRequest) (string, error) {
	endpoint, err := url.JoinPath(p.baseURL, "/episodes")
	if err != nil {
		return "", fmt.Errorf("podcast: build url: %w", err)
	}
	encoded, err := json.Marshal(request)
	if err != nil {
		return "", fmt.Errorf("podcast: encode episode: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("podcast: request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("podcast: create episode failed: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("podcast: read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("podcast: create episode http %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	var payload createEpisodeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("podcast: decode episode: %w", err)
	}
	if strings.TrimSpace(payload.ID) == "" {
		return "", errors.New("podcast: response missing episode id")
	}
	return payload.ID, nil
}
