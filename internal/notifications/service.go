package notifications

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"showrunner/internal/config"
	"showrunner/internal/logging"
)

const userAgent = "Showrunner/0.1.0"

// Severity grades an operator alert.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Service defines the alerting surface exposed to workflow components.
type Service interface {
	Publish(ctx context.Context, severity Severity, title, message string) error
	Test(ctx context.Context) error
}

// NewService builds an alert service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) Publish(ctx context.Context, severity Severity, title, message string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Showrunner"
	}
	message = strings.TrimSpace(message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	req.Header.Set("Title", title)
	req.Header.Set("Tags", tagsFor(severity))
	if priority := priorityFor(severity); priority != "" {
		req.Header.Set("Priority", priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (n *ntfyService) Test(ctx context.Context) error {
	return n.Publish(ctx, SeverityInfo, "Showrunner - Test", "Notification system test")
}

func tagsFor(severity Severity) string {
	switch severity {
	case SeverityCritical:
		return "showrunner,error,alert"
	case SeverityWarning:
		return "showrunner,warning"
	default:
		return "showrunner"
	}
}

func priorityFor(severity Severity) string {
	switch severity {
	case SeverityCritical:
		return "urgent"
	case SeverityWarning:
		return "high"
	default:
		return ""
	}
}

type noopService struct{}

func (noopService) Publish(context.Context, Severity, string, string) error { return nil }

func (noopService) Test(context.Context) error { return nil }

// Alert publishes through svc and absorbs delivery failures, logging them at
// debug level. Pipeline progress must never depend on alert delivery.
func Alert(ctx context.Context, logger *slog.Logger, svc Service, severity Severity, title, message string) {
	if svc == nil {
		return
	}
	if err := svc.Publish(ctx, severity, title, message); err != nil {
		if logger == nil {
			return
		}
		logger.Debug("alert delivery failed",
			logging.Error(err),
			logging.String("severity", string(severity)),
			logging.String("title", title),
		)
	}
}
