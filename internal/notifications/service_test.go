package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"showrunner/internal/config"
	"showrunner/internal/logging"
	"showrunner/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.Publish(context.Background(), notifications.SeverityCritical, "t", "m"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsRequests(t *testing.T) {
	tests := []struct {
		name           string
		severity       notifications.Severity
		title          string
		message        string
		expectPriority string
		expectTags     string
	}{
		{
			name:       "info",
			severity:   notifications.SeverityInfo,
			title:      "Showrunner - Episode 7 Complete",
			message:    "Episode 7 published",
			expectTags: "showrunner",
		},
		{
			name:           "warning",
			severity:       notifications.SeverityWarning,
			title:          "Showrunner - Warning",
			message:        "archive failed",
			expectPriority: "high",
			expectTags:     "showrunner,warning",
		},
		{
			name:           "critical",
			severity:       notifications.SeverityCritical,
			title:          "Showrunner - Critical",
			message:        "script generation failed",
			expectPriority: "urgent",
			expectTags:     "showrunner,error,alert",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var gotTitle, gotTags, gotPriority, gotBody string
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotTitle = r.Header.Get("Title")
				gotTags = r.Header.Get("Tags")
				gotPriority = r.Header.Get("Priority")
				body, _ := io.ReadAll(r.Body)
				gotBody = string(body)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			svc := notifications.NewService(&cfg)

			if err := svc.Publish(context.Background(), tc.severity, tc.title, tc.message); err != nil {
				t.Fatalf("publish: %v", err)
			}
			if gotTitle != tc.title {
				t.Errorf("title = %q, want %q", gotTitle, tc.title)
			}
			if gotTags != tc.expectTags {
				t.Errorf("tags = %q, want %q", gotTags, tc.expectTags)
			}
			if gotPriority != tc.expectPriority {
				t.Errorf("priority = %q, want %q", gotPriority, tc.expectPriority)
			}
			if gotBody != tc.message {
				t.Errorf("body = %q, want %q", gotBody, tc.message)
			}
		})
	}
}

func TestNtfyServiceSurfacesHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "topic blocked", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	svc := notifications.NewService(&cfg)

	err := svc.Publish(context.Background(), notifications.SeverityInfo, "t", "m")
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

type failingService struct{}

func (failingService) Publish(context.Context, notifications.Severity, string, string) error {
	return errors.New("delivery refused")
}

func (failingService) Test(context.Context) error { return errors.New("delivery refused") }

func TestAlertAbsorbsDeliveryFailure(t *testing.T) {
	// Must not panic or propagate.
	notifications.Alert(context.Background(), logging.NewNop(), failingService{}, notifications.SeverityWarning, "t", "m")
	notifications.Alert(context.Background(), nil, failingService{}, notifications.SeverityWarning, "t", "m")
	notifications.Alert(context.Background(), logging.NewNop(), nil, notifications.SeverityWarning, "t", "m")
}
