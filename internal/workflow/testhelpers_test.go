package workflow

import (
	"context"
	"sync"
	"testing"
	"time"

	"showrunner/internal/episode"
	"showrunner/internal/notifications"
	"showrunner/internal/state"
	"showrunner/internal/testsupport"
)

type recordedAlert struct {
	Severity notifications.Severity
	Title    string
	Message  string
}

// alertRecorder captures alerts for assertions. Safe for concurrent use.
type alertRecorder struct {
	mu     sync.Mutex
	alerts []recordedAlert
}

func (r *alertRecorder) Publish(_ context.Context, severity notifications.Severity, title, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.alerts = append(r.alerts, recordedAlert{Severity: severity, Title: title, Message: message})
	return nil
}

func (r *alertRecorder) Test(context.Context) error { return nil }

func (r *alertRecorder) recorded() []recordedAlert {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedAlert(nil), r.alerts...)
}

func (r *alertRecorder) bySeverity(severity notifications.Severity) []recordedAlert {
	var matched []recordedAlert
	for _, alert := range r.recorded() {
		if alert.Severity == severity {
			matched = append(matched, alert)
		}
	}
	return matched
}

// stubCollaborators returns a binding where every stage succeeds with canned
// output. Tests override individual fields to inject failures.
func stubCollaborators() Collaborators {
	return Collaborators{
		GatherInsights: func(context.Context) (string, error) {
			return "five of six recent runs succeeded", nil
		},
		GatherNews: func(context.Context) ([]episode.NewsItem, error) {
			return []episode.NewsItem{{
				Title:     "Release notes",
				Link:      "https://news.example.com/release",
				Source:    "https://news.example.com/feed.xml",
				Published: time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
			}}, nil
		},
		GatherContent: func(context.Context, int, []string) (episode.ContentBundle, error) {
			return episode.ContentBundle{
				ToolSpotlight:   "a sync tool",
				PrivacyInsight:  "metadata hygiene",
				CommunityCorner: "listener question",
			}, nil
		},
		DevelopTheme: func(context.Context, []episode.NewsItem, episode.ContentBundle, string) (episode.NarrativeBrief, error) {
			return episode.NarrativeBrief{Theme: "owning your data", Summary: "why it matters"}, nil
		},
		GenerateScript: func(context.Context, episode.ContentBundle, int, episode.NarrativeBrief) (string, error) {
			return "full episode script", nil
		},
		GenerateAudio: func(context.Context, string, int) (string, error) {
			return "/tmp/audio.mp3", nil
		},
		GenerateNewsletter: func(context.Context, episode.ContentBundle, int, episode.NarrativeBrief) (string, error) {
			return "<p>newsletter</p>", nil
		},
		GenerateHeaderImage: func(context.Context, string) (string, error) {
			return "https://cdn.example.com/header.png", nil
		},
		PublishAudio: func(context.Context, string, int, episode.NarrativeBrief, string, time.Time) (string, error) {
			return "ep-hosted-1", nil
		},
		PublishBlog: func(context.Context, int, episode.NarrativeBrief, string, string, time.Time) (string, error) {
			return "https://blog.example.com/episode/", nil
		},
		ScheduleNewsletter: func(context.Context, string, int, episode.NarrativeBrief, time.Time) (string, error) {
			return "campaign-1", nil
		},
		RecordPublication: func(context.Context, PublicationSummary) error { return nil },
		EngageCommunity:   func(context.Context, int, episode.NarrativeBrief, string) error { return nil },
		ArchiveTranscript: func(_ context.Context, _ int, scriptPath string) (string, error) {
			return scriptPath + ".archived", nil
		},
	}
}

func newTestRunner(t *testing.T) (*Runner, *state.Store, *alertRecorder) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	recorder := &alertRecorder{}
	runner := NewRunner(cfg, store, recorder, nil)
	return runner, store, recorder
}
