package workflow

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"showrunner/internal/episode"
	"showrunner/internal/notifications"
	"showrunner/internal/services"
	"showrunner/internal/stage"
	"showrunner/internal/state"
)

func TestRunHappyPath(t *testing.T) {
	runner, store, recorder := newTestRunner(t)
	ctx := context.Background()

	started := time.Date(2026, 8, 30, 7, 0, 0, 0, time.UTC)
	runner.WithClock(func() time.Time { return started })

	rc, err := runner.Run(ctx, stubCollaborators())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if runner.State() != StateDone {
		t.Errorf("state = %s, want %s", runner.State(), StateDone)
	}
	if rc.Episode != 1 {
		t.Errorf("episode = %d, want 1", rc.Episode)
	}
	if rc.RunID == "" {
		t.Error("run id not assigned")
	}

	// Publish date honors the configured lead time.
	wantPublish := started.AddDate(0, 0, 1)
	if !rc.PublishDate.Equal(wantPublish) {
		t.Errorf("publish date = %v, want %v", rc.PublishDate, wantPublish)
	}

	// Script and newsletter artifacts land in the output directory.
	script, err := os.ReadFile(rc.ScriptPath)
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if string(script) != "full episode script" {
		t.Errorf("script content = %q", script)
	}
	if _, err := os.Stat(rc.NewsletterPath); err != nil {
		t.Errorf("newsletter file: %v", err)
	}

	// Counter advances only after full success.
	number, err := store.EpisodeNumber(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if number != 2 {
		t.Errorf("episode counter = %d, want 2", number)
	}
	if _, ok, err := store.LastRunAt(ctx); err != nil || !ok {
		t.Errorf("last run stamp missing: ok=%v err=%v", ok, err)
	}

	topics, err := store.PastTopics(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(topics) != 1 || topics[0] != "owning your data" {
		t.Errorf("past topics = %v", topics)
	}

	runs, err := store.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Outcome != "success" {
		t.Fatalf("run history = %+v, want one success", runs)
	}

	// Exactly one terminal info alert, nothing else.
	alerts := recorder.recorded()
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1: %+v", len(alerts), alerts)
	}
	if alerts[0].Severity != notifications.SeverityInfo {
		t.Errorf("alert severity = %s, want info", alerts[0].Severity)
	}
	if !strings.Contains(alerts[0].Message, "2026-08-31") {
		t.Errorf("alert message %q missing publish date", alerts[0].Message)
	}
}

func TestRunCriticalStageAborts(t *testing.T) {
	runner, store, recorder := newTestRunner(t)
	ctx := context.Background()

	collab := stubCollaborators()
	collab.GenerateAudio = func(context.Context, string, int) (string, error) {
		return "", errors.New("synthesis failed")
	}

	rc, err := runner.Run(ctx, collab)
	if err == nil {
		t.Fatal("expected error when audio stage fails")
	}
	if runner.State() != StateAborted {
		t.Errorf("state = %s, want %s", runner.State(), StateAborted)
	}

	// Counter and last-run stamp stay untouched.
	number, err := store.EpisodeNumber(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if number != 1 {
		t.Errorf("episode counter = %d, want 1", number)
	}
	if _, ok, err := store.LastRunAt(ctx); err != nil || ok {
		t.Errorf("last run stamp should be absent: ok=%v err=%v", ok, err)
	}

	runs, err := store.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].Outcome != "aborted" || runs[0].FailedStage != stage.Audio {
		t.Fatalf("run history = %+v, want one aborted at audio", runs)
	}

	// Exactly one critical alert; no terminal info alert.
	alerts := recorder.recorded()
	if len(alerts) != 1 || alerts[0].Severity != notifications.SeverityCritical {
		t.Fatalf("alerts = %+v, want single critical", alerts)
	}

	// Stages after the failure never ran.
	for _, outcome := range rc.Outcomes {
		if outcome.Stage == stage.PublishAudio || outcome.Stage == stage.PublishBlog {
			t.Errorf("stage %s ran after abort", outcome.Stage)
		}
	}
}

func TestRunNonCriticalFailureIsAbsorbed(t *testing.T) {
	runner, store, recorder := newTestRunner(t)
	ctx := context.Background()

	collab := stubCollaborators()
	collab.EngageCommunity = func(context.Context, int, episode.NarrativeBrief, string) error {
		return errors.New("forum unreachable")
	}

	rc, err := runner.Run(ctx, collab)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil for non-critical failure", err)
	}
	if runner.State() != StateDone {
		t.Errorf("state = %s, want %s", runner.State(), StateDone)
	}

	failures := rc.Failures()
	if len(failures) != 1 || failures[0].Stage != stage.Community {
		t.Fatalf("failures = %+v, want community only", failures)
	}

	number, err := store.EpisodeNumber(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if number != 2 {
		t.Errorf("episode counter = %d, want 2", number)
	}

	warnings := recorder.bySeverity(notifications.SeverityWarning)
	infos := recorder.bySeverity(notifications.SeverityInfo)
	if len(warnings) != 1 {
		t.Errorf("warning alerts = %d, want 1", len(warnings))
	}
	if len(infos) != 1 {
		t.Errorf("info alerts = %d, want 1", len(infos))
	}
	if len(infos) == 1 && !strings.Contains(infos[0].Message, "non-critical") {
		t.Errorf("terminal alert %q does not mention skipped stages", infos[0].Message)
	}
}

func TestRunRecordPublicationFailureKeepsPriorRecord(t *testing.T) {
	runner, store, recorder := newTestRunner(t)
	ctx := context.Background()

	prior := state.PublicationRecord{
		CampaignID:  "camp-6",
		EpisodeID:   "ep-6",
		Episode:     6,
		PublishDate: "2026-08-23",
		BlogURL:     "https://blog.example.com/episode-6",
	}
	if err := store.SetPublication(ctx, prior); err != nil {
		t.Fatal(err)
	}

	collab := stubCollaborators()
	collab.RecordPublication = func(context.Context, PublicationSummary) error {
		return errors.New("state store busy")
	}

	rc, err := runner.Run(ctx, collab)
	if err != nil {
		t.Fatalf("Run() error = %v, want nil when only recording fails", err)
	}
	if runner.State() != StateDone {
		t.Errorf("state = %s, want %s", runner.State(), StateDone)
	}

	failures := rc.Failures()
	if len(failures) != 1 || failures[0].Stage != stage.RecordPublication {
		t.Fatalf("failures = %+v, want record_publication only", failures)
	}

	// The run still counts as published.
	number, err := store.EpisodeNumber(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if number != 2 {
		t.Errorf("episode counter = %d, want 2", number)
	}

	// The prior publication record survives untouched.
	got, err := store.Publication(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("prior publication record missing")
	}
	if got.CampaignID != prior.CampaignID || got.Episode != prior.Episode ||
		got.PublishDate != prior.PublishDate || got.BlogURL != prior.BlogURL {
		t.Errorf("publication = %+v, want prior record %+v", got, prior)
	}

	warnings := recorder.bySeverity(notifications.SeverityWarning)
	infos := recorder.bySeverity(notifications.SeverityInfo)
	if len(warnings) != 1 {
		t.Errorf("warning alerts = %d, want 1", len(warnings))
	}
	if len(infos) != 1 {
		t.Errorf("info alerts = %d, want 1", len(infos))
	}
}

func TestRunGatherAbortDoesNotDoubleAlert(t *testing.T) {
	runner, store, recorder := newTestRunner(t)
	ctx := context.Background()

	collab := stubCollaborators()
	collab.GatherNews = func(context.Context) ([]episode.NewsItem, error) {
		return nil, errors.New("all sources unreachable")
	}

	if _, err := runner.Run(ctx, collab); err == nil {
		t.Fatal("expected error when news gathering fails")
	}

	// The gather phase already alerted; the runner must not add a second one.
	alerts := recorder.recorded()
	if len(alerts) != 1 || alerts[0].Severity != notifications.SeverityCritical {
		t.Fatalf("alerts = %+v, want single critical from gather", alerts)
	}

	runs, err := store.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].FailedStage != stage.News {
		t.Fatalf("run history = %+v, want one aborted at news", runs)
	}
}

func TestRunRejectsUnboundCollaborators(t *testing.T) {
	runner, store, _ := newTestRunner(t)
	ctx := context.Background()

	collab := stubCollaborators()
	collab.GenerateScript = nil
	collab.PublishBlog = nil

	_, err := runner.Run(ctx, collab)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !services.IsConfiguration(err) {
		t.Errorf("error %v not tagged as configuration", err)
	}
	for _, name := range []string{stage.Script, stage.PublishBlog} {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error %q missing stage %s", err, name)
		}
	}

	// Nothing was recorded for a run that never started.
	runs, err := store.RecentRuns(ctx, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("run history = %+v, want empty", runs)
	}
}
