package state_test

import (
	"context"
	"testing"
	"time"

	"showrunner/internal/state"
	"showrunner/internal/testsupport"
)

func openStore(t *testing.T) *state.Store {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store, err := state.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestEpisodeCounterStartsAtOne(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	number, err := store.EpisodeNumber(ctx)
	if err != nil {
		t.Fatalf("episode number: %v", err)
	}
	if number != 1 {
		t.Fatalf("fresh counter = %d, want 1", number)
	}
}

func TestIncrementEpisodeAdvancesByOne(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	next, err := store.IncrementEpisode(ctx)
	if err != nil {
		t.Fatalf("increment: %v", err)
	}
	if next != 2 {
		t.Fatalf("first increment = %d, want 2", next)
	}

	number, err := store.EpisodeNumber(ctx)
	if err != nil {
		t.Fatalf("episode number: %v", err)
	}
	if number != 2 {
		t.Fatalf("counter after increment = %d, want 2", number)
	}
}

func TestLastRunRoundTrip(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, ok, err := store.LastRunAt(ctx); err != nil || ok {
		t.Fatalf("fresh store last run: ok=%v err=%v", ok, err)
	}

	stamp := time.Date(2026, 8, 29, 7, 0, 0, 0, time.UTC)
	if err := store.SetLastRunAt(ctx, stamp); err != nil {
		t.Fatalf("set last run: %v", err)
	}

	got, ok, err := store.LastRunAt(ctx)
	if err != nil || !ok {
		t.Fatalf("last run after set: ok=%v err=%v", ok, err)
	}
	if !got.Equal(stamp) {
		t.Fatalf("last run = %v, want %v", got, stamp)
	}
}

func TestPublicationOverwritesWholesale(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if rec, err := store.Publication(ctx); err != nil || rec != nil {
		t.Fatalf("fresh store publication: rec=%v err=%v", rec, err)
	}

	first := state.PublicationRecord{
		CampaignID:  "camp-1",
		EpisodeID:   "ep-abc",
		Episode:     4,
		PublishDate: "2026-08-30",
		BlogURL:     "https://blog.example.com/4",
	}
	if err := store.SetPublication(ctx, first); err != nil {
		t.Fatalf("set publication: %v", err)
	}

	second := first
	second.CampaignID = "camp-2"
	second.Episode = 5
	second.BlogURL = "https://blog.example.com/5"
	if err := store.SetPublication(ctx, second); err != nil {
		t.Fatalf("overwrite publication: %v", err)
	}

	rec, err := store.Publication(ctx)
	if err != nil {
		t.Fatalf("read publication: %v", err)
	}
	if rec == nil || rec.CampaignID != "camp-2" || rec.Episode != 5 {
		t.Fatalf("publication = %+v, want camp-2 episode 5", rec)
	}
	if rec.RecordedAt.IsZero() {
		t.Fatal("expected recorded_at populated")
	}
}

func TestRunHistoryAppendsAndOrders(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 28, 7, 0, 0, 0, time.UTC)
	for i, outcome := range []string{"done", "aborted", "done"} {
		rec := state.RunRecord{
			RunID:      string(rune('a'+i)) + "-run",
			Episode:    3 + i,
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + 10*time.Minute),
			Outcome:    outcome,
		}
		if outcome == "aborted" {
			rec.FailedStage = "audio"
			rec.Error = "tts unavailable"
		}
		if err := store.AppendRun(ctx, rec); err != nil {
			t.Fatalf("append run %d: %v", i, err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("recent runs len = %d, want 2", len(runs))
	}
	if runs[0].Episode != 5 || runs[1].Episode != 4 {
		t.Fatalf("expected most recent first, got episodes %d, %d", runs[0].Episode, runs[1].Episode)
	}
	if runs[1].FailedStage != "audio" {
		t.Fatalf("expected failed stage preserved, got %+v", runs[1])
	}
}

func TestAppendRunRequiresID(t *testing.T) {
	store := openStore(t)
	if err := store.AppendRun(context.Background(), state.RunRecord{}); err == nil {
		t.Fatal("expected error for empty run id")
	}
}

func TestPastTopicsDedupe(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	for _, topic := range []string{"agent sandboxing", "vector search", "agent sandboxing"} {
		if err := store.AddPastTopic(ctx, topic); err != nil {
			t.Fatalf("add topic %q: %v", topic, err)
		}
	}

	topics, err := store.PastTopics(ctx)
	if err != nil {
		t.Fatalf("past topics: %v", err)
	}
	if len(topics) != 2 {
		t.Fatalf("topics = %v, want 2 unique entries", topics)
	}
}
