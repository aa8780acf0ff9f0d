package feeds

import (
	"testing"
	"time"

	"showrunner/internal/episode"
)

func TestDedupeDropsSyndicatedDuplicates(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	items := []episode.NewsItem{
		{Title: "Signal releases new desktop client with usernames", Source: "a", Published: base.Add(2 * time.Hour)},
		{Title: "Signal releases desktop client with usernames", Source: "b", Published: base.Add(time.Hour)},
		{Title: "Kernel 6.12 ships realtime preemption", Source: "a", Published: base},
	}

	kept := dedupe(items)
	if len(kept) != 2 {
		t.Fatalf("kept = %d items, want 2: %+v", len(kept), kept)
	}
	// The newer copy of the syndicated story survives.
	if kept[0].Source != "a" || kept[1].Title != "Kernel 6.12 ships realtime preemption" {
		t.Errorf("unexpected survivors: %+v", kept)
	}
}

func TestDedupeKeepsDistinctStories(t *testing.T) {
	base := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	items := []episode.NewsItem{
		{Title: "Tailscale adds funnel improvements", Published: base.Add(time.Hour)},
		{Title: "Matrix 2.0 specification finalized", Published: base},
	}
	if kept := dedupe(items); len(kept) != 2 {
		t.Fatalf("kept = %d items, want 2", len(kept))
	}
}
