// Package analytics summarizes prior run and publication state into a short
// performance briefing used as episode planning input.
package analytics

import (
	"context"
	"fmt"
	"strings"

	"showrunner/internal/state"
)

// Reporter derives insight summaries from the state store.
type Reporter struct {
	store *state.Store
}

// NewReporter constructs a reporter over the given store.
func NewReporter(store *state.Store) *Reporter {
	return &Reporter{store: store}
}

// Summary returns a plain-text briefing covering the last publication and
// recent run outcomes. A fresh installation yields a short first-run note
// rather than an error.
func (r *Reporter) Summary(ctx context.Context) (string, error) {
	publication, err := r.store.Publication(ctx)
	if err != nil {
		return "", fmt.Errorf("load publication record: %w", err)
	}
	runs, err := r.store.RecentRuns(ctx, 10)
	if err != nil {
		return "", fmt.Errorf("load run history: %w", err)
	}
	topics, err := r.store.PastTopics(ctx)
	if err != nil {
		return "", fmt.Errorf("load past topics: %w", err)
	}

	var b strings.Builder
	if publication == nil {
		b.WriteString("No prior publication on record; this is the first tracked episode.\n")
	} else {
		fmt.Fprintf(&b, "Last published: episode %d on %s", publication.Episode, publication.PublishDate)
		if publication.BlogURL != "" {
			fmt.Fprintf(&b, " (%s)", publication.BlogURL)
		}
		b.WriteString(".\n")
	}

	if len(runs) > 0 {
		succeeded := 0
		for _, run := range runs {
			if run.Outcome == "success" {
				succeeded++
			}
		}
		fmt.Fprintf(&b, "Recent runs: %d of %d succeeded.", succeeded, len(runs))
		if last := runs[0]; last.Outcome != "success" && last.FailedStage != "" {
			fmt.Fprintf(&b, " Most recent run failed at %s.", last.FailedStage)
		}
		b.WriteString("\n")
	}

	if len(topics) > 0 {
		recent := topics
		if len(recent) > 5 {
			recent = recent[len(recent)-5:]
		}
		fmt.Fprintf(&b, "Recently covered topics: %s.\n", strings.Join(recent, "; "))
	}

	return strings.TrimRight(b.String(), "\n"), nil
}
