package workflow

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"showrunner/internal/episode"
	"showrunner/internal/notifications"
	"showrunner/internal/services"
	"showrunner/internal/stage"
)

func TestGatherAllSuccess(t *testing.T) {
	recorder := &alertRecorder{}
	gatherer := NewParallelGatherer(stage.DefaultRegistry(), recorder, nil, 3)

	result, err := gatherer.Gather(context.Background(), stubCollaborators(), 1, nil)
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(result.News) != 1 {
		t.Errorf("news items = %d, want 1", len(result.News))
	}
	if result.Insights == "" {
		t.Error("insights not populated")
	}
	if result.Content.Empty() {
		t.Error("content bundle not populated")
	}
	if alerts := recorder.recorded(); len(alerts) != 0 {
		t.Errorf("alerts = %v, want none", alerts)
	}
	for _, outcome := range result.Outcomes {
		if outcome.Status != stage.StatusSuccess {
			t.Errorf("outcome %s = %s, want success", outcome.Stage, outcome.Status)
		}
	}
}

func TestGatherEmptyNewsFailsRun(t *testing.T) {
	recorder := &alertRecorder{}
	gatherer := NewParallelGatherer(stage.DefaultRegistry(), recorder, nil, 3)

	collab := stubCollaborators()
	collab.GatherNews = func(context.Context) ([]episode.NewsItem, error) {
		return nil, nil
	}

	_, err := gatherer.Gather(context.Background(), collab, 1, nil)
	if err == nil {
		t.Fatal("expected error for empty news")
	}
	if !services.IsEmptyResult(err) {
		t.Errorf("error %v not tagged as empty result", err)
	}
	critical := recorder.bySeverity(notifications.SeverityCritical)
	if len(critical) != 1 {
		t.Fatalf("critical alerts = %d, want 1", len(critical))
	}
}

func TestGatherRunsAllStagesDespiteFailures(t *testing.T) {
	recorder := &alertRecorder{}
	gatherer := NewParallelGatherer(stage.DefaultRegistry(), recorder, nil, 3)

	collab := stubCollaborators()
	collab.GatherInsights = func(context.Context) (string, error) {
		return "", errors.New("analytics unavailable")
	}
	collab.GatherContent = func(context.Context, int, []string) (episode.ContentBundle, error) {
		return episode.ContentBundle{}, errors.New("llm timeout")
	}

	result, err := gatherer.Gather(context.Background(), collab, 1, nil)
	if err == nil {
		t.Fatal("expected error when a critical gather stage fails")
	}

	// The surviving stage still contributes its partial result.
	if len(result.News) != 1 {
		t.Errorf("news items = %d, want 1", len(result.News))
	}

	// One alert per failed stage, graded by criticality.
	critical := recorder.bySeverity(notifications.SeverityCritical)
	warnings := recorder.bySeverity(notifications.SeverityWarning)
	if len(critical) != 1 {
		t.Errorf("critical alerts = %d, want 1 (research)", len(critical))
	}
	if len(warnings) != 1 {
		t.Errorf("warning alerts = %d, want 1 (insights)", len(warnings))
	}
}

func TestGatherNonCriticalFailureDoesNotAbort(t *testing.T) {
	recorder := &alertRecorder{}
	gatherer := NewParallelGatherer(stage.DefaultRegistry(), recorder, nil, 3)

	collab := stubCollaborators()
	collab.GatherInsights = func(context.Context) (string, error) {
		return "", errors.New("analytics unavailable")
	}

	result, err := gatherer.Gather(context.Background(), collab, 1, nil)
	if err != nil {
		t.Fatalf("Gather() error = %v, want nil for non-critical failure", err)
	}
	if result.Insights != "" {
		t.Errorf("insights = %q, want empty after failure", result.Insights)
	}
	if len(result.News) != 1 {
		t.Errorf("news items = %d, want 1", len(result.News))
	}
	if warnings := recorder.bySeverity(notifications.SeverityWarning); len(warnings) != 1 {
		t.Errorf("warning alerts = %d, want 1", len(warnings))
	}
	if critical := recorder.bySeverity(notifications.SeverityCritical); len(critical) != 0 {
		t.Errorf("critical alerts = %d, want 0", len(critical))
	}
}

func TestGatherDeterministicForIdenticalInputs(t *testing.T) {
	recorder := &alertRecorder{}
	gatherer := NewParallelGatherer(stage.DefaultRegistry(), recorder, nil, 3)
	collab := stubCollaborators()

	first, err := gatherer.Gather(context.Background(), collab, 1, nil)
	if err != nil {
		t.Fatalf("first Gather() error = %v", err)
	}
	second, err := gatherer.Gather(context.Background(), collab, 1, nil)
	if err != nil {
		t.Fatalf("second Gather() error = %v", err)
	}

	// Concurrent execution must not leak scheduling order into the result:
	// identical stub responses yield an identical joined result.
	if !reflect.DeepEqual(first, second) {
		t.Errorf("gather results differ:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}
