package stage_test

import (
	"errors"
	"testing"

	"showrunner/internal/stage"
)

func TestDefaultRegistryClassifications(t *testing.T) {
	registry := stage.DefaultRegistry()

	critical := []string{
		stage.News, stage.Research, stage.Theme, stage.Script, stage.Audio,
		stage.Newsletter, stage.HeaderImage, stage.PublishAudio,
		stage.PublishBlog, stage.ScheduleNewsletter,
	}
	for _, name := range critical {
		if got := registry.Criticality(name); got != stage.Critical {
			t.Errorf("%s = %v, want critical", name, got)
		}
	}

	nonCritical := []string{stage.Insights, stage.RecordPublication, stage.Community, stage.Archive}
	for _, name := range nonCritical {
		if got := registry.Criticality(name); got != stage.NonCritical {
			t.Errorf("%s = %v, want non-critical", name, got)
		}
	}
}

func TestUnknownStagePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for unknown stage name")
		}
	}()
	stage.DefaultRegistry().Criticality("color_grading")
}

func TestKnown(t *testing.T) {
	registry := stage.DefaultRegistry()
	if !registry.Known(stage.Audio) {
		t.Fatal("audio should be known")
	}
	if registry.Known("color_grading") {
		t.Fatal("color_grading should not be known")
	}
}

func TestOutcomeConstructors(t *testing.T) {
	ok := stage.Succeeded(stage.News)
	if ok.Status != stage.StatusSuccess || ok.Err != nil || ok.Stage != stage.News {
		t.Fatalf("unexpected success outcome: %+v", ok)
	}

	cause := errors.New("feed unreachable")
	bad := stage.Failed(stage.News, cause)
	if bad.Status != stage.StatusFailure || !errors.Is(bad.Err, cause) {
		t.Fatalf("unexpected failure outcome: %+v", bad)
	}
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		stage.PublishAudio: "Publish Audio",
		stage.News:         "News",
		"header_image":     "Header Image",
	}
	for name, want := range tests {
		if got := stage.Label(name); got != want {
			t.Errorf("Label(%q) = %q, want %q", name, got, want)
		}
	}
}
