package workflow

import (
	"time"

	"showrunner/internal/episode"
	"showrunner/internal/stage"
)

// State names the phase a runner is in. Transitions are strictly forward
// within a run; Aborted and Done are terminal.
type State string

const (
	StateIdle      State = "idle"
	StateGathering State = "gathering"
	StateProducing State = "producing"
	StateArchiving State = "archiving"
	StateDone      State = "done"
	StateAborted   State = "aborted"
)

// RunContext accumulates the artifacts of one production run. Stage outcomes
// are append-only; artifact fields are written once by their producing stage
// and read by later stages.
type RunContext struct {
	RunID       string
	Episode     int
	StartedAt   time.Time
	PublishDate time.Time

	Insights string
	News     []episode.NewsItem
	Content  episode.ContentBundle
	Brief    episode.NarrativeBrief

	Script         string
	ScriptPath     string
	AudioPath      string
	NewsletterHTML string
	NewsletterPath string
	HeaderImageURL string

	PodcastEpisodeID string
	BlogURL          string
	CampaignID       string
	ArchivePath      string

	Outcomes []stage.Outcome
}

func (rc *RunContext) record(outcome stage.Outcome) {
	rc.Outcomes = append(rc.Outcomes, outcome)
}

// Failures returns the recorded failure outcomes in stage order.
func (rc *RunContext) Failures() []stage.Outcome {
	var failures []stage.Outcome
	for _, outcome := range rc.Outcomes {
		if outcome.Status == stage.StatusFailure {
			failures = append(failures, outcome)
		}
	}
	return failures
}
