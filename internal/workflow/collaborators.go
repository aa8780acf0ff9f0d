package workflow

import (
	"context"
	"strings"
	"time"

	"showrunner/internal/episode"
	"showrunner/internal/services"
	"showrunner/internal/stage"
)

// PublicationSummary is the durable record of a completed publishing pass.
type PublicationSummary struct {
	CampaignID  string
	EpisodeID   string
	Episode     int
	PublishDate time.Time
	BlogURL     string
}

// Collaborators binds each pipeline stage to the external call that performs
// it. The orchestrator never talks to a service directly; it only invokes
// these functions and classifies their failures.
type Collaborators struct {
	GatherInsights      func(ctx context.Context) (string, error)
	GatherNews          func(ctx context.Context) ([]episode.NewsItem, error)
	GatherContent       func(ctx context.Context, number int, pastTopics []string) (episode.ContentBundle, error)
	DevelopTheme        func(ctx context.Context, news []episode.NewsItem, content episode.ContentBundle, insights string) (episode.NarrativeBrief, error)
	GenerateScript      func(ctx context.Context, content episode.ContentBundle, number int, brief episode.NarrativeBrief) (string, error)
	GenerateAudio       func(ctx context.Context, script string, number int) (string, error)
	GenerateNewsletter  func(ctx context.Context, content episode.ContentBundle, number int, brief episode.NarrativeBrief) (string, error)
	GenerateHeaderImage func(ctx context.Context, theme string) (string, error)
	PublishAudio        func(ctx context.Context, audioPath string, number int, brief episode.NarrativeBrief, script string, publishDate time.Time) (string, error)
	PublishBlog         func(ctx context.Context, number int, brief episode.NarrativeBrief, bodyHTML, imageURL string, publishDate time.Time) (string, error)
	ScheduleNewsletter  func(ctx context.Context, newsletterHTML string, number int, brief episode.NarrativeBrief, publishDate time.Time) (string, error)
	RecordPublication   func(ctx context.Context, summary PublicationSummary) error
	EngageCommunity     func(ctx context.Context, number int, brief episode.NarrativeBrief, blogURL string) error
	ArchiveTranscript   func(ctx context.Context, number int, scriptPath string) (string, error)
}

// Validate reports the stages left without a bound collaborator. A run never
// starts with an incomplete binding.
func (c Collaborators) Validate() error {
	var missing []string
	record := func(name string, bound bool) {
		if !bound {
			missing = append(missing, name)
		}
	}
	record(stage.Insights, c.GatherInsights != nil)
	record(stage.News, c.GatherNews != nil)
	record(stage.Research, c.GatherContent != nil)
	record(stage.Theme, c.DevelopTheme != nil)
	record(stage.Script, c.GenerateScript != nil)
	record(stage.Audio, c.GenerateAudio != nil)
	record(stage.Newsletter, c.GenerateNewsletter != nil)
	record(stage.HeaderImage, c.GenerateHeaderImage != nil)
	record(stage.PublishAudio, c.PublishAudio != nil)
	record(stage.PublishBlog, c.PublishBlog != nil)
	record(stage.ScheduleNewsletter, c.ScheduleNewsletter != nil)
	record(stage.RecordPublication, c.RecordPublication != nil)
	record(stage.Community, c.EngageCommunity != nil)
	record(stage.Archive, c.ArchiveTranscript != nil)

	if len(missing) > 0 {
		return services.Wrap(services.ErrConfiguration, "", "validate collaborators",
			"unbound stages: "+strings.Join(missing, ", "), nil)
	}
	return nil
}
