// Package production assembles the concrete collaborator bindings used by
// real runs, instantiating every external client from configuration.
package production

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"showrunner/internal/analytics"
	"showrunner/internal/archive"
	"showrunner/internal/config"
	"showrunner/internal/episode"
	"showrunner/internal/logging"
	"showrunner/internal/services/feeds"
	"showrunner/internal/services/imagery"
	"showrunner/internal/services/llm"
	"showrunner/internal/services/press"
	"showrunner/internal/services/studio"
	"showrunner/internal/state"
	"showrunner/internal/workflow"
)

// NewCollaborators builds the production stage bindings. Every stage call
// goes through a client constructed from cfg; durable side effects go
// through store.
func NewCollaborators(cfg *config.Config, store *state.Store, logger *slog.Logger) workflow.Collaborators {
	if logger == nil {
		logger = logging.NewNop()
	}

	reporter := analytics.NewReporter(store)
	fetcher := feeds.NewFetcher(cfg.Feeds, logger)
	chat := llm.NewClient(cfg.LLM)
	synth := studio.NewSynthesizer(cfg.TTS)
	podcast := studio.NewPublisher(cfg.Podcast)
	blog := press.NewBlogClient(cfg.Blog)
	newsletter := press.NewNewsletterClient(cfg.Newsletter)
	social := press.NewSocialClient(cfg.Social)
	images := imagery.NewClient(cfg.Images)
	archiver := archive.NewArchiver(cfg, logger)

	lookback := time.Duration(cfg.Feeds.LookbackHours) * time.Hour
	showName := cfg.Show.Name

	return workflow.Collaborators{
		GatherInsights: func(ctx context.Context) (string, error) {
			return reporter.Summary(ctx)
		},
		GatherNews: func(ctx context.Context) ([]episode.NewsItem, error) {
			cutoff := time.Now().Add(-lookback)
			if last, ok, err := store.LastRunAt(ctx); err == nil && ok && last.After(cutoff) {
				cutoff = last
			}
			return fetcher.Fetch(ctx, cutoff)
		},
		GatherContent: func(ctx context.Context, number int, pastTopics []string) (episode.ContentBundle, error) {
			return chat.Research(ctx, number, pastTopics)
		},
		DevelopTheme: func(ctx context.Context, news []episode.NewsItem, content episode.ContentBundle, insights string) (episode.NarrativeBrief, error) {
			return chat.DevelopTheme(ctx, news, content, insights)
		},
		GenerateScript: func(ctx context.Context, content episode.ContentBundle, number int, brief episode.NarrativeBrief) (string, error) {
			return chat.GenerateScript(ctx, content, number, brief)
		},
		GenerateAudio: func(ctx context.Context, script string, number int) (string, error) {
			audioPath := filepath.Join(cfg.Paths.OutputDir, episode.Slug(number)+"_audio.mp3")
			if err := synth.Synthesize(ctx, script, audioPath); err != nil {
				return "", err
			}
			return audioPath, nil
		},
		GenerateNewsletter: func(ctx context.Context, content episode.ContentBundle, number int, brief episode.NarrativeBrief) (string, error) {
			return chat.GenerateNewsletter(ctx, content, number, brief)
		},
		GenerateHeaderImage: func(ctx context.Context, theme string) (string, error) {
			return images.Generate(ctx, theme)
		},
		PublishAudio: func(ctx context.Context, audioPath string, number int, brief episode.NarrativeBrief, script string, publishDate time.Time) (string, error) {
			title := fmt.Sprintf("%s - %s", showName, episode.Title(number))
			return podcast.Upload(ctx, audioPath, title, brief.Summary, script, publishDate)
		},
		PublishBlog: func(ctx context.Context, number int, brief episode.NarrativeBrief, bodyHTML, imageURL string, publishDate time.Time) (string, error) {
			return blog.Publish(ctx, press.BlogPost{
				Title:        fmt.Sprintf("%s: %s", episode.Title(number), brief.Theme),
				HTML:         bodyHTML,
				Excerpt:      brief.Summary,
				FeatureImage: imageURL,
				PublishAt:    publishDate,
			})
		},
		ScheduleNewsletter: func(ctx context.Context, newsletterHTML string, number int, brief episode.NarrativeBrief, publishDate time.Time) (string, error) {
			return newsletter.Schedule(ctx, press.Campaign{
				Subject:     fmt.Sprintf("%s %s: %s", showName, episode.Title(number), brief.Theme),
				PreviewText: brief.Summary,
				HTML:        newsletterHTML,
				SendAt:      newsletter.SendTime(publishDate),
			})
		},
		RecordPublication: func(ctx context.Context, summary workflow.PublicationSummary) error {
			return store.SetPublication(ctx, state.PublicationRecord{
				CampaignID:  summary.CampaignID,
				EpisodeID:   summary.EpisodeID,
				Episode:     summary.Episode,
				PublishDate: summary.PublishDate.Format("2006-01-02"),
				BlogURL:     summary.BlogURL,
			})
		},
		EngageCommunity: func(ctx context.Context, number int, brief episode.NarrativeBrief, blogURL string) error {
			message := fmt.Sprintf("%s of %s drops soon: %s", episode.Title(number), showName, brief.Theme)
			if blogURL != "" {
				message += "\n" + blogURL
			}
			return social.Post(ctx, message)
		},
		ArchiveTranscript: func(_ context.Context, number int, scriptPath string) (string, error) {
			return archiver.ArchiveTranscript(number, scriptPath)
		},
	}
}
