package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"showrunner/internal/config"
	"showrunner/internal/episode"
	"showrunner/internal/fileutil"
	"showrunner/internal/logging"
	"showrunner/internal/notifications"
	"showrunner/internal/services"
	"showrunner/internal/stage"
	"showrunner/internal/state"
)

// Runner drives one production run end to end: concurrent gathering, the
// sequential production and publishing stages, and terminal bookkeeping.
type Runner struct {
	cfg      *config.Config
	store    *state.Store
	registry *stage.Registry
	notifier notifications.Service
	logger   *slog.Logger
	gatherer *ParallelGatherer

	state    State
	now      func() time.Time
	newRunID func() string
}

// NewRunner constructs a runner over the given durable store and alerter.
func NewRunner(cfg *config.Config, store *state.Store, notifier notifications.Service, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	registry := stage.DefaultRegistry()
	return &Runner{
		cfg:      cfg,
		store:    store,
		registry: registry,
		notifier: notifier,
		logger:   logging.NewComponentLogger(logger, "runner"),
		gatherer: NewParallelGatherer(registry, notifier, logger, cfg.Workflow.GatherWorkers),
		state:    StateIdle,
		now:      time.Now,
		newRunID: uuid.NewString,
	}
}

// WithClock overrides the runner's clock (used in tests).
func (r *Runner) WithClock(now func() time.Time) *Runner {
	if now != nil {
		r.now = now
	}
	return r
}

// State returns the runner's current phase.
func (r *Runner) State() State {
	return r.state
}

// Run produces one episode. The returned RunContext carries every artifact
// and stage outcome, also on the error path.
func (r *Runner) Run(ctx context.Context, collab Collaborators) (*RunContext, error) {
	if err := collab.Validate(); err != nil {
		return nil, err
	}

	number, err := r.store.EpisodeNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("load episode number: %w", err)
	}

	started := r.now()
	rc := &RunContext{
		RunID:       r.newRunID(),
		Episode:     number,
		StartedAt:   started,
		PublishDate: started.AddDate(0, 0, r.cfg.Show.PublishLeadDays),
	}

	ctx = services.WithRunID(ctx, rc.RunID)
	ctx = services.WithEpisode(ctx, number)
	runLogger := logging.WithContext(ctx, r.logger)
	runLogger.Info("run started",
		logging.String(logging.FieldEventType, "run_start"),
		logging.String("publish_date", rc.PublishDate.Format("2006-01-02")))

	if err := r.gather(ctx, rc, collab); err != nil {
		return rc, r.abort(ctx, rc, runLogger, err)
	}
	if err := r.produce(ctx, rc, collab); err != nil {
		return rc, r.abort(ctx, rc, runLogger, err)
	}
	r.archiveAndRecord(ctx, rc, collab)

	if err := r.finalize(ctx, rc, runLogger); err != nil {
		return rc, err
	}
	return rc, nil
}

func (r *Runner) gather(ctx context.Context, rc *RunContext, collab Collaborators) error {
	r.transition(ctx, StateGathering)

	pastTopics, err := r.store.PastTopics(ctx)
	if err != nil {
		return fmt.Errorf("load past topics: %w", err)
	}

	result, err := r.gatherer.Gather(ctx, collab, rc.Episode, pastTopics)
	rc.Outcomes = append(rc.Outcomes, result.Outcomes...)
	rc.Insights = result.Insights
	rc.News = result.News
	rc.Content = result.Content
	return err
}

func (r *Runner) produce(ctx context.Context, rc *RunContext, collab Collaborators) error {
	r.transition(ctx, StateProducing)

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{stage.Theme, func(stageCtx context.Context) error {
			brief, err := collab.DevelopTheme(stageCtx, rc.News, rc.Content, rc.Insights)
			if err != nil {
				return err
			}
			rc.Brief = brief
			return nil
		}},
		{stage.Script, func(stageCtx context.Context) error {
			script, err := collab.GenerateScript(stageCtx, rc.Content, rc.Episode, rc.Brief)
			if err != nil {
				return err
			}
			rc.Script = script
			rc.ScriptPath = filepath.Join(r.cfg.Paths.OutputDir, episode.Slug(rc.Episode)+"_script.txt")
			return fileutil.WriteFileAtomic(rc.ScriptPath, []byte(script), 0o644)
		}},
		{stage.Audio, func(stageCtx context.Context) error {
			audioPath, err := collab.GenerateAudio(stageCtx, rc.Script, rc.Episode)
			if err != nil {
				return err
			}
			rc.AudioPath = audioPath
			return nil
		}},
		{stage.Newsletter, func(stageCtx context.Context) error {
			html, err := collab.GenerateNewsletter(stageCtx, rc.Content, rc.Episode, rc.Brief)
			if err != nil {
				return err
			}
			rc.NewsletterHTML = html
			rc.NewsletterPath = filepath.Join(r.cfg.Paths.OutputDir, episode.Slug(rc.Episode)+"_newsletter.html")
			return fileutil.WriteFileAtomic(rc.NewsletterPath, []byte(html), 0o644)
		}},
		{stage.HeaderImage, func(stageCtx context.Context) error {
			imageURL, err := collab.GenerateHeaderImage(stageCtx, rc.Brief.Theme)
			if err != nil {
				return err
			}
			rc.HeaderImageURL = imageURL
			return nil
		}},
		{stage.PublishAudio, func(stageCtx context.Context) error {
			episodeID, err := collab.PublishAudio(stageCtx, rc.AudioPath, rc.Episode, rc.Brief, rc.Script, rc.PublishDate)
			if err != nil {
				return err
			}
			rc.PodcastEpisodeID = episodeID
			return nil
		}},
		{stage.PublishBlog, func(stageCtx context.Context) error {
			blogURL, err := collab.PublishBlog(stageCtx, rc.Episode, rc.Brief, rc.NewsletterHTML, rc.HeaderImageURL, rc.PublishDate)
			if err != nil {
				return err
			}
			rc.BlogURL = blogURL
			return nil
		}},
		{stage.ScheduleNewsletter, func(stageCtx context.Context) error {
			campaignID, err := collab.ScheduleNewsletter(stageCtx, rc.NewsletterHTML, rc.Episode, rc.Brief, rc.PublishDate)
			if err != nil {
				return err
			}
			rc.CampaignID = campaignID
			return nil
		}},
	}

	for _, step := range steps {
		if err := r.runStage(ctx, rc, step.name, step.fn); err != nil {
			return err
		}
	}
	return nil
}

// archiveAndRecord runs the trailing non-critical stages. Their failures are
// absorbed by runStage, so this phase never aborts the run.
func (r *Runner) archiveAndRecord(ctx context.Context, rc *RunContext, collab Collaborators) {
	r.transition(ctx, StateArchiving)

	_ = r.runStage(ctx, rc, stage.RecordPublication, func(stageCtx context.Context) error {
		return collab.RecordPublication(stageCtx, PublicationSummary{
			CampaignID:  rc.CampaignID,
			EpisodeID:   rc.PodcastEpisodeID,
			Episode:     rc.Episode,
			PublishDate: rc.PublishDate,
			BlogURL:     rc.BlogURL,
		})
	})
	_ = r.runStage(ctx, rc, stage.Community, func(stageCtx context.Context) error {
		return collab.EngageCommunity(stageCtx, rc.Episode, rc.Brief, rc.BlogURL)
	})
	_ = r.runStage(ctx, rc, stage.Archive, func(stageCtx context.Context) error {
		archivePath, err := collab.ArchiveTranscript(stageCtx, rc.Episode, rc.ScriptPath)
		if err != nil {
			return err
		}
		rc.ArchivePath = archivePath
		return nil
	})
}

// runStage executes one sequential stage. Critical failures alert and
// propagate; non-critical failures alert, record, and are absorbed.
func (r *Runner) runStage(ctx context.Context, rc *RunContext, name string, fn func(context.Context) error) error {
	stageCtx := logging.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, r.logger)

	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"))

	err := fn(stageCtx)
	if err == nil {
		rc.record(stage.Succeeded(name))
		stageLogger.Info("stage completed",
			logging.String(logging.FieldEventType, "stage_complete"))
		return nil
	}

	crit := r.registry.Criticality(name)
	rc.record(stage.Failed(name, err))
	stageLogger.Error("stage failed",
		logging.String(logging.FieldEventType, "stage_failure"),
		logging.String("criticality", crit.String()),
		logging.Error(err))

	severity := notifications.SeverityWarning
	if crit == stage.Critical {
		severity = notifications.SeverityCritical
	}
	notifications.Alert(stageCtx, stageLogger, r.notifier, severity,
		"Stage failed: "+stage.Label(name), err.Error())

	if crit == stage.Critical {
		return err
	}
	return nil
}

// abort records a failed run. The failing stage has already raised its own
// alert; no second terminal alert is sent.
func (r *Runner) abort(ctx context.Context, rc *RunContext, runLogger *slog.Logger, cause error) error {
	r.transition(ctx, StateAborted)

	failedStage := ""
	for _, outcome := range rc.Failures() {
		if r.registry.Criticality(outcome.Stage) == stage.Critical {
			failedStage = outcome.Stage
			break
		}
	}

	record := state.RunRecord{
		RunID:       rc.RunID,
		Episode:     rc.Episode,
		StartedAt:   rc.StartedAt,
		FinishedAt:  r.now(),
		Outcome:     "aborted",
		FailedStage: failedStage,
		Error:       cause.Error(),
	}
	if err := r.store.AppendRun(ctx, record); err != nil {
		runLogger.Error("failed to record aborted run", logging.Error(err))
	}

	runLogger.Error("run aborted",
		logging.String(logging.FieldEventType, "run_aborted"),
		logging.String("failed_stage", failedStage),
		logging.Error(cause))
	return cause
}

// finalize performs the success-path bookkeeping. The episode counter only
// advances here, after every critical stage has succeeded.
func (r *Runner) finalize(ctx context.Context, rc *RunContext, runLogger *slog.Logger) error {
	finished := r.now()
	if err := r.store.SetLastRunAt(ctx, finished); err != nil {
		return fmt.Errorf("record run completion: %w", err)
	}
	if _, err := r.store.IncrementEpisode(ctx); err != nil {
		return fmt.Errorf("advance episode counter: %w", err)
	}
	if err := r.store.AddPastTopic(ctx, rc.Brief.Theme); err != nil {
		runLogger.Warn("failed to record past topic", logging.Error(err))
	}
	if err := r.store.AppendRun(ctx, state.RunRecord{
		RunID:      rc.RunID,
		Episode:    rc.Episode,
		StartedAt:  rc.StartedAt,
		FinishedAt: finished,
		Outcome:    "success",
	}); err != nil {
		runLogger.Error("failed to record successful run", logging.Error(err))
	}

	r.transition(ctx, StateDone)
	message := fmt.Sprintf("%s scheduled for %s", episode.Title(rc.Episode), rc.PublishDate.Format("2006-01-02"))
	if rc.BlogURL != "" {
		message += "\n" + rc.BlogURL
	}
	if failures := rc.Failures(); len(failures) > 0 {
		message += fmt.Sprintf("\n%d non-critical stage(s) skipped", len(failures))
	}
	notifications.Alert(ctx, runLogger, r.notifier, notifications.SeverityInfo,
		"Episode published: "+episode.Title(rc.Episode), message)

	runLogger.Info("run completed",
		logging.String(logging.FieldEventType, "run_complete"),
		logging.Int("failures", len(rc.Failures())))
	return nil
}

func (r *Runner) transition(ctx context.Context, next State) {
	previous := r.state
	r.state = next
	logging.WithContext(ctx, r.logger).Debug("state transition",
		logging.String("from", string(previous)),
		logging.String("to", string(next)))
}
