package workflow

import (
	"context"
	"errors"
	"log/slog"

	"github.com/sourcegraph/conc/pool"

	"showrunner/internal/episode"
	"showrunner/internal/logging"
	"showrunner/internal/notifications"
	"showrunner/internal/services"
	"showrunner/internal/stage"
)

// GatherResult carries the planning inputs produced by the concurrent gather
// phase. Fields for failed stages hold their zero values.
type GatherResult struct {
	Insights string
	News     []episode.NewsItem
	Content  episode.ContentBundle
	Outcomes []stage.Outcome
}

// ParallelGatherer runs the three gathering stages concurrently on a bounded
// worker pool. Each failed stage raises exactly one alert graded by its
// criticality; a critical failure makes the whole gather fail after all
// stages have finished.
type ParallelGatherer struct {
	registry *stage.Registry
	notifier notifications.Service
	logger   *slog.Logger
	workers  int
}

// NewParallelGatherer constructs a gatherer with the given worker bound.
func NewParallelGatherer(registry *stage.Registry, notifier notifications.Service, logger *slog.Logger, workers int) *ParallelGatherer {
	if registry == nil {
		registry = stage.DefaultRegistry()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	if workers <= 0 {
		workers = 3
	}
	return &ParallelGatherer{
		registry: registry,
		notifier: notifier,
		logger:   logger,
		workers:  workers,
	}
}

// Gather executes the gathering stages and waits for all of them regardless
// of individual failures. The returned error is non-nil when any critical
// stage failed; the partial result is still populated from the stages that
// succeeded.
func (g *ParallelGatherer) Gather(ctx context.Context, collab Collaborators, number int, pastTopics []string) (GatherResult, error) {
	var result GatherResult
	var insightsOutcome, newsOutcome, researchOutcome stage.Outcome

	workers := pool.New().WithMaxGoroutines(g.workers)
	workers.Go(func() {
		insightsOutcome = g.runGatherStage(ctx, stage.Insights, func(stageCtx context.Context) error {
			insights, err := collab.GatherInsights(stageCtx)
			if err != nil {
				return services.Wrap(services.ErrCollaborator, stage.Insights, "gather insights", "", err)
			}
			result.Insights = insights
			return nil
		})
	})
	workers.Go(func() {
		newsOutcome = g.runGatherStage(ctx, stage.News, func(stageCtx context.Context) error {
			news, err := collab.GatherNews(stageCtx)
			if err != nil {
				return services.Wrap(services.ErrCollaborator, stage.News, "fetch feeds", "", err)
			}
			if len(news) == 0 {
				return services.Wrap(services.ErrEmptyResult, stage.News, "fetch feeds", "no news items in lookback window", nil)
			}
			result.News = news
			return nil
		})
	})
	workers.Go(func() {
		researchOutcome = g.runGatherStage(ctx, stage.Research, func(stageCtx context.Context) error {
			content, err := collab.GatherContent(stageCtx, number, pastTopics)
			if err != nil {
				return services.Wrap(services.ErrCollaborator, stage.Research, "research content", "", err)
			}
			result.Content = content
			return nil
		})
	})
	workers.Wait()

	// Fixed reporting order keeps alerts and history deterministic.
	result.Outcomes = []stage.Outcome{insightsOutcome, newsOutcome, researchOutcome}

	var criticalErrs []error
	for _, outcome := range result.Outcomes {
		if outcome.Status != stage.StatusFailure {
			continue
		}
		severity := notifications.SeverityWarning
		if g.registry.Criticality(outcome.Stage) == stage.Critical {
			severity = notifications.SeverityCritical
			criticalErrs = append(criticalErrs, outcome.Err)
		}
		notifications.Alert(ctx, g.logger, g.notifier, severity,
			"Stage failed: "+stage.Label(outcome.Stage), outcome.Err.Error())
	}

	if len(criticalErrs) > 0 {
		return result, errors.Join(criticalErrs...)
	}
	return result, nil
}

func (g *ParallelGatherer) runGatherStage(ctx context.Context, name string, fn func(context.Context) error) stage.Outcome {
	stageCtx := logging.WithStage(ctx, name)
	stageLogger := logging.WithContext(stageCtx, g.logger)

	stageLogger.Info("stage started",
		logging.String(logging.FieldEventType, "stage_start"))

	if err := fn(stageCtx); err != nil {
		stageLogger.Error("stage failed",
			logging.String(logging.FieldEventType, "stage_failure"),
			logging.String("criticality", g.registry.Criticality(name).String()),
			logging.Error(err))
		return stage.Failed(name, err)
	}

	stageLogger.Info("stage completed",
		logging.String(logging.FieldEventType, "stage_complete"))
	return stage.Succeeded(name)
}
