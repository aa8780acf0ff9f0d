package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"showrunner/internal/config"
)

const (
	episodeCounter = "episode"
	lastRunStamp   = "last_run"
)

// PublicationRecord describes the most recently published episode.
type PublicationRecord struct {
	CampaignID  string
	EpisodeID   string
	Episode     int
	PublishDate string
	BlogURL     string
	RecordedAt  time.Time
}

// RunRecord is one row of the append-only run history.
type RunRecord struct {
	RunID       string
	Episode     int
	StartedAt   time.Time
	FinishedAt  time.Time
	Outcome     string
	FailedStage string
	Error       string
}

// Store manages durable run state backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the state database.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.DataDir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// EpisodeNumber returns the current episode number, starting at 1 for a fresh
// database.
func (s *Store) EpisodeNumber(ctx context.Context) (int, error) {
	var value int
	err := s.db.QueryRowContext(ctx, "SELECT value FROM counters WHERE name = ?", episodeCounter).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return 1, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read episode counter: %w", err)
	}
	return value, nil
}

// IncrementEpisode advances the episode counter by one and returns the new
// value. Called exactly once per fully successful run.
func (s *Store) IncrementEpisode(ctx context.Context) (int, error) {
	current, err := s.EpisodeNumber(ctx)
	if err != nil {
		return 0, err
	}
	next := current + 1
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO counters (name, value) VALUES (?, ?)
         ON CONFLICT(name) DO UPDATE SET value = excluded.value`,
		episodeCounter, next,
	)
	if err != nil {
		return 0, fmt.Errorf("increment episode counter: %w", err)
	}
	return next, nil
}

// LastRunAt returns the timestamp of the last successful run, if any.
func (s *Store) LastRunAt(ctx context.Context) (time.Time, bool, error) {
	var stamp string
	err := s.db.QueryRowContext(ctx, "SELECT stamp FROM stamps WHERE name = ?", lastRunStamp).Scan(&stamp)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("read last run stamp: %w", err)
	}
	parsed, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("parse last run stamp %q: %w", stamp, err)
	}
	return parsed, true, nil
}

// SetLastRunAt records the completion time of a successful run.
func (s *Store) SetLastRunAt(ctx context.Context, at time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO stamps (name, stamp) VALUES (?, ?)
         ON CONFLICT(name) DO UPDATE SET stamp = excluded.stamp`,
		lastRunStamp, at.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write last run stamp: %w", err)
	}
	return nil
}

// Publication returns the latest publication record, or nil when nothing has
// been published yet.
func (s *Store) Publication(ctx context.Context) (*PublicationRecord, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT campaign_id, episode_id, episode, publish_date, blog_url, recorded_at FROM publication WHERE id = 1")

	var rec PublicationRecord
	var recordedAt string
	err := row.Scan(&rec.CampaignID, &rec.EpisodeID, &rec.Episode, &rec.PublishDate, &rec.BlogURL, &recordedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read publication record: %w", err)
	}
	rec.RecordedAt, err = time.Parse(time.RFC3339Nano, recordedAt)
	if err != nil {
		return nil, fmt.Errorf("parse publication timestamp %q: %w", recordedAt, err)
	}
	return &rec, nil
}

// SetPublication overwrites the publication record wholesale. History is not
// retained here; the run history table carries per-run outcomes.
func (s *Store) SetPublication(ctx context.Context, rec PublicationRecord) error {
	recordedAt := rec.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO publication (id, campaign_id, episode_id, episode, publish_date, blog_url, recorded_at)
         VALUES (1, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(id) DO UPDATE SET
             campaign_id = excluded.campaign_id,
             episode_id = excluded.episode_id,
             episode = excluded.episode,
             publish_date = excluded.publish_date,
             blog_url = excluded.blog_url,
             recorded_at = excluded.recorded_at`,
		rec.CampaignID, rec.EpisodeID, rec.Episode, rec.PublishDate, rec.BlogURL,
		recordedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("write publication record: %w", err)
	}
	return nil
}

// AppendRun records one finished run in the append-only history.
func (s *Store) AppendRun(ctx context.Context, rec RunRecord) error {
	if strings.TrimSpace(rec.RunID) == "" {
		return fmt.Errorf("run id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_history (run_id, episode, started_at, finished_at, outcome, failed_stage, error)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.Episode,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.FinishedAt.UTC().Format(time.RFC3339Nano),
		rec.Outcome, rec.FailedStage, rec.Error,
	)
	if err != nil {
		return fmt.Errorf("append run history: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit history rows, most recent first.
func (s *Store) RecentRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, episode, started_at, finished_at, outcome, failed_stage, error
         FROM run_history ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query run history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var started, finished string
		if err := rows.Scan(&rec.RunID, &rec.Episode, &started, &finished, &rec.Outcome, &rec.FailedStage, &rec.Error); err != nil {
			return nil, fmt.Errorf("scan run history row: %w", err)
		}
		if rec.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse run start %q: %w", started, err)
		}
		if rec.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parse run finish %q: %w", finished, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// PastTopics returns all previously covered topics.
func (s *Store) PastTopics(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT topic FROM past_topics ORDER BY used_at")
	if err != nil {
		return nil, fmt.Errorf("query past topics: %w", err)
	}
	defer rows.Close()

	var topics []string
	for rows.Next() {
		var topic string
		if err := rows.Scan(&topic); err != nil {
			return nil, fmt.Errorf("scan past topic: %w", err)
		}
		topics = append(topics, topic)
	}
	return topics, rows.Err()
}

// AddPastTopic records a newly covered topic. Re-adding an existing topic
// refreshes its timestamp rather than failing.
func (s *Store) AddPastTopic(ctx context.Context, topic string) error {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO past_topics (topic, used_at) VALUES (?, ?)
         ON CONFLICT(topic) DO UPDATE SET used_at = excluded.used_at`,
		topic, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record past topic: %w", err)
	}
	return nil
}
