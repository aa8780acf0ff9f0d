// Package archive preserves run artifacts under the history directory.
package archive

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"showrunner/internal/config"
	"showrunner/internal/episode"
	"showrunner/internal/fileutil"
	"showrunner/internal/logging"
)

// Archiver copies finished run artifacts into dated history locations.
type Archiver struct {
	historyDir string
	logger     *slog.Logger
	now        func() time.Time
}

// NewArchiver constructs an archiver writing under cfg.Paths.HistoryDir.
func NewArchiver(cfg *config.Config, logger *slog.Logger) *Archiver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Archiver{
		historyDir: cfg.Paths.HistoryDir,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the archiver's clock (used in tests).
func (a *Archiver) WithClock(now func() time.Time) *Archiver {
	if now != nil {
		a.now = now
	}
	return a
}

// TranscriptPath returns the history location for an episode transcript.
func (a *Archiver) TranscriptPath(number int, when time.Time) string {
	name := fmt.Sprintf("%s_%s_script.txt", when.Format("2006-01-02"), episode.Slug(number))
	return filepath.Join(a.historyDir, "transcripts", name)
}

// ArchiveTranscript copies the episode script into the transcript history and
// returns the archived path.
func (a *Archiver) ArchiveTranscript(number int, scriptPath string) (string, error) {
	dst := a.TranscriptPath(number, a.now())
	if err := fileutil.CopyFileVerified(scriptPath, dst); err != nil {
		return "", fmt.Errorf("archive transcript: %w", err)
	}
	a.logger.Info("transcript archived",
		logging.String(logging.FieldEpisode, episode.Slug(number)),
		logging.String("path", dst))
	return dst, nil
}
