// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"showrunner/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.DataDir = filepath.Join(base, "data")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.HistoryDir = filepath.Join(base, "history")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Feeds.Sources = []string{"https://example.com/feed.xml"}
	cfg.LLM.APIKey = "test"
	cfg.TTS.APIKey = "test"
	cfg.Podcast.APIKey = "test"
	cfg.Blog.APIKey = "test"
	cfg.Newsletter.APIKey = "test"
	cfg.Notifications.NtfyTopic = ""

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithNtfyTopic points alerts at the given topic URL.
func WithNtfyTopic(topic string) ConfigOption {
	return func(c *config.Config) {
		c.Notifications.NtfyTopic = topic
	}
}

// WithFeedSources overrides the RSS source list.
func WithFeedSources(sources ...string) ConfigOption {
	return func(c *config.Config) {
		c.Feeds.Sources = sources
	}
}
