package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeFeeds()
	c.normalizeServices()
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.HistoryDir, err = expandPath(c.Paths.HistoryDir); err != nil {
		return fmt.Errorf("paths.history_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFeeds() {
	sources := make([]string, 0, len(c.Feeds.Sources))
	for _, src := range c.Feeds.Sources {
		if src = strings.TrimSpace(src); src != "" {
			sources = append(sources, src)
		}
	}
	c.Feeds.Sources = sources
	if c.Feeds.LookbackHours <= 0 {
		c.Feeds.LookbackHours = defaultFeedLookbackHours
	}
	if c.Feeds.RequestTimeout <= 0 {
		c.Feeds.RequestTimeout = defaultFeedRequestTimeout
	}
}

func (c *Config) normalizeServices() {
	trimBase := func(base *string, fallback string) {
		*base = strings.TrimRight(strings.TrimSpace(*base), "/")
		if *base == "" {
			*base = fallback
		}
	}
	trimBase(&c.LLM.BaseURL, defaultLLMBaseURL)
	trimBase(&c.TTS.BaseURL, defaultTTSBaseURL)
	trimBase(&c.Podcast.BaseURL, defaultPodcastBaseURL)
	trimBase(&c.Images.BaseURL, defaultImagesBaseURL)
	c.Blog.BaseURL = strings.TrimRight(strings.TrimSpace(c.Blog.BaseURL), "/")
	c.Newsletter.BaseURL = strings.TrimRight(strings.TrimSpace(c.Newsletter.BaseURL), "/")
	c.Social.BaseURL = strings.TrimRight(strings.TrimSpace(c.Social.BaseURL), "/")

	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
	}
	if c.TTS.TimeoutSeconds <= 0 {
		c.TTS.TimeoutSeconds = defaultTTSTimeoutSeconds
	}
	if c.Podcast.TimeoutSeconds <= 0 {
		c.Podcast.TimeoutSeconds = defaultPodcastTimeoutSeconds
	}
	if c.Blog.TimeoutSeconds <= 0 {
		c.Blog.TimeoutSeconds = defaultBlogTimeoutSeconds
	}
	if c.Newsletter.TimeoutSeconds <= 0 {
		c.Newsletter.TimeoutSeconds = defaultNewsletterTimeoutSeconds
	}
	if c.Images.TimeoutSeconds <= 0 {
		c.Images.TimeoutSeconds = defaultImagesTimeoutSeconds
	}
	if c.Social.TimeoutSeconds <= 0 {
		c.Social.TimeoutSeconds = defaultSocialTimeoutSeconds
	}
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyRequestTimeout
	}
	if strings.TrimSpace(c.Images.FallbackURL) == "" {
		c.Images.FallbackURL = defaultImagesFallbackURL
	}
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.GatherWorkers <= 0 {
		c.Workflow.GatherWorkers = defaultGatherWorkers
	}
	c.Workflow.RunAt = strings.TrimSpace(c.Workflow.RunAt)
	if c.Workflow.RunAt == "" {
		c.Workflow.RunAt = defaultRunAt
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func expandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", nil
	}
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if path == "~" {
			return home, nil
		}
		return home + path[1:], nil
	}
	return path, nil
}
