package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir    string `toml:"data_dir"`
	OutputDir  string `toml:"output_dir"`
	HistoryDir string `toml:"history_dir"`
	LogDir     string `toml:"log_dir"`
}

// Show describes the episode series being produced.
type Show struct {
	Name            string `toml:"name"`
	Tagline         string `toml:"tagline"`
	PublishLeadDays int    `toml:"publish_lead_days"`
}

// Feeds contains configuration for RSS news gathering.
type Feeds struct {
	Sources        []string `toml:"sources"`
	LookbackHours  int      `toml:"lookback_hours"`
	RequestTimeout int      `toml:"request_timeout"`
}

// LLM contains connection settings for the chat-completion service used by
// research, theme, script, and newsletter generation.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// TTS contains configuration for audio synthesis.
type TTS struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	VoiceID        string `toml:"voice_id"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Podcast contains configuration for the episode hosting platform.
type Podcast struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	ShowID         string `toml:"show_id"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Blog contains configuration for the blog publishing API.
type Blog struct {
	APIKey         string   `toml:"api_key"`
	BaseURL        string   `toml:"base_url"`
	Tags           []string `toml:"tags"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// Newsletter contains configuration for newsletter campaign scheduling.
type Newsletter struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	ListID         string `toml:"list_id"`
	FromName       string `toml:"from_name"`
	ReplyTo        string `toml:"reply_to"`
	SendHour       int    `toml:"send_hour"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Images contains configuration for header image generation.
type Images struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	FallbackURL    string `toml:"fallback_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Social contains configuration for community engagement posts.
type Social struct {
	Enabled        bool   `toml:"enabled"`
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains configuration for ntfy operator alerts.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
}

// Workflow contains configuration for run scheduling and gathering.
type Workflow struct {
	GatherWorkers int    `toml:"gather_workers"`
	RunAt         string `toml:"run_at"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for showrunner.
//
// Configuration sections by subsystem:
//   - Paths: data, output, history, and log directories
//   - Show: series identity and publish lead time
//   - Feeds: RSS sources for news gathering
//   - LLM/TTS/Podcast/Blog/Newsletter/Images/Social: collaborator services
//   - Notifications: ntfy operator alerts
//   - Workflow: gather concurrency and daemon schedule
type Config struct {
	Paths         Paths         `toml:"paths"`
	Show          Show          `toml:"show"`
	Feeds         Feeds         `toml:"feeds"`
	LLM           LLM           `toml:"llm"`
	TTS           TTS           `toml:"tts"`
	Podcast       Podcast       `toml:"podcast"`
	Blog          Blog          `toml:"blog"`
	Newsletter    Newsletter    `toml:"newsletter"`
	Images        Images        `toml:"images"`
	Social        Social        `toml:"social"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the expanded default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/showrunner/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized. An optional .env file in
// the working directory supplies API credentials not present in the TOML.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	// Best-effort: a missing .env is not an error.
	_ = godotenv.Load()
	cfg.applyEnvOverrides()

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("showrunner.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// applyEnvOverrides fills credential fields from the environment when the TOML
// left them blank, so secrets can stay out of the config file.
func (c *Config) applyEnvOverrides() {
	overlay := func(target *string, keys ...string) {
		if strings.TrimSpace(*target) != "" {
			return
		}
		for _, key := range keys {
			if value := strings.TrimSpace(os.Getenv(key)); value != "" {
				*target = value
				return
			}
		}
	}

	overlay(&c.LLM.APIKey, "SHOWRUNNER_LLM_API_KEY", "OPENAI_API_KEY")
	overlay(&c.TTS.APIKey, "SHOWRUNNER_TTS_API_KEY", "ELEVENLABS_API_KEY")
	overlay(&c.Podcast.APIKey, "SHOWRUNNER_PODCAST_API_KEY")
	overlay(&c.Blog.APIKey, "SHOWRUNNER_BLOG_API_KEY", "GHOST_ADMIN_API_KEY")
	overlay(&c.Newsletter.APIKey, "SHOWRUNNER_NEWSLETTER_API_KEY", "MAILCHIMP_API_KEY")
	overlay(&c.Images.APIKey, "SHOWRUNNER_IMAGES_API_KEY")
	overlay(&c.Social.APIKey, "SHOWRUNNER_SOCIAL_API_KEY")
	overlay(&c.Notifications.NtfyTopic, "SHOWRUNNER_NTFY_TOPIC")
}

// EnsureDirectories creates the directories a run writes into.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.DataDir, c.Paths.OutputDir, c.Paths.HistoryDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SampleConfig returns the embedded sample configuration text.
func SampleConfig() string {
	return sampleConfig
}

// WriteSample writes the sample configuration to path, refusing to overwrite.
func WriteSample(path string) error {
	expanded, err := expandPath(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(expanded); err == nil {
		return fmt.Errorf("config already exists at %s", expanded)
	}
	if err := os.MkdirAll(filepath.Dir(expanded), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return os.WriteFile(expanded, []byte(sampleConfig), 0o644)
}
