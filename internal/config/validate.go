package config

import (
	"fmt"
	"strconv"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateFeeds(); err != nil {
		return err
	}
	if err := c.validateLLM(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateFeeds() error {
	if len(c.Feeds.Sources) == 0 {
		return fmt.Errorf("feeds.sources must list at least one RSS feed URL")
	}
	for _, src := range c.Feeds.Sources {
		if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
			return fmt.Errorf("feeds.sources entry %q is not an http(s) URL", src)
		}
	}
	return nil
}

func (c *Config) validateLLM() error {
	if strings.TrimSpace(c.LLM.APIKey) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/showrunner/config.toml"
		}
		return fmt.Errorf("llm.api_key is required. Set OPENAI_API_KEY env var or edit %s (create with 'showrunner config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.GatherWorkers < 1 {
		return fmt.Errorf("workflow.gather_workers must be at least 1")
	}
	if _, _, err := ParseRunAt(c.Workflow.RunAt); err != nil {
		return fmt.Errorf("workflow.run_at: %w", err)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	return nil
}

// ParseRunAt parses a wall-clock schedule time in HH:MM form.
func ParseRunAt(value string) (hour, minute int, err error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM, got %q", value)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("hour out of range in %q", value)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("minute out of range in %q", value)
	}
	return hour, minute, nil
}
