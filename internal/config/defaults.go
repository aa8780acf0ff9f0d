package config

const (
	defaultDataDir    = "~/.local/share/showrunner/data"
	defaultOutputDir  = "~/.local/share/showrunner/output"
	defaultHistoryDir = "~/.local/share/showrunner/history"
	defaultLogDir     = "~/.local/share/showrunner/logs"

	defaultShowName        = "Vibe Dev Podcast"
	defaultShowTagline     = "Weekly MCP and AI tooling updates"
	defaultPublishLeadDays = 1

	defaultFeedLookbackHours  = 24
	defaultFeedRequestTimeout = 15

	defaultLLMBaseURL        = "https://api.openai.com/v1"
	defaultLLMModel          = "gpt-4o"
	defaultLLMTimeoutSeconds = 120

	defaultTTSBaseURL        = "https://api.elevenlabs.io/v1"
	defaultTTSVoiceID        = "21m00Tcm4TlvDq8ikWAM"
	defaultTTSModel          = "eleven_multilingual_v2"
	defaultTTSTimeoutSeconds = 300

	defaultPodcastBaseURL        = "https://api.spotify.com/v1/podcasters"
	defaultPodcastTimeoutSeconds = 300

	defaultBlogTimeoutSeconds = 60

	defaultNewsletterFromName       = "Vibe Dev"
	defaultNewsletterReplyTo        = "newsletter@vibedev.com"
	defaultNewsletterSendHour       = 9
	defaultNewsletterTimeoutSeconds = 60

	defaultImagesBaseURL        = "https://api.openai.com/v1"
	defaultImagesModel          = "dall-e-3"
	defaultImagesFallbackURL    = "https://example.com/fallback.jpg"
	defaultImagesTimeoutSeconds = 120

	defaultSocialTimeoutSeconds = 30

	defaultNotifyRequestTimeout = 10

	defaultGatherWorkers = 3
	defaultRunAt         = "07:00"

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:    defaultDataDir,
			OutputDir:  defaultOutputDir,
			HistoryDir: defaultHistoryDir,
			LogDir:     defaultLogDir,
		},
		Show: Show{
			Name:            defaultShowName,
			Tagline:         defaultShowTagline,
			PublishLeadDays: defaultPublishLeadDays,
		},
		Feeds: Feeds{
			LookbackHours:  defaultFeedLookbackHours,
			RequestTimeout: defaultFeedRequestTimeout,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		TTS: TTS{
			BaseURL:        defaultTTSBaseURL,
			VoiceID:        defaultTTSVoiceID,
			Model:          defaultTTSModel,
			TimeoutSeconds: defaultTTSTimeoutSeconds,
		},
		Podcast: Podcast{
			BaseURL:        defaultPodcastBaseURL,
			TimeoutSeconds: defaultPodcastTimeoutSeconds,
		},
		Blog: Blog{
			Tags:           []string{"podcast", "mcp", "newsletter"},
			TimeoutSeconds: defaultBlogTimeoutSeconds,
		},
		Newsletter: Newsletter{
			FromName:       defaultNewsletterFromName,
			ReplyTo:        defaultNewsletterReplyTo,
			SendHour:       defaultNewsletterSendHour,
			TimeoutSeconds: defaultNewsletterTimeoutSeconds,
		},
		Images: Images{
			Enabled:        true,
			BaseURL:        defaultImagesBaseURL,
			Model:          defaultImagesModel,
			FallbackURL:    defaultImagesFallbackURL,
			TimeoutSeconds: defaultImagesTimeoutSeconds,
		},
		Social: Social{
			TimeoutSeconds: defaultSocialTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
		},
		Workflow: Workflow{
			GatherWorkers: defaultGatherWorkers,
			RunAt:         defaultRunAt,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
