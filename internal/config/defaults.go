package config

const (
	defaultStateDir    = "~/.local/share/subcast"
	defaultWorkDir     = "~/.local/share/subcast/work"
	defaultDeliveryDir = "~/subcast/delivery"
	defaultLogDir      = "~/.local/share/subcast/logs"

	defaultMaxPerRun    = 3
	defaultListingLimit = 10

	defaultMaxDurationSeconds = 1800
	defaultRetryLimit         = 3

	defaultYtDlpBinary   = "yt-dlp"
	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"
	defaultASRBinary     = "subcast-asr"
	defaultASRModel      = "base"

	defaultListingTimeout   = 60
	defaultPreflightTimeout = 60
	defaultDownloadTimeout  = 600
	defaultThumbnailTimeout = 60
	defaultASRTimeout       = 1800
	defaultTranslateTimeout = 300
	defaultRenderTimeout    = 1800
	defaultPackageTimeout   = 120
	defaultDeliverTimeout   = 120

	defaultTargetLanguage = "zh"
	defaultFontName       = "Noto Sans CJK SC"
	defaultFontSize       = 24
	defaultMaxLines       = 2
	defaultMaxLineChars   = 42

	defaultLLMBaseURL        = "https://api.deepseek.com"
	defaultLLMModel          = "deepseek-chat"
	defaultLLMTimeoutSeconds = 120

	defaultNtfyRequestTimeout = 10

	defaultDaemonIntervalSeconds = 3600

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir:    defaultStateDir,
			WorkDir:     defaultWorkDir,
			DeliveryDir: defaultDeliveryDir,
			LogDir:      defaultLogDir,
		},
		Selection: Selection{
			MaxPerRun:    defaultMaxPerRun,
			ListingLimit: defaultListingLimit,
		},
		Policy: Policy{
			MaxDurationSeconds: defaultMaxDurationSeconds,
			MinDurationSeconds: 0,
			ExcludeShorts:      true,
			RetryLimit:         defaultRetryLimit,
		},
		Tools: Tools{
			YtDlp:    defaultYtDlpBinary,
			FFmpeg:   defaultFFmpegBinary,
			FFprobe:  defaultFFprobeBinary,
			ASR:      defaultASRBinary,
			ASRModel: defaultASRModel,
			ASRVAD:   true,
		},
		Timeouts: Timeouts{
			Listing:   defaultListingTimeout,
			Preflight: defaultPreflightTimeout,
			Download:  defaultDownloadTimeout,
			Thumbnail: defaultThumbnailTimeout,
			ASR:       defaultASRTimeout,
			Translate: defaultTranslateTimeout,
			Render:    defaultRenderTimeout,
			Package:   defaultPackageTimeout,
			Deliver:   defaultDeliverTimeout,
		},
		Subtitles: Subtitles{
			TargetLanguage: defaultTargetLanguage,
			FontName:       defaultFontName,
			FontSize:       defaultFontSize,
			MaxLines:       defaultMaxLines,
			MaxLineChars:   defaultMaxLineChars,
		},
		LLM: LLM{
			BaseURL:        defaultLLMBaseURL,
			Model:          defaultLLMModel,
			TimeoutSeconds: defaultLLMTimeoutSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
			RunSummary:     true,
			Errors:         true,
		},
		Daemon: Daemon{
			IntervalSeconds: defaultDaemonIntervalSeconds,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
