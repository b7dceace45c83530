package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeSources()
	c.normalizeTools()
	c.normalizeTimeouts()
	c.normalizeSubtitles()
	c.normalizeLLM()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if c.Paths.DeliveryDir, err = expandPath(c.Paths.DeliveryDir); err != nil {
		return fmt.Errorf("paths.delivery_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSources() {
	normalized := c.Sources[:0]
	for _, src := range c.Sources {
		src.ID = strings.TrimSpace(src.ID)
		src.URL = strings.TrimSpace(src.URL)
		if src.ID == "" && src.URL == "" {
			continue
		}
		normalized = append(normalized, src)
	}
	c.Sources = normalized
}

func (c *Config) normalizeTools() {
	if strings.TrimSpace(c.Tools.YtDlp) == "" {
		c.Tools.YtDlp = defaultYtDlpBinary
	}
	if strings.TrimSpace(c.Tools.FFmpeg) == "" {
		c.Tools.FFmpeg = defaultFFmpegBinary
	}
	if strings.TrimSpace(c.Tools.FFprobe) == "" {
		c.Tools.FFprobe = defaultFFprobeBinary
	}
	if strings.TrimSpace(c.Tools.ASR) == "" {
		c.Tools.ASR = defaultASRBinary
	}
	if strings.TrimSpace(c.Tools.ASRModel) == "" {
		c.Tools.ASRModel = defaultASRModel
	}
}

func (c *Config) normalizeTimeouts() {
	defaults := Default().Timeouts
	apply := func(value *int, fallback int) {
		if *value <= 0 {
			*value = fallback
		}
	}
	apply(&c.Timeouts.Listing, defaults.Listing)
	apply(&c.Timeouts.Preflight, defaults.Preflight)
	apply(&c.Timeouts.Download, defaults.Download)
	apply(&c.Timeouts.Thumbnail, defaults.Thumbnail)
	apply(&c.Timeouts.ASR, defaults.ASR)
	apply(&c.Timeouts.Translate, defaults.Translate)
	apply(&c.Timeouts.Render, defaults.Render)
	apply(&c.Timeouts.Package, defaults.Package)
	apply(&c.Timeouts.Deliver, defaults.Deliver)
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.TargetLanguage = strings.ToLower(strings.TrimSpace(c.Subtitles.TargetLanguage))
	if c.Subtitles.TargetLanguage == "" {
		c.Subtitles.TargetLanguage = defaultTargetLanguage
	}
	if strings.TrimSpace(c.Subtitles.FontName) == "" {
		c.Subtitles.FontName = defaultFontName
	}
	if c.Subtitles.FontSize <= 0 {
		c.Subtitles.FontSize = defaultFontSize
	}
	if c.Subtitles.MaxLines <= 0 {
		c.Subtitles.MaxLines = defaultMaxLines
	}
	if c.Subtitles.MaxLineChars <= 0 {
		c.Subtitles.MaxLineChars = defaultMaxLineChars
	}
}

func (c *Config) normalizeLLM() {
	c.LLM.APIKey = strings.TrimSpace(c.LLM.APIKey)
	c.LLM.BaseURL = strings.TrimRight(strings.TrimSpace(c.LLM.BaseURL), "/")
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = defaultLLMBaseURL
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		c.LLM.Model = defaultLLMModel
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = defaultLLMTimeoutSeconds
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
