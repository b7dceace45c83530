package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateSelection(); err != nil {
		return err
	}
	if err := c.validatePolicy(); err != nil {
		return err
	}
	if err := c.validateSubtitles(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Daemon.IntervalSeconds <= 0 {
		return errors.New("daemon.interval_seconds must be positive")
	}
	return nil
}

func (c *Config) validateSources() error {
	seen := make(map[string]struct{}, len(c.Sources))
	for i, src := range c.Sources {
		if src.ID == "" {
			return fmt.Errorf("sources[%d].id must be set", i)
		}
		if src.URL == "" {
			return fmt.Errorf("sources[%d].url must be set for %q", i, src.ID)
		}
		if _, dup := seen[src.ID]; dup {
			return fmt.Errorf("sources: duplicate id %q", src.ID)
		}
		seen[src.ID] = struct{}{}
	}
	return nil
}

func (c *Config) validateSelection() error {
	if c.Selection.MaxPerRun <= 0 {
		return errors.New("selection.max_per_run must be positive")
	}
	if c.Selection.ListingLimit <= 0 {
		return errors.New("selection.listing_limit must be positive")
	}
	return nil
}

func (c *Config) validatePolicy() error {
	if c.Policy.MaxDurationSeconds <= 0 {
		return errors.New("policy.max_duration_seconds must be positive")
	}
	if c.Policy.MinDurationSeconds < 0 {
		return errors.New("policy.min_duration_seconds must not be negative")
	}
	if c.Policy.MinDurationSeconds >= c.Policy.MaxDurationSeconds {
		return errors.New("policy.min_duration_seconds must be below policy.max_duration_seconds")
	}
	if c.Policy.RetryLimit <= 0 {
		return errors.New("policy.retry_limit must be positive")
	}
	return nil
}

func (c *Config) validateSubtitles() error {
	if len(c.Subtitles.TargetLanguage) != 2 {
		return fmt.Errorf("subtitles.target_language must be a two-letter code, got %q", c.Subtitles.TargetLanguage)
	}
	if c.Subtitles.MaxLines > 4 {
		return errors.New("subtitles.max_lines above 4 is unreadable on screen")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", c.Logging.Level)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		return errors.New("paths.state_dir must be set")
	}
	return nil
}
