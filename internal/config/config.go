package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Source identifies one upstream channel to watch.
type Source struct {
	ID  string `toml:"id"`
	URL string `toml:"url"`
}

// Paths contains directory configuration.
type Paths struct {
	StateDir    string `toml:"state_dir"`
	WorkDir     string `toml:"work_dir"`
	DeliveryDir string `toml:"delivery_dir"`
	LogDir      string `toml:"log_dir"`
}

// Selection controls candidate discovery.
type Selection struct {
	MaxPerRun    int `toml:"max_per_run"`
	ListingLimit int `toml:"listing_limit"`
}

// Policy contains the preflight admission rules and the retry ceiling.
type Policy struct {
	MaxDurationSeconds int  `toml:"max_duration_seconds"`
	MinDurationSeconds int  `toml:"min_duration_seconds"`
	ExcludeShorts      bool `toml:"exclude_shorts"`
	RetryLimit         int  `toml:"retry_limit"`
}

// Tools names the external binaries the pipeline shells out to.
type Tools struct {
	YtDlp    string `toml:"ytdlp"`
	FFmpeg   string `toml:"ffmpeg"`
	FFprobe  string `toml:"ffprobe"`
	ASR      string `toml:"asr"`
	ASRModel string `toml:"asr_model"`
	ASRVAD   bool   `toml:"asr_vad"`
}

// Timeouts bounds each external call, in seconds.
type Timeouts struct {
	Listing   int `toml:"listing"`
	Preflight int `toml:"preflight"`
	Download  int `toml:"download"`
	Thumbnail int `toml:"thumbnail"`
	ASR       int `toml:"asr"`
	Translate int `toml:"translate"`
	Render    int `toml:"render"`
	Package   int `toml:"package"`
	Deliver   int `toml:"deliver"`
}

// Subtitles controls translation targets and the burn-in display constraint.
type Subtitles struct {
	TargetLanguage string `toml:"target_language"`
	FontName       string `toml:"font_name"`
	FontSize       int    `toml:"font_size"`
	MaxLines       int    `toml:"max_lines"`
	MaxLineChars   int    `toml:"max_line_chars"`
}

// LLM contains connection settings for the translation/metadata model.
type LLM struct {
	APIKey         string `toml:"api_key"`
	BaseURL        string `toml:"base_url"`
	Model          string `toml:"model"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Notifications contains ntfy push notification settings.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	RunSummary     bool   `toml:"run_summary"`
	Errors         bool   `toml:"errors"`
}

// Daemon contains timer-loop settings.
type Daemon struct {
	IntervalSeconds int `toml:"interval_seconds"`
}

// Logging contains log output settings.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for subcast.
type Config struct {
	Paths         Paths         `toml:"paths"`
	Sources       []Source      `toml:"sources"`
	Selection     Selection     `toml:"selection"`
	Policy        Policy        `toml:"policy"`
	Tools         Tools         `toml:"tools"`
	Timeouts      Timeouts      `toml:"timeouts"`
	Subtitles     Subtitles     `toml:"subtitles"`
	LLM           LLM           `toml:"llm"`
	Notifications Notifications `toml:"notifications"`
	Daemon        Daemon        `toml:"daemon"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/subcast/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
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
		if _, err := os.Stat(expanded); err != nil {
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
	projectPath, err := filepath.Abs("subcast.toml")
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

// EnsureDirectories creates the directories a run needs before it starts.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.RecordsDir(), c.Paths.WorkDir, c.Paths.DeliveryDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RecordsDir returns the directory holding per-item record files.
func (c *Config) RecordsDir() string {
	return filepath.Join(c.Paths.StateDir, "records")
}

// ArchivePath returns the shared yt-dlp download archive marker file.
func (c *Config) ArchivePath() string {
	return filepath.Join(c.Paths.StateDir, "download-archive.txt")
}

// RunLogPath returns the SQLite run-history ledger location.
func (c *Config) RunLogPath() string {
	return filepath.Join(c.Paths.StateDir, "runs.db")
}

// LockPath returns the single-instance lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "subcast.lock")
}

// PIDPath returns the daemon pid file location.
func (c *Config) PIDPath() string {
	return filepath.Join(c.Paths.StateDir, "subcast.pid")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
