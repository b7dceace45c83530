package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("expected exists=false for missing file")
	}
	if cfg.Selection.MaxPerRun != defaultMaxPerRun {
		t.Errorf("max_per_run = %d, want %d", cfg.Selection.MaxPerRun, defaultMaxPerRun)
	}
	if cfg.Policy.RetryLimit != defaultRetryLimit {
		t.Errorf("retry_limit = %d, want %d", cfg.Policy.RetryLimit, defaultRetryLimit)
	}
	if cfg.Tools.YtDlp != "yt-dlp" {
		t.Errorf("ytdlp binary = %q", cfg.Tools.YtDlp)
	}
}

func TestLoadParsesSourcesAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
state_dir = "` + dir + `/state"

[[sources]]
id = "walks"
url = "https://www.youtube.com/@citywalks"

[selection]
max_per_run = 1

[policy]
max_duration_seconds = 300
retry_limit = 2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("resolved=%q exists=%v", resolved, exists)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0].ID != "walks" {
		t.Fatalf("sources = %+v", cfg.Sources)
	}
	if cfg.Selection.MaxPerRun != 1 {
		t.Errorf("max_per_run = %d", cfg.Selection.MaxPerRun)
	}
	if cfg.Policy.MaxDurationSeconds != 300 || cfg.Policy.RetryLimit != 2 {
		t.Errorf("policy = %+v", cfg.Policy)
	}
	if cfg.RecordsDir() != filepath.Join(dir, "state", "records") {
		t.Errorf("records dir = %q", cfg.RecordsDir())
	}
}

func TestValidateRejectsDuplicateSources(t *testing.T) {
	cfg := Default()
	cfg.Sources = []Source{
		{ID: "a", URL: "https://example.com/a"},
		{ID: "a", URL: "https://example.com/b"},
	}
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "duplicate id") {
		t.Fatalf("expected duplicate id error, got %v", err)
	}
}

func TestValidateRejectsBadPolicy(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	cfg.Policy.MinDurationSeconds = cfg.Policy.MaxDurationSeconds
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when min duration >= max duration")
	}
}

func TestNormalizeFillsTimeoutDefaults(t *testing.T) {
	cfg := Default()
	cfg.Timeouts.Render = 0
	cfg.Timeouts.ASR = -5
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Timeouts.Render != defaultRenderTimeout {
		t.Errorf("render timeout = %d", cfg.Timeouts.Render)
	}
	if cfg.Timeouts.ASR != defaultASRTimeout {
		t.Errorf("asr timeout = %d", cfg.Timeouts.ASR)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	if _, _, exists, err := Load(path); err != nil || !exists {
		t.Fatalf("sample config did not load cleanly: exists=%v err=%v", exists, err)
	}
}
