package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"subcast/internal/config"
	"subcast/internal/records"
	"subcast/internal/runlog"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.WorkDir = filepath.Join(base, "work")
	cfgVal.Paths.DeliveryDir = filepath.Join(base, "delivery")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfg := &cfgVal

	configPath := filepath.Join(base, "config.toml")
	writeTestConfig(t, configPath, cfg)
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConfigInitAndValidate(t *testing.T) {
	base := t.TempDir()
	target := filepath.Join(base, "conf", "config.toml")

	stdout, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(stdout, target) {
		t.Fatalf("init output missing target path: %q", stdout)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("sample config not written: %v", err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with overwrite: %v", err)
	}
}

func TestConfigValidateReportsPath(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, env.configPath, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(stdout, "Configuration valid") {
		t.Fatalf("unexpected validate output: %q", stdout)
	}
}

func TestConfigShowRedactsAPIKey(t *testing.T) {
	env := setupCLITestEnv(t)
	env.cfg.LLM.APIKey = "super-secret"
	writeTestConfig(t, env.configPath, env.cfg)

	stdout, _, err := runCLI(t, env.configPath, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(stdout, "super-secret") {
		t.Fatal("api key must not appear in config show output")
	}
	if !strings.Contains(stdout, "***") {
		t.Fatalf("expected redaction marker in output: %q", stdout)
	}
}

func TestRecordsCommandListsAndFilters(t *testing.T) {
	env := setupCLITestEnv(t)
	store := records.NewStore(env.cfg.RecordsDir())
	now := time.Date(2026, 2, 10, 8, 0, 0, 0, time.UTC)

	pending, err := store.Create("vid-pending", "chan", "https://example.com/watch?v=vid-pending", now)
	if err != nil {
		t.Fatalf("create pending: %v", err)
	}
	done, err := store.Create("vid-done", "chan", "https://example.com/watch?v=vid-done", now)
	if err != nil {
		t.Fatalf("create done: %v", err)
	}
	done = records.WithSucceeded(done, "deliver", now.Add(time.Minute), nil)
	if err := store.Save(done); err != nil {
		t.Fatalf("save done: %v", err)
	}

	stdout, _, err := runCLI(t, env.configPath, "records")
	if err != nil {
		t.Fatalf("records: %v", err)
	}
	for _, want := range []string{pending.ItemID, done.ItemID} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("records output missing %q: %q", want, stdout)
		}
	}

	stdout, _, err = runCLI(t, env.configPath, "records", "--status", "succeeded")
	if err != nil {
		t.Fatalf("records filtered: %v", err)
	}
	if strings.Contains(stdout, "vid-pending") || !strings.Contains(stdout, "vid-done") {
		t.Fatalf("status filter not applied: %q", stdout)
	}

	if _, _, err := runCLI(t, env.configPath, "records", "--status", "bogus"); err == nil {
		t.Fatal("unknown status should be rejected")
	}
}

func TestRunsCommandShowsLedger(t *testing.T) {
	env := setupCLITestEnv(t)
	ledger, err := runlog.Open(env.cfg.RunLogPath())
	if err != nil {
		t.Fatalf("open ledger: %v", err)
	}
	started := time.Date(2026, 2, 10, 9, 0, 0, 0, time.UTC)
	summary := runlog.Summary{
		RunID:      "run-20260210-090000",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Minute),
		Retried:    1,
		Fresh:      1,
		Succeeded:  1,
		Failed:     1,
	}
	if err := ledger.Record(context.Background(), summary); err != nil {
		t.Fatalf("record summary: %v", err)
	}
	ledger.Close()

	stdout, _, err := runCLI(t, env.configPath, "runs")
	if err != nil {
		t.Fatalf("runs: %v", err)
	}
	if !strings.Contains(stdout, summary.RunID) {
		t.Fatalf("runs output missing run id: %q", stdout)
	}
	if !strings.Contains(stdout, "RETRIED") || !strings.Contains(stdout, "FRESH") {
		t.Fatalf("runs output should show retried and fresh columns: %q", stdout)
	}
}

func TestStatusCommandSummarizesState(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, env.configPath, "status")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, want := range []string{"Daemon", "Records", "Sources", "Last run"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("status output missing %q: %q", want, stdout)
		}
	}
	if !strings.Contains(stdout, "not running") {
		t.Fatalf("expected idle daemon status: %q", stdout)
	}
}

func TestTestNotifyWithoutTopic(t *testing.T) {
	env := setupCLITestEnv(t)
	stdout, _, err := runCLI(t, env.configPath, "test-notify")
	if err != nil {
		t.Fatalf("test-notify: %v", err)
	}
	if !strings.Contains(stdout, "not configured") {
		t.Fatalf("unexpected output: %q", stdout)
	}
}

func TestDepsCommandReportsMissingTools(t *testing.T) {
	env := setupCLITestEnv(t)
	t.Setenv("PATH", t.TempDir())

	stdout, _, err := runCLI(t, env.configPath, "deps")
	if err == nil {
		t.Fatal("deps should fail when required tools are missing")
	}
	if !strings.Contains(stdout, "yt-dlp") || !strings.Contains(stdout, "missing") {
		t.Fatalf("deps output missing detail: %q", stdout)
	}
}
