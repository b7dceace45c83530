package deps

import (
	"os"
	"path/filepath"
	"testing"

	"subcast/internal/config"
)

func TestCheckResolvesAndReportsMissing(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	if err := os.WriteFile(present, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	results := Check([]Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset"},
	})
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if !results[0].Available || results[0].Detail != "" {
		t.Fatalf("present binary misreported: %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("missing binary misreported: %#v", results[1])
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unset command misreported: %#v", results[2])
	}
}

func TestRequirementsCoverConfiguredTools(t *testing.T) {
	reqs := Requirements(config.Tools{
		YtDlp:   "yt-dlp",
		FFmpeg:  "ffmpeg",
		FFprobe: "ffprobe",
		ASR:     "subcast-asr",
	})
	if len(reqs) != 4 {
		t.Fatalf("expected 4 requirements, got %d", len(reqs))
	}
	if reqs[3].Command != "subcast-asr" {
		t.Fatalf("transcriber command not threaded: %#v", reqs[3])
	}
}

func TestAllRequired(t *testing.T) {
	ok := []Status{{Available: true}, {Optional: true}}
	if !AllRequired(ok) {
		t.Fatal("optional missing tools must not block")
	}
	bad := []Status{{Available: true}, {Available: false}}
	if AllRequired(bad) {
		t.Fatal("required missing tool must block")
	}
}
