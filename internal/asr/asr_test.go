package asr

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subcast/internal/services"
)

func TestParseSummaryLastLineWins(t *testing.T) {
	stdout := "progress line one\n" +
		`{"segments_count":2,"language":"en","language_probability":0.98,"json_path":"/tmp/a.json","srt_path":"/tmp/a.srt"}` + "\n"
	sum, err := parseSummary(stdout)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if sum.SegmentsCount != 2 || sum.Language != "en" {
		t.Fatalf("unexpected summary %+v", sum)
	}
}

func TestParseSummaryRejectsMissingPaths(t *testing.T) {
	_, err := parseSummary(`{"segments_count":1,"language":"en"}`)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestParseSummaryRejectsEmptyOutput(t *testing.T) {
	_, err := parseSummary("   \n  ")
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadSegmentsPreservesOrder(t *testing.T) {
	path := writeSegments(t, []map[string]any{
		{"start": 0.0, "end": 1.5, "text": " first "},
		{"start": 1.5, "end": 3.0, "text": "second"},
		{"start": 3.0, "end": 4.2, "text": "third"},
	})
	segments, err := loadSegments(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("expected 3 segments, got %d", len(segments))
	}
	if segments[0].Text != "first" || segments[2].Text != "third" {
		t.Fatalf("order or trimming wrong: %+v", segments)
	}
	if segments[0].End != 1500*time.Millisecond {
		t.Fatalf("timing conversion wrong: %v", segments[0].End)
	}
}

func TestLoadSegmentsRejectsBackwardsTiming(t *testing.T) {
	path := writeSegments(t, []map[string]any{
		{"start": 5.0, "end": 1.0, "text": "x"},
	})
	if _, err := loadSegments(path); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTranscribeEndToEndWithStub(t *testing.T) {
	outDir := t.TempDir()
	segmentsPath := filepath.Join(outDir, "source_segments.json")
	srtPath := filepath.Join(outDir, "source.srt")

	segs := []map[string]any{
		{"start": 0.0, "end": 2.0, "text": "hello"},
		{"start": 2.0, "end": 4.0, "text": "world"},
	}
	raw, err := json.Marshal(segs)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(segmentsPath, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(srtPath, []byte("1\n00:00:00,000 --> 00:00:02,000\nhello\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	sum := map[string]any{
		"segments_count":       2,
		"language":             "en",
		"language_probability": 0.97,
		"json_path":            segmentsPath,
		"srt_path":             srtPath,
	}
	sumJSON, err := json.Marshal(sum)
	if err != nil {
		t.Fatal(err)
	}
	script := filepath.Join(t.TempDir(), "asr-stub")
	body := "#!/bin/sh\necho 'Loading model' >&2\necho '" + string(sumJSON) + "'\n"
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatal(err)
	}

	tr := NewTranscriber(script, "base", true, 5*time.Second, nil)
	result, err := tr.Transcribe(context.Background(), filepath.Join(outDir, "audio.wav"), outDir)
	if err != nil {
		t.Fatalf("transcribe: %v", err)
	}
	if len(result.Segments) != 2 || result.Language != "en" {
		t.Fatalf("unexpected result %+v", result)
	}
	if result.SRTPath != srtPath {
		t.Fatalf("srt path not carried: %q", result.SRTPath)
	}
}

func TestTranscribeCountMismatch(t *testing.T) {
	outDir := t.TempDir()
	segmentsPath := filepath.Join(outDir, "source_segments.json")
	if err := os.WriteFile(segmentsPath, []byte(`[{"start":0,"end":1,"text":"only"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	sumJSON := `{"segments_count":5,"language":"en","language_probability":0.9,"json_path":"` +
		segmentsPath + `","srt_path":"` + filepath.Join(outDir, "source.srt") + `"}`
	script := filepath.Join(t.TempDir(), "asr-stub")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho '"+sumJSON+"'\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	tr := NewTranscriber(script, "base", false, 5*time.Second, nil)
	_, err := tr.Transcribe(context.Background(), "audio.wav", outDir)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func writeSegments(t *testing.T, segs []map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(segs)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "source_segments.json")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
