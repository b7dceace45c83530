package ffmpeg

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"subcast/internal/services"
)

func TestForceStyleDefaults(t *testing.T) {
	style := BurnInOptions{}.forceStyle()
	if !strings.Contains(style, "Fontname=Noto Sans CJK SC") {
		t.Fatalf("expected default font in style, got %q", style)
	}
	if !strings.Contains(style, "FontSize=24") {
		t.Fatalf("expected default size in style, got %q", style)
	}
}

func TestForceStyleCustom(t *testing.T) {
	style := BurnInOptions{FontName: "Source Han Sans", FontSize: 30}.forceStyle()
	if !strings.Contains(style, "Fontname=Source Han Sans") || !strings.Contains(style, "FontSize=30") {
		t.Fatalf("unexpected style %q", style)
	}
	if !strings.Contains(style, "Outline=2") {
		t.Fatalf("expected outline styling, got %q", style)
	}
}

func TestEscapeFilterPath(t *testing.T) {
	got := escapeFilterPath(`C:\work\sub.srt`)
	if strings.Contains(got, `\w`) {
		t.Fatalf("backslashes should be normalized, got %q", got)
	}
	if !strings.Contains(got, `\:`) {
		t.Fatalf("colons should be escaped, got %q", got)
	}
}

func TestExtractAudioMissingInput(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.mp4")
	err := ExtractAudio(context.Background(), "ffmpeg", time.Second, missing, filepath.Join(t.TempDir(), "out.wav"))
	if err == nil {
		t.Fatal("expected error for missing input")
	}
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRenderSubtitledMissingSubtitles(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "source.mp4")
	writeFile(t, video, "stub")
	err := RenderSubtitled(context.Background(), "ffmpeg", time.Second, video, filepath.Join(dir, "absent.srt"), filepath.Join(dir, "out.mp4"), BurnInOptions{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
