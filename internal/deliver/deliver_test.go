package deliver

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"subcast/internal/services"
)

func TestDeliverCopiesThreeArtifacts(t *testing.T) {
	src := t.TempDir()
	artifacts := Artifacts{
		VideoPath:     writeArtifact(t, src, "final.mp4", "video-bytes"),
		MetadataPath:  writeArtifact(t, src, "metadata.json", "{}"),
		ThumbnailPath: writeArtifact(t, src, "thumb.jpg", "jpeg-bytes"),
	}
	deliveryDir := t.TempDir()
	d := New(deliveryDir, nil)
	result, err := d.Deliver("run-20260301-120000", "vid1", artifacts)
	if err != nil {
		t.Fatalf("deliver: %v", err)
	}
	wantDir := filepath.Join(deliveryDir, "run-20260301-120000", "vid1")
	for _, path := range []string{result.VideoPath, result.MetadataPath, result.ThumbnailPath} {
		if filepath.Dir(path) != wantDir {
			t.Fatalf("artifact %q outside item dir %q", path, wantDir)
		}
		info, err := os.Stat(path)
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		if info.Size() == 0 {
			t.Fatalf("delivered artifact %s is empty", path)
		}
	}
	if filepath.Base(result.VideoPath) != "video.mp4" {
		t.Fatalf("video should keep its extension, got %q", result.VideoPath)
	}
}

func TestDeliverRejectsEmptyArtifact(t *testing.T) {
	src := t.TempDir()
	artifacts := Artifacts{
		VideoPath:     writeArtifact(t, src, "final.mp4", ""),
		MetadataPath:  writeArtifact(t, src, "metadata.json", "{}"),
		ThumbnailPath: writeArtifact(t, src, "thumb.jpg", "x"),
	}
	d := New(t.TempDir(), nil)
	_, err := d.Deliver("run", "item", artifacts)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDeliverRejectsMissingPath(t *testing.T) {
	d := New(t.TempDir(), nil)
	_, err := d.Deliver("run", "item", Artifacts{})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func writeArtifact(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
