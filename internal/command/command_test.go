package command

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"subcast/internal/services"
)

func TestRunCapturesStdout(t *testing.T) {
	result, err := Run(context.Background(), 5*time.Second, "sh", "-c", "echo hello")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(string(result.Stdout)) != "hello" {
		t.Fatalf("stdout = %q", result.Stdout)
	}
}

func TestRunTagsNonZeroExit(t *testing.T) {
	_, err := Run(context.Background(), 5*time.Second, "sh", "-c", "echo broken >&2; exit 3")
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool error, got %v", err)
	}
	if !strings.Contains(err.Error(), "broken") {
		t.Fatalf("stderr tail missing from error: %v", err)
	}
}

func TestRunTimesOut(t *testing.T) {
	start := time.Now()
	_, err := Run(context.Background(), 100*time.Millisecond, "sleep", "10")
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Fatalf("timeout took too long: %v", elapsed)
	}
}

func TestRunRejectsEmptyBinary(t *testing.T) {
	_, err := Run(context.Background(), time.Second, "  ")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
