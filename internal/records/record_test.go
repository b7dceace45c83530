package records

import (
	"testing"
	"time"
)

var baseTime = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func TestNewInitializesPending(t *testing.T) {
	record := New("vid1", "walks", "https://example.com/v/vid1", baseTime)
	if record.Status != StatusPending {
		t.Errorf("status = %q", record.Status)
	}
	if record.Attempts != 0 {
		t.Errorf("attempts = %d", record.Attempts)
	}
	if record.Step != StepDiscovered {
		t.Errorf("step = %q", record.Step)
	}
	if record.LastError != "" || record.Artifacts != nil {
		t.Errorf("unexpected failure fields: %+v", record)
	}
}

func TestWithAttemptFailureIsMonotonicAndPure(t *testing.T) {
	original := New("vid1", "walks", "u", baseTime)
	later := baseTime.Add(time.Minute)

	failed := WithAttemptFailure(original, "download: network down", later)
	if failed.Attempts != 1 {
		t.Errorf("attempts = %d", failed.Attempts)
	}
	if failed.LastError != "download: network down" {
		t.Errorf("last_error = %q", failed.LastError)
	}
	if !failed.UpdatedAt.Equal(later) {
		t.Errorf("updated_at = %v", failed.UpdatedAt)
	}
	if original.Attempts != 0 || original.LastError != "" {
		t.Error("transform mutated its input")
	}

	twice := WithAttemptFailure(failed, "render: ffmpeg exit 1", later.Add(time.Minute))
	if twice.Attempts != 2 {
		t.Errorf("attempts after second failure = %d", twice.Attempts)
	}
}

func TestWithSucceededCopiesArtifacts(t *testing.T) {
	record := New("vid1", "walks", "u", baseTime)
	artifacts := map[string]string{"video": "/out/final.mp4"}
	done := WithSucceeded(record, "deliver", baseTime.Add(time.Hour), artifacts)

	if done.Status != StatusSucceeded || done.Step != "deliver" {
		t.Fatalf("unexpected terminal record: %+v", done)
	}
	artifacts["video"] = "tampered"
	if done.Artifacts["video"] != "/out/final.mp4" {
		t.Error("artifacts map was not copied")
	}
}

func TestStatusTerminality(t *testing.T) {
	if StatusPending.IsTerminal() {
		t.Error("pending must not be terminal")
	}
	if !StatusSucceeded.IsTerminal() || !StatusFailed.IsTerminal() {
		t.Error("succeeded and failed are terminal")
	}
}

func TestParseStatus(t *testing.T) {
	if got, ok := ParseStatus(" Pending "); !ok || got != StatusPending {
		t.Errorf("ParseStatus: %q %v", got, ok)
	}
	if _, ok := ParseStatus("completed"); ok {
		t.Error("unknown status must not parse")
	}
}
