package records

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"subcast/internal/services"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "records"))
}

func TestCreateThenExistsAndLoad(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()

	if store.Exists("vid1") {
		t.Fatal("record must not exist before create")
	}
	created, err := store.Create("vid1", "walks", "https://example.com/v/vid1", now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !store.Exists("vid1") {
		t.Fatal("record must exist after create")
	}

	loaded, err := store.Load("vid1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.ItemID != created.ItemID || loaded.Status != StatusPending || loaded.Step != StepDiscovered {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestCreateRefusesExistingRecord(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()
	if _, err := store.Create("vid1", "walks", "u", now); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create("vid1", "walks", "u", now); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error on duplicate create, got %v", err)
	}
}

func TestLoadRejectsCorruptedRecord(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(store.Path("vid1"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := store.Load("vid1"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLoadRejectsShapeViolations(t *testing.T) {
	store := newTestStore(t)
	if err := os.MkdirAll(store.Dir(), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	cases := map[string]string{
		"unknown status":      `{"item_id":"vid1","source_id":"s","source_url":"u","created_at":"2026-08-30T12:00:00Z","updated_at":"2026-08-30T12:00:00Z","status":"done","attempts":0,"step":"discovered"}`,
		"negative attempts":   `{"item_id":"vid1","source_id":"s","source_url":"u","created_at":"2026-08-30T12:00:00Z","updated_at":"2026-08-30T12:00:00Z","status":"pending","attempts":-1,"step":"discovered"}`,
		"id mismatch":         `{"item_id":"other","source_id":"s","source_url":"u","created_at":"2026-08-30T12:00:00Z","updated_at":"2026-08-30T12:00:00Z","status":"pending","attempts":0,"step":"discovered"}`,
		"failed without error": `{"item_id":"vid1","source_id":"s","source_url":"u","created_at":"2026-08-30T12:00:00Z","updated_at":"2026-08-30T12:00:00Z","status":"failed","attempts":3,"step":"render"}`,
		"artifacts on pending": `{"item_id":"vid1","source_id":"s","source_url":"u","created_at":"2026-08-30T12:00:00Z","updated_at":"2026-08-30T12:00:00Z","status":"pending","attempts":0,"step":"discovered","artifacts":{"video":"/x"}}`,
	}
	for name, payload := range cases {
		if err := os.WriteFile(store.Path("vid1"), []byte(payload), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if _, err := store.Load("vid1"); !errors.Is(err, services.ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestSaveRoundTripsTerminalRecord(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC().Truncate(time.Second)
	record, err := store.Create("vid1", "walks", "u", now)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	record = WithAttemptFailure(record, "render: ffmpeg exit 1", now.Add(time.Minute))
	record = WithFailed(record, now.Add(time.Minute))
	if err := store.Save(record); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := store.Load("vid1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Status != StatusFailed || loaded.Attempts != 1 || loaded.LastError == "" {
		t.Fatalf("loaded = %+v", loaded)
	}
}

func TestListSkipsInvalidFiles(t *testing.T) {
	store := newTestStore(t)
	now := time.Now().UTC()
	if _, err := store.Create("vid1", "walks", "u", now); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := store.Create("vid2", "walks", "u", now.Add(time.Second)); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := os.WriteFile(store.Path("broken"), []byte("oops"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	list, invalid, err := store.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list = %+v", list)
	}
	if list[0].ItemID != "vid2" {
		t.Errorf("expected newest first, got %q", list[0].ItemID)
	}
	if len(invalid) != 1 || invalid[0] != "broken.json" {
		t.Errorf("invalid = %v", invalid)
	}
}

func TestListOnMissingDirectoryIsEmpty(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "never-created"))
	list, invalid, err := store.List()
	if err != nil || list != nil || invalid != nil {
		t.Fatalf("List on missing dir: %v %v %v", list, invalid, err)
	}
}
