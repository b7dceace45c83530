package records

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"subcast/internal/fileutil"
	"subcast/internal/services"
)

// Store reads and writes item records under a single directory.
type Store struct {
	dir string
}

// NewStore constructs a store rooted at dir. The directory is created lazily
// on the first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// Path returns the record file location for an item id.
func (s *Store) Path(itemID string) string {
	return filepath.Join(s.dir, itemID+".json")
}

// Exists reports whether a record file exists for the item id. This is the
// sole idempotency signal consumed by the selector.
func (s *Store) Exists(itemID string) bool {
	info, err := os.Stat(s.Path(itemID))
	return err == nil && !info.IsDir()
}

// Create initializes and persists a fresh pending record. It fails if a
// record already exists for the id: creation is reserved for ids the selector
// has never surfaced before.
func (s *Store) Create(itemID, sourceID, sourceURL string, now time.Time) (Record, error) {
	if strings.TrimSpace(itemID) == "" {
		return Record{}, services.Wrap(services.ErrValidation, "records", "create", "empty item id", nil)
	}
	if s.Exists(itemID) {
		return Record{}, services.Wrap(services.ErrValidation, "records", "create", fmt.Sprintf("record already exists for %s", itemID), nil)
	}
	record := New(itemID, sourceID, sourceURL, now)
	if err := s.Save(record); err != nil {
		return Record{}, err
	}
	return record, nil
}

// Load reads and validates the record for an item id. A record that does not
// satisfy the expected shape is a fatal condition for that item and is never
// repaired or defaulted.
func (s *Store) Load(itemID string) (Record, error) {
	return s.loadPath(s.Path(itemID), itemID)
}

func (s *Store) loadPath(path, wantID string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("read record %s: %w", path, err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, services.Wrap(services.ErrValidation, "records", "load", fmt.Sprintf("malformed record %s", filepath.Base(path)), err)
	}
	if err := validate(record, wantID); err != nil {
		return Record{}, err
	}
	return record, nil
}

// Save persists the record durably. This is the crash-recovery checkpoint:
// it must not return before the bytes are on disk.
func (s *Store) Save(record Record) error {
	if err := validate(record, record.ItemID); err != nil {
		return err
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal record %s: %w", record.ItemID, err)
	}
	data = append(data, '\n')
	return fileutil.WriteFileAtomic(s.Path(record.ItemID), data, 0o644)
}

// List returns every valid record sorted by update time, newest first, plus
// the file names of records that failed validation.
func (s *Store) List() ([]Record, []string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("read records directory: %w", err)
	}

	var out []Record
	var invalid []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		wantID := strings.TrimSuffix(entry.Name(), ".json")
		record, err := s.loadPath(filepath.Join(s.dir, entry.Name()), wantID)
		if err != nil {
			invalid = append(invalid, entry.Name())
			continue
		}
		out = append(out, record)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, invalid, nil
}

func validate(record Record, wantID string) error {
	fail := func(message string) error {
		return services.Wrap(services.ErrValidation, "records", "validate", message, nil)
	}
	if strings.TrimSpace(record.ItemID) == "" {
		return fail("item_id is empty")
	}
	if wantID != "" && record.ItemID != wantID {
		return fail(fmt.Sprintf("item_id %q does not match file %q", record.ItemID, wantID))
	}
	if _, ok := ParseStatus(string(record.Status)); !ok {
		return fail(fmt.Sprintf("unknown status %q for %s", record.Status, record.ItemID))
	}
	if record.Attempts < 0 {
		return fail(fmt.Sprintf("negative attempts for %s", record.ItemID))
	}
	if record.CreatedAt.IsZero() || record.UpdatedAt.IsZero() {
		return fail(fmt.Sprintf("missing timestamps for %s", record.ItemID))
	}
	if record.UpdatedAt.Before(record.CreatedAt) {
		return fail(fmt.Sprintf("updated_at precedes created_at for %s", record.ItemID))
	}
	if record.Status != StatusSucceeded && len(record.Artifacts) > 0 {
		return fail(fmt.Sprintf("artifacts present on non-succeeded record %s", record.ItemID))
	}
	if record.Status == StatusFailed && strings.TrimSpace(record.LastError) == "" {
		return fail(fmt.Sprintf("failed record %s has no last_error", record.ItemID))
	}
	return nil
}
