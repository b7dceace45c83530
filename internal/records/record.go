package records

import (
	"strings"
	"time"
)

// Status represents the lifecycle of an item record.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

// StepDiscovered is the step a record carries before any stage has run.
const StepDiscovered = "discovered"

var statusSet = map[Status]struct{}{
	StatusPending:   {},
	StatusSucceeded: {},
	StatusFailed:    {},
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether no further transition may leave this status.
func (s Status) IsTerminal() bool {
	return s == StatusSucceeded || s == StatusFailed
}

// Record is the durable processing state for one item.
//
// ItemID, SourceID, and SourceURL are immutable once created. Attempts is
// monotonic; Step is the last stage the record was updated at and is
// diagnostic only; retries restart the pipeline from the first stage.
type Record struct {
	ItemID    string            `json:"item_id"`
	SourceID  string            `json:"source_id"`
	SourceURL string            `json:"source_url"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Status    Status            `json:"status"`
	Attempts  int               `json:"attempts"`
	Step      string            `json:"step"`
	LastError string            `json:"last_error,omitempty"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
}

// New initializes a fresh pending record for a just-selected candidate.
func New(itemID, sourceID, sourceURL string, now time.Time) Record {
	return Record{
		ItemID:    strings.TrimSpace(itemID),
		SourceID:  strings.TrimSpace(sourceID),
		SourceURL: strings.TrimSpace(sourceURL),
		CreatedAt: now.UTC(),
		UpdatedAt: now.UTC(),
		Status:    StatusPending,
		Attempts:  0,
		Step:      StepDiscovered,
	}
}

// WithStep returns a copy of r positioned at the named stage.
func WithStep(r Record, step string, now time.Time) Record {
	r.Step = step
	r.UpdatedAt = now.UTC()
	return r
}

// WithAttemptFailure returns a copy of r with one more consumed attempt and
// the failure message recorded. Status is left untouched; the caller decides
// between staying pending and going terminal.
func WithAttemptFailure(r Record, errorMessage string, now time.Time) Record {
	r.Attempts++
	r.LastError = strings.TrimSpace(errorMessage)
	r.UpdatedAt = now.UTC()
	return r
}

// WithFailed returns a copy of r in the terminal failed status.
func WithFailed(r Record, now time.Time) Record {
	r.Status = StatusFailed
	r.UpdatedAt = now.UTC()
	return r
}

// WithSucceeded returns a copy of r in the terminal succeeded status with the
// verified artifact paths attached.
func WithSucceeded(r Record, finalStep string, now time.Time, artifacts map[string]string) Record {
	r.Status = StatusSucceeded
	r.Step = finalStep
	r.UpdatedAt = now.UTC()
	if len(artifacts) > 0 {
		r.Artifacts = make(map[string]string, len(artifacts))
		for kind, path := range artifacts {
			r.Artifacts[kind] = path
		}
	}
	return r
}
