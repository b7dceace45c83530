// Package selector chooses which new items a run will process: it merges the
// per-source listings, orders them newest first, drops anything that already
// has a record, and caps the batch.
package selector

import (
	"context"
	"log/slog"
	"sort"

	"subcast/internal/config"
	"subcast/internal/logging"
	"subcast/internal/ytdlp"
)

// Lister fetches the newest entries for one source.
type Lister interface {
	Listing(ctx context.Context, sourceID, channelURL string, limit int) ([]ytdlp.Candidate, error)
}

// RecordChecker reports whether an item id already has a record, regardless
// of its status.
type RecordChecker interface {
	Exists(itemID string) bool
}

// Selector builds the candidate batch for one run.
type Selector struct {
	lister       Lister
	records      RecordChecker
	sources      []config.Source
	listingLimit int
	maxPerRun    int
	logger       *slog.Logger
}

// New builds a selector over the configured sources.
func New(lister Lister, records RecordChecker, sources []config.Source, listingLimit, maxPerRun int, logger *slog.Logger) *Selector {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Selector{
		lister:       lister,
		records:      records,
		sources:      sources,
		listingLimit: listingLimit,
		maxPerRun:    maxPerRun,
		logger:       logging.WithComponent(logger, "selector"),
	}
}

// Select returns up to maxPerRun fresh candidates, newest first. A source
// whose listing fails is logged and skipped so one dead feed cannot starve
// the others. The sort is stable, so entries with equal timestamps keep their
// merge order.
func (s *Selector) Select(ctx context.Context) []ytdlp.Candidate {
	var merged []ytdlp.Candidate
	for _, source := range s.sources {
		listing, err := s.lister.Listing(ctx, source.ID, source.URL, s.listingLimit)
		if err != nil {
			s.logger.Warn("source listing failed, continuing with remaining sources",
				logging.String(logging.FieldSource, source.ID),
				logging.Error(err))
			continue
		}
		merged = append(merged, listing...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].PublishedAt.After(merged[j].PublishedAt)
	})

	var fresh []ytdlp.Candidate
	seen := make(map[string]struct{})
	for _, candidate := range merged {
		if _, dup := seen[candidate.ID]; dup {
			continue
		}
		seen[candidate.ID] = struct{}{}
		if s.records.Exists(candidate.ID) {
			continue
		}
		fresh = append(fresh, candidate)
		if len(fresh) == s.maxPerRun {
			break
		}
	}
	return fresh
}
