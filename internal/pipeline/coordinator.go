package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"subcast/internal/config"
	"subcast/internal/logging"
	"subcast/internal/notifications"
	"subcast/internal/records"
	"subcast/internal/runlog"
	"subcast/internal/services"
	"subcast/internal/ytdlp"
)

// CandidateSelector yields the fresh candidates for one run.
type CandidateSelector interface {
	Select(ctx context.Context) []ytdlp.Candidate
}

// Coordinator owns one run: it establishes the run identity, gathers work,
// and drives the runner over each item strictly in order.
type Coordinator struct {
	runner   *Runner
	selector CandidateSelector
	store    *records.Store
	ledger   *runlog.Store
	notify   notifications.Service
	logger   *slog.Logger
	now      func() time.Time
}

// CoordinatorDeps carries the coordinator's collaborators. Ledger and Notify
// may be nil / noop.
type CoordinatorDeps struct {
	Runner   *Runner
	Selector CandidateSelector
	Store    *records.Store
	Ledger   *runlog.Store
	Notify   notifications.Service
	Logger   *slog.Logger
	Now      func() time.Time
}

// NewCoordinator wires a run coordinator.
func NewCoordinator(deps CoordinatorDeps) *Coordinator {
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	notify := deps.Notify
	if notify == nil {
		notify = notifications.NewService(config.Notifications{})
	}
	return &Coordinator{
		runner:   deps.Runner,
		selector: deps.Selector,
		store:    deps.Store,
		ledger:   deps.Ledger,
		notify:   notify,
		logger:   logging.WithComponent(logger, "coordinator"),
		now:      now,
	}
}

// Run executes one pipeline invocation: retry pending records first via
// direct lookup, then fresh candidates in selector order. Zero work is a
// successful no-op. Items are processed strictly sequentially and an item's
// outcome never aborts the loop.
func (c *Coordinator) Run(ctx context.Context) (runlog.Summary, error) {
	started := c.now()
	runID := "run-" + started.UTC().Format("20060102-150405")
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, c.logger)

	pending := c.pendingItems(logger)
	candidates := c.selector.Select(ctx)
	items := make([]Item, 0, len(pending)+len(candidates))
	items = append(items, pending...)
	for _, candidate := range candidates {
		items = append(items, Item{
			ItemID:    candidate.ID,
			SourceID:  candidate.SourceID,
			SourceURL: candidate.URL,
		})
	}

	summary := runlog.Summary{
		RunID:     runID,
		StartedAt: started,
		Retried:   len(pending),
		Fresh:     len(candidates),
	}
	logger.Info("run starting",
		logging.Int("pending_retries", len(pending)),
		logging.Int("fresh_candidates", len(candidates)))
	if err := c.notify.NotifyRunStarted(ctx, runID, len(items)); err != nil {
		logger.Warn("run-started notification failed", logging.Error(err))
	}

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			logger.Warn("run interrupted, remaining items left for the next invocation",
				logging.Error(err))
			break
		}
		itemCtx := services.WithRequestID(ctx, uuid.NewString())
		outcome := c.runner.Process(itemCtx, runID, item)
		switch {
		case outcome.IsSucceeded():
			summary.Succeeded++
		case outcome.IsSkipped():
			summary.Skipped++
		default:
			summary.Failed++
			if err := c.notify.NotifyItemFailed(ctx, item.ItemID, errors.New(outcome.Reason())); err != nil {
				logger.Warn("item-failed notification failed", logging.Error(err))
			}
		}
		logger.Info("item finished",
			logging.String(logging.FieldItemID, item.ItemID),
			logging.String("outcome", outcome.String()))
	}

	summary.FinishedAt = c.now()
	logger.Info("run complete",
		logging.Int("succeeded", summary.Succeeded),
		logging.Int("failed", summary.Failed),
		logging.Int("skipped", summary.Skipped),
		logging.Duration("elapsed", summary.Duration()))

	if c.ledger != nil {
		if err := c.ledger.Record(ctx, summary); err != nil {
			logger.Warn("run ledger write failed", logging.Error(err))
		}
	}
	if err := c.notify.NotifyRunCompleted(ctx, runID, summary.Succeeded, summary.Failed, summary.Skipped, summary.Duration()); err != nil {
		logger.Warn("run-completed notification failed", logging.Error(err))
	}
	return summary, nil
}

// pendingItems lists records still pending from earlier runs, oldest first,
// so long-waiting items get their retry before newer ones.
func (c *Coordinator) pendingItems(logger *slog.Logger) []Item {
	all, invalid, err := c.store.List()
	if err != nil {
		logger.Warn("record listing failed, skipping pending retries", logging.Error(err))
		return nil
	}
	for _, name := range invalid {
		logger.Warn("ignoring invalid record file", logging.String("file", name))
	}
	var pending []records.Record
	for _, record := range all {
		if record.Status == records.StatusPending {
			pending = append(pending, record)
		}
	}
	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].UpdatedAt.Before(pending[j].UpdatedAt)
	})
	items := make([]Item, 0, len(pending))
	for _, record := range pending {
		items = append(items, Item{
			ItemID:    record.ItemID,
			SourceID:  record.SourceID,
			SourceURL: record.SourceURL,
		})
	}
	return items
}
