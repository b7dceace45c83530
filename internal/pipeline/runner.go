package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"subcast/internal/asr"
	"subcast/internal/config"
	"subcast/internal/deliver"
	"subcast/internal/fileutil"
	"subcast/internal/logging"
	"subcast/internal/metadata"
	"subcast/internal/notifications"
	"subcast/internal/records"
	"subcast/internal/services"
	"subcast/internal/subtitles"
	"subcast/internal/ytdlp"
)

// Stage names, in execution order. The record's step field holds one of
// these (or the initial discovered step) at any moment.
const (
	StagePreflight = "preflight"
	StageDownload  = "download"
	StageThumbnail = "thumbnail"
	StageASR       = "asr"
	StageTranslate = "translate"
	StageRender    = "render"
	StagePackage   = "package"
	StageDeliver   = "deliver"
)

// Item identifies one unit of work, whether freshly selected or retried from
// a pending record.
type Item struct {
	ItemID    string
	SourceID  string
	SourceURL string
}

// Prober checks a single item before any heavy work.
type Prober interface {
	Preflight(ctx context.Context, url string) (ytdlp.Probe, error)
}

// Fetcher downloads an item's media and info document.
type Fetcher interface {
	Download(ctx context.Context, url, destDir, archivePath string) (ytdlp.DownloadResult, error)
}

// Transcriber produces ordered source-language segments from audio.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, outDir string) (asr.Result, error)
}

// Translator converts segments to the target language, preserving count and
// order.
type Translator interface {
	Translate(ctx context.Context, segments []subtitles.Segment) ([]subtitles.Segment, error)
}

// MetadataGenerator drafts the publishing document.
type MetadataGenerator interface {
	Generate(ctx context.Context, info metadata.SourceInfo, detectedLanguage string) metadata.Document
}

// Copier places the final artifacts into the run's delivery directory.
type Copier interface {
	Deliver(runID, itemID string, artifacts deliver.Artifacts) (deliver.Result, error)
}

// Runner drives one item through the stage sequence.
type Runner struct {
	cfg        *config.Config
	store      *records.Store
	probe      Prober
	fetch      Fetcher
	transcribe Transcriber
	translate  Translator
	metadata   MetadataGenerator
	copier     Copier
	media      MediaProcessor
	notify     notifications.Service
	logger     *slog.Logger
	now        func() time.Time
}

// RunnerDeps carries the runner's collaborators.
type RunnerDeps struct {
	Config     *config.Config
	Store      *records.Store
	Probe      Prober
	Fetch      Fetcher
	Transcribe Transcriber
	Translate  Translator
	Metadata   MetadataGenerator
	Copier     Copier
	Media      MediaProcessor
	Notify     notifications.Service
	Logger     *slog.Logger
	Now        func() time.Time
}

// NewRunner wires a stage runner.
func NewRunner(deps RunnerDeps) *Runner {
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
	return &Runner{
		cfg:        deps.Config,
		store:      deps.Store,
		probe:      deps.Probe,
		fetch:      deps.Fetch,
		transcribe: deps.Transcribe,
		translate:  deps.Translate,
		metadata:   deps.Metadata,
		copier:     deps.Copier,
		media:      deps.Media,
		notify:     notify,
		logger:     logging.WithComponent(logger, "runner"),
		now:        now,
	}
}

// Process runs the whole stage sequence for one item and translates every
// failure into a record mutation. It never returns an error: the outcome and
// the persisted record are the result.
func (r *Runner) Process(ctx context.Context, runID string, item Item) Outcome {
	ctx = services.WithItemID(ctx, item.ItemID)
	ctx = services.WithRunID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	record, outcome, proceed := r.enter(item, logger)
	if !proceed {
		return outcome
	}

	workDir := filepath.Join(r.cfg.Paths.WorkDir, item.ItemID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return r.handleFailure(record, logger,
			services.Wrap(services.ErrTransient, "setup", "create workdir", "work directory not writable", err))
	}

	state := &itemState{workDir: workDir, item: item, runID: runID}
	stages := []struct {
		name string
		run  func(context.Context, *itemState) error
	}{
		{StagePreflight, r.stagePreflight},
		{StageDownload, r.stageDownload},
		{StageThumbnail, r.stageThumbnail},
		{StageASR, r.stageASR},
		{StageTranslate, r.stageTranslate},
		{StageRender, r.stageRender},
		{StagePackage, r.stagePackage},
		{StageDeliver, r.stageDeliver},
	}

	for _, stage := range stages {
		record = records.WithStep(record, stage.name, r.now())
		if err := r.store.Save(record); err != nil {
			logger.Error("record save failed, abandoning item", logging.Error(err))
			return Failed("record not persistable: " + err.Error())
		}

		stageCtx := services.WithStage(ctx, stage.name)
		stageLogger := logging.WithContext(stageCtx, r.logger)
		stageLogger.Info("stage starting")
		started := r.now()
		err := stage.run(stageCtx, state)
		if err == nil {
			stageLogger.Info("stage complete", logging.Duration("elapsed", r.now().Sub(started)))
			continue
		}

		if stage.name == StageThumbnail {
			stageLogger.Warn("thumbnail stage failed, continuing without affecting the record", logging.Error(err))
			continue
		}
		if stage.name == StagePreflight && services.IsPolicyRejection(err) {
			return r.handlePolicyRejection(record, stageLogger, err)
		}
		return r.handleFailure(record, stageLogger, err)
	}

	record = records.WithSucceeded(record, StageDeliver, r.now(), state.artifacts)
	if err := r.store.Save(record); err != nil {
		logger.Error("final record save failed", logging.Error(err))
		return Failed("record not persistable: " + err.Error())
	}
	logger.Info("item delivered",
		logging.Int("attempts", record.Attempts),
		logging.String("title", state.title))
	if err := r.notify.NotifyItemDelivered(ctx, state.title); err != nil {
		logger.Warn("delivered notification failed", logging.Error(err))
	}
	return Succeeded()
}

// enter applies the entry rules: terminal records skip, pending records
// restart from the first stage, absent records are created.
func (r *Runner) enter(item Item, logger *slog.Logger) (records.Record, Outcome, bool) {
	if r.store.Exists(item.ItemID) {
		record, err := r.store.Load(item.ItemID)
		if err != nil {
			logger.Error("record unreadable, refusing to touch item", logging.Error(err))
			return records.Record{}, Failed("record validation: " + err.Error()), false
		}
		switch record.Status {
		case records.StatusSucceeded:
			return records.Record{}, Skipped("already succeeded"), false
		case records.StatusFailed:
			return records.Record{}, Skipped("already failed (max retries)"), false
		}
		logger.Info("retrying pending item from the first stage",
			logging.Int("attempts", record.Attempts),
			logging.String("last_step", record.Step))
		return record, Outcome{}, true
	}

	record, err := r.store.Create(item.ItemID, item.SourceID, item.SourceURL, r.now())
	if err != nil {
		logger.Error("record creation failed", logging.Error(err))
		return records.Record{}, Failed("record not creatable: " + err.Error()), false
	}
	return record, Outcome{}, true
}

// handlePolicyRejection makes the record terminal immediately. Policy
// rejections are never retried across runs.
func (r *Runner) handlePolicyRejection(record records.Record, logger *slog.Logger, cause error) Outcome {
	record = records.WithAttemptFailure(record, cause.Error(), r.now())
	record = records.WithFailed(record, r.now())
	if err := r.store.Save(record); err != nil {
		logger.Error("record save failed after policy rejection", logging.Error(err))
	}
	logger.Info("item rejected by policy", logging.Error(cause))
	return Failed("policy rejection: " + cause.Error())
}

// handleFailure is the single top-level handler for counted stage failures.
func (r *Runner) handleFailure(record records.Record, logger *slog.Logger, cause error) Outcome {
	record = records.WithAttemptFailure(record, cause.Error(), r.now())
	terminal := record.Attempts >= r.cfg.Policy.RetryLimit
	if terminal {
		record = records.WithFailed(record, r.now())
	}
	if err := r.store.Save(record); err != nil {
		logger.Error("record save failed after stage failure", logging.Error(err))
	}
	logger.Error("stage failed",
		logging.Error(cause),
		logging.Int("attempts", record.Attempts),
		logging.Bool("terminal", terminal))
	return Failed(cause.Error())
}

// itemState accumulates the file paths stages hand to each other.
type itemState struct {
	runID   string
	item    Item
	workDir string

	title            string
	videoPath        string
	infoPath         string
	thumbnailPath    string
	audioPath        string
	detectedLanguage string
	segments         []subtitles.Segment
	translated       []subtitles.Segment
	renderedPath     string
	metadataPath     string
	artifacts        map[string]string
}

func (r *Runner) stagePreflight(ctx context.Context, state *itemState) error {
	policy := r.cfg.Policy
	if policy.ExcludeShorts && strings.Contains(state.item.SourceURL, "/shorts/") {
		return services.Wrap(services.ErrPolicy, StagePreflight, "check url", "shorts are excluded", nil)
	}
	probe, err := r.probe.Preflight(ctx, state.item.SourceURL)
	if err != nil {
		return err
	}
	if probe.IsLive || isLiveStatus(probe.LiveStatus) {
		return services.Wrap(services.ErrPolicy, StagePreflight, "check liveness", "live stream", nil)
	}
	duration, known := probe.Duration()
	if !known {
		return services.Wrap(services.ErrPolicy, StagePreflight, "check duration", "missing duration", nil)
	}
	if duration > policy.MaxDurationSeconds {
		return services.Wrap(services.ErrPolicy, StagePreflight, "check duration",
			fmt.Sprintf("duration %ds exceeds ceiling %ds", duration, policy.MaxDurationSeconds), nil)
	}
	if duration < policy.MinDurationSeconds {
		return services.Wrap(services.ErrPolicy, StagePreflight, "check duration",
			fmt.Sprintf("duration %ds below floor %ds", duration, policy.MinDurationSeconds), nil)
	}
	state.title = probe.Title
	return nil
}

func isLiveStatus(status string) bool {
	switch status {
	case "is_live", "is_upcoming", "post_live":
		return true
	default:
		return false
	}
}

func (r *Runner) stageDownload(ctx context.Context, state *itemState) error {
	result, err := r.fetch.Download(ctx, state.item.SourceURL, state.workDir, r.cfg.ArchivePath())
	if err != nil {
		return err
	}
	state.videoPath = result.VideoPath
	state.infoPath = result.InfoPath
	return nil
}

func (r *Runner) stageThumbnail(ctx context.Context, state *itemState) error {
	out := filepath.Join(state.workDir, "thumbnail.jpg")
	if err := r.media.ExtractThumbnail(ctx, state.videoPath, out); err != nil {
		return err
	}
	state.thumbnailPath = out
	return nil
}

func (r *Runner) stageASR(ctx context.Context, state *itemState) error {
	state.audioPath = filepath.Join(state.workDir, "audio.wav")
	if err := r.media.ExtractAudio(ctx, state.videoPath, state.audioPath); err != nil {
		return err
	}
	result, err := r.transcribe.Transcribe(ctx, state.audioPath, state.workDir)
	if err != nil {
		return err
	}
	state.segments = result.Segments
	state.detectedLanguage = result.Language
	return nil
}

func (r *Runner) stageTranslate(ctx context.Context, state *itemState) error {
	translated, err := r.translate.Translate(ctx, state.segments)
	if err != nil {
		return err
	}
	state.translated = translated
	return nil
}

func (r *Runner) stageRender(ctx context.Context, state *itemState) error {
	srtPath := filepath.Join(state.workDir, "translated.srt")
	document := subtitles.FormatSRT(state.translated)
	if err := fileutil.WriteFileAtomic(srtPath, []byte(document), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, StageRender, "write subtitles", "subtitle file not writable", err)
	}
	out := filepath.Join(state.workDir, "final.mp4")
	if err := r.media.RenderSubtitled(ctx, state.videoPath, srtPath, out); err != nil {
		return err
	}
	if err := r.media.VerifyPlayable(ctx, out); err != nil {
		return err
	}
	state.renderedPath = out
	return nil
}

func (r *Runner) stagePackage(ctx context.Context, state *itemState) error {
	info, err := metadata.LoadSourceInfo(state.infoPath)
	if err != nil {
		return err
	}
	doc := r.metadata.Generate(ctx, info, state.detectedLanguage)
	state.metadataPath = filepath.Join(state.workDir, "metadata.json")
	if state.title == "" {
		state.title = info.Title
	}
	return doc.Save(state.metadataPath)
}

func (r *Runner) stageDeliver(_ context.Context, state *itemState) error {
	result, err := r.copier.Deliver(state.runID, state.item.ItemID, deliver.Artifacts{
		VideoPath:     state.renderedPath,
		MetadataPath:  state.metadataPath,
		ThumbnailPath: state.thumbnailPath,
	})
	if err != nil {
		return err
	}
	state.artifacts = map[string]string{
		"video":     result.VideoPath,
		"metadata":  result.MetadataPath,
		"thumbnail": result.ThumbnailPath,
	}
	return nil
}
