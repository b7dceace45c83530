package main

import (
	"fmt"
	"log/slog"
	"time"

	"subcast/internal/asr"
	"subcast/internal/config"
	"subcast/internal/deliver"
	"subcast/internal/metadata"
	"subcast/internal/notifications"
	"subcast/internal/pipeline"
	"subcast/internal/records"
	"subcast/internal/runlog"
	"subcast/internal/selector"
	"subcast/internal/services/llm"
	"subcast/internal/subtitles"
	"subcast/internal/translate"
	"subcast/internal/ytdlp"
)

// buildCoordinator wires the full pipeline from configuration. The returned
// closer releases the run ledger and must be called when processing ends.
func buildCoordinator(cfg *config.Config, logger *slog.Logger) (*pipeline.Coordinator, func() error, error) {
	store := records.NewStore(cfg.RecordsDir())

	ledger, err := runlog.Open(cfg.RunLogPath())
	if err != nil {
		return nil, nil, fmt.Errorf("open run ledger: %w", err)
	}

	fetcher := ytdlp.NewClient(cfg.Tools.YtDlp,
		seconds(cfg.Timeouts.Listing),
		seconds(cfg.Timeouts.Preflight),
		seconds(cfg.Timeouts.Download),
		logger)

	transcriber := asr.NewTranscriber(cfg.Tools.ASR, cfg.Tools.ASRModel, cfg.Tools.ASRVAD,
		seconds(cfg.Timeouts.ASR), logger)

	model := llm.NewClient(llm.Config{
		APIKey:         cfg.LLM.APIKey,
		BaseURL:        cfg.LLM.BaseURL,
		Model:          cfg.LLM.Model,
		TimeoutSeconds: cfg.LLM.TimeoutSeconds,
	})
	policy := subtitles.DisplayPolicy{
		MaxLines:     cfg.Subtitles.MaxLines,
		MaxLineChars: cfg.Subtitles.MaxLineChars,
	}
	translator := translate.New(model, cfg.Subtitles.TargetLanguage, policy, logger)
	generator := metadata.NewGenerator(model, cfg.Subtitles.TargetLanguage, time.Now, logger)
	notifier := notifications.NewService(cfg.Notifications)

	runner := pipeline.NewRunner(pipeline.RunnerDeps{
		Config:     cfg,
		Store:      store,
		Probe:      fetcher,
		Fetch:      fetcher,
		Transcribe: transcriber,
		Translate:  translator,
		Metadata:   generator,
		Copier:     deliver.New(cfg.Paths.DeliveryDir, logger),
		Media:      pipeline.NewMediaProcessor(cfg),
		Notify:     notifier,
		Logger:     logger,
	})

	coordinator := pipeline.NewCoordinator(pipeline.CoordinatorDeps{
		Runner:   runner,
		Selector: selector.New(fetcher, store, cfg.Sources, cfg.Selection.ListingLimit, cfg.Selection.MaxPerRun, logger),
		Store:    store,
		Ledger:   ledger,
		Notify:   notifier,
		Logger:   logger,
	})
	return coordinator, ledger.Close, nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
