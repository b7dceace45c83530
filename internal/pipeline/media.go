package pipeline

import (
	"context"
	"time"

	"subcast/internal/config"
	"subcast/internal/media/ffmpeg"
	"subcast/internal/media/ffprobe"
)

// MediaProcessor covers the ffmpeg and ffprobe work the stages need.
type MediaProcessor interface {
	ExtractAudio(ctx context.Context, videoPath, outPath string) error
	RenderSubtitled(ctx context.Context, videoPath, srtPath, outPath string) error
	ExtractThumbnail(ctx context.Context, videoPath, outPath string) error
	VerifyPlayable(ctx context.Context, path string) error
}

// mediaTools is the production MediaProcessor, binding the configured
// binaries and timeouts to the media packages.
type mediaTools struct {
	tools    config.Tools
	timeouts config.Timeouts
	burnIn   ffmpeg.BurnInOptions
}

// NewMediaProcessor builds the production processor from config.
func NewMediaProcessor(cfg *config.Config) MediaProcessor {
	return &mediaTools{
		tools:    cfg.Tools,
		timeouts: cfg.Timeouts,
		burnIn: ffmpeg.BurnInOptions{
			FontName: cfg.Subtitles.FontName,
			FontSize: cfg.Subtitles.FontSize,
		},
	}
}

func (m *mediaTools) ExtractAudio(ctx context.Context, videoPath, outPath string) error {
	return ffmpeg.ExtractAudio(ctx, m.tools.FFmpeg, seconds(m.timeouts.ASR), videoPath, outPath)
}

func (m *mediaTools) RenderSubtitled(ctx context.Context, videoPath, srtPath, outPath string) error {
	return ffmpeg.RenderSubtitled(ctx, m.tools.FFmpeg, seconds(m.timeouts.Render), videoPath, srtPath, outPath, m.burnIn)
}

func (m *mediaTools) ExtractThumbnail(ctx context.Context, videoPath, outPath string) error {
	return ffmpeg.ExtractThumbnail(ctx, m.tools.FFmpeg, seconds(m.timeouts.Thumbnail), videoPath, "", outPath)
}

func (m *mediaTools) VerifyPlayable(ctx context.Context, path string) error {
	_, err := ffprobe.VerifyPlayable(ctx, m.tools.FFprobe, seconds(m.timeouts.Render), path)
	return err
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
