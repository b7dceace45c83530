// Package ffmpeg wraps the ffmpeg invocations used by the pipeline: audio
// extraction for transcription, subtitle burn-in with loudness normalization,
// and thumbnail extraction.
package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"subcast/internal/command"
	"subcast/internal/services"
)

// Loudness targets for the one-pass loudnorm filter, chosen for spoken-word
// content on streaming platforms.
const loudnormFilter = "loudnorm=I=-16:TP=-1.5:LRA=11"

// BurnInOptions controls subtitle styling during render.
type BurnInOptions struct {
	FontName string
	FontSize int
}

func (o BurnInOptions) forceStyle() string {
	font := strings.TrimSpace(o.FontName)
	if font == "" {
		font = "Noto Sans CJK SC"
	}
	size := o.FontSize
	if size <= 0 {
		size = 24
	}
	return fmt.Sprintf("Fontname=%s,FontSize=%d,PrimaryColour=&H00FFFFFF,OutlineColour=&H00000000,Outline=2", font, size)
}

// ExtractAudio produces a 16 kHz mono WAV from the video, the input format
// the transcriber expects.
func ExtractAudio(ctx context.Context, binary string, timeout time.Duration, videoPath, outPath string) error {
	if err := requireFile("extract audio", videoPath); err != nil {
		return err
	}
	_, err := command.Run(ctx, timeout, binary,
		"-y",
		"-i", videoPath,
		"-vn",
		"-acodec", "pcm_s16le",
		"-ar", "16000",
		"-ac", "1",
		outPath)
	return err
}

// RenderSubtitled burns srtPath into videoPath while normalizing loudness,
// re-encoding with libx264 at crf 23.
func RenderSubtitled(ctx context.Context, binary string, timeout time.Duration, videoPath, srtPath, outPath string, opts BurnInOptions) error {
	if err := requireFile("render", videoPath); err != nil {
		return err
	}
	if err := requireFile("render", srtPath); err != nil {
		return err
	}
	subtitleFilter := fmt.Sprintf("subtitles='%s':force_style='%s'", escapeFilterPath(srtPath), opts.forceStyle())
	_, err := command.Run(ctx, timeout, binary,
		"-y",
		"-i", videoPath,
		"-vf", subtitleFilter,
		"-af", loudnormFilter,
		"-c:v", "libx264", "-preset", "medium", "-crf", "23",
		"-c:a", "aac", "-b:a", "128k",
		outPath)
	return err
}

// ExtractThumbnail grabs a single frame at the given timestamp (HH:MM:SS).
func ExtractThumbnail(ctx context.Context, binary string, timeout time.Duration, videoPath, timestamp, outPath string) error {
	if err := requireFile("thumbnail", videoPath); err != nil {
		return err
	}
	if strings.TrimSpace(timestamp) == "" {
		timestamp = "00:00:05"
	}
	_, err := command.Run(ctx, timeout, binary,
		"-y",
		"-ss", timestamp,
		"-i", videoPath,
		"-vframes", "1",
		"-q:v", "2",
		outPath)
	return err
}

// escapeFilterPath escapes characters the ffmpeg filter parser treats
// specially inside the subtitles filename argument.
func escapeFilterPath(path string) string {
	escaped := strings.ReplaceAll(path, `\`, `/`)
	escaped = strings.ReplaceAll(escaped, `:`, `\:`)
	return escaped
}

func requireFile(operation, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrValidation, operation, "check input", fmt.Sprintf("input %s not readable", path), err)
	}
	if info.IsDir() {
		return services.Wrap(services.ErrValidation, operation, "check input", fmt.Sprintf("input %s is a directory", path), nil)
	}
	return nil
}
