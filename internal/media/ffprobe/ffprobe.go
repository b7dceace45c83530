// Package ffprobe wraps media container inspection for render verification.
package ffprobe

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"subcast/internal/command"
	"subcast/internal/services"
)

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Channels  int    `json:"channels"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename   string `json:"filename"`
	NBStreams  int    `json:"nb_streams"`
	Duration   string `json:"duration"`
	Size       string `json:"size"`
	FormatName string `json:"format_name"`
}

// Inspect executes ffprobe against the provided path and decodes the JSON
// response.
func Inspect(ctx context.Context, binary string, timeout time.Duration, path string) (Result, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, services.Wrap(services.ErrValidation, "probe", "inspect", "empty path", nil)
	}
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}

	out, err := command.Run(ctx, timeout, binary,
		"-v", "error", "-hide_banner",
		"-show_format", "-show_streams",
		"-of", "json", "--", path)
	if err != nil {
		return Result{}, err
	}

	var result Result
	if err := json.Unmarshal(out.Stdout, &result); err != nil {
		return Result{}, services.Wrap(services.ErrValidation, "probe", "parse", "malformed ffprobe payload", err)
	}
	return result, nil
}

// HasVideoStream reports whether at least one video stream is present.
func (r Result) HasVideoStream() bool {
	return r.countStreams("video") > 0
}

// HasAudioStream reports whether at least one audio stream is present.
func (r Result) HasAudioStream() bool {
	return r.countStreams("audio") > 0
}

func (r Result) countStreams(codecType string) int {
	count := 0
	for _, stream := range r.Streams {
		if strings.EqualFold(stream.CodecType, codecType) {
			count++
		}
	}
	return count
}

// DurationSeconds returns the container duration in seconds, or 0 when
// unavailable.
func (r Result) DurationSeconds() float64 {
	cleaned := strings.TrimSpace(r.Format.Duration)
	if cleaned == "" {
		return 0
	}
	parsed, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || parsed < 0 {
		return 0
	}
	return parsed
}

// VerifyPlayable probes path and requires both a video and an audio
// elementary stream. Absence of either is an ordinary stage failure, not a
// distinct error class.
func VerifyPlayable(ctx context.Context, binary string, timeout time.Duration, path string) (Result, error) {
	result, err := Inspect(ctx, binary, timeout, path)
	if err != nil {
		return Result{}, err
	}
	var missing []string
	if !result.HasVideoStream() {
		missing = append(missing, "video")
	}
	if !result.HasAudioStream() {
		missing = append(missing, "audio")
	}
	if len(missing) > 0 {
		return Result{}, services.Wrap(services.ErrExternalTool, "probe", "verify",
			fmt.Sprintf("rendered output missing %s stream", strings.Join(missing, " and ")), nil)
	}
	return result, nil
}
