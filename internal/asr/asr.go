// Package asr runs the external transcriber CLI and validates its outputs.
// The transcriber writes source_segments.json and source.srt into an output
// directory and prints a one-line summary JSON on stdout.
package asr

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"time"

	"subcast/internal/command"
	"subcast/internal/logging"
	"subcast/internal/services"
	"subcast/internal/subtitles"
)

// Transcriber wraps the subcast-asr binary.
type Transcriber struct {
	binary  string
	model   string
	vad     bool
	timeout time.Duration
	logger  *slog.Logger
}

// NewTranscriber builds a transcriber around the configured binary.
func NewTranscriber(binary, model string, vad bool, timeout time.Duration, logger *slog.Logger) *Transcriber {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Transcriber{
		binary:  binary,
		model:   model,
		vad:     vad,
		timeout: timeout,
		logger:  logging.WithComponent(logger, "asr"),
	}
}

// Result describes one completed transcription.
type Result struct {
	Segments            []subtitles.Segment
	Language            string
	LanguageProbability float64
	SegmentsPath        string
	SRTPath             string
}

type summary struct {
	SegmentsCount       int     `json:"segments_count"`
	Language            string  `json:"language"`
	LanguageProbability float64 `json:"language_probability"`
	JSONPath            string  `json:"json_path"`
	SRTPath             string  `json:"srt_path"`
}

type rawSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcribe runs the CLI against audioPath, writing its outputs into outDir.
// Segment order in the JSON document is presentation order and is preserved.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, outDir string) (Result, error) {
	args := []string{audioPath, outDir, "--language", "auto", "--model", t.model}
	if t.vad {
		args = append(args, "--vad")
	}
	runResult, err := command.Run(ctx, t.timeout, t.binary, args...)
	if err != nil {
		return Result{}, err
	}

	sum, err := parseSummary(string(runResult.Stdout))
	if err != nil {
		return Result{}, err
	}
	segments, err := loadSegments(sum.JSONPath)
	if err != nil {
		return Result{}, err
	}
	if len(segments) != sum.SegmentsCount {
		return Result{}, services.Wrap(services.ErrValidation, "asr", "verify segments",
			"segment document count disagrees with summary", nil)
	}
	if len(segments) == 0 {
		return Result{}, services.Wrap(services.ErrValidation, "asr", "verify segments",
			"transcriber produced no segments", nil)
	}

	t.logger.Info("transcription complete",
		logging.Int("segments", len(segments)),
		logging.String("language", sum.Language),
		logging.Float64("language_probability", sum.LanguageProbability))

	return Result{
		Segments:            segments,
		Language:            sum.Language,
		LanguageProbability: sum.LanguageProbability,
		SegmentsPath:        sum.JSONPath,
		SRTPath:             sum.SRTPath,
	}, nil
}

// parseSummary reads the summary object from the last non-empty stdout line.
// Everything before it is progress chatter.
func parseSummary(stdout string) (summary, error) {
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		var sum summary
		if err := json.Unmarshal([]byte(line), &sum); err != nil {
			return summary{}, services.Wrap(services.ErrValidation, "asr", "decode summary",
				"transcriber summary is not valid JSON", err)
		}
		if sum.JSONPath == "" || sum.SRTPath == "" {
			return summary{}, services.Wrap(services.ErrValidation, "asr", "decode summary",
				"transcriber summary missing output paths", nil)
		}
		return sum, nil
	}
	return summary{}, services.Wrap(services.ErrValidation, "asr", "decode summary",
		"transcriber produced no summary line", nil)
}

func loadSegments(path string) ([]subtitles.Segment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "asr", "read segments", "segment document unreadable", err)
	}
	var raw []rawSegment
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, services.Wrap(services.ErrValidation, "asr", "decode segments", "segment document is not a JSON array", err)
	}
	segments := make([]subtitles.Segment, 0, len(raw))
	for _, seg := range raw {
		if seg.End < seg.Start {
			return nil, services.Wrap(services.ErrValidation, "asr", "decode segments",
				"segment timing runs backwards", nil)
		}
		segments = append(segments, subtitles.Segment{
			Start: secondsToDuration(seg.Start),
			End:   secondsToDuration(seg.End),
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return segments, nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
