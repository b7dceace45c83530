package subtitles

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"subcast/internal/services"
)

// Segment is one subtitle cue. Start and End are offsets from the beginning
// of the media.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// FormatSRT renders segments as an SRT document, 1-indexed, cues separated by
// a blank line.
func FormatSRT(segments []Segment) string {
	var b strings.Builder
	for i, seg := range segments {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, formatTimestamp(seg.Start), formatTimestamp(seg.End), seg.Text)
	}
	return b.String()
}

// ParseSRT decodes an SRT document. Cue indexes are validated for presence,
// not for sequence, since renumbering is a formatting concern.
func ParseSRT(content string) ([]Segment, error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	blocks := strings.Split(strings.TrimSpace(normalized), "\n\n")
	var segments []Segment
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block == "" {
			continue
		}
		lines := strings.Split(block, "\n")
		if len(lines) < 2 {
			return nil, services.Wrap(services.ErrValidation, "subtitles", "parse", fmt.Sprintf("cue %d has no timing line", len(segments)+1), nil)
		}
		if _, err := strconv.Atoi(strings.TrimSpace(lines[0])); err != nil {
			return nil, services.Wrap(services.ErrValidation, "subtitles", "parse", fmt.Sprintf("cue %d has a non-numeric index", len(segments)+1), err)
		}
		start, end, err := parseTimingLine(lines[1])
		if err != nil {
			return nil, services.Wrap(services.ErrValidation, "subtitles", "parse", fmt.Sprintf("cue %d timing", len(segments)+1), err)
		}
		segments = append(segments, Segment{
			Start: start,
			End:   end,
			Text:  strings.Join(lines[2:], "\n"),
		})
	}
	return segments, nil
}

func formatTimestamp(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	millis := d.Milliseconds()
	hours := millis / 3_600_000
	millis -= hours * 3_600_000
	minutes := millis / 60_000
	millis -= minutes * 60_000
	seconds := millis / 1000
	millis -= seconds * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

func parseTimingLine(line string) (start, end time.Duration, err error) {
	parts := strings.Split(line, "-->")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("timing line %q missing arrow", line)
	}
	start, err = parseTimestamp(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, err
	}
	end, err = parseTimestamp(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

func parseTimestamp(value string) (time.Duration, error) {
	clock, milliPart, ok := strings.Cut(value, ",")
	if !ok {
		return 0, fmt.Errorf("timestamp %q missing milliseconds", value)
	}
	clockParts := strings.Split(clock, ":")
	if len(clockParts) != 3 {
		return 0, fmt.Errorf("timestamp %q is not HH:MM:SS,mmm", value)
	}
	hours, err := strconv.Atoi(clockParts[0])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q hours: %w", value, err)
	}
	minutes, err := strconv.Atoi(clockParts[1])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q minutes: %w", value, err)
	}
	seconds, err := strconv.Atoi(clockParts[2])
	if err != nil {
		return 0, fmt.Errorf("timestamp %q seconds: %w", value, err)
	}
	millis, err := strconv.Atoi(milliPart)
	if err != nil {
		return 0, fmt.Errorf("timestamp %q milliseconds: %w", value, err)
	}
	if minutes > 59 || seconds > 59 || millis > 999 || hours < 0 || minutes < 0 || seconds < 0 || millis < 0 {
		return 0, fmt.Errorf("timestamp %q out of range", value)
	}
	total := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds)*time.Second +
		time.Duration(millis)*time.Millisecond
	return total, nil
}
