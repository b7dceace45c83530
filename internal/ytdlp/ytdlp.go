package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"subcast/internal/command"
	"subcast/internal/fileutil"
	"subcast/internal/logging"
	"subcast/internal/services"
)

// downloadFormat prefers an mp4 video+m4a audio pair and falls back to the
// best single mp4 file.
const downloadFormat = "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]"

// Client wraps the yt-dlp binary.
type Client struct {
	binary          string
	listingTimeout  time.Duration
	probeTimeout    time.Duration
	downloadTimeout time.Duration
	logger          *slog.Logger
}

// NewClient builds a client around the configured binary and timeouts.
func NewClient(binary string, listingTimeout, probeTimeout, downloadTimeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Client{
		binary:          binary,
		listingTimeout:  listingTimeout,
		probeTimeout:    probeTimeout,
		downloadTimeout: downloadTimeout,
		logger:          logging.WithComponent(logger, "ytdlp"),
	}
}

// Candidate is one entry from a channel listing.
type Candidate struct {
	ID          string
	SourceID    string
	Title       string
	URL         string
	PublishedAt time.Time
	Duration    int
}

type listingEntry struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	WebpageURL string        `json:"webpage_url"`
	URL        string        `json:"url"`
	Timestamp  int64         `json:"timestamp"`
	UploadDate string        `json:"upload_date"`
	Duration   flexibleValue `json:"duration"`
}

// Listing fetches the newest entries for one channel. Lines that fail to
// decode or lack an id are skipped, not fatal, because flat-playlist output
// routinely mixes in playlist headers.
func (c *Client) Listing(ctx context.Context, sourceID, channelURL string, limit int) ([]Candidate, error) {
	result, err := command.Run(ctx, c.listingTimeout, c.binary,
		"--dump-json",
		"--flat-playlist",
		"--playlist-end", fmt.Sprintf("%d", limit),
		"--",
		channelURL)
	if err != nil {
		return nil, err
	}

	var candidates []Candidate
	scanner := bufio.NewScanner(bytes.NewReader(result.Stdout))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry listingEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			c.logger.Warn("skipping undecodable listing line",
				logging.String(logging.FieldSource, sourceID),
				logging.Error(err))
			continue
		}
		if entry.ID == "" {
			continue
		}
		candidates = append(candidates, Candidate{
			ID:          entry.ID,
			SourceID:    sourceID,
			Title:       entry.Title,
			URL:         entry.watchURL(),
			PublishedAt: entry.publishedAt(),
			Duration:    entry.Duration.valueOrZero(),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "discover", "parse listing", "listing output unreadable", err)
	}
	return candidates, nil
}

func (e listingEntry) watchURL() string {
	if e.WebpageURL != "" {
		return e.WebpageURL
	}
	if e.URL != "" {
		return e.URL
	}
	return "https://www.youtube.com/watch?v=" + e.ID
}

func (e listingEntry) publishedAt() time.Time {
	if e.Timestamp > 0 {
		return time.Unix(e.Timestamp, 0).UTC()
	}
	if t, err := time.Parse("20060102", e.UploadDate); err == nil {
		return t.UTC()
	}
	return time.Time{}
}

// Probe is the metadata returned by a preflight check of one item.
// DurationKnown is false when yt-dlp returned null, which callers treat as a
// policy rejection.
type Probe struct {
	ID              string
	Title           string
	WebpageURL      string
	IsLive          bool
	LiveStatus      string
	DurationSeconds int
	DurationKnown   bool
}

// Duration reports the item length in seconds and whether it was present.
func (p Probe) Duration() (seconds int, known bool) {
	return p.DurationSeconds, p.DurationKnown
}

type probePayload struct {
	ID         string        `json:"id"`
	Title      string        `json:"title"`
	WebpageURL string        `json:"webpage_url"`
	IsLive     bool          `json:"is_live"`
	LiveStatus string        `json:"live_status"`
	Duration   flexibleValue `json:"duration"`
}

// Preflight probes a single URL without downloading anything.
func (c *Client) Preflight(ctx context.Context, url string) (Probe, error) {
	result, err := command.Run(ctx, c.probeTimeout, c.binary,
		"-J",
		"--no-download",
		"--",
		url)
	if err != nil {
		return Probe{}, err
	}
	var payload probePayload
	if err := json.Unmarshal(result.Stdout, &payload); err != nil {
		return Probe{}, services.Wrap(services.ErrValidation, "preflight", "decode probe", "probe output is not valid JSON", err)
	}
	if payload.ID == "" {
		return Probe{}, services.Wrap(services.ErrValidation, "preflight", "decode probe", "probe output missing id", nil)
	}
	return Probe{
		ID:              payload.ID,
		Title:           payload.Title,
		WebpageURL:      payload.WebpageURL,
		IsLive:          payload.IsLive,
		LiveStatus:      payload.LiveStatus,
		DurationSeconds: payload.Duration.valueOrZero(),
		DurationKnown:   payload.Duration.known,
	}, nil
}

// DownloadResult names the files produced by one download.
type DownloadResult struct {
	VideoPath string
	InfoPath  string
}

// Download fetches the item into destDir as video.mp4 plus video.info.json.
// The archive file records completed ids so an interrupted run does not
// re-fetch media it already has.
func (c *Client) Download(ctx context.Context, url, destDir, archivePath string) (DownloadResult, error) {
	outputTemplate := filepath.Join(destDir, "video.%(ext)s")
	args := []string{
		"-f", downloadFormat,
		"--write-info-json",
		"--no-progress",
		"-o", outputTemplate,
	}
	if archivePath != "" {
		args = append(args, "--download-archive", archivePath)
	}
	args = append(args, "--", url)

	if _, err := command.Run(ctx, c.downloadTimeout, c.binary, args...); err != nil {
		return DownloadResult{}, err
	}

	result := DownloadResult{
		VideoPath: filepath.Join(destDir, "video.mp4"),
		InfoPath:  filepath.Join(destDir, "video.info.json"),
	}
	if err := fileutil.NonZeroSize(result.VideoPath); err != nil {
		return DownloadResult{}, services.Wrap(services.ErrExternalTool, "download", "verify output", "downloaded media missing or empty", err)
	}
	if err := fileutil.NonZeroSize(result.InfoPath); err != nil {
		return DownloadResult{}, services.Wrap(services.ErrExternalTool, "download", "verify output", "info document missing or empty", err)
	}
	return result, nil
}

// flexibleValue decodes a yt-dlp numeric field that may arrive as a JSON
// number, a numeric string, or null.
type flexibleValue struct {
	value int
	known bool
}

func (f *flexibleValue) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "null" || trimmed == "" {
		*f = flexibleValue{}
		return nil
	}
	var asNumber float64
	if err := json.Unmarshal(data, &asNumber); err == nil {
		*f = flexibleValue{value: int(asNumber), known: true}
		return nil
	}
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		asString = strings.TrimSpace(asString)
		if asString == "" {
			*f = flexibleValue{}
			return nil
		}
		var parsed float64
		if err := json.Unmarshal([]byte(asString), &parsed); err != nil {
			return fmt.Errorf("numeric string %q: %w", asString, err)
		}
		*f = flexibleValue{value: int(parsed), known: true}
		return nil
	}
	return fmt.Errorf("unsupported numeric encoding %s", trimmed)
}

func (f flexibleValue) valueOrZero() int {
	if !f.known {
		return 0
	}
	return f.value
}
