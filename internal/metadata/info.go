// Package metadata reads the downloader's info document and produces the
// publishing metadata delivered next to the rendered video.
package metadata

import (
	"encoding/json"
	"os"
	"strconv"
	"strings"

	"subcast/internal/services"
)

// SourceInfo is the subset of the downloader's info document the pipeline
// consumes.
type SourceInfo struct {
	ID          string
	Title       string
	Description string
	ChannelID   string
	ChannelName string
	WebpageURL  string
	UploadDate  string
	Duration    int
	Tags        []string
}

type rawInfo struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	ChannelID   string          `json:"channel_id"`
	Channel     string          `json:"channel"`
	Uploader    string          `json:"uploader"`
	WebpageURL  string          `json:"webpage_url"`
	UploadDate  string          `json:"upload_date"`
	Duration    json.RawMessage `json:"duration"`
	Tags        []string        `json:"tags"`
}

// LoadSourceInfo reads and validates an info document. Duration tolerates
// number, numeric string, and null encodings; everything else about the
// document must be well-formed JSON with an id and title.
func LoadSourceInfo(path string) (SourceInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return SourceInfo{}, services.Wrap(services.ErrValidation, "package", "read info", "info document unreadable", err)
	}
	var raw rawInfo
	if err := json.Unmarshal(data, &raw); err != nil {
		return SourceInfo{}, services.Wrap(services.ErrValidation, "package", "decode info", "info document is not valid JSON", err)
	}
	if strings.TrimSpace(raw.ID) == "" {
		return SourceInfo{}, services.Wrap(services.ErrValidation, "package", "decode info", "info document missing id", nil)
	}
	if strings.TrimSpace(raw.Title) == "" {
		return SourceInfo{}, services.Wrap(services.ErrValidation, "package", "decode info", "info document missing title", nil)
	}
	channel := strings.TrimSpace(raw.Channel)
	if channel == "" {
		channel = strings.TrimSpace(raw.Uploader)
	}
	return SourceInfo{
		ID:          raw.ID,
		Title:       raw.Title,
		Description: raw.Description,
		ChannelID:   raw.ChannelID,
		ChannelName: channel,
		WebpageURL:  raw.WebpageURL,
		UploadDate:  raw.UploadDate,
		Duration:    decodeDuration(raw.Duration),
		Tags:        raw.Tags,
	}, nil
}

func decodeDuration(raw json.RawMessage) int {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return 0
	}
	var asNumber float64
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		return int(asNumber)
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(asString), 64); err == nil {
			return int(parsed)
		}
	}
	return 0
}
