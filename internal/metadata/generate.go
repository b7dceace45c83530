package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"subcast/internal/fileutil"
	"subcast/internal/language"
	"subcast/internal/logging"
	"subcast/internal/services"
	"subcast/internal/services/llm"
)

const maxTags = 10

const generationPrompt = `You draft publishing metadata for a translated video.
Given the source video's title, channel, and description, produce metadata for the %s-subtitled republication.
Respond with a JSON object: {"title": "...", "description": "...", "tags": ["...", ...]}.
The title must be in %s, at most 80 characters. The description must be in %s, 2-4 sentences, and mention the original channel. Provide 5-10 short tags in %s.`

// Document is the metadata artifact delivered with each item.
type Document struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Tags            []string `json:"tags"`
	Language        string   `json:"language"`
	SourceURL       string   `json:"source_url"`
	SourceChannelID string   `json:"source_channel_id"`
	SourceChannel   string   `json:"source_channel"`
	SourceTitle     string   `json:"source_title"`
	DurationSeconds int      `json:"duration_seconds"`
	CreatedAt       string   `json:"created_at"`
}

// Save writes the document as indented JSON, atomically.
func (d Document) Save(path string) error {
	encoded, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return services.Wrap(services.ErrValidation, "package", "encode metadata", "metadata not encodable", err)
	}
	if err := fileutil.WriteFileAtomic(path, append(encoded, '\n'), 0o644); err != nil {
		return services.Wrap(services.ErrTransient, "package", "write metadata", "metadata write failed", err)
	}
	return nil
}

// Generator drafts publishing metadata, through the model when a key is
// configured and deterministically otherwise.
type Generator struct {
	client         *llm.Client
	targetLanguage string
	now            func() time.Time
	logger         *slog.Logger
}

// NewGenerator builds a generator. client may be unconfigured; generation
// then falls back to the deterministic path.
func NewGenerator(client *llm.Client, targetLanguage string, now func() time.Time, logger *slog.Logger) *Generator {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{
		client:         client,
		targetLanguage: strings.ToLower(strings.TrimSpace(targetLanguage)),
		now:            now,
		logger:         logging.WithComponent(logger, "metadata"),
	}
}

// Generate produces the delivery document for one item. Model failures fall
// back to the deterministic draft so packaging never depends on the provider
// being up.
func (g *Generator) Generate(ctx context.Context, info SourceInfo, detectedLanguage string) Document {
	doc := g.deterministic(info, detectedLanguage)
	if !g.client.Configured() {
		return doc
	}
	drafted, err := g.draftWithModel(ctx, info)
	if err != nil {
		g.logger.Warn("model metadata draft failed, using deterministic fallback", logging.Error(err))
		return doc
	}
	doc.Title = drafted.Title
	doc.Description = drafted.Description
	doc.Tags = capTags(drafted.Tags)
	return doc
}

type draft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
}

func (g *Generator) draftWithModel(ctx context.Context, info SourceInfo) (draft, error) {
	name := language.DisplayName(g.targetLanguage)
	system := fmt.Sprintf(generationPrompt, name, name, name, name)
	user := fmt.Sprintf("Title: %s\nChannel: %s\nDescription:\n%s",
		info.Title, info.ChannelName, truncateRunes(info.Description, 2000))
	content, err := g.client.CompleteJSON(ctx, system, user)
	if err != nil {
		return draft{}, err
	}
	var parsed draft
	if err := llm.DecodeJSON(content, &parsed); err != nil {
		return draft{}, err
	}
	parsed.Title = strings.TrimSpace(parsed.Title)
	parsed.Description = strings.TrimSpace(parsed.Description)
	if parsed.Title == "" || parsed.Description == "" {
		return draft{}, fmt.Errorf("model draft missing title or description")
	}
	return parsed, nil
}

// deterministic builds metadata purely from the source document.
func (g *Generator) deterministic(info SourceInfo, detectedLanguage string) Document {
	title := truncateRunes(strings.TrimSpace(info.Title), 70)
	suffix := subtitleSuffix(g.targetLanguage)
	description := fmt.Sprintf("%s subtitles for %q by %s.\nOriginal video: %s",
		language.DisplayName(g.targetLanguage), info.Title, info.ChannelName, info.WebpageURL)
	if detectedLanguage != "" {
		description += fmt.Sprintf("\nOriginal language: %s.", language.DisplayName(detectedLanguage))
	}
	return Document{
		Title:           title + " " + suffix,
		Description:     description,
		Tags:            capTags(info.Tags),
		Language:        g.targetLanguage,
		SourceURL:       info.WebpageURL,
		SourceChannelID: info.ChannelID,
		SourceChannel:   info.ChannelName,
		SourceTitle:     info.Title,
		DurationSeconds: info.Duration,
		CreatedAt:       g.now().UTC().Format(time.RFC3339),
	}
}

func subtitleSuffix(target string) string {
	switch target {
	case "zh":
		return "【中文字幕】"
	default:
		return fmt.Sprintf("[%s subtitles]", language.DisplayName(target))
	}
}

func capTags(tags []string) []string {
	var out []string
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
		if len(out) == maxTags {
			break
		}
	}
	return out
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
