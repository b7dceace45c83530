package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"subcast/internal/services"
	"subcast/internal/services/llm"
)

func TestLoadSourceInfoDurationEncodings(t *testing.T) {
	cases := []struct {
		name     string
		duration string
		want     int
	}{
		{"number", `615`, 615},
		{"float", `615.7`, 615},
		{"string", `"615"`, 615},
		{"null", `null`, 0},
		{"garbage", `"later"`, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			doc := `{"id":"vid1","title":"A Walk","channel":"WalkTube","duration":` + tc.duration + `}`
			info, err := LoadSourceInfo(writeInfo(t, doc))
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if info.Duration != tc.want {
				t.Fatalf("duration %d, want %d", info.Duration, tc.want)
			}
		})
	}
}

func TestLoadSourceInfoUploaderFallback(t *testing.T) {
	info, err := LoadSourceInfo(writeInfo(t, `{"id":"v","title":"T","uploader":"Solo Walker"}`))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.ChannelName != "Solo Walker" {
		t.Fatalf("uploader fallback missing, got %q", info.ChannelName)
	}
}

func TestLoadSourceInfoRejectsMalformed(t *testing.T) {
	for name, doc := range map[string]string{
		"not json": "nope",
		"no id":    `{"title":"T"}`,
		"no title": `{"id":"v"}`,
	} {
		if _, err := LoadSourceInfo(writeInfo(t, doc)); !errors.Is(err, services.ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
}

func TestDeterministicGeneration(t *testing.T) {
	gen := NewGenerator(llm.NewClient(llm.Config{}), "zh", fixedNow, nil)
	doc := gen.Generate(context.Background(), sampleInfo(), "en")
	if !strings.Contains(doc.Title, "【中文字幕】") {
		t.Fatalf("title should carry subtitle suffix, got %q", doc.Title)
	}
	if !strings.Contains(doc.Description, "WalkTube") {
		t.Fatalf("description should credit the channel, got %q", doc.Description)
	}
	if !strings.Contains(doc.Description, "English") {
		t.Fatalf("description should name the source language, got %q", doc.Description)
	}
	if doc.Language != "zh" || doc.SourceChannelID != "UC123" {
		t.Fatalf("provenance fields wrong: %+v", doc)
	}
	if doc.CreatedAt != fixedNow().UTC().Format(time.RFC3339) {
		t.Fatalf("created_at %q", doc.CreatedAt)
	}
}

func TestGenerateUsesModelWhenConfigured(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, _ := json.Marshal(map[string]any{
			"title":       "深圳夜景漫步",
			"description": "原频道 WalkTube 的夜景散步视频。",
			"tags":        []string{"深圳", "散步"},
		})
		body, _ := json.Marshal(map[string]any{
			"choices": []map[string]any{{"message": map[string]any{"content": string(content)}}},
		})
		w.Write(body)
	}))
	defer server.Close()

	client := llm.NewClient(llm.Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
	gen := NewGenerator(client, "zh", fixedNow, nil)
	doc := gen.Generate(context.Background(), sampleInfo(), "en")
	if doc.Title != "深圳夜景漫步" {
		t.Fatalf("model title not used, got %q", doc.Title)
	}
	if len(doc.Tags) != 2 {
		t.Fatalf("model tags not used, got %v", doc.Tags)
	}
	if doc.SourceURL != "https://example.com/v" {
		t.Fatalf("provenance must come from source info, got %q", doc.SourceURL)
	}
}

func TestGenerateFallsBackOnModelFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer server.Close()

	client := llm.NewClient(llm.Config{APIKey: "k", BaseURL: server.URL, Model: "m"})
	gen := NewGenerator(client, "zh", fixedNow, nil)
	doc := gen.Generate(context.Background(), sampleInfo(), "")
	if doc.Title == "" || !strings.Contains(doc.Title, "【中文字幕】") {
		t.Fatalf("fallback draft expected, got %+v", doc)
	}
}

func TestDocumentSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	in := Document{Title: "T", Language: "zh", Tags: []string{"a"}}
	if err := in.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var out Document
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if out.Title != "T" || out.Language != "zh" {
		t.Fatalf("round trip lost fields: %+v", out)
	}
}

func TestCapTags(t *testing.T) {
	tags := make([]string, 15)
	for i := range tags {
		tags[i] = "tag"
	}
	if got := capTags(tags); len(got) != maxTags {
		t.Fatalf("expected %d tags, got %d", maxTags, len(got))
	}
	if got := capTags([]string{" ", "", "keep"}); len(got) != 1 || got[0] != "keep" {
		t.Fatalf("blank tags should drop, got %v", got)
	}
}

func sampleInfo() SourceInfo {
	return SourceInfo{
		ID:          "vid1",
		Title:       "Night Walk in Shenzhen",
		Description: "A long walk.",
		ChannelID:   "UC123",
		ChannelName: "WalkTube",
		WebpageURL:  "https://example.com/v",
		Duration:    615,
		Tags:        []string{"walk", "city"},
	}
}

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

func writeInfo(t *testing.T, doc string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "video.info.json")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
