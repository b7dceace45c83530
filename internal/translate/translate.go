// Package translate turns transcribed subtitle segments into the target
// language through the chat-completion client, preserving count and order,
// then enforces the on-screen display policy.
package translate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"subcast/internal/language"
	"subcast/internal/logging"
	"subcast/internal/services"
	"subcast/internal/services/llm"
	"subcast/internal/subtitles"
)

// batchSize bounds the segments sent in one completion so long videos do not
// exceed the model context.
const batchSize = 40

const systemPromptTemplate = `You are a professional subtitle translator. Translate each numbered line into %s.
Keep the register conversational and concise, suitable for on-screen subtitles.
Do not merge, split, reorder, or drop lines.
Respond with a JSON object: {"lines": ["translation of line 1", "translation of line 2", ...]}.
The lines array must contain exactly one entry per input line, in the same order.`

// Translator batch-translates subtitle segments.
type Translator struct {
	client         *llm.Client
	targetLanguage string
	policy         subtitles.DisplayPolicy
	logger         *slog.Logger
}

// New builds a translator. targetLanguage is a two-letter code; the prompt
// carries its display name.
func New(client *llm.Client, targetLanguage string, policy subtitles.DisplayPolicy, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Translator{
		client:         client,
		targetLanguage: strings.ToLower(strings.TrimSpace(targetLanguage)),
		policy:         policy,
		logger:         logging.WithComponent(logger, "translate"),
	}
}

type linesPayload struct {
	Lines []string `json:"lines"`
}

// Translate returns segments with the same timings and order, text replaced
// by the target-language rendering and wrapped to the display policy.
func (t *Translator) Translate(ctx context.Context, segments []subtitles.Segment) ([]subtitles.Segment, error) {
	if len(segments) == 0 {
		return nil, services.Wrap(services.ErrValidation, "translate", "check input", "no segments to translate", nil)
	}
	if !t.client.Configured() {
		return nil, services.Wrap(services.ErrConfiguration, "translate", "check client", "translation requires an api key", nil)
	}

	systemPrompt := fmt.Sprintf(systemPromptTemplate, language.DisplayName(t.targetLanguage))
	out := make([]subtitles.Segment, len(segments))
	copy(out, segments)

	for start := 0; start < len(segments); start += batchSize {
		end := min(start+batchSize, len(segments))
		batch := segments[start:end]
		translated, err := t.translateBatch(ctx, systemPrompt, batch)
		if err != nil {
			return nil, err
		}
		for i, text := range translated {
			out[start+i].Text = t.policy.Apply(text)
		}
		t.logger.Debug("batch translated",
			logging.Int("from", start),
			logging.Int("to", end))
	}
	return out, nil
}

func (t *Translator) translateBatch(ctx context.Context, systemPrompt string, batch []subtitles.Segment) ([]string, error) {
	var b strings.Builder
	for i, seg := range batch {
		fmt.Fprintf(&b, "%d. %s\n", i+1, strings.ReplaceAll(seg.Text, "\n", " "))
	}
	content, err := t.client.CompleteJSON(ctx, systemPrompt, b.String())
	if err != nil {
		return nil, wrapClientError(err)
	}
	var payload linesPayload
	if err := llm.DecodeJSON(content, &payload); err != nil {
		return nil, services.Wrap(services.ErrValidation, "translate", "decode response", "model payload undecodable", err)
	}
	if len(payload.Lines) != len(batch) {
		return nil, services.Wrap(services.ErrValidation, "translate", "verify response",
			fmt.Sprintf("model returned %d lines for %d segments", len(payload.Lines), len(batch)), nil)
	}
	for i, line := range payload.Lines {
		if strings.TrimSpace(line) == "" {
			return nil, services.Wrap(services.ErrValidation, "translate", "verify response",
				fmt.Sprintf("model returned empty line %d", i+1), nil)
		}
	}
	return payload.Lines, nil
}

// wrapClientError keeps configuration and validation markers and tags the
// rest transient, since network and provider failures clear on retry.
func wrapClientError(err error) error {
	switch services.Classify(err) {
	case services.KindConfiguration, services.KindValidation:
		return err
	default:
		return services.Wrap(services.ErrTransient, "translate", "complete", "translation request failed", err)
	}
}
