package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"subcast/internal/services"
)

const (
	defaultBaseURL     = "https://api.deepseek.com"
	completionsPath    = "/chat/completions"
	defaultHTTPTimeout = 120 * time.Second
	defaultAttempts    = 3
	defaultBaseDelay   = 1 * time.Second
	defaultMaxDelay    = 15 * time.Second
)

// Config carries the settings needed to reach the completion API.
type Config struct {
	APIKey         string
	BaseURL        string
	Model          string
	TimeoutSeconds int
}

// Client issues JSON-mode chat completions.
type Client struct {
	cfg        Config
	httpClient *http.Client

	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleeper     func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRetry overrides the retry schedule.
func WithRetry(attempts int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.maxAttempts = attempts
		c.baseDelay = baseDelay
		c.maxDelay = maxDelay
	}
}

// WithSleeper replaces the retry sleep, so tests run without waiting.
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient builds a client from config.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	c := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:          strings.TrimSpace(cfg.Model),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: defaultAttempts,
		baseDelay:   defaultBaseDelay,
		maxDelay:    defaultMaxDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cfg.BaseURL == "" {
		c.cfg.BaseURL = defaultBaseURL
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.APIKey != ""
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float64           `json:"temperature"`
	ResponseFormat map[string]string `json:"response_format"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type statusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// CompleteJSON sends system and user prompts and returns the model's raw JSON
// payload.
func (c *Client) CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.Configured() {
		return "", services.Wrap(services.ErrConfiguration, "llm", "complete", "api key not configured", nil)
	}
	systemPrompt = strings.TrimSpace(systemPrompt)
	userPrompt = strings.TrimSpace(userPrompt)
	if systemPrompt == "" || userPrompt == "" {
		return "", services.Wrap(services.ErrValidation, "llm", "complete", "both prompts are required", nil)
	}
	payload := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0,
		ResponseFormat: map[string]string{"type": "json_object"},
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts(); attempt++ {
		content, err := c.sendOnce(ctx, payload)
		if err == nil {
			return content, nil
		}
		lastErr = err
		delay, retry := c.retryDelay(ctx, err, attempt)
		if !retry {
			return "", err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return "", services.Wrap(services.ErrTransient, "llm", "complete", "retry interrupted", err)
		}
	}
	return "", services.Wrap(services.ErrTransient, "llm", "complete",
		fmt.Sprintf("failed after %d attempts", c.attempts()), lastErr)
}

func (c *Client) sendOnce(ctx context.Context, payload chatRequest) (string, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", services.Wrap(services.ErrValidation, "llm", "encode request", "request not encodable", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+completionsPath, bytes.NewReader(encoded))
	if err != nil {
		return "", services.Wrap(services.ErrConfiguration, "llm", "build request", "endpoint unusable", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm request: %w", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("llm response read: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &statusError{StatusCode: resp.StatusCode, Body: string(body), RetryAfter: retryAfter}
	}

	var decoded chatResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", services.Wrap(services.ErrValidation, "llm", "decode response", "response is not valid JSON", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("llm api error: %s", strings.TrimSpace(decoded.Error.Message))
	}
	for _, choice := range decoded.Choices {
		if content := strings.TrimSpace(choice.Message.Content); content != "" {
			return content, nil
		}
	}
	return "", services.Wrap(services.ErrValidation, "llm", "decode response", "completion content empty", nil)
}

func (c *Client) attempts() int {
	if c.maxAttempts <= 0 {
		return 1
	}
	return c.maxAttempts
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if attempt >= c.attempts() || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	var se *statusError
	if errors.As(err, &se) {
		switch {
		case se.StatusCode == http.StatusRequestTimeout,
			se.StatusCode == http.StatusTooManyRequests,
			se.StatusCode >= http.StatusInternalServerError:
			if se.RetryAfter > 0 {
				return min(se.RetryAfter, c.maxDelay), true
			}
			return c.backoff(attempt), true
		default:
			return 0, false
		}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return c.backoff(attempt), true
	}
	if strings.Contains(err.Error(), "llm request:") {
		// Transport-level failures without a typed cause.
		return c.backoff(attempt), true
	}
	return 0, false
}

func (c *Client) backoff(attempt int) time.Duration {
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		if delay > c.maxDelay/2 {
			return c.maxDelay
		}
		delay *= 2
	}
	if delay > c.maxDelay {
		return c.maxDelay
	}
	return delay
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}

// DecodeJSON decodes a model payload, tolerating code fences and prose around
// the JSON body.
func DecodeJSON(content string, target any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.New("empty payload")
	}
	if err := json.Unmarshal([]byte(trimmed), target); err == nil {
		return nil
	}
	extracted := extractJSON(trimmed)
	if extracted == "" {
		return fmt.Errorf("no JSON object or array in payload %q", snippet(trimmed))
	}
	if err := json.Unmarshal([]byte(extracted), target); err != nil {
		return fmt.Errorf("decode payload %q: %w", snippet(extracted), err)
	}
	return nil
}

func extractJSON(content string) string {
	if strings.HasPrefix(content, "```") {
		body := strings.TrimPrefix(content, "```")
		body = strings.TrimPrefix(strings.TrimLeft(body, " \t\r\n"), "json")
		if idx := strings.LastIndex(body, "```"); idx >= 0 {
			body = body[:idx]
		}
		content = strings.TrimSpace(body)
	}
	for _, pair := range [][2]string{{"{", "}"}, {"[", "]"}} {
		start := strings.Index(content, pair[0])
		end := strings.LastIndex(content, pair[1])
		if start >= 0 && end > start {
			return strings.TrimSpace(content[start : end+1])
		}
	}
	return ""
}

func snippet(content string) string {
	clean := strings.Join(strings.Fields(content), " ")
	runes := []rune(clean)
	if len(runes) > 120 {
		return string(runes[:120]) + "..."
	}
	return clean
}
