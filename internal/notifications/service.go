package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"subcast/internal/config"
)

const userAgent = "subcast/0.1.0"

// Service is the notification surface used by the pipeline and daemon.
type Service interface {
	NotifyRunStarted(ctx context.Context, runID string, items int) error
	NotifyRunCompleted(ctx context.Context, runID string, succeeded, failed, skipped int, duration time.Duration) error
	NotifyItemDelivered(ctx context.Context, title string) error
	NotifyItemFailed(ctx context.Context, itemID string, err error) error
	TestNotification(ctx context.Context) error
}

// NewService returns an ntfy-backed service, or a noop one when no topic is
// configured.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &ntfyService{
		endpoint:    topic,
		client:      &http.Client{Timeout: timeout},
		runSummary:  cfg.RunSummary,
		errorAlerts: cfg.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint    string
	client      *http.Client
	runSummary  bool
	errorAlerts bool
}

func (n *ntfyService) NotifyRunStarted(ctx context.Context, runID string, items int) error {
	if !n.runSummary {
		return nil
	}
	return n.send(ctx, payload{
		title:   "Subcast - Run Started",
		message: fmt.Sprintf("Run %s starting with %d items", runID, items),
		tags:    []string{"subcast", "run", "started"},
	})
}

func (n *ntfyService) NotifyRunCompleted(ctx context.Context, runID string, succeeded, failed, skipped int, duration time.Duration) error {
	if !n.runSummary {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	data := payload{
		tags: []string{"subcast", "run", "completed"},
	}
	if failed == 0 {
		data.title = "Subcast - Run Complete"
		data.message = fmt.Sprintf("Run %s: %d delivered, %d skipped in %s", runID, succeeded, skipped, duration)
	} else {
		data.title = "Subcast - Run Complete (with errors)"
		data.message = fmt.Sprintf("Run %s: %d delivered, %d failed, %d skipped in %s", runID, succeeded, failed, skipped, duration)
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyItemDelivered(ctx context.Context, title string) error {
	if !n.runSummary {
		return nil
	}
	return n.send(ctx, payload{
		title:   "Subcast - Delivered",
		message: fmt.Sprintf("Ready for publishing: %s", strings.TrimSpace(title)),
		tags:    []string{"subcast", "item", "delivered"},
	})
}

func (n *ntfyService) NotifyItemFailed(ctx context.Context, itemID string, cause error) error {
	if !n.errorAlerts {
		return nil
	}
	message := fmt.Sprintf("Item %s failed", itemID)
	if cause != nil {
		message += ": " + strings.TrimSpace(cause.Error())
	}
	return n.send(ctx, payload{
		title:    "Subcast - Item Failed",
		message:  message,
		tags:     []string{"subcast", "item", "failed"},
		priority: "high",
	})
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "Subcast - Test",
		message:  "Notification system test",
		tags:     []string{"subcast", "test"},
		priority: "low",
	})
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyRunStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyRunCompleted(context.Context, string, int, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyItemDelivered(context.Context, string) error    { return nil }
func (noopService) NotifyItemFailed(context.Context, string, error) error { return nil }
func (noopService) TestNotification(context.Context) error               { return nil }
