// Package notifications pushes book lifecycle events to an ntfy topic.
// When no topic is configured every notification is a no-op.
package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pustakam/internal/config"
)

const userAgent = "Pustakam/0.1.0"

// Service is the notification surface exposed to the session orchestrator.
type Service interface {
	NotifyBookCompleted(ctx context.Context, title string, modules int) error
	NotifyBookPartial(ctx context.Context, title string, completed, failed int) error
	NotifyBookFailed(ctx context.Context, title, reason string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
func NewService(cfg config.Notifications) Service {
	topic := strings.TrimSpace(cfg.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.RequestTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyBookCompleted(ctx context.Context, title string, modules int) error {
	data := payload{
		title:    "Pustakam - Book Ready",
		message:  fmt.Sprintf("%s is finished: all %d chapters generated", strings.TrimSpace(title), modules),
		tags:     []string{"pustakam", "book", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBookPartial(ctx context.Context, title string, completed, failed int) error {
	data := payload{
		title:   "Pustakam - Generation Finished With Errors",
		message: fmt.Sprintf("%s: %d chapters generated, %d failed", strings.TrimSpace(title), completed, failed),
		tags:    []string{"pustakam", "book", "partial"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBookFailed(ctx context.Context, title, reason string) error {
	message := fmt.Sprintf("Generation stopped for %s", strings.TrimSpace(title))
	if reason = strings.TrimSpace(reason); reason != "" {
		message = fmt.Sprintf("%s: %s", message, reason)
	}
	data := payload{
		title:    "Pustakam - Generation Failed",
		message:  message,
		tags:     []string{"pustakam", "book", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:   "Pustakam - Test",
		message: "Notifications are configured correctly",
		tags:    []string{"pustakam", "test"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
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
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification rejected: %s", resp.Status)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyBookCompleted(context.Context, string, int) error    { return nil }
func (noopService) NotifyBookPartial(context.Context, string, int, int) error { return nil }
func (noopService) NotifyBookFailed(context.Context, string, string) error    { return nil }
func (noopService) TestNotification(context.Context) error                    { return nil }
