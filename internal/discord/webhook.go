package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// ErrTooManyEmbeds is returned for a payload over MaxEmbedsPerMessage.
var ErrTooManyEmbeds = fmt.Errorf("more than %d embeds in one message", MaxEmbedsPerMessage)

// StatusError is a non-2xx answer from the webhook endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("webhook error: status %d: %s", e.StatusCode, e.Body)
}

// Sender posts one message.
type Sender interface {
	Send(ctx context.Context, p Payload) error
}

// Waiter blocks until the next send is allowed.
type Waiter interface {
	Wait(ctx context.Context) error
}

// Client posts messages to a webhook URL.
type Client struct {
	url  string
	http *http.Client
}

// NewClient creates a webhook client. The URL is used as is.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
	}
}

// Send makes one POST attempt.
func (c *Client) Send(ctx context.Context, p Payload) error {
	if len(p.Embeds) > MaxEmbedsPerMessage {
		return ErrTooManyEmbeds
	}

	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Body: string(bytes.TrimSpace(msg))}
	}
	return nil
}

// Report counts the outcome of a delivery.
type Report struct {
	Sent   int
	Failed int
}

// Deliver sends one message per batch in order, waiting on pacer before
// each send. A failed batch is logged and does not stop the rest.
func Deliver(ctx context.Context, s Sender, pacer Waiter, username string, batches []Batch) Report {
	var rep Report
	for i, b := range batches {
		if err := pacer.Wait(ctx); err != nil {
			rep.Failed += len(batches) - i
			slog.Error("delivery interrupted", "remaining", len(batches)-i, "error", err)
			return rep
		}

		err := s.Send(ctx, b.Payload(username))
		if err != nil {
			rep.Failed++
			var se *StatusError
			if errors.As(err, &se) {
				slog.Error("webhook rejected batch", "batch", i+1, "of", len(batches), "status", se.StatusCode, "body", se.Body)
			} else {
				slog.Error("failed to send batch", "batch", i+1, "of", len(batches), "error", err)
			}
			continue
		}
		rep.Sent++
		slog.Info("batch sent", "batch", i+1, "of", len(batches), "embeds", len(b))
	}
	return rep
}
