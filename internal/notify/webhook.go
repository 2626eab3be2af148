package notify

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"

	"bet-ops-dashboard-go/internal/config"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// WebhookNotifier POSTs events as JSON to a configured endpoint. Sends are
// rate limited and retried with backoff on 429/5xx/network failures.
type WebhookNotifier struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

var _ Notifier = (*WebhookNotifier)(nil)

// NewWebhookNotifier creates a webhook-backed notifier.
func NewWebhookNotifier(cfg *config.Notify, logger *zap.Logger) *WebhookNotifier {
	client := resty.New().SetBaseURL(cfg.WebhookURL)
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &WebhookNotifier{
		client:  client,
		limiter: limiter,
		logger:  logger.Named("webhook"),
	}
}

func (n *WebhookNotifier) Notify(ctx context.Context, ev Event) error {
	req := n.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(ev)

	if _, err := n.doRequest(ctx, req); err != nil {
		return fmt.Errorf("failed to deliver notification: %w", err)
	}

	n.logger.Debug("Notification delivered",
		zap.String("class", ev.Class),
		zap.Int("threshold", ev.Threshold))
	return nil
}

// doRequest executes the POST with rate limiting and bounded retry.
func (n *WebhookNotifier) doRequest(ctx context.Context, req *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error
	const maxRetries = 3

	for i := 0; i < maxRetries; i++ {
		if err := n.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		resp, err = req.Execute(http.MethodPost, "")
		if err == nil && !resp.IsError() {
			return resp, nil
		}

		shouldRetry := false
		var retryAfter time.Duration

		if resp != nil && err == nil {
			statusCode := resp.StatusCode()
			if statusCode == http.StatusTooManyRequests {
				shouldRetry = true
				if seconds, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			} else if statusCode >= 500 {
				shouldRetry = true
			}
		} else {
			// Network or other client-side errors
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, fmt.Errorf("webhook rejected notification with status %s: %s", resp.Status(), resp.String())
		}

		if retryAfter == 0 {
			// Exponential backoff: 1s, 2s, 4s
			retryAfter = time.Duration(math.Pow(2, float64(i))) * time.Second
		}

		n.logger.Warn("Notification delivery failed, retrying...",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err))

		select {
		case <-time.After(retryAfter):
			continue
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("notification delivery failed after %d attempts: %w", maxRetries, err)
}
