package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"

	"github.com/buildhub-th/procure-backend/config"
	"github.com/buildhub-th/procure-backend/internal/apperrors"
)

const maxErrorBody = 64 << 10

// Client pushes messages to the LINE Messaging API.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
}

func NewClient(cfg config.LineConfig) *Client {
	return &Client{
		endpoint: cfg.PushEndpoint,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.PushRatePerSec), cfg.PushBurst),
	}
}

type pushRequest struct {
	To       string    `json:"to"`
	Messages []Message `json:"messages"`
}

// Push sends messages to a user or group. A non-empty retryKey makes the
// request idempotent on the provider side; a 409 for a reused key means the
// earlier attempt was accepted.
func (c *Client) Push(ctx context.Context, token, to string, messages []Message, retryKey string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return apperrors.Service("LINE push throttled", err)
	}

	payload, err := json.Marshal(pushRequest{To: to, Messages: messages})
	if err != nil {
		return apperrors.Service("failed to encode LINE message", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return apperrors.Service("failed to create LINE request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if retryKey != "" {
		req.Header.Set("X-Line-Retry-Key", retryKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperrors.Service("LINE request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if resp.StatusCode == http.StatusConflict && retryKey != "" {
		return nil
	}
	return dispatchError(resp.StatusCode, body)
}

// dispatchError extracts the provider's message and detail messages.
func dispatchError(status int, body []byte) error {
	parsed := gjson.ParseBytes(body)
	msg := parsed.Get("message").String()
	if msg == "" {
		msg = fmt.Sprintf("LINE API returned status %d", status)
	}

	var details []string
	for _, d := range parsed.Get("details.#.message").Array() {
		details = append(details, d.String())
	}

	return apperrors.Dispatch("LINE API error: "+msg, map[string]any{
		"status":  status,
		"message": msg,
		"details": details,
		"body":    string(body),
	})
}
