// Package notify delivers reconciliation reports to a Slack channel via the
// chat.postMessage Web API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	dErrors "vatwatch/pkg/domain-errors"
)

// DefaultURL is the production chat.postMessage endpoint.
const DefaultURL = "https://slack.com/api/chat.postMessage"

type Config struct {
	Token   string
	Channel string
	// Mention is prepended to every message, e.g. "<!channel>".
	Mention string
	URL     string
	Timeout time.Duration
}

type SlackClient struct {
	cfg   Config
	url   string
	httpc *http.Client
}

func NewSlackClient(cfg Config) (*SlackClient, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("slack token is required")
	}
	if cfg.Channel == "" {
		return nil, fmt.Errorf("slack channel is required")
	}
	url := cfg.URL
	if url == "" {
		url = DefaultURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SlackClient{
		cfg:   cfg,
		url:   url,
		httpc: &http.Client{Timeout: timeout},
	}, nil
}

type postMessageRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
}

type postMessageResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// Send posts text to the configured channel. One failed attempt is retried
// once; after that the error goes back to the caller, who decides whether it
// matters.
func (c *SlackClient) Send(ctx context.Context, text string) error {
	if c.cfg.Mention != "" {
		text = c.cfg.Mention + " " + text
	}

	err := c.post(ctx, text)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return err
	}
	return c.post(ctx, text)
}

func (c *SlackClient) post(ctx context.Context, text string) error {
	payload, err := json.Marshal(postMessageRequest{
		Channel: c.cfg.Channel,
		Text:    text,
	})
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "encoding message")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "building message request")
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "posting message")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "reading message response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return dErrors.Newf(dErrors.CodeUnavailable, "message API returned status %d", resp.StatusCode)
	}

	var parsed postMessageResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "decoding message response")
	}
	if !parsed.OK {
		return dErrors.Newf(dErrors.CodeUnavailable, "message API rejected the message: %s", parsed.Error)
	}
	return nil
}
