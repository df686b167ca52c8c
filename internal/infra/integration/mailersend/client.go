package mailersend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.mailersend.com/v1"

type Options struct {
	APIKey          string
	BaseURL         string
	OptInTemplateID string
	From            Recipient
	AlertTo         Recipient
	Timeout         time.Duration
}

type Client struct {
	baseURL string
	opts    Options
	http    *http.Client
	logger  *log.Logger
}

func NewClient(opts Options, logger *log.Logger) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		opts:    opts,
		http:    &http.Client{Timeout: opts.Timeout},
		logger:  logger,
	}
}

type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("mailersend: status %d: %s", e.StatusCode, e.Body)
}

// SendOptIn sends the double opt-in template. The template receives
// first_name and email as personalization variables.
func (c *Client) SendOptIn(ctx context.Context, to, firstName string) error {
	if c.opts.OptInTemplateID == "" {
		c.logger.Printf("⚠️ MailerSend: opt-in template not configured, skipping %s", to)
		return nil
	}

	req := emailRequest{
		From:       c.opts.From,
		To:         []Recipient{{Email: to, Name: firstName}},
		TemplateID: c.opts.OptInTemplateID,
		Personalization: []personalization{{
			Email: to,
			Data: map[string]any{
				"first_name": firstName,
				"email":      to,
			},
		}},
	}
	if err := c.send(ctx, req); err != nil {
		return fmt.Errorf("opt-in email to %s: %w", to, err)
	}
	c.logger.Printf("✅ MailerSend: opt-in email queued for %s", to)
	return nil
}

// SendAlert mails the operational mailbox.
func (c *Client) SendAlert(ctx context.Context, subject, text string) error {
	req := emailRequest{
		From:    c.opts.From,
		To:      []Recipient{c.opts.AlertTo},
		Subject: subject,
		Text:    text,
	}
	if err := c.send(ctx, req); err != nil {
		return fmt.Errorf("alert email: %w", err)
	}
	c.logger.Printf("✅ MailerSend: alert sent to %s", c.opts.AlertTo.Email)
	return nil
}

func (c *Client) Configured() bool {
	return c.opts.APIKey != ""
}

func (c *Client) send(ctx context.Context, payload emailRequest) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/email", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.opts.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Requested-With", "XMLHttpRequest")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return nil
}
