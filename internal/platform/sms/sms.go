// Package sms delivers outbound text messages through an httpsms-style
// gateway. It exposes the Sender interface consumed by the identity and
// schedule domains, a resty-backed gateway client, message templates, and a
// mock sender for tests.
package sms

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"
)

// Sender is the interface for sending SMS messages.
type Sender interface {
	Send(ctx context.Context, to, content string) error
}

// gatewayRequest is the httpsms message payload.
type gatewayRequest struct {
	Content string `json:"content"`
	From    string `json:"from"`
	To      string `json:"to"`
}

type gatewayResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client sends messages through the configured SMS gateway.
type Client struct {
	http   *resty.Client
	from   string
	logger zerolog.Logger
}

// NewClient creates a gateway client. apiURL is the full send endpoint.
func NewClient(apiURL, apiKey, from string, logger zerolog.Logger) *Client {
	http := resty.New().
		SetBaseURL(apiURL).
		SetTimeout(15 * time.Second).
		SetRetryCount(2).
		SetRetryWaitTime(1 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("x-api-key", apiKey)

	return &Client{http: http, from: from, logger: logger}
}

// Send posts a single message to the gateway.
func (c *Client) Send(ctx context.Context, to, content string) error {
	if to == "" {
		return fmt.Errorf("recipient number is required")
	}

	var out gatewayResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(gatewayRequest{Content: content, From: c.from, To: to}).
		SetResult(&out).
		Post("")
	if err != nil {
		return fmt.Errorf("sms gateway request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("sms gateway returned status %d: %s", resp.StatusCode(), out.Message)
	}

	c.logger.Info().Str("to", to).Msg("sms sent")
	return nil
}

// ---------------------------------------------------------------------------
// Templates
// ---------------------------------------------------------------------------

// Template is a reusable message body with {{key}} placeholders.
type Template struct {
	ID   string
	Body string
}

// TemplateEngine renders registered message templates.
type TemplateEngine struct {
	mu        sync.RWMutex
	templates map[string]*Template
}

// NewTemplateEngine creates a TemplateEngine with the built-in templates
// pre-registered.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{templates: make(map[string]*Template)}
	for _, t := range []Template{
		{
			ID:   "otp-login",
			Body: "Your verification code is {{code}}. It expires in {{minutes}} minutes.",
		},
		{
			ID:   "password-reset",
			Body: "Your password reset code is {{code}}. It expires in {{minutes}} minutes. If you did not request this, ignore this message.",
		},
		{
			ID:   "schedule-notice",
			Body: "Dear {{patient_name}}, a hearing mission is scheduled at {{location}} on {{date}}. Please attend for your {{phase}} visit.",
		},
	} {
		tmpl := t
		e.templates[t.ID] = &tmpl
	}
	return e
}

// Register adds or replaces a template.
func (e *TemplateEngine) Register(t Template) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates[t.ID] = &t
}

// Render looks up a template by ID and performs {{key}} replacement. Keys
// present in the template but absent from data are left as-is.
func (e *TemplateEngine) Render(templateID string, data map[string]string) (string, error) {
	e.mu.RLock()
	t, ok := e.templates[templateID]
	e.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("template %q not found", templateID)
	}

	body := t.Body
	for k, v := range data {
		body = strings.ReplaceAll(body, "{{"+k+"}}", v)
	}
	return body, nil
}

// ---------------------------------------------------------------------------
// Mock sender (test double)
// ---------------------------------------------------------------------------

// SendCall records a single call to Send.
type SendCall struct {
	To      string
	Content string
}

// MockSender is a test double for Sender.
type MockSender struct {
	mu         sync.Mutex
	Calls      []SendCall
	ShouldFail bool
}

func (m *MockSender) Send(_ context.Context, to, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ShouldFail {
		return fmt.Errorf("mock sms failure")
	}
	m.Calls = append(m.Calls, SendCall{To: to, Content: content})
	return nil
}

// Sent returns a copy of the recorded calls.
func (m *MockSender) Sent() []SendCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SendCall, len(m.Calls))
	copy(out, m.Calls)
	return out
}
