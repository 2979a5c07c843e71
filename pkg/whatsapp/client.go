// Package whatsapp posts messages to a WhatsApp Business HTTP gateway.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

const (
	defaultTimeout              = 15 * time.Second
	mediaTypeDocument           = "document"
	responseBodyReadLimit int64 = 1024
)

var errEndpointRequired = errors.New("whatsapp api url and key are required")

// Client sends messages through a provider that accepts
// {phone, message, media, mediaType} with bearer authentication.
type Client struct {
	httpClient *http.Client
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient builds a gateway client. Endpoint and key are supplied per message
// because they live in integration settings.
func NewClient(timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	client := &Client{httpClient: &http.Client{Timeout: timeout}}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client
}

// Endpoint is the provider URL and API key.
type Endpoint struct {
	URL    string
	APIKey string
}

// Message is one outbound text with an optional document link.
type Message struct {
	Phone    string
	Text     string
	MediaURL string
}

type payload struct {
	Phone     string `json:"phone"`
	Message   string `json:"message"`
	Media     string `json:"media,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
}

// Send posts msg. Any non-2xx status is an error.
func (c *Client) Send(ctx context.Context, ep Endpoint, msg Message) error {
	if c == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "whatsapp client not configured")
	}
	if strings.TrimSpace(ep.URL) == "" || strings.TrimSpace(ep.APIKey) == "" {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, errEndpointRequired, "whatsapp endpoint incomplete")
	}
	if strings.TrimSpace(msg.Phone) == "" || strings.TrimSpace(msg.Text) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "phone and message are required")
	}

	body := payload{Phone: msg.Phone, Message: msg.Text}
	if msg.MediaURL != "" {
		body.Media = msg.MediaURL
		body.MediaType = mediaTypeDocument
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal whatsapp payload")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(raw))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build whatsapp request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+ep.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute whatsapp request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))), "whatsapp request failed")
	}
	return nil
}
