package cloudapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// Client sends messages through the Cloud API on behalf of one
// phone number. It is safe for concurrent use.
type Client struct {
	accessToken   string
	phoneNumberID string
	baseURL       string
	apiVersion    string
	httpClient    *http.Client
	limiter       *rate.Limiter
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the Graph API endpoint, mainly for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithAPIVersion sets the Graph API version segment, e.g. "v17.0".
func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.apiVersion = v
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRateLimit caps outbound requests per second. Zero or negative
// disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		} else {
			c.limiter = nil
		}
	}
}

// NewClient builds a Client for the given credentials.
func NewClient(accessToken, phoneNumberID string, opts ...Option) *Client {
	c := &Client{
		accessToken:   accessToken,
		phoneNumberID: phoneNumberID,
		baseURL:       DefaultBaseURL,
		apiVersion:    DefaultAPIVersion,
		httpClient:    &http.Client{Timeout: defaultTimeout},
		limiter:       rate.NewLimiter(rate.Limit(defaultRPS), defaultBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

const (
	defaultTimeout = 30 * time.Second
	defaultRPS     = 20
	defaultBurst   = 5
)

// PhoneNumberID reports the sending number this client is bound to.
func (c *Client) PhoneNumberID() string { return c.phoneNumberID }

// SendText sends a plain text message. previewURL enables link previews.
func (c *Client) SendText(ctx context.Context, to, body string, previewURL bool) (*MessageResponse, error) {
	return c.send(ctx, to, TypeText, map[string]any{
		"body":        body,
		"preview_url": previewURL,
	})
}

// SendMedia sends image/audio/video/document/sticker content.
func (c *Client) SendMedia(ctx context.Context, to string, kind MessageType, media MediaContent) (*MessageResponse, error) {
	switch kind {
	case TypeImage, TypeAudio, TypeVideo, TypeDocument, TypeSticker:
	default:
		return nil, fmt.Errorf("cloudapi: %q is not a media type", kind)
	}
	return c.send(ctx, to, kind, media)
}

// SendLocation shares a location pin.
func (c *Client) SendLocation(ctx context.Context, to string, loc LocationContent) (*MessageResponse, error) {
	return c.send(ctx, to, TypeLocation, loc)
}

// SendReaction reacts to a prior message. An empty emoji clears the reaction.
func (c *Client) SendReaction(ctx context.Context, to, messageID, emoji string) (*MessageResponse, error) {
	return c.send(ctx, to, TypeReaction, ReactionContent{MessageID: messageID, Emoji: emoji})
}

// SendTemplate sends a pre-approved template message.
func (c *Client) SendTemplate(ctx context.Context, to string, tpl TemplateContent) (*MessageResponse, error) {
	return c.send(ctx, to, TypeTemplate, tpl)
}

// SendInteractive sends a button or list prompt.
func (c *Client) SendInteractive(ctx context.Context, to string, content InteractiveContent) (*MessageResponse, error) {
	return c.send(ctx, to, TypeInteractive, content)
}

// MarkRead flags an inbound message as read.
func (c *Client) MarkRead(ctx context.Context, messageID string) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"status":            "read",
		"message_id":        messageID,
	}
	_, err := c.post(ctx, c.messagesURL(), payload)
	return err
}

func (c *Client) send(ctx context.Context, to string, kind MessageType, content any) (*MessageResponse, error) {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"recipient_type":    "individual",
		"to":                strings.TrimPrefix(to, "+"),
		"type":              string(kind),
		string(kind):        content,
	}
	body, err := c.post(ctx, c.messagesURL(), payload)
	if err != nil {
		return nil, err
	}
	var resp MessageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("cloudapi: decode response: %w", err)
	}
	return &resp, nil
}

func (c *Client) messagesURL() string {
	return fmt.Sprintf("%s/%s/%s/messages", c.baseURL, c.apiVersion, c.phoneNumberID)
}

func (c *Client) post(ctx context.Context, url string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("cloudapi: encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(buf))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("cloudapi: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("cloudapi: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	return body, nil
}
