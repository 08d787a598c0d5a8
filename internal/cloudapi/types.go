// Package cloudapi talks to the WhatsApp Cloud API: a REST client for
// outbound messages and typed webhook payloads for inbound events. The
// wire contract is fixed by the provider; this package only builds/parses
// JSON and reports HTTP failures.
package cloudapi

import "fmt"

// DefaultAPIVersion is used when no apiVersion is configured.
const DefaultAPIVersion = "v17.0"

// DefaultBaseURL is the Graph API endpoint.
const DefaultBaseURL = "https://graph.facebook.com"

// MessageType identifies the kind of an outbound message.
type MessageType string

const (
	TypeText        MessageType = "text"
	TypeImage       MessageType = "image"
	TypeAudio       MessageType = "audio"
	TypeVideo       MessageType = "video"
	TypeDocument    MessageType = "document"
	TypeSticker     MessageType = "sticker"
	TypeLocation    MessageType = "location"
	TypeContacts    MessageType = "contacts"
	TypeTemplate    MessageType = "template"
	TypeInteractive MessageType = "interactive"
	TypeReaction    MessageType = "reaction"
)

// TextContent is the body of a text message.
type TextContent struct {
	Body string `json:"body"`
}

// MediaContent references uploaded media by ID or by link.
type MediaContent struct {
	ID      string `json:"id,omitempty"`
	Link    string `json:"link,omitempty"`
	Caption string `json:"caption,omitempty"`
	// Filename only applies to documents.
	Filename string `json:"filename,omitempty"`
}

// LocationContent is a shared location.
type LocationContent struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name,omitempty"`
	Address   string  `json:"address,omitempty"`
}

// ReactionContent is an emoji reaction to an earlier message.
type ReactionContent struct {
	MessageID string `json:"message_id"`
	Emoji     string `json:"emoji"`
}

// TemplateContent addresses a pre-approved message template.
type TemplateContent struct {
	Name       string              `json:"name"`
	Language   TemplateLanguage    `json:"language"`
	Components []TemplateComponent `json:"components,omitempty"`
}

type TemplateLanguage struct {
	Code string `json:"code"`
}

type TemplateComponent struct {
	Type       string           `json:"type"`
	Parameters []map[string]any `json:"parameters,omitempty"`
}

// InteractiveContent is a button or list prompt.
type InteractiveContent struct {
	Type   string             `json:"type"` // "button" or "list"
	Header *InteractiveHeader `json:"header,omitempty"`
	Body   TextContent        `json:"body"`
	Footer *TextContent       `json:"footer,omitempty"`
	Action InteractiveAction  `json:"action"`
}

type InteractiveHeader struct {
	Type string `json:"type"` // "text"
	Text string `json:"text,omitempty"`
}

type InteractiveAction struct {
	Buttons  []InteractiveButton `json:"buttons,omitempty"`
	Button   string              `json:"button,omitempty"` // list trigger label
	Sections []ListSection       `json:"sections,omitempty"`
}

type InteractiveButton struct {
	Type  string      `json:"type"` // "reply"
	Reply ButtonReply `json:"reply"`
}

type ButtonReply struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type ListSection struct {
	Title string    `json:"title,omitempty"`
	Rows  []ListRow `json:"rows"`
}

type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// MessageResponse is the Cloud API response to a send request.
type MessageResponse struct {
	MessagingProduct string `json:"messaging_product"`
	Contacts         []struct {
		Input string `json:"input"`
		WaID  string `json:"wa_id"`
	} `json:"contacts,omitempty"`
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages,omitempty"`
}

// MessageID returns the first message ID in the response, or "".
func (r *MessageResponse) MessageID() string {
	if r == nil || len(r.Messages) == 0 {
		return ""
	}
	return r.Messages[0].ID
}

// APIError is a non-2xx Cloud API reply.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("whatsapp api error (%d): %s", e.StatusCode, e.Body)
}
