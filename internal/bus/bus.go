// Package bus routes messages between the WhatsApp channel and the agent
// runtime. Inbound messages come from webhook deliveries; outbound
// messages are replies waiting to be sent through the Cloud API.
package bus

import "context"

// PeerKind values for InboundMessage.
const (
	PeerDirect = "direct"
	PeerGroup  = "group"
)

// InboundMessage represents a message received from a WhatsApp webhook.
type InboundMessage struct {
	AccountID   string            `json:"account_id"`
	SenderID    string            `json:"sender_id"` // contact wa_id
	ChatID      string            `json:"chat_id"`
	Content     string            `json:"content"`
	MessageID   string            `json:"message_id"`
	PeerKind    string            `json:"peer_kind"` // "direct" or "group"
	ContactName string            `json:"contact_name,omitempty"`
	Timestamp   int64             `json:"timestamp,omitempty"` // epoch seconds
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// OutboundMessage represents a reply to be sent to WhatsApp.
type OutboundMessage struct {
	AccountID string            `json:"account_id,omitempty"` // empty = default account
	To        string            `json:"to"`
	Content   string            `json:"content"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// MessageBus is a buffered channel pair connecting the webhook side to
// the agent runtime side.
type MessageBus struct {
	inbound  chan InboundMessage
	outbound chan OutboundMessage
}

const defaultBufferSize = 256

// New creates a message bus with default buffering.
func New() *MessageBus {
	return &MessageBus{
		inbound:  make(chan InboundMessage, defaultBufferSize),
		outbound: make(chan OutboundMessage, defaultBufferSize),
	}
}

// PublishInbound enqueues an inbound message. Returns false instead of
// blocking the webhook handler when the buffer is full.
func (b *MessageBus) PublishInbound(msg InboundMessage) bool {
	select {
	case b.inbound <- msg:
		return true
	default:
		return false
	}
}

// ConsumeInbound blocks until a message arrives or ctx is done.
func (b *MessageBus) ConsumeInbound(ctx context.Context) (InboundMessage, bool) {
	select {
	case msg := <-b.inbound:
		return msg, true
	case <-ctx.Done():
		return InboundMessage{}, false
	}
}

// PublishOutbound enqueues a reply for delivery.
func (b *MessageBus) PublishOutbound(msg OutboundMessage) bool {
	select {
	case b.outbound <- msg:
		return true
	default:
		return false
	}
}

// ConsumeOutbound blocks until a reply is queued or ctx is done.
func (b *MessageBus) ConsumeOutbound(ctx context.Context) (OutboundMessage, bool) {
	select {
	case msg := <-b.outbound:
		return msg, true
	case <-ctx.Done():
		return OutboundMessage{}, false
	}
}
