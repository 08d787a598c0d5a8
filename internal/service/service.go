// Package service routes traffic between the webhook listener, the
// message bus and the Cloud API: inbound events are policy-gated and
// published to the bus, outbound messages are resolved to an account,
// chunked and sent.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/accounts"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/bus"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/cloudapi"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/store"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/telemetry"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/waid"
)

// TextSender is the slice of the Cloud API client the service needs
// for outbound text. Narrow so tests can fake it.
type TextSender interface {
	SendText(ctx context.Context, to, body string, previewURL bool) (*cloudapi.MessageResponse, error)
	PhoneNumberID() string
}

// ClientFactory builds a sender for one account's credentials.
type ClientFactory func(accessToken, phoneNumberID, apiVersion string) TextSender

func defaultClientFactory(accessToken, phoneNumberID, apiVersion string) TextSender {
	return cloudapi.NewClient(accessToken, phoneNumberID, cloudapi.WithAPIVersion(apiVersion))
}

// Service ties account resolution, policy, chat state and the Cloud
// API together.
type Service struct {
	runtime accounts.Runtime
	bus     *bus.MessageBus
	states  store.ChatStateStore
	tracer  trace.Tracer

	newClient ClientFactory

	mu      sync.Mutex
	clients map[string]TextSender // keyed by token+phoneNumberID
}

// Option customizes a Service.
type Option func(*Service)

// WithClientFactory replaces the Cloud API client constructor, mainly
// for tests.
func WithClientFactory(f ClientFactory) Option {
	return func(s *Service) { s.newClient = f }
}

// New builds a Service.
func New(rt accounts.Runtime, b *bus.MessageBus, states store.ChatStateStore, opts ...Option) *Service {
	s := &Service{
		runtime:   rt,
		bus:       b,
		states:    states,
		tracer:    telemetry.Tracer("github.com/nextlevelbuilder/goclaw-whatsapp/internal/service"),
		newClient: defaultClientFactory,
		clients:   make(map[string]TextSender),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerifyWebhookToken reports whether token matches any enabled
// account's webhook verify token.
func (s *Service) VerifyWebhookToken(token string) bool {
	if token == "" {
		return false
	}
	for _, id := range accounts.ListAccountIDs(s.runtime) {
		acct := accounts.ResolveAccount(s.runtime, id)
		if acct.Config.WebhookVerifyToken != nil && *acct.Config.WebhookVerifyToken == token {
			return true
		}
	}
	return false
}

// HandleWebhook processes one webhook event. Messages that fail the
// access policy are dropped with a debug log; processing continues with
// the rest of the batch.
func (s *Service) HandleWebhook(ctx context.Context, event *cloudapi.WebhookEvent) error {
	ctx, span := s.tracer.Start(ctx, "whatsapp.webhook",
		trace.WithAttributes(attribute.Int("entries", len(event.Entry))))
	defer span.End()

	for _, entry := range event.Entry {
		for _, change := range entry.Changes {
			if change.Field != "messages" {
				continue
			}
			s.handleChange(ctx, change.Value)
		}
	}
	return nil
}

func (s *Service) handleChange(ctx context.Context, value cloudapi.Value) {
	accountID := s.accountForPhoneNumberID(value.Metadata.PhoneNumberID)
	acct := accounts.ResolveAccount(s.runtime, accountID)
	if !acct.Enabled || !acct.Configured {
		slog.Debug("dropping event for unconfigured account",
			"account", accountID, "phone_number_id", value.Metadata.PhoneNumberID)
		return
	}

	names := make(map[string]string, len(value.Contacts))
	for _, c := range value.Contacts {
		names[c.WaID] = c.Profile.Name
	}

	for _, msg := range value.Messages {
		s.handleIncoming(ctx, acct, value.Metadata, msg, names[msg.From])
	}
	for _, st := range value.Statuses {
		slog.Debug("message status update",
			"account", acct.AccountID, "message_id", st.ID,
			"status", st.Status, "recipient", st.RecipientID)
	}
}

func (s *Service) handleIncoming(ctx context.Context, acct accounts.ResolvedAccount, meta cloudapi.Metadata, msg cloudapi.IncomingMessage, contactName string) {
	ctx, span := s.tracer.Start(ctx, "whatsapp.message",
		trace.WithAttributes(
			attribute.String("account", acct.AccountID),
			attribute.String("type", msg.Type),
		))
	defer span.End()

	sender := msg.From
	isGroup := waid.IsGroupJID(sender)
	identifier := sender
	if !isGroup {
		identifier = waid.NormalizeE164("+" + strings.TrimPrefix(sender, "+"))
	}

	var groupCfg *accounts.GroupConfig
	if isGroup {
		groupCfg = accounts.ResolveGroupConfig(s.runtime, acct.AccountID, sender)
		if !accounts.IsGroupAllowed(sender, acct.Config, groupCfg) {
			slog.Debug("group not allowed", "account", acct.AccountID, "group", sender)
			return
		}
	}

	if !accounts.IsUserAllowed(identifier, acct.Config, isGroup, groupCfg) {
		slog.Debug("sender not allowed by policy",
			"account", acct.AccountID, "sender", identifier, "group", isGroup)
		return
	}

	if isGroup && accounts.IsMentionRequired(groupCfg) && !mentionsNumber(msg.TextBody(), meta.DisplayPhoneNumber) {
		slog.Debug("group requires mention, skipping",
			"account", acct.AccountID, "group", sender)
		return
	}

	ts := parseTimestamp(msg.Timestamp)
	if err := s.states.Put(ctx, store.ChatState{
		PhoneNumberID: meta.PhoneNumberID,
		ContactWAID:   msg.From,
		ContactName:   contactName,
		LastMessageAt: ts,
	}); err != nil {
		slog.Warn("chat state update failed", "account", acct.AccountID, "error", err)
	}

	content := msg.TextBody()
	if content == "" && msg.Type != "text" {
		content = "[" + msg.Type + "]"
	}

	peerKind := bus.PeerDirect
	if isGroup {
		peerKind = bus.PeerGroup
	}
	inbound := bus.InboundMessage{
		AccountID:   acct.AccountID,
		SenderID:    identifier,
		ChatID:      waid.FormatID(sender),
		Content:     content,
		MessageID:   msg.ID,
		PeerKind:    peerKind,
		ContactName: contactName,
		Timestamp:   ts.Unix(),
		Metadata: map[string]string{
			"correlation_id":  uuid.NewString(),
			"phone_number_id": meta.PhoneNumberID,
			"message_type":    msg.Type,
		},
	}
	if !s.bus.PublishInbound(inbound) {
		slog.Warn("inbound bus full, dropping message",
			"account", acct.AccountID, "message_id", msg.ID)
	}
}

// SendText resolves the account, normalizes the target and sends text,
// chunked to the account's configured limit.
func (s *Service) SendText(ctx context.Context, accountID, to, text string) error {
	ctx, span := s.tracer.Start(ctx, "whatsapp.send",
		trace.WithAttributes(attribute.String("account", accountID)))
	defer span.End()

	acct := accounts.ResolveAccount(s.runtime, accountID)
	if !acct.Configured {
		return fmt.Errorf("whatsapp account %q is not configured", acct.AccountID)
	}
	if !acct.Enabled {
		return fmt.Errorf("whatsapp account %q is disabled", acct.AccountID)
	}

	target, ok := waid.NormalizeTarget(to)
	if !ok {
		return fmt.Errorf("invalid whatsapp target %q", to)
	}
	if waid.IsGroupJID(target) {
		return fmt.Errorf("the cloud api cannot send to group %q", target)
	}

	limit := waid.TextChunkLimit
	if acct.Config.TextChunkLimit != nil && *acct.Config.TextChunkLimit > 0 {
		limit = *acct.Config.TextChunkLimit
	}

	client := s.clientFor(acct)
	for _, chunk := range waid.ChunkText(text, limit) {
		resp, err := client.SendText(ctx, target, chunk, false)
		if err != nil {
			return fmt.Errorf("send to %s: %w", target, err)
		}
		slog.Debug("message sent",
			"account", acct.AccountID, "to", target, "message_id", resp.MessageID())
	}
	return nil
}

// RunOutbound consumes outbound bus messages until ctx is cancelled.
func (s *Service) RunOutbound(ctx context.Context) {
	for {
		msg, ok := s.bus.ConsumeOutbound(ctx)
		if !ok {
			return
		}
		if err := s.SendText(ctx, msg.AccountID, msg.To, msg.Content); err != nil {
			slog.Error("outbound send failed",
				"account", msg.AccountID, "to", msg.To, "error", err)
		}
	}
}

// ChatContext renders recent chat state for the account's business
// number as a prompt block.
func (s *Service) ChatContext(ctx context.Context, accountID string, limit int) (string, error) {
	acct := accounts.ResolveAccount(s.runtime, accountID)
	states, err := s.states.List(ctx, acct.PhoneNumberID)
	if err != nil {
		return "", err
	}
	return store.FormatChatContext(states, limit), nil
}

func (s *Service) clientFor(acct accounts.ResolvedAccount) TextSender {
	key := acct.AccessToken + "|" + acct.PhoneNumberID
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.clients[key]; ok {
		return c
	}
	apiVersion := ""
	if acct.Config.APIVersion != nil {
		apiVersion = *acct.Config.APIVersion
	}
	c := s.newClient(acct.AccessToken, acct.PhoneNumberID, apiVersion)
	s.clients[key] = c
	return c
}

// accountForPhoneNumberID maps a webhook's receiving number to an
// account ID, falling back to the default account.
func (s *Service) accountForPhoneNumberID(phoneNumberID string) string {
	if phoneNumberID == "" {
		return accounts.ResolveDefaultAccountID(s.runtime)
	}
	for _, id := range accounts.ListAccountIDs(s.runtime) {
		acct := accounts.ResolveAccount(s.runtime, id)
		if acct.PhoneNumberID == phoneNumberID {
			return id
		}
	}
	return accounts.ResolveDefaultAccountID(s.runtime)
}

// mentionsNumber reports whether text mentions the business number as
// "@<digits>".
func mentionsNumber(text, displayNumber string) bool {
	digits := strings.TrimPrefix(waid.NormalizeE164(displayNumber), "+")
	return digits != "" && strings.Contains(text, "@"+digits)
}

func parseTimestamp(raw string) time.Time {
	if raw == "" {
		return time.Now().UTC()
	}
	unix, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Now().UTC()
	}
	return time.Unix(unix, 0).UTC()
}
