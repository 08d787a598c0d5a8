// Package store persists per-contact chat state: who talked to which
// business number, under what name, and when. Backends exist for memory
// (tests, ephemeral runs), SQLite (standalone) and Postgres (managed).
package store

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ChatState is one contact's conversation record for one business number.
type ChatState struct {
	PhoneNumberID string    `json:"phone_number_id"`
	ContactWAID   string    `json:"contact_wa_id"`
	ContactName   string    `json:"contact_name,omitempty"`
	LastMessageAt time.Time `json:"last_message_at"`
}

// Key returns the composite identity of the record.
func (s ChatState) Key() string {
	return s.PhoneNumberID + "/" + s.ContactWAID
}

// ChatStateStore stores and retrieves chat state. Put is an upsert:
// a later write for the same (phone number, contact) pair replaces the
// earlier one.
type ChatStateStore interface {
	Put(ctx context.Context, state ChatState) error
	Get(ctx context.Context, phoneNumberID, contactWAID string) (*ChatState, error)
	// List returns all states for a business number, most recent first.
	List(ctx context.Context, phoneNumberID string) ([]ChatState, error)
	Close() error
}

// FormatChatContext renders recent chat state as a provider block for
// prompt assembly. Returns "" when there is nothing to show.
func FormatChatContext(states []ChatState, limit int) string {
	if len(states) == 0 {
		return ""
	}
	sorted := make([]ChatState, len(states))
	copy(sorted, states)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].LastMessageAt.After(sorted[j].LastMessageAt)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	var b strings.Builder
	b.WriteString("# WhatsApp Chat Context\n")
	for _, s := range sorted {
		name := s.ContactName
		if name == "" {
			name = "unknown"
		}
		fmt.Fprintf(&b, "- %s (%s), last message %s\n",
			name, s.ContactWAID, s.LastMessageAt.UTC().Format(time.RFC3339))
	}
	return b.String()
}
