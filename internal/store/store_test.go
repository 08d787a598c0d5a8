package store

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func testStoreRoundTrip(t *testing.T, s ChatStateStore) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	first := ChatState{
		PhoneNumberID: "555001",
		ContactWAID:   "41796666864",
		ContactName:   "Alice",
		LastMessageAt: now,
	}
	if err := s.Put(ctx, first); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := s.Get(ctx, "555001", "41796666864")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got == nil || got.ContactName != "Alice" {
		t.Fatalf("Get = %+v, want Alice", got)
	}
	if !got.LastMessageAt.Equal(now) {
		t.Errorf("LastMessageAt = %v, want %v", got.LastMessageAt, now)
	}

	// Upsert replaces the record.
	update := first
	update.ContactName = "Alice Updated"
	update.LastMessageAt = now.Add(time.Hour)
	if err := s.Put(ctx, update); err != nil {
		t.Fatalf("Put update: %v", err)
	}
	got, err = s.Get(ctx, "555001", "41796666864")
	if err != nil || got == nil {
		t.Fatalf("Get after update: %v", err)
	}
	if got.ContactName != "Alice Updated" {
		t.Errorf("name after upsert = %q", got.ContactName)
	}

	// Second contact, older message; List orders most recent first.
	if err := s.Put(ctx, ChatState{
		PhoneNumberID: "555001",
		ContactWAID:   "123",
		ContactName:   "Bob",
		LastMessageAt: now.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("Put second: %v", err)
	}
	// Different business number must not show up in the listing.
	if err := s.Put(ctx, ChatState{
		PhoneNumberID: "555999",
		ContactWAID:   "777",
		LastMessageAt: now,
	}); err != nil {
		t.Fatalf("Put other number: %v", err)
	}

	list, err := s.List(ctx, "555001")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List = %d entries, want 2", len(list))
	}
	if list[0].ContactWAID != "41796666864" || list[1].ContactWAID != "123" {
		t.Errorf("List order = %s, %s; want most recent first", list[0].ContactWAID, list[1].ContactWAID)
	}

	// Unknown contact yields nil, not an error.
	got, err = s.Get(ctx, "555001", "nope")
	if err != nil {
		t.Fatalf("Get unknown: %v", err)
	}
	if got != nil {
		t.Errorf("Get unknown = %+v, want nil", got)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	defer s.Close()
	testStoreRoundTrip(t, s)
}

func TestSQLiteStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat-state.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("NewSQLiteStore: %v", err)
	}
	defer s.Close()
	testStoreRoundTrip(t, s)
}

func TestFormatChatContext(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	if got := FormatChatContext(nil, 5); got != "" {
		t.Errorf("empty input = %q, want empty string", got)
	}

	states := []ChatState{
		{ContactWAID: "111", ContactName: "Old", LastMessageAt: now.Add(-time.Hour)},
		{ContactWAID: "222", ContactName: "New", LastMessageAt: now},
		{ContactWAID: "333", LastMessageAt: now.Add(-2 * time.Hour)},
	}

	out := FormatChatContext(states, 2)
	if !strings.HasPrefix(out, "# WhatsApp Chat Context\n") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "New") || !strings.Contains(out, "Old") {
		t.Errorf("expected two most recent contacts: %q", out)
	}
	if strings.Contains(out, "333") {
		t.Errorf("limit not applied: %q", out)
	}

	// Unnamed contacts render as unknown.
	out = FormatChatContext(states, 0)
	if !strings.Contains(out, "unknown (333)") {
		t.Errorf("unnamed contact fallback missing: %q", out)
	}
}
