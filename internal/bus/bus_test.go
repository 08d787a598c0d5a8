package bus

import (
	"context"
	"testing"
	"time"
)

func TestPublishConsumeInbound(t *testing.T) {
	b := New()

	in := InboundMessage{
		AccountID: "default",
		SenderID:  "+123",
		ChatID:    "+123",
		Content:   "hello",
		MessageID: "wamid.1",
		PeerKind:  PeerDirect,
	}
	if !b.PublishInbound(in) {
		t.Fatal("publish into empty bus should succeed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, ok := b.ConsumeInbound(ctx)
	if !ok {
		t.Fatal("consume should succeed")
	}
	if got.MessageID != "wamid.1" || got.Content != "hello" {
		t.Errorf("got %+v", got)
	}
}

func TestPublishConsumeOutbound(t *testing.T) {
	b := New()

	if !b.PublishOutbound(OutboundMessage{AccountID: "biz", To: "+123", Content: "out"}) {
		t.Fatal("publish into empty bus should succeed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got, ok := b.ConsumeOutbound(ctx)
	if !ok {
		t.Fatal("consume should succeed")
	}
	if got.To != "+123" || got.Content != "out" {
		t.Errorf("got %+v", got)
	}
}

func TestPublishInbound_FullBufferDoesNotBlock(t *testing.T) {
	b := New()
	msg := InboundMessage{MessageID: "x"}

	accepted := 0
	for i := 0; i < defaultBufferSize+10; i++ {
		if b.PublishInbound(msg) {
			accepted++
		}
	}
	if accepted != defaultBufferSize {
		t.Errorf("accepted %d messages, want %d", accepted, defaultBufferSize)
	}
}

func TestConsume_CancelledContext(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, ok := b.ConsumeInbound(ctx); ok {
		t.Error("cancelled context must return ok=false")
	}
	if _, ok := b.ConsumeOutbound(ctx); ok {
		t.Error("cancelled context must return ok=false")
	}
}
