package webhook

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/cloudapi"
)

type fakeSink struct {
	token  string
	events []*cloudapi.WebhookEvent
}

func (f *fakeSink) HandleWebhook(_ context.Context, event *cloudapi.WebhookEvent) error {
	f.events = append(f.events, event)
	return nil
}

func (f *fakeSink) VerifyWebhookToken(token string) bool {
	return f.token != "" && token == f.token
}

func newTestHandler(sink *fakeSink) http.Handler {
	return NewServer("127.0.0.1", 0, "/webhook/whatsapp", sink, 0).BuildMux()
}

func TestHandleVerify(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantBody   string
	}{
		{
			"valid handshake echoes challenge",
			"hub.mode=subscribe&hub.verify_token=secret&hub.challenge=12345",
			http.StatusOK, "12345",
		},
		{
			"wrong token rejected",
			"hub.mode=subscribe&hub.verify_token=nope&hub.challenge=12345",
			http.StatusForbidden, "",
		},
		{
			"wrong mode rejected",
			"hub.mode=unsubscribe&hub.verify_token=secret&hub.challenge=12345",
			http.StatusForbidden, "",
		},
		{
			"missing token rejected",
			"hub.mode=subscribe&hub.challenge=12345",
			http.StatusForbidden, "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(&fakeSink{token: "secret"})
			req := httptest.NewRequest(http.MethodGet, "/webhook/whatsapp?"+tt.query, nil)
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" {
				body, _ := io.ReadAll(rec.Body)
				if string(body) != tt.wantBody {
					t.Errorf("body = %q, want %q", body, tt.wantBody)
				}
			}
		})
	}
}

func TestHandleEvent(t *testing.T) {
	sink := &fakeSink{token: "secret"}
	handler := newTestHandler(sink)

	payload := `{
		"object": "whatsapp_business_account",
		"entry": [{
			"id": "ENTRY_ID",
			"changes": [{
				"field": "messages",
				"value": {
					"messaging_product": "whatsapp",
					"metadata": {"display_phone_number": "555", "phone_number_id": "555001"},
					"messages": [{"from": "41796666864", "id": "wamid.x", "timestamp": "1700000000", "type": "text", "text": {"body": "hi"}}]
				}
			}]
		}]
	}`

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader(payload))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if body := rec.Body.String(); body != "EVENT_RECEIVED" {
		t.Errorf("body = %q, want EVENT_RECEIVED", body)
	}
	if len(sink.events) != 1 {
		t.Fatalf("sink got %d events, want 1", len(sink.events))
	}
	event := sink.events[0]
	if len(event.Entry) != 1 || len(event.Entry[0].Changes) != 1 {
		t.Fatalf("event shape wrong: %+v", event)
	}
	msgs := event.Entry[0].Changes[0].Value.Messages
	if len(msgs) != 1 || msgs[0].Text == nil || msgs[0].Text.Body != "hi" {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestHandleEvent_InvalidJSON(t *testing.T) {
	sink := &fakeSink{}
	handler := newTestHandler(sink)

	req := httptest.NewRequest(http.MethodPost, "/webhook/whatsapp", strings.NewReader("{nope"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
	if len(sink.events) != 0 {
		t.Errorf("sink should not receive malformed events")
	}
}

func TestHandleWebhook_MethodNotAllowed(t *testing.T) {
	handler := newTestHandler(&fakeSink{})
	req := httptest.NewRequest(http.MethodDelete, "/webhook/whatsapp", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(3)
	for i := 0; i < 3; i++ {
		if !rl.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if rl.Allow("1.2.3.4") {
		t.Error("fourth request within window should be blocked")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("other keys are tracked independently")
	}
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(0)
	for i := 0; i < 100; i++ {
		if !rl.Allow("k") {
			t.Fatal("disabled limiter must always allow")
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(&fakeSink{})
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}
