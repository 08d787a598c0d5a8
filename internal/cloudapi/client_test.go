package cloudapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const sendResponse = `{
	"messaging_product": "whatsapp",
	"contacts": [{"input": "+123", "wa_id": "123"}],
	"messages": [{"id": "wamid.abc"}]
}`

func newTestServer(t *testing.T, status int, body string, capture *map[string]any) (*httptest.Server, *http.Request) {
	t.Helper()
	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = *r
		if capture != nil {
			if err := json.NewDecoder(r.Body).Decode(capture); err != nil {
				t.Errorf("decode request body: %v", err)
			}
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func TestClient_SendText(t *testing.T) {
	var payload map[string]any
	srv, captured := newTestServer(t, http.StatusOK, sendResponse, &payload)

	c := NewClient("secret-token", "555001", WithBaseURL(srv.URL), WithAPIVersion("v17.0"))
	resp, err := c.SendText(context.Background(), "+41796666864", "hello", false)
	if err != nil {
		t.Fatalf("SendText: %v", err)
	}

	if got := resp.MessageID(); got != "wamid.abc" {
		t.Errorf("MessageID() = %q, want wamid.abc", got)
	}
	if captured.URL.Path != "/v17.0/555001/messages" {
		t.Errorf("path = %q, want /v17.0/555001/messages", captured.URL.Path)
	}
	if got := captured.Header.Get("Authorization"); got != "Bearer secret-token" {
		t.Errorf("auth header = %q", got)
	}
	if got := captured.Header.Get("Content-Type"); got != "application/json" {
		t.Errorf("content type = %q", got)
	}

	if payload["messaging_product"] != "whatsapp" {
		t.Errorf("messaging_product = %v", payload["messaging_product"])
	}
	if payload["recipient_type"] != "individual" {
		t.Errorf("recipient_type = %v", payload["recipient_type"])
	}
	if payload["to"] != "41796666864" {
		t.Errorf("to = %v, want leading plus stripped", payload["to"])
	}
	text, _ := payload["text"].(map[string]any)
	if text["body"] != "hello" {
		t.Errorf("text.body = %v", text["body"])
	}
}

func TestClient_SendReaction(t *testing.T) {
	var payload map[string]any
	srv, _ := newTestServer(t, http.StatusOK, sendResponse, &payload)

	c := NewClient("tok", "555001", WithBaseURL(srv.URL))
	if _, err := c.SendReaction(context.Background(), "123", "wamid.orig", "👍"); err != nil {
		t.Fatalf("SendReaction: %v", err)
	}

	if payload["type"] != "reaction" {
		t.Errorf("type = %v", payload["type"])
	}
	reaction, _ := payload["reaction"].(map[string]any)
	if reaction["message_id"] != "wamid.orig" || reaction["emoji"] != "👍" {
		t.Errorf("reaction = %v", reaction)
	}
}

func TestClient_SendMedia_RejectsNonMediaType(t *testing.T) {
	c := NewClient("tok", "555001")
	if _, err := c.SendMedia(context.Background(), "123", TypeText, MediaContent{ID: "m1"}); err == nil {
		t.Fatal("expected error for non-media type")
	}
}

func TestClient_APIError(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnauthorized, `{"error":{"message":"bad token"}}`, nil)

	c := NewClient("bad", "555001", WithBaseURL(srv.URL))
	_, err := c.SendText(context.Background(), "123", "hi", false)
	if err == nil {
		t.Fatal("expected error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error type = %T, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d", apiErr.StatusCode)
	}
}

func TestClient_MarkRead(t *testing.T) {
	var payload map[string]any
	srv, _ := newTestServer(t, http.StatusOK, `{"success":true}`, &payload)

	c := NewClient("tok", "555001", WithBaseURL(srv.URL))
	if err := c.MarkRead(context.Background(), "wamid.abc"); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	if payload["status"] != "read" || payload["message_id"] != "wamid.abc" {
		t.Errorf("payload = %v", payload)
	}
}

func TestMessageResponse_MessageID_Empty(t *testing.T) {
	var r *MessageResponse
	if r.MessageID() != "" {
		t.Error("nil response should yield empty id")
	}
	if (&MessageResponse{}).MessageID() != "" {
		t.Error("empty response should yield empty id")
	}
}
