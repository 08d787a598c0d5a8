// Package webhook serves the Cloud API webhook endpoint: the GET
// verification handshake Meta performs on subscription, and POST
// delivery of message/status events.
package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/cloudapi"
)

// maxBodyBytes caps webhook POST bodies. Cloud API batches stay far
// below this.
const maxBodyBytes = 1 << 20

// EventSink receives parsed webhook events.
type EventSink interface {
	HandleWebhook(ctx context.Context, event *cloudapi.WebhookEvent) error
	VerifyWebhookToken(token string) bool
}

// Server is the webhook HTTP listener.
type Server struct {
	host       string
	port       int
	path       string
	sink       EventSink
	limiter    *RateLimiter
	httpServer *http.Server
}

// NewServer builds a Server. rateLimitRPM <= 0 disables rate limiting.
func NewServer(host string, port int, path string, sink EventSink, rateLimitRPM int) *Server {
	if path == "" {
		path = "/webhook/whatsapp"
	}
	return &Server{
		host:    host,
		port:    port,
		path:    path,
		sink:    sink,
		limiter: NewRateLimiter(rateLimitRPM),
	}
}

// BuildMux creates the HTTP mux with all routes registered.
func (s *Server) BuildMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc(s.path, s.handleWebhook)
	mux.HandleFunc("/health", s.handleHealth)
	return mux
}

// Start listens until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.host, s.port)
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.BuildMux(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	slog.Info("webhook server starting", "addr", addr, "path", s.path)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.httpServer.Shutdown(shutdownCtx)
	}()

	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("webhook server: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"status":"ok"}`)
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if !s.limiter.Allow(clientKey(r)) {
		http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleVerify(w, r)
	case http.MethodPost:
		s.handleEvent(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleVerify answers Meta's subscription handshake: echo the
// challenge when the verify token matches a configured account.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode == "subscribe" && s.sink.VerifyWebhookToken(token) {
		slog.Info("webhook verified")
		fmt.Fprint(w, challenge)
		return
	}

	slog.Warn("webhook verification rejected", "mode", mode)
	http.Error(w, "forbidden", http.StatusForbidden)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "read error", http.StatusBadRequest)
		return
	}

	var event cloudapi.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		slog.Warn("invalid webhook payload", "error", err)
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	if err := s.sink.HandleWebhook(r.Context(), &event); err != nil {
		slog.Error("webhook handling failed", "error", err)
	}
	// Always acknowledge; Meta retries non-200 responses aggressively.
	fmt.Fprint(w, "EVENT_RECEIVED")
}

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
