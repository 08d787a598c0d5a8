// Package config loads and holds the runtime configuration: the raw
// whatsapp section consumed by the account resolver, plus gateway,
// database and telemetry settings.
package config

import (
	"encoding/json"
	"sync"
)

// Config is the root configuration for the WhatsApp gateway.
//
// The WhatsApp section is kept as a loose map rather than a typed
// struct: account resolution layers config, env and per-account
// overrides at runtime, and the resolver owns that schema.
type Config struct {
	WhatsApp  map[string]any  `json:"whatsapp,omitempty"`
	Gateway   GatewayConfig   `json:"gateway"`
	Database  DatabaseConfig  `json:"database,omitempty"`
	Telemetry TelemetryConfig `json:"telemetry,omitempty"`
	mu        sync.RWMutex
}

// GatewayConfig configures the webhook HTTP listener.
type GatewayConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	WebhookPath  string `json:"webhook_path,omitempty"`
	RateLimitRPM int    `json:"rate_limit_rpm,omitempty"`
}

// DatabaseConfig selects the chat-state backend.
// PostgresDSN is NEVER read from config.json (secret) — only from env
// WHATSAPP_POSTGRES_DSN.
type DatabaseConfig struct {
	PostgresDSN string `json:"-"`
	SQLitePath  string `json:"sqlite_path,omitempty"`
}

// TelemetryConfig configures OpenTelemetry trace export.
type TelemetryConfig struct {
	Enabled     bool              `json:"enabled,omitempty"`
	Endpoint    string            `json:"endpoint,omitempty"`     // e.g. "localhost:4317"
	Protocol    string            `json:"protocol,omitempty"`     // "grpc" (default) or "http"
	Insecure    bool              `json:"insecure,omitempty"`
	ServiceName string            `json:"service_name,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

// WhatsAppSection returns a copy of the raw whatsapp config section.
func (c *Config) WhatsAppSection() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return copyMap(c.WhatsApp)
}

// ReplaceFrom copies all data fields from src into c, preserving c's mutex.
// Used by the file watcher for hot reload.
func (c *Config) ReplaceFrom(src *Config) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.WhatsApp = src.WhatsApp
	c.Gateway = src.Gateway
	c.Database = src.Database
	c.Telemetry = src.Telemetry
}

// Snapshot returns a deep copy of the config data.
func (c *Config) Snapshot() *Config {
	c.mu.RLock()
	data, err := json.Marshal(c)
	c.mu.RUnlock()
	if err != nil {
		return Default()
	}
	cp := Default()
	if err := json.Unmarshal(data, cp); err != nil {
		return Default()
	}
	cp.Database.PostgresDSN = c.Database.PostgresDSN
	return cp
}

func copyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
