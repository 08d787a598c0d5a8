package config

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/titanous/json5"
)

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Gateway: GatewayConfig{
			Host:         "0.0.0.0",
			Port:         18791,
			WebhookPath:  "/webhook/whatsapp",
			RateLimitRPM: 600,
		},
		Database: DatabaseConfig{
			SQLitePath: "~/.goclaw-whatsapp/chat-state.db",
		},
	}
}

// Load reads config from a JSON file, then overlays env vars.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := json5.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// applyEnvOverrides overlays env vars onto the config.
// Env vars take precedence over file values.
func (c *Config) applyEnvOverrides() {
	envStr := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	envStr("WHATSAPP_GATEWAY_HOST", &c.Gateway.Host)
	if v := os.Getenv("WHATSAPP_GATEWAY_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			c.Gateway.Port = port
		}
	}
	envStr("WHATSAPP_WEBHOOK_PATH", &c.Gateway.WebhookPath)

	// Database
	envStr("WHATSAPP_POSTGRES_DSN", &c.Database.PostgresDSN)
	envStr("WHATSAPP_SQLITE_PATH", &c.Database.SQLitePath)

	// Telemetry
	envStr("WHATSAPP_TELEMETRY_ENDPOINT", &c.Telemetry.Endpoint)
	envStr("WHATSAPP_TELEMETRY_PROTOCOL", &c.Telemetry.Protocol)
	envStr("WHATSAPP_TELEMETRY_SERVICE_NAME", &c.Telemetry.ServiceName)
	if v := os.Getenv("WHATSAPP_TELEMETRY_ENABLED"); v != "" {
		c.Telemetry.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("WHATSAPP_TELEMETRY_INSECURE"); v != "" {
		c.Telemetry.Insecure = v == "true" || v == "1"
	}
}

// Save writes the config to a JSON file.
func Save(path string, cfg *Config) error {
	cfg.mu.RLock()
	defer cfg.mu.RUnlock()

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// Hash returns a short SHA-256 hash of the config, used by the watcher
// to skip reloads that change nothing.
func (c *Config) Hash() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	data, _ := json.Marshal(c)
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:8])
}

const secretMask = "***"

// Keys inside the whatsapp section whose values are secrets.
var secretKeys = map[string]bool{
	"accessToken":        true,
	"webhookVerifyToken": true,
}

// MaskedCopy returns a deep copy of the config with secret fields masked.
// Used by the accounts CLI to print config without exposing tokens.
func (c *Config) MaskedCopy() *Config {
	cp := c.Snapshot()
	maskSection(cp.WhatsApp)
	if cp.Database.PostgresDSN != "" {
		cp.Database.PostgresDSN = secretMask
	}
	return cp
}

func maskSection(section map[string]any) {
	for k, v := range section {
		if secretKeys[k] {
			if s, ok := v.(string); ok && s != "" {
				section[k] = secretMask
			}
			continue
		}
		// Recurse into accounts/groups sub-maps.
		if sub, ok := v.(map[string]any); ok {
			maskSection(sub)
		}
	}
}

// ExpandHome replaces leading ~ with the user home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, _ := os.UserHomeDir()
	if len(path) > 1 && path[1] == '/' {
		return home + path[1:]
	}
	return home
}
