package config

import "os"

// RuntimeAdapter exposes a Config as the settings surface the account
// resolver consumes: environment lookups plus the character-level
// whatsapp section.
type RuntimeAdapter struct {
	cfg *Config
}

// NewRuntimeAdapter wraps cfg. The adapter reads through to the live
// config, so hot reloads are visible without re-wiring.
func NewRuntimeAdapter(cfg *Config) *RuntimeAdapter {
	return &RuntimeAdapter{cfg: cfg}
}

// GetSetting returns the environment value for key, or "".
func (r *RuntimeAdapter) GetSetting(key string) string {
	return os.Getenv(key)
}

// CharacterSettings returns the whatsapp config section keyed the way
// the resolver expects.
func (r *RuntimeAdapter) CharacterSettings() map[string]any {
	section := r.cfg.WhatsAppSection()
	if section == nil {
		return map[string]any{}
	}
	return map[string]any{"whatsapp": section}
}
