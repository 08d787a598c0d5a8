package accounts

import "encoding/json"

// Runtime setting keys consulted during resolution. These form the lowest
// precedence layer and only apply to the default account.
const (
	SettingAccessToken        = "WHATSAPP_ACCESS_TOKEN"
	SettingPhoneNumberID      = "WHATSAPP_PHONE_NUMBER_ID"
	SettingBusinessAccountID  = "WHATSAPP_BUSINESS_ACCOUNT_ID"
	SettingWebhookVerifyToken = "WHATSAPP_WEBHOOK_VERIFY_TOKEN"
	SettingDMPolicy           = "WHATSAPP_DM_POLICY"
	SettingGroupPolicy        = "WHATSAPP_GROUP_POLICY"
)

// Runtime is the narrow capability the resolver needs from its host:
// string settings by key and a nested character-configuration snapshot.
// Absence at any level yields "no configuration", never an error.
type Runtime interface {
	// GetSetting returns the runtime setting for key, or "" when unset.
	GetSetting(key string) string

	// CharacterSettings returns the character configuration snapshot.
	// The "whatsapp" sub-object, when present, holds the multi-account
	// configuration.
	CharacterSettings() map[string]any
}

// MultiAccount extracts the multi-account configuration from the
// runtime's character settings. A missing or malformed section yields the
// zero value.
func MultiAccount(rt Runtime) MultiAccountConfig {
	var cfg MultiAccountConfig

	settings := rt.CharacterSettings()
	if settings == nil {
		return cfg
	}
	section, ok := settings["whatsapp"].(map[string]any)
	if !ok || section == nil {
		return cfg
	}

	// JSON round-trip coerces the loosely-typed settings map into the
	// typed records, stringifying numeric allowlist entries on the way.
	data, err := json.Marshal(section)
	if err != nil {
		return MultiAccountConfig{}
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return MultiAccountConfig{}
	}
	return cfg
}
