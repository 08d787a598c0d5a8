package accounts

import (
	"sort"
	"strings"

	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/waid"
)

// ListAccountIDs enumerates all configured account IDs, sorted. The
// default account is included iff the global-layer token+phone pair or
// the environment token+phone pair are both set. Named account keys are
// normalized and deduplicated. An empty result collapses to the default
// sentinel.
func ListAccountIDs(rt Runtime) []string {
	cfg := MultiAccount(rt)
	ids := make(map[string]struct{})

	baseConfigured := trimmed(cfg.AccessToken) != "" && trimmed(cfg.PhoneNumberID) != ""
	envConfigured := strings.TrimSpace(rt.GetSetting(SettingAccessToken)) != "" &&
		strings.TrimSpace(rt.GetSetting(SettingPhoneNumberID)) != ""

	if baseConfigured || envConfigured {
		ids[waid.DefaultAccountID] = struct{}{}
	}

	for id := range cfg.Accounts {
		if id != "" {
			ids[waid.NormalizeAccountID(id)] = struct{}{}
		}
	}

	if len(ids) == 0 {
		return []string{waid.DefaultAccountID}
	}

	result := make([]string, 0, len(ids))
	for id := range ids {
		result = append(result, id)
	}
	sort.Strings(result)
	return result
}

// ResolveDefaultAccountID returns the default sentinel when it is among
// the enumerated IDs, else the lexicographically first enumerated ID.
func ResolveDefaultAccountID(rt Runtime) string {
	ids := ListAccountIDs(rt)
	for _, id := range ids {
		if id == waid.DefaultAccountID {
			return id
		}
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return waid.DefaultAccountID
}

// accountConfig returns the named-account record: direct key match first,
// then a normalized-key match.
func accountConfig(rt Runtime, accountID string) *AccountConfig {
	cfg := MultiAccount(rt)
	if len(cfg.Accounts) == 0 {
		return nil
	}

	if direct, ok := cfg.Accounts[accountID]; ok {
		return &direct
	}

	normalized := waid.NormalizeAccountID(accountID)
	for key, val := range cfg.Accounts {
		if waid.NormalizeAccountID(key) == normalized {
			v := val
			return &v
		}
	}
	return nil
}

// ResolveToken resolves the access token for an account.
//
// Precedence, highest first:
//  1. named-account accessToken
//  2. global-layer accessToken (default account only)
//  3. WHATSAPP_ACCESS_TOKEN runtime setting (default account only)
//
// Named accounts never fall back to environment values.
func ResolveToken(rt Runtime, accountID string) TokenResolution {
	if acct := accountConfig(rt, accountID); acct != nil {
		if token := trimmed(acct.AccessToken); token != "" {
			return TokenResolution{Token: token, Source: TokenSourceConfig}
		}
	}

	if accountID == waid.DefaultAccountID {
		cfg := MultiAccount(rt)
		if token := trimmed(cfg.AccessToken); token != "" {
			return TokenResolution{Token: token, Source: TokenSourceConfig}
		}
		if token := strings.TrimSpace(rt.GetSetting(SettingAccessToken)); token != "" {
			return TokenResolution{Token: token, Source: TokenSourceEnv}
		}
	}

	return TokenResolution{Source: TokenSourceNone}
}

// envLayer builds the lowest-precedence layer from runtime settings.
func envLayer(rt Runtime) AccountConfig {
	var layer AccountConfig
	set := func(key string, dst **string) {
		if v := rt.GetSetting(key); v != "" {
			*dst = &v
		}
	}
	set(SettingAccessToken, &layer.AccessToken)
	set(SettingPhoneNumberID, &layer.PhoneNumberID)
	set(SettingBusinessAccountID, &layer.BusinessAccountID)
	set(SettingWebhookVerifyToken, &layer.WebhookVerifyToken)
	set(SettingDMPolicy, &layer.DMPolicy)
	set(SettingGroupPolicy, &layer.GroupPolicy)
	return layer
}

// baseLayer projects the global section onto an account-shaped record
// (every global field except the named-accounts map).
func baseLayer(cfg MultiAccountConfig) AccountConfig {
	return AccountConfig{
		Enabled:            cfg.Enabled,
		AccessToken:        cfg.AccessToken,
		PhoneNumberID:      cfg.PhoneNumberID,
		BusinessAccountID:  cfg.BusinessAccountID,
		WebhookVerifyToken: cfg.WebhookVerifyToken,
		APIVersion:         cfg.APIVersion,
		AllowFrom:          cfg.AllowFrom,
		GroupAllowFrom:     cfg.GroupAllowFrom,
		DMPolicy:           cfg.DMPolicy,
		GroupPolicy:        cfg.GroupPolicy,
		MediaMaxMB:         cfg.MediaMaxMB,
		TextChunkLimit:     cfg.TextChunkLimit,
		Groups:             cfg.Groups,
	}
}

// overlay writes every defined (non-nil) field of layer onto dst.
// Nil fields never overwrite a lower layer's value.
func overlay(dst *AccountConfig, layer AccountConfig) {
	if layer.Name != nil {
		dst.Name = layer.Name
	}
	if layer.Enabled != nil {
		dst.Enabled = layer.Enabled
	}
	if layer.AccessToken != nil {
		dst.AccessToken = layer.AccessToken
	}
	if layer.PhoneNumberID != nil {
		dst.PhoneNumberID = layer.PhoneNumberID
	}
	if layer.BusinessAccountID != nil {
		dst.BusinessAccountID = layer.BusinessAccountID
	}
	if layer.WebhookVerifyToken != nil {
		dst.WebhookVerifyToken = layer.WebhookVerifyToken
	}
	if layer.APIVersion != nil {
		dst.APIVersion = layer.APIVersion
	}
	if layer.AllowFrom != nil {
		dst.AllowFrom = layer.AllowFrom
	}
	if layer.GroupAllowFrom != nil {
		dst.GroupAllowFrom = layer.GroupAllowFrom
	}
	if layer.DMPolicy != nil {
		dst.DMPolicy = layer.DMPolicy
	}
	if layer.GroupPolicy != nil {
		dst.GroupPolicy = layer.GroupPolicy
	}
	if layer.MediaMaxMB != nil {
		dst.MediaMaxMB = layer.MediaMaxMB
	}
	if layer.TextChunkLimit != nil {
		dst.TextChunkLimit = layer.TextChunkLimit
	}
	if layer.Groups != nil {
		dst.Groups = layer.Groups
	}
}

// mergeAccountConfig folds the layers in ascending precedence:
// environment < global section < named account.
func mergeAccountConfig(rt Runtime, accountID string) AccountConfig {
	var merged AccountConfig
	overlay(&merged, envLayer(rt))
	overlay(&merged, baseLayer(MultiAccount(rt)))
	if acct := accountConfig(rt, accountID); acct != nil {
		overlay(&merged, *acct)
	}
	return merged
}

// ResolveAccount produces the fully merged account record for accountID
// (empty means the default account). Enabled is the logical AND of the
// global and merged enabled flags, with absence treated as enabled.
func ResolveAccount(rt Runtime, accountID string) ResolvedAccount {
	normalized := waid.NormalizeAccountID(accountID)
	cfg := MultiAccount(rt)

	baseEnabled := cfg.Enabled == nil || *cfg.Enabled
	merged := mergeAccountConfig(rt, normalized)
	accountEnabled := merged.Enabled == nil || *merged.Enabled

	resolution := ResolveToken(rt, normalized)
	phoneNumberID := trimmed(merged.PhoneNumberID)

	return ResolvedAccount{
		AccountID:         normalized,
		Enabled:           baseEnabled && accountEnabled,
		Name:              trimmed(merged.Name),
		AccessToken:       resolution.Token,
		PhoneNumberID:     phoneNumberID,
		BusinessAccountID: trimmed(merged.BusinessAccountID),
		TokenSource:       resolution.Source,
		Configured:        resolution.Token != "" && phoneNumberID != "",
		Config:            merged,
	}
}

// ListEnabledAccounts resolves every enumerated account and keeps those
// that are both enabled and configured.
func ListEnabledAccounts(rt Runtime) []ResolvedAccount {
	var enabled []ResolvedAccount
	for _, id := range ListAccountIDs(rt) {
		if acct := ResolveAccount(rt, id); acct.Enabled && acct.Configured {
			enabled = append(enabled, acct)
		}
	}
	return enabled
}

// IsMultiAccountEnabled reports whether more than one account is enabled
// and configured.
func IsMultiAccountEnabled(rt Runtime) bool {
	return len(ListEnabledAccounts(rt)) > 1
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
