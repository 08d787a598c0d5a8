// Package accounts resolves multi-account WhatsApp Cloud API configuration.
//
// Configuration is layered: environment settings < global section fields <
// named-account overrides, folded left-to-right with "later non-nil wins".
// Resolution is recomputed from the source layers on every call, so live
// configuration changes take effect immediately. No function here returns
// an error for missing configuration — absence always resolves to a
// documented default.
package accounts

import (
	"encoding/json"
	"fmt"
)

// TokenSource records which configuration layer supplied a resolved token.
type TokenSource string

const (
	TokenSourceConfig    TokenSource = "config"
	TokenSourceEnv       TokenSource = "env"
	TokenSourceCharacter TokenSource = "character"
	TokenSourceNone      TokenSource = "none"
)

// StringList accepts both ["str"] and [123] in persisted configuration.
// Allowlists are stored as strings regardless of the source type so that
// membership checks compare stringified values.
type StringList []string

func (f *StringList) UnmarshalJSON(data []byte) error {
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}
	var raw []interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

// GroupConfig is the per-group override record. Nil fields inherit from
// the account defaults. Lookup is first-hit-wins: a group record found at
// the account level is never merged with a global-level record.
type GroupConfig struct {
	Enabled        *bool      `json:"enabled,omitempty"`
	AllowFrom      StringList `json:"allowFrom,omitempty"`
	RequireMention *bool      `json:"requireMention,omitempty"`
	SystemPrompt   *string    `json:"systemPrompt,omitempty"`
	Skills         []string   `json:"skills,omitempty"`
}

// AccountConfig holds one account's settings at a single layer
// (environment, global default, or named-account override). Nil fields
// mean "inherit from the next layer". Values are never mutated in place;
// merging produces a new record.
type AccountConfig struct {
	Name               *string                `json:"name,omitempty"`
	Enabled            *bool                  `json:"enabled,omitempty"`
	AccessToken        *string                `json:"accessToken,omitempty"`
	PhoneNumberID      *string                `json:"phoneNumberId,omitempty"`
	BusinessAccountID  *string                `json:"businessAccountId,omitempty"`
	WebhookVerifyToken *string                `json:"webhookVerifyToken,omitempty"`
	APIVersion         *string                `json:"apiVersion,omitempty"`
	AllowFrom          StringList             `json:"allowFrom,omitempty"`
	GroupAllowFrom     StringList             `json:"groupAllowFrom,omitempty"`
	DMPolicy           *string                `json:"dmPolicy,omitempty"`
	GroupPolicy        *string                `json:"groupPolicy,omitempty"`
	MediaMaxMB         *int                   `json:"mediaMaxMb,omitempty"`
	TextChunkLimit     *int                   `json:"textChunkLimit,omitempty"`
	Groups             map[string]GroupConfig `json:"groups,omitempty"`
}

// MultiAccountConfig is the top-level "whatsapp" configuration section:
// global defaults plus the named-accounts map.
type MultiAccountConfig struct {
	Enabled            *bool                    `json:"enabled,omitempty"`
	AccessToken        *string                  `json:"accessToken,omitempty"`
	PhoneNumberID      *string                  `json:"phoneNumberId,omitempty"`
	BusinessAccountID  *string                  `json:"businessAccountId,omitempty"`
	WebhookVerifyToken *string                  `json:"webhookVerifyToken,omitempty"`
	APIVersion         *string                  `json:"apiVersion,omitempty"`
	AllowFrom          StringList               `json:"allowFrom,omitempty"`
	GroupAllowFrom     StringList               `json:"groupAllowFrom,omitempty"`
	DMPolicy           *string                  `json:"dmPolicy,omitempty"`
	GroupPolicy        *string                  `json:"groupPolicy,omitempty"`
	MediaMaxMB         *int                     `json:"mediaMaxMb,omitempty"`
	TextChunkLimit     *int                     `json:"textChunkLimit,omitempty"`
	Accounts           map[string]AccountConfig `json:"accounts,omitempty"`
	Groups             map[string]GroupConfig   `json:"groups,omitempty"`
}

// TokenResolution is a resolved (token, source) pair. The source is kept
// for diagnostics and precedence testing.
type TokenResolution struct {
	Token  string      `json:"token"`
	Source TokenSource `json:"source"`
}

// ResolvedAccount is a fully merged account ready for use.
// Invariant: Configured is true iff both AccessToken and PhoneNumberID are
// non-empty after trimming.
type ResolvedAccount struct {
	AccountID         string        `json:"accountId"`
	Enabled           bool          `json:"enabled"`
	Name              string        `json:"name,omitempty"`
	AccessToken       string        `json:"accessToken"`
	PhoneNumberID     string        `json:"phoneNumberId"`
	BusinessAccountID string        `json:"businessAccountId,omitempty"`
	TokenSource       TokenSource   `json:"tokenSource"`
	Configured        bool          `json:"configured"`
	Config            AccountConfig `json:"config"`
}
