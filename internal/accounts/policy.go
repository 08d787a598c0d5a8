package accounts

// Policy names. DM policy defaults to "pairing", group policy to
// "allowlist" when unset.
const (
	PolicyOpen      = "open"
	PolicyAllowlist = "allowlist"
	PolicyPairing   = "pairing"
	PolicyDisabled  = "disabled"
)

// IsUserAllowed decides whether a sender may interact, given the merged
// account config, the chat kind, and an optional group record.
//
// Group context: a group-specific allowlist takes precedence over the
// account-level group allowlist; with neither present, any policy other
// than "allowlist" allows. DM context: "pairing" always authorizes at
// this layer (the handshake lives elsewhere); any other non-open policy
// requires allowlist membership, and an absent list denies.
func IsUserAllowed(identifier string, cfg AccountConfig, isGroup bool, groupCfg *GroupConfig) bool {
	if isGroup {
		policy := policyOr(cfg.GroupPolicy, PolicyAllowlist)
		switch policy {
		case PolicyDisabled:
			return false
		case PolicyOpen:
			return true
		}

		if groupCfg != nil && len(groupCfg.AllowFrom) > 0 {
			return contains(groupCfg.AllowFrom, identifier)
		}
		if len(cfg.GroupAllowFrom) > 0 {
			return contains(cfg.GroupAllowFrom, identifier)
		}
		return policy != PolicyAllowlist
	}

	switch policyOr(cfg.DMPolicy, PolicyPairing) {
	case PolicyDisabled:
		return false
	case PolicyOpen:
		return true
	case PolicyPairing:
		return true
	}

	if len(cfg.AllowFrom) > 0 {
		return contains(cfg.AllowFrom, identifier)
	}
	return false
}

// IsGroupAllowed decides whether the group itself (not a sender within
// it) may interact. A group-specific record takes precedence over any
// allowlist: its enabled flag decides, with absence treated as allowed.
func IsGroupAllowed(groupID string, cfg AccountConfig, groupCfg *GroupConfig) bool {
	policy := policyOr(cfg.GroupPolicy, PolicyAllowlist)
	switch policy {
	case PolicyDisabled:
		return false
	case PolicyOpen:
		return true
	}

	if groupCfg != nil {
		return groupCfg.Enabled == nil || *groupCfg.Enabled
	}

	if len(cfg.GroupAllowFrom) > 0 {
		return contains(cfg.GroupAllowFrom, groupID)
	}
	return policy != PolicyAllowlist
}

// IsMentionRequired reports whether a bot mention is required to respond
// in a group: only an explicit requireMention=true on the group record
// counts. There is no account-level fallback.
func IsMentionRequired(groupCfg *GroupConfig) bool {
	return groupCfg != nil && groupCfg.RequireMention != nil && *groupCfg.RequireMention
}

func policyOr(p *string, fallback string) string {
	if p == nil || *p == "" {
		return fallback
	}
	return *p
}

func contains(list StringList, identifier string) bool {
	for _, entry := range list {
		if entry == identifier {
			return true
		}
	}
	return false
}
