package accounts

// ResolveGroupConfig looks up the configuration for a group: the named
// account's group map first, then the global group map. The first hit
// wins as a whole record, the two maps are never merged. A record with
// no fields set counts as absent. Returns nil when neither map has an
// entry.
func ResolveGroupConfig(rt Runtime, accountID, groupID string) *GroupConfig {
	if acct := accountConfig(rt, accountID); acct != nil && acct.Groups != nil {
		if group, ok := acct.Groups[groupID]; ok && !group.isZero() {
			return &group
		}
	}

	cfg := MultiAccount(rt)
	if cfg.Groups != nil {
		if group, ok := cfg.Groups[groupID]; ok && !group.isZero() {
			return &group
		}
	}

	return nil
}

func (g GroupConfig) isZero() bool {
	return g.Enabled == nil && len(g.AllowFrom) == 0 &&
		g.RequireMention == nil && g.SystemPrompt == nil && len(g.Skills) == 0
}
