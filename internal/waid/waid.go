// Package waid normalizes WhatsApp identifiers: E.164 phone numbers,
// user JIDs (…@s.whatsapp.net), LIDs (…@lid), and group JIDs (…@g.us).
// It also provides text chunking and truncation for outbound messages.
//
// All functions are pure. Unrecognized input degrades to a documented
// default instead of an error, except NormalizeTarget which refuses to
// guess for ambiguous JID-ish strings.
package waid

import (
	"regexp"
	"strings"
)

const (
	// DefaultAccountID is the sentinel account identifier used when no
	// specific account is configured.
	DefaultAccountID = "default"

	// TextChunkLimit is the Cloud API character limit for a single text message.
	TextChunkLimit = 4096

	userDomainSuffix  = "@s.whatsapp.net"
	lidDomainSuffix   = "@lid"
	groupDomainSuffix = "@g.us"
)

var (
	// User JIDs like "41796666864:0@s.whatsapp.net".
	userJIDRe = regexp.MustCompile(`(?i)^(\d+)(?::\d+)?@s\.whatsapp\.net$`)

	// LID JIDs like "123@lid".
	lidRe = regexp.MustCompile(`(?i)^(\d+)@lid$`)

	// The "whatsapp:" URI prefix, case-insensitive.
	prefixRe = regexp.MustCompile(`(?i)^whatsapp:`)

	// Valid local part of a group JID: digit runs separated by single dashes.
	groupLocalRe = regexp.MustCompile(`^[0-9]+(-[0-9]+)*$`)

	separatorRe = regexp.MustCompile(`[\s\-(). ]+`)
	nonDigitRe  = regexp.MustCompile(`[^\d+]`)
	phoneRe     = regexp.MustCompile(`^\d{10,15}$`)
)

// NormalizeAccountID maps empty, whitespace-only, or case-insensitive
// "default" input to DefaultAccountID; anything else is trimmed and
// lower-cased. Idempotent.
func NormalizeAccountID(id string) string {
	trimmed := strings.ToLower(strings.TrimSpace(id))
	if trimmed == "" || trimmed == DefaultAccountID {
		return DefaultAccountID
	}
	return trimmed
}

// NormalizeE164 normalizes a phone number string to E.164 format.
//
//   - Strips whitespace, dashes, parentheses, and dots.
//   - Keeps a "+" prefix if present.
//   - Converts a leading international "00" to "+".
//   - Prepends "+" for numbers with 10 or more digits and no prefix.
//   - Returns shorter digit strings as-is (short codes stay undecorated).
//   - Returns "" when the input contains no usable characters.
func NormalizeE164(raw string) string {
	stripped := separatorRe.ReplaceAllString(raw, "")
	digits := nonDigitRe.ReplaceAllString(stripped, "")

	if digits == "" {
		return ""
	}
	if strings.HasPrefix(digits, "+") {
		return digits
	}
	if strings.HasPrefix(digits, "00") {
		return "+" + digits[2:]
	}
	if len(digits) >= 10 {
		return "+" + digits
	}
	return digits
}

// stripTargetPrefixes removes all leading "whatsapp:" prefixes plus
// surrounding whitespace.
func stripTargetPrefixes(value string) string {
	candidate := strings.TrimSpace(value)
	for {
		next := strings.TrimSpace(prefixRe.ReplaceAllString(candidate, ""))
		if next == candidate {
			return candidate
		}
		candidate = next
	}
}

// IsGroupJID reports whether value is a WhatsApp group JID ("…@g.us").
// The domain match is case-insensitive; the local part must be digit runs
// separated by single dashes (no empty segments, no extra "@").
func IsGroupJID(value string) bool {
	candidate := stripTargetPrefixes(value)
	if !strings.HasSuffix(strings.ToLower(candidate), groupDomainSuffix) {
		return false
	}
	local := candidate[:len(candidate)-len(groupDomainSuffix)]
	if local == "" || strings.Contains(local, "@") {
		return false
	}
	return groupLocalRe.MatchString(local)
}

// IsUserTarget reports whether value looks like a WhatsApp user target:
// a user JID ("…@s.whatsapp.net") or a LID ("…@lid").
func IsUserTarget(value string) bool {
	candidate := stripTargetPrefixes(value)
	return userJIDRe.MatchString(candidate) || lidRe.MatchString(candidate)
}

// extractUserPhone pulls the phone-number digits out of a user JID or LID.
func extractUserPhone(jid string) (string, bool) {
	if m := userJIDRe.FindStringSubmatch(jid); m != nil {
		return m[1], true
	}
	if m := lidRe.FindStringSubmatch(jid); m != nil {
		return m[1], true
	}
	return "", false
}

// NormalizeTarget normalizes a send target (phone number, user JID, or
// group JID). The second return value is false when the target cannot be
// recognized: strings containing "@" that match neither the group nor the
// user pattern are rejected rather than coerced into a phone number.
func NormalizeTarget(value string) (string, bool) {
	candidate := stripTargetPrefixes(value)
	if candidate == "" {
		return "", false
	}

	if IsGroupJID(candidate) {
		local := candidate[:len(candidate)-len(groupDomainSuffix)]
		return local + groupDomainSuffix, true
	}

	if IsUserTarget(candidate) {
		phone, ok := extractUserPhone(candidate)
		if !ok {
			return "", false
		}
		normalized := NormalizeE164(phone)
		if len(normalized) <= 1 {
			return "", false
		}
		return normalized, true
	}

	// Unknown JID-ish string: refuse to guess.
	if strings.Contains(candidate, "@") {
		return "", false
	}

	normalized := NormalizeE164(candidate)
	if len(normalized) <= 1 {
		return "", false
	}
	return normalized, true
}

// FormatID formats a WhatsApp identifier for display. Groups get a
// "group:" prefix; user targets become E.164; unrecognized input is
// returned unchanged.
func FormatID(id string) string {
	if IsGroupJID(id) {
		return "group:" + id
	}
	if normalized, ok := NormalizeTarget(id); ok {
		return normalized
	}
	return id
}

// ChatType returns "group" for group JIDs and "user" for everything else.
func ChatType(id string) string {
	if IsGroupJID(id) {
		return "group"
	}
	return "user"
}

// BuildUserJID builds a user JID from a phone number:
// "+1234567890" → "1234567890@s.whatsapp.net".
func BuildUserJID(phoneNumber string) string {
	digits := strings.TrimLeft(NormalizeE164(phoneNumber), "+")
	return digits + userDomainSuffix
}

// IsValidPhoneNumber reports whether value normalizes to an E.164 number
// with 10-15 digits after the "+".
func IsValidPhoneNumber(value string) bool {
	normalized, ok := NormalizeTarget(value)
	if !ok || !strings.HasPrefix(normalized, "+") {
		return false
	}
	return phoneRe.MatchString(strings.TrimLeft(normalized, "+"))
}

// FormatPhoneNumber formats a phone number for display. Numbers longer
// than 10 digits are split into a country-code prefix and "XXX XXX XXXX"
// groups joined with single spaces.
func FormatPhoneNumber(phoneNumber string) string {
	normalized := NormalizeE164(phoneNumber)
	if normalized == "" {
		return phoneNumber
	}
	digits := strings.TrimLeft(normalized, "+")
	if len(digits) <= 10 {
		return normalized
	}
	countryCode := digits[:len(digits)-10]
	rest := digits[len(digits)-10:]
	return "+" + countryCode + " " + rest[:3] + " " + rest[3:6] + " " + rest[6:]
}
