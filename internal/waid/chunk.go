package waid

import (
	"strings"
	"unicode/utf8"
)

// ChunkText splits text into chunks of at most limit bytes for outbound
// delivery. A limit <= 0 uses TextChunkLimit. Splits prefer, in order:
// paragraph breaks, line breaks, sentence boundaries, then word
// boundaries past the midpoint of the limit, falling back to a hard cut.
// Chunks are trimmed of surrounding whitespace; empty chunks are dropped.
// Returns nil for empty or whitespace-only input.
func ChunkText(text string, limit int) []string {
	if limit <= 0 {
		limit = TextChunkLimit
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil
	}
	if len(trimmed) <= limit {
		return []string{trimmed}
	}

	var chunks []string
	remaining := trimmed
	for remaining != "" {
		chunk, rest := splitAtBreakPoint(remaining, limit)
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		remaining = rest
	}
	return chunks
}

// splitAtBreakPoint splits text at the last safe break point within limit.
// The hard-cut fallback guarantees forward progress.
func splitAtBreakPoint(text string, limit int) (chunk, rest string) {
	if len(text) <= limit {
		return text, ""
	}

	search := text[:limit]
	half := limit / 2

	// Paragraph breaks first.
	if idx := strings.LastIndex(search, "\n\n"); idx > half {
		return trimRightSpace(text[:idx]), trimLeftSpace(text[idx+2:])
	}

	// Single line breaks.
	if idx := strings.LastIndex(search, "\n"); idx > half {
		return trimRightSpace(text[:idx]), trimLeftSpace(text[idx+1:])
	}

	// Sentence boundaries.
	sentenceEnd := strings.LastIndex(search, ". ")
	if idx := strings.LastIndex(search, "! "); idx > sentenceEnd {
		sentenceEnd = idx
	}
	if idx := strings.LastIndex(search, "? "); idx > sentenceEnd {
		sentenceEnd = idx
	}
	if sentenceEnd > half {
		return trimRightSpace(text[:sentenceEnd+1]), trimLeftSpace(text[sentenceEnd+2:])
	}

	// Word boundaries.
	if idx := strings.LastIndex(search, " "); idx > half {
		return trimRightSpace(text[:idx]), trimLeftSpace(text[idx+1:])
	}

	// Hard cut, backed off to a rune boundary so multi-byte characters
	// never get split across chunks.
	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	if cut == 0 {
		cut = limit
	}
	return text[:cut], text[cut:]
}

func trimRightSpace(s string) string {
	return strings.TrimRight(s, " \t\r\n")
}

func trimLeftSpace(s string) string {
	return strings.TrimLeft(s, " \t\r\n")
}

// Truncate shortens s to maxLen bytes, appending "..." when cut.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 0 {
		return ""
	}
	if maxLen <= 3 {
		return "..."[:maxLen]
	}
	cut := maxLen - 3
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
