package waid

import (
	"strings"
	"testing"
)

func TestChunkText_ShortInput(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"whitespace only", "  \n\t ", nil},
		{"fits exactly", strings.Repeat("a", 4096), []string{strings.Repeat("a", 4096)}},
		{"short text", "hello", []string{"hello"}},
		{"trims surrounding space", "  hello  ", []string{"hello"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChunkText(tt.in, 0)
			if len(got) != len(tt.want) {
				t.Fatalf("ChunkText() = %d chunks, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("chunk %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestChunkText_SplitsOverLimit(t *testing.T) {
	text := strings.Repeat("a", 4097)
	got := ChunkText(text, 0)
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2", len(got))
	}
	if len(got[0]) != 4096 || len(got[1]) != 1 {
		t.Errorf("chunk lengths = %d, %d; want 4096, 1", len(got[0]), len(got[1]))
	}
}

func TestChunkText_PrefersParagraphBreak(t *testing.T) {
	first := strings.Repeat("a", 60)
	second := strings.Repeat("b", 60)
	got := ChunkText(first+"\n\n"+second, 100)
	if len(got) != 2 {
		t.Fatalf("got %d chunks, want 2: %q", len(got), got)
	}
	if got[0] != first || got[1] != second {
		t.Errorf("split did not land on the paragraph break: %q", got)
	}
}

func TestChunkText_PrefersLineBreakOverSentence(t *testing.T) {
	text := "First sentence. More words here\nsecond line " + strings.Repeat("x", 80)
	got := ChunkText(text, 40)
	if got[0] != "First sentence. More words here" {
		t.Errorf("first chunk = %q, want split at line break", got[0])
	}
}

func TestChunkText_SentenceBoundary(t *testing.T) {
	text := "This is the first sentence. " + strings.Repeat("y", 80)
	got := ChunkText(text, 40)
	if got[0] != "This is the first sentence." {
		t.Errorf("first chunk = %q, want sentence kept intact", got[0])
	}
}

func TestChunkText_WordBoundary(t *testing.T) {
	text := "wordone wordtwo wordthree wordfour wordfive"
	got := ChunkText(text, 20)
	for i, c := range got {
		if strings.Contains(c, " ") && len(c) > 20 {
			t.Errorf("chunk %d exceeds limit: %q", i, c)
		}
	}
	// No chunk may start or end with a space.
	for i, c := range got {
		if c != strings.TrimSpace(c) {
			t.Errorf("chunk %d not trimmed: %q", i, c)
		}
	}
}

func TestChunkText_EarlyBreakIgnored(t *testing.T) {
	// A break point before limit/2 must be skipped in favor of a
	// harder split closer to the limit.
	text := "ab\n" + strings.Repeat("c", 100)
	got := ChunkText(text, 50)
	if len(got[0]) <= 3 {
		t.Errorf("split happened at early break: first chunk %q", got[0])
	}
}

func TestChunkText_HardCutKeepsRunesIntact(t *testing.T) {
	text := strings.Repeat("é", 30) // 2 bytes per rune
	got := ChunkText(text, 11)      // odd limit lands mid-rune
	for i, c := range got {
		if !strings.HasPrefix(c, "é") {
			t.Errorf("chunk %d starts mid-rune: %q", i, c)
		}
	}
	if joined := strings.Join(got, ""); joined != text {
		t.Errorf("chunks do not reassemble input")
	}
}

func TestChunkText_AllContentPreserved(t *testing.T) {
	text := "Para one.\n\nPara two continues with more text. And another sentence follows here to pad."
	got := ChunkText(text, 30)
	joined := strings.Join(got, " ")
	for _, word := range strings.Fields(text) {
		if !strings.Contains(joined, word) {
			t.Errorf("word %q lost during chunking", word)
		}
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		maxLen int
		want   string
	}{
		{"fits", "Hello", 8, "Hello"},
		{"cut with ellipsis", "Hello World", 8, "Hello..."},
		{"exact length", "Hello", 5, "Hello"},
		{"zero", "Hello", 0, ""},
		{"negative", "Hello", -1, ""},
		{"tiny budget", "Hello", 2, ".."},
		{"budget of three", "Hello", 3, "..."},
		{"cut lands on rune boundary", "ééé", 5, "é..."},
		{"cut backs off mid-rune", "héllo", 5, "h..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.maxLen); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.maxLen, got, tt.want)
			}
		})
	}
}
