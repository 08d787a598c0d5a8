package waid

import "testing"

func TestNormalizeAccountID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", DefaultAccountID},
		{"default literal", "default", DefaultAccountID},
		{"uppercase default", "DEFAULT", DefaultAccountID},
		{"whitespace only", "   ", DefaultAccountID},
		{"lowercases", "Biz", "biz"},
		{"trims", "  support  ", "support"},
		{"already normalized", "personal", "personal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeAccountID(tt.in); got != tt.want {
				t.Errorf("NormalizeAccountID(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeAccountID_Idempotent(t *testing.T) {
	for _, in := range []string{"", "Biz ", "default", "X"} {
		once := NormalizeAccountID(in)
		if twice := NormalizeAccountID(once); twice != once {
			t.Errorf("NormalizeAccountID not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"formatted us number", "+1 (234) 567.8901", "+12345678901"},
		{"double zero prefix", "0012345678901", "+12345678901"},
		{"bare long number", "12345678901", "+12345678901"},
		{"short number unchanged", "123456789", "123456789"},
		{"ten digits gets plus", "1234567890", "+1234567890"},
		{"already e164", "+41796666864", "+41796666864"},
		{"empty", "", ""},
		{"whitespace only", "  ", ""},
		{"dashes and spaces", "123-456-7890", "+1234567890"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeE164(tt.in); got != tt.want {
				t.Errorf("NormalizeE164(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsGroupJID(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"123456789@g.us", true},
		{"123-456@g.us", true},
		{"123--456@g.us", false},
		{"-123@g.us", false},
		{"123-@g.us", false},
		{"abc@g.us", false},
		{"41796666864@s.whatsapp.net", false},
		{"41796666864:0@s.whatsapp.net", false},
		{"whatsapp:123-456@g.us", true},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := IsGroupJID(tt.in); got != tt.want {
				t.Errorf("IsGroupJID(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeTarget(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"group jid", "123-456@g.us", "123-456@g.us", true},
		{"user jid", "41796666864@s.whatsapp.net", "+41796666864", true},
		{"user jid with device", "41796666864:0@s.whatsapp.net", "+41796666864", true},
		{"lid jid", "98765432101@lid", "+98765432101", true},
		{"plain phone", "+1 (234) 567-8901", "+12345678901", true},
		{"repeated prefix", "whatsapp:whatsapp:+1234567890", "+1234567890", true},
		{"ambiguous jid", "some@random@thing", "", false},
		{"unknown domain", "user@example.com", "", false},
		{"empty", "", "", false},
		{"bare plus", "+", "", false},
		{"single digit", "5", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeTarget(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("NormalizeTarget(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("NormalizeTarget(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestFormatID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123-456@g.us", "group:123-456@g.us"},
		{"41796666864@s.whatsapp.net", "+41796666864"},
		{"+12345678901", "+12345678901"},
		{"not-a-number", "not-a-number"},
	}
	for _, tt := range tests {
		if got := FormatID(tt.in); got != tt.want {
			t.Errorf("FormatID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChatType(t *testing.T) {
	if got := ChatType("123-456@g.us"); got != "group" {
		t.Errorf("ChatType(group jid) = %q, want group", got)
	}
	if got := ChatType("+12345678901"); got != "user" {
		t.Errorf("ChatType(phone) = %q, want user", got)
	}
}

func TestBuildUserJID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+41796666864", "41796666864@s.whatsapp.net"},
		{"41796666864", "41796666864@s.whatsapp.net"},
	}
	for _, tt := range tests {
		if got := BuildUserJID(tt.in); got != tt.want {
			t.Errorf("BuildUserJID(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsValidPhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"+12345678901", true},
		{"1234567890", true},
		{"123456789", false},
		{"1234567890123456", false},
		{"abc", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsValidPhoneNumber(tt.in); got != tt.want {
			t.Errorf("IsValidPhoneNumber(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFormatPhoneNumber(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"+12345678901", "+1 234 567 8901"},
		{"1234567890", "+1234567890"},
		{"abc", "abc"},
	}
	for _, tt := range tests {
		if got := FormatPhoneNumber(tt.in); got != tt.want {
			t.Errorf("FormatPhoneNumber(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
