package utils

import (
	"strings"
	"testing"
	"unicode/utf8"

	"go.uber.org/zap"
)

func TestTruncateText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	tests := []struct {
		name    string
		text    string
		maxSize int
		want    string
	}{
		{"under limit", "hello", 10, "hello"},
		{"at limit", "hello", 5, "hello"},
		{"over limit", "hello world", 5, "hello"},
		{"unbounded", strings.Repeat("a", 100), 0, strings.Repeat("a", 100)},
		{"empty", "", 5, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tp.TruncateText(tt.text, tt.maxSize); got != tt.want {
				t.Errorf("TruncateText(%q, %d) = %q, want %q", tt.text, tt.maxSize, got, tt.want)
			}
		})
	}
}

func TestTruncateTextKeepsRunesWhole(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	// "héllo" cut inside the two-byte é must back off to a valid boundary.
	got := tp.TruncateText("héllo", 2)
	if !utf8.ValidString(got) {
		t.Errorf("truncated text is not valid UTF-8: %q", got)
	}
	if got != "h" {
		t.Errorf("got %q, want %q", got, "h")
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	tests := []struct {
		name string
		text string
		want string
	}{
		{"clean ascii", "hello", "hello"},
		{"clean multibyte", "héllo wörld", "héllo wörld"},
		{"invalid byte dropped", "he\xffllo", "hello"},
		{"truncated rune dropped", "abc\xc3", "abc"},
		{"replacement rune kept", "a�b", "a�b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tp.SanitizeUTF8(tt.text); got != tt.want {
				t.Errorf("SanitizeUTF8(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	if got := tp.ProcessText("inv\xffoice attached", 0); got != "invoice attached" {
		t.Errorf("got %q, want %q", got, "invoice attached")
	}
	if got := tp.ProcessText("hello world", 5); got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
	if got := tp.ProcessText("héllo", 2); !utf8.ValidString(got) {
		t.Errorf("processed text is not valid UTF-8: %q", got)
	}
}
