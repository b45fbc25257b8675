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
		{"zero disables limit", strings.Repeat("x", 100), 0, strings.Repeat("x", 100)},
		{"multibyte boundary", "héllo", 2, "h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tp.TruncateText(tt.text, tt.maxSize)
			if got != tt.want {
				t.Errorf("TruncateText(%q, %d) = %q, want %q", tt.text, tt.maxSize, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("result %q is not valid UTF-8", got)
			}
		})
	}
}

func TestSanitizeUTF8(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	if got := tp.SanitizeUTF8("plain text"); got != "plain text" {
		t.Errorf("valid input changed: %q", got)
	}
	if got := tp.SanitizeUTF8("abc\xffdef"); got != "abcdef" {
		t.Errorf("SanitizeUTF8 = %q, want %q", got, "abcdef")
	}
}

func TestProcessText(t *testing.T) {
	tp := NewTextProcessor(zap.NewNop())

	got := tp.ProcessText("héllo\xff world", 6)
	if !utf8.ValidString(got) {
		t.Errorf("result %q is not valid UTF-8", got)
	}
	if len(got) > 6 {
		t.Errorf("result %q exceeds the size limit", got)
	}
}
