package models

import (
	"strings"
	"testing"
)

func TestPostPreviewTruncatesLongText(t *testing.T) {
	text := "a very long post body that keeps going"
	p := Post{Text: text}
	if got := p.Preview(); got != text[:PreviewLength] {
		t.Fatalf("Preview() = %q, want %q", got, text[:PreviewLength])
	}
	if p.String() != p.Preview() {
		t.Fatalf("String() = %q, want %q", p.String(), p.Preview())
	}
}

func TestPostPreviewShortTextUnchanged(t *testing.T) {
	for _, text := range []string{"", "short", strings.Repeat("x", PreviewLength)} {
		p := Post{Text: text}
		if got := p.Preview(); got != text {
			t.Fatalf("Preview(%q) = %q, want unchanged", text, got)
		}
	}
}

func TestPostPreviewCountsRunesNotBytes(t *testing.T) {
	// 20 multi-byte characters; a byte-based cut would split one of them.
	text := strings.Repeat("я", 20)
	p := Post{Text: text}
	got := p.Preview()
	if len([]rune(got)) != PreviewLength {
		t.Fatalf("Preview() kept %d runes, want %d", len([]rune(got)), PreviewLength)
	}
	if !strings.HasPrefix(text, got) {
		t.Fatalf("Preview() = %q is not a prefix of the text", got)
	}
}
