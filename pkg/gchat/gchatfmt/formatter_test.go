// Copyright 2025-2026 Meridian HQ

package gchatfmt

import (
	"strings"
	"testing"
)

func TestConvertPlainText(t *testing.T) {
	t.Parallel()
	if got := Convert("hello world"); got != "hello world" {
		t.Errorf("plain text should pass through, got %q", got)
	}
}

func TestConvertEmpty(t *testing.T) {
	t.Parallel()
	if got := Convert(""); got != "" {
		t.Errorf("empty input: got %q", got)
	}
}

func TestConvertBold(t *testing.T) {
	t.Parallel()
	if got := Convert("**bold text**"); got != "*bold text*" {
		t.Errorf("bold: got %q, want %q", got, "*bold text*")
	}
}

func TestConvertStrikethrough(t *testing.T) {
	t.Parallel()
	if got := Convert("~~deleted~~"); got != "~deleted~" {
		t.Errorf("strikethrough: got %q, want %q", got, "~deleted~")
	}
}

func TestConvertLink(t *testing.T) {
	t.Parallel()
	got := Convert("[example](https://example.com)")
	if got != "<https://example.com|example>" {
		t.Errorf("link: got %q, want %q", got, "<https://example.com|example>")
	}
}

func TestConvertLinkMidSentence(t *testing.T) {
	t.Parallel()
	got := Convert("see [the docs](https://example.com/docs) for details")
	want := "see <https://example.com/docs|the docs> for details"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConvertImageLinkUntouched(t *testing.T) {
	t.Parallel()
	input := "![alt text](https://example.com/i.png)"
	if got := Convert(input); got != input {
		t.Errorf("image link should pass through, got %q", got)
	}
}

func TestConvertRelativeLinkUntouched(t *testing.T) {
	t.Parallel()
	input := "[readme](docs/readme.md)"
	if got := Convert(input); got != input {
		t.Errorf("schemeless link should pass through, got %q", got)
	}
}

func TestConvertItalicsUntouched(t *testing.T) {
	t.Parallel()
	input := "_italic_ and *already single*"
	if got := Convert(input); got != input {
		t.Errorf("italics should pass through, got %q", got)
	}
}

func TestConvertCodeUntouched(t *testing.T) {
	t.Parallel()
	input := "`inline` and ```\nblock\n```"
	if got := Convert(input); got != input {
		t.Errorf("code should pass through, got %q", got)
	}
}

func TestConvertMixed(t *testing.T) {
	t.Parallel()
	got := Convert("**bold**, ~~gone~~ and [a link](https://x.com/p)")
	want := "*bold*, ~gone~ and <https://x.com/p|a link>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestConvertMultipleLinks(t *testing.T) {
	t.Parallel()
	got := Convert("[one](https://a.com/1) and [two](https://b.com/2)")
	want := "<https://a.com/1|one> and <https://b.com/2|two>"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// FuzzConvert verifies the converter never panics and is deterministic for
// arbitrary input.
func FuzzConvert(f *testing.F) {
	f.Add("hello world")
	f.Add("")
	f.Add("**bold**")
	f.Add("~~strike~~")
	f.Add("[link](https://example.com)")
	f.Add("![img](https://example.com/i.png)")
	f.Add("****")
	f.Add("~~~~")
	f.Add("[]()")
	f.Add("[unclosed](https://example.com")
	f.Add(string([]byte{0x00, 0x01}))
	f.Add(strings.Repeat("**x** ", 200))

	f.Fuzz(func(t *testing.T, input string) {
		got := Convert(input)
		if got != Convert(input) {
			t.Errorf("non-deterministic conversion for %q", input)
		}
	})
}
