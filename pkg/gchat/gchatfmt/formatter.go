// Copyright 2025-2026 Meridian HQ

// Package gchatfmt converts Markdown text to Google Chat message notation.
package gchatfmt

import "regexp"

// markdownLink matches [text](scheme:uri) link notation. The leading
// negative check on "!" is handled by the capture below: image links are
// left untouched.
var markdownLink = regexp.MustCompile(`(^|[^!])\[([^\]]+?)\]\(([a-zA-Z0-9]+?:\S+?)\)`)

var (
	bold          = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	strikethrough = regexp.MustCompile(`~~([^~]+)~~`)
)

// Convert rewrites Markdown notation into Google Chat notation: links become
// <url|text>, bold drops to single asterisks and strikethrough to single
// tildes. Everything else Google Chat already renders (italics, inline code,
// code blocks) passes through unchanged.
func Convert(text string) string {
	out := markdownLink.ReplaceAllString(text, `$1<$3|$2>`)
	out = bold.ReplaceAllString(out, `*$1*`)
	out = strikethrough.ReplaceAllString(out, `~$1~`)
	return out
}
