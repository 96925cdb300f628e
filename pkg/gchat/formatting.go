// Copyright 2025-2026 Meridian HQ

package gchat

import "github.com/meridianhq/gchat-bridge/pkg/gchat/gchatfmt"

// defaultMarkupConverter converts Markdown to Google Chat notation.
func defaultMarkupConverter(text string) string {
	return gchatfmt.Convert(text)
}
