// Copyright 2025-2026 Meridian HQ

package gchat

import "strings"

// DefaultMaxMessageLength is the provider's message size limit in bytes.
const DefaultMaxMessageLength = 4096

// splitLines splits text into ordered chunks of at most maxLength bytes,
// breaking only on line boundaries. Lines are accumulated into the current
// chunk; when appending the next line plus its newline would exceed
// maxLength, the chunk is finalized and the line starts a new one. A single
// line longer than maxLength is emitted as an oversized chunk rather than
// split mid-line. The final chunk is always emitted, so every input produces
// at least one chunk and no line is dropped or duplicated.
func splitLines(text string, maxLength int) []string {
	var chunks []string
	var current strings.Builder

	first := true
	for _, line := range strings.Split(text, "\n") {
		if !first && current.Len()+len(line)+1 > maxLength {
			chunks = append(chunks, current.String())
			current.Reset()
			first = true
		}
		if !first {
			current.WriteByte('\n')
		}
		current.WriteString(line)
		first = false
	}

	return append(chunks, current.String())
}
