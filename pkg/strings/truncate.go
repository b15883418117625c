package strings

// DefaultDiffPreviewLen is the default maximum length for diff previews in
// log output. Full diffs of large configurations would drown the log lines
// around them.
const DefaultDiffPreviewLen = 4000

// minTruncateLen leaves room for at least one character plus "...".
const minTruncateLen = 4

// Truncate shortens s to at most maxLen characters, appending "..." when
// content was cut. It operates on runes so multi-byte characters are never
// split.
func Truncate(s string, maxLen int) string {
	if maxLen < minTruncateLen {
		maxLen = minTruncateLen
	}

	runes := []rune(s)
	if len(runes) > maxLen {
		return string(runes[:maxLen-3]) + "..."
	}
	return s
}
