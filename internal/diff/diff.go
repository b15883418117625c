// Package diff decides whether a rendered configuration differs materially
// from the one on disk.
//
// The comparison works at line granularity on whitespace-trimmed lines, so
// incidental formatting differences (indentation, trailing spaces, trailing
// blank lines) never count as a change and never trigger a write or reload.
package diff

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Changed reports whether next differs materially from previous.
func Changed(previous, next string) bool {
	a := normalize(previous)
	b := normalize(next)

	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}

// Unified returns a human-readable unified diff between the persisted and
// the rendered configuration, for logging before a write.
func Unified(previous, next string) string {
	out, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(previous),
		B:        difflib.SplitLines(next),
		FromFile: "current",
		ToFile:   "rendered",
		Context:  3,
	})
	if err != nil {
		// difflib only fails on writer errors, which cannot happen with the
		// in-memory writer behind GetUnifiedDiffString.
		return ""
	}
	return out
}

// normalize splits text into trimmed lines and strips trailing blank lines.
func normalize(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
