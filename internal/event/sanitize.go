package event

import (
	"strings"
	"unicode/utf8"
)

const (
	MaxStoredTextLength = 50000
	truncatedSuffix     = "... [truncated]"
)

// Sanitize prepares user text for storage: NUL bytes and control characters
// other than tab, newline and carriage return are removed, invalid UTF-8 is
// dropped and the result is capped at MaxStoredTextLength runes.
func Sanitize(s string) string {
	if s == "" {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	n := 0
	truncated := false
	for _, r := range s {
		if r == utf8.RuneError || isControl(r) {
			continue
		}
		if n == MaxStoredTextLength {
			truncated = true
			break
		}
		b.WriteRune(r)
		n++
	}
	if truncated {
		b.WriteString(truncatedSuffix)
	}
	return b.String()
}

func isControl(r rune) bool {
	switch r {
	case '\t', '\n', '\r':
		return false
	}
	return r < 0x20 || r == 0x7f
}
