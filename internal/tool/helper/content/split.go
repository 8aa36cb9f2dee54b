package content

import (
	"strings"
	"unicode/utf8"
)

// SplitLines splits content on \n or \r\n. A trailing newline does not
// produce a trailing empty line.
func SplitLines(content string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(content); i++ {
		if content[i] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 1
		} else if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			lines = append(lines, content[start:i])
			start = i + 2
			i++
		}
	}
	if start < len(content) {
		lines = append(lines, content[start:])
	}
	return lines
}

// Truncate cuts s to at most maxChars runes and reports whether it did.
func Truncate(s string, maxChars int) (string, bool) {
	if maxChars <= 0 || utf8.RuneCountInString(s) <= maxChars {
		return s, false
	}
	n := 0
	for i := range s {
		if n == maxChars {
			return s[:i], true
		}
		n++
	}
	return s, false
}

// Stats summarises a text document.
type Stats struct {
	Lines      int `json:"lines"`
	Words      int `json:"words"`
	Characters int `json:"characters"`
}

// Count returns line, word and character counts for s.
func Count(s string) Stats {
	return Stats{
		Lines:      len(SplitLines(s)),
		Words:      len(strings.Fields(s)),
		Characters: utf8.RuneCountInString(s),
	}
}
