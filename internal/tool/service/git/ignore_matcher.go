// Package git matches paths against gitignore-syntax patterns.
package git

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/anu/internal/tool/helper/content"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// maxPatternFile bounds the size of a pattern file.
const maxPatternFile = 64 * 1024

// PatternFileError is returned when a pattern file exists but cannot be read.
type PatternFileError struct {
	Path  string
	Cause error
}

func (e *PatternFileError) Error() string {
	return fmt.Sprintf("failed to read pattern file %s: %v", e.Path, e.Cause)
}
func (e *PatternFileError) Unwrap() error { return e.Cause }

// fileSystem defines the minimal filesystem interface needed to load patterns.
type fileSystem interface {
	ReadFile(path string, maxSize int64) ([]byte, error)
}

// IgnoreMatcher reports whether a path is covered by a set of patterns.
// A pattern without a slash matches any path component, so ".ssh/" covers
// everything under any .ssh directory and "*.pem" any file ending in .pem.
// The zero value and nil never match.
type IgnoreMatcher struct {
	matcher gitignore.Matcher
}

// NewIgnoreMatcher parses patterns. Blank lines and # comments are skipped.
func NewIgnoreMatcher(patterns []string) *IgnoreMatcher {
	var parsed []gitignore.Pattern
	for _, line := range patterns {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parsed = append(parsed, gitignore.ParsePattern(line, nil))
	}
	if len(parsed) == 0 {
		return &IgnoreMatcher{}
	}
	return &IgnoreMatcher{matcher: gitignore.NewMatcher(parsed)}
}

// LoadIgnoreMatcher reads one pattern per line from path and appends them
// to base, so file patterns (including ! negations) take precedence.
// A missing file yields a matcher over base alone.
func LoadIgnoreMatcher(path string, base []string, fs fileSystem) (*IgnoreMatcher, error) {
	if path == "" {
		return NewIgnoreMatcher(base), nil
	}
	data, err := fs.ReadFile(path, maxPatternFile)
	if err != nil {
		if os.IsNotExist(err) {
			return NewIgnoreMatcher(base), nil
		}
		return nil, &PatternFileError{Path: path, Cause: err}
	}
	patterns := append(append([]string(nil), base...), content.SplitLines(string(data))...)
	return NewIgnoreMatcher(patterns), nil
}

// ShouldIgnore checks if a file path matches the patterns.
func (m *IgnoreMatcher) ShouldIgnore(path string) bool {
	if m == nil || m.matcher == nil {
		return false
	}
	return m.matcher.Match(splitPath(path), false)
}

// splitPath splits a path into segments for gitignore matching.
// It normalizes path separators and filters out empty and "." segments.
func splitPath(path string) []string {
	if path == "" {
		return []string{}
	}

	normalized := filepath.ToSlash(filepath.Clean(path))

	parts := strings.Split(normalized, "/")
	var segments []string
	for _, part := range parts {
		if part != "" && part != "." {
			segments = append(segments, part)
		}
	}

	return segments
}
