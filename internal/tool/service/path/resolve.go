// Package path resolves file paths the way a user says them: ~ for the
// home directory and bare names that may live in a familiar folder.
package path

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrEmptyPath is returned for a blank path.
var ErrEmptyPath = errors.New("path is empty")

// HomeDirError is returned when a ~ path cannot be expanded.
type HomeDirError struct {
	Path  string
	Cause error
}

func (e *HomeDirError) Error() string {
	return fmt.Sprintf("cannot expand %s: %v", e.Path, e.Cause)
}

func (e *HomeDirError) Unwrap() error { return e.Cause }

// FileSystem is what the resolver needs to check candidates.
type FileSystem interface {
	Stat(path string) (os.FileInfo, error)
	UserHomeDir() (string, error)
}

// Resolver turns user-supplied paths into filesystem paths.
type Resolver struct {
	fs        FileSystem
	fallbacks []string
}

// NewResolver creates a resolver. fallbacks are directories under the home
// directory tried, in order, for relative paths missing from the working
// directory.
func NewResolver(fsys FileSystem, fallbacks ...string) *Resolver {
	return &Resolver{
		fs:        fsys,
		fallbacks: fallbacks,
	}
}

// Expand replaces a leading ~ with the home directory and cleans the path.
func (r *Resolver) Expand(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", ErrEmptyPath
	}
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return filepath.Clean(path), nil
	}
	home, err := r.fs.UserHomeDir()
	if err != nil {
		return "", &HomeDirError{Path: path, Cause: err}
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Resolve expands path and, for relative paths that do not exist in the
// working directory, returns the first fallback directory that holds it.
// When nothing matches, the expanded path is returned so the caller's
// open reports the miss.
func (r *Resolver) Resolve(path string) (string, error) {
	expanded, err := r.Expand(path)
	if err != nil {
		return "", err
	}
	if filepath.IsAbs(expanded) {
		return expanded, nil
	}
	if _, err := r.fs.Stat(expanded); err == nil {
		return expanded, nil
	}

	home, err := r.fs.UserHomeDir()
	if err != nil {
		return expanded, nil
	}
	for _, dir := range r.fallbacks {
		candidate := filepath.Join(home, dir, expanded)
		if _, err := r.fs.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return expanded, nil
}
