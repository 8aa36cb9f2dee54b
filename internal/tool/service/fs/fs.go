// Package fs holds the small set of filesystem primitives the skills and the
// history store share.
package fs

import (
	"io"
	"os"
	"path/filepath"
)

// OSFileSystem implements filesystem operations on the local disk.
type OSFileSystem struct{}

// NewOSFileSystem creates a new OSFileSystem.
func NewOSFileSystem() *OSFileSystem {
	return &OSFileSystem{}
}

// Stat returns file info for a path (follows symlinks).
func (fs *OSFileSystem) Stat(path string) (os.FileInfo, error) {
	return os.Stat(path)
}

// ReadFile reads a regular file, refusing anything larger than maxSize bytes.
// A maxSize of 0 disables the limit.
func (fs *OSFileSystem) ReadFile(path string, maxSize int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return nil, &NotRegularError{Path: path}
	}
	if maxSize > 0 && info.Size() > maxSize {
		return nil, &TooLargeError{Path: path, Size: info.Size(), Limit: maxSize}
	}

	// The file may grow between Stat and Read.
	r := io.Reader(f)
	if maxSize > 0 {
		r = io.LimitReader(f, maxSize+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, &TooLargeError{Path: path, Size: int64(len(data)), Limit: maxSize}
	}
	return data, nil
}

// WriteFileAtomic writes content via a temp file in the target directory
// and renames it into place, so readers never observe a partial file.
func (fs *OSFileSystem) WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	return WriteFileAtomic(path, content, perm)
}

// UserHomeDir returns the current user's home directory.
func (fs *OSFileSystem) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

// WriteFileAtomic is the package-level form of OSFileSystem.WriteFileAtomic.
// Missing parent directories are created.
func WriteFileAtomic(path string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &AtomicWriteError{Stage: "mkdir", Path: dir, Cause: err}
	}

	tmpFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return &AtomicWriteError{Stage: "create", Path: dir, Cause: err}
	}
	tmpPath := tmpFile.Name()
	needsCleanup := true

	defer func() {
		if tmpFile != nil {
			_ = tmpFile.Close()
		}
		if needsCleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(content); err != nil {
		return &AtomicWriteError{Stage: "write", Path: tmpPath, Cause: err}
	}
	if err := tmpFile.Sync(); err != nil {
		return &AtomicWriteError{Stage: "sync", Path: tmpPath, Cause: err}
	}
	if err := tmpFile.Chmod(perm); err != nil {
		return &AtomicWriteError{Stage: "chmod", Path: tmpPath, Cause: err}
	}
	// Close before rename (required on some systems).
	err = tmpFile.Close()
	tmpFile = nil
	if err != nil {
		return &AtomicWriteError{Stage: "close", Path: tmpPath, Cause: err}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		return &AtomicWriteError{Stage: "rename", Path: path, Cause: err}
	}
	needsCleanup = false
	return nil
}
