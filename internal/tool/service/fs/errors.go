package fs

import (
	"errors"
	"fmt"
)

var (
	ErrTooLarge   = errors.New("file too large")
	ErrNotRegular = errors.New("not a regular file")
)

// AtomicWriteError reports which step of an atomic write failed.
type AtomicWriteError struct {
	Stage string
	Path  string
	Cause error
}

func (e *AtomicWriteError) Error() string {
	return fmt.Sprintf("atomic write of %s failed at %s: %v", e.Path, e.Stage, e.Cause)
}

func (e *AtomicWriteError) Unwrap() error { return e.Cause }

type TooLargeError struct {
	Path  string
	Size  int64
	Limit int64
}

func (e *TooLargeError) Error() string {
	return fmt.Sprintf("%s is %d bytes, limit is %d", e.Path, e.Size, e.Limit)
}

func (e *TooLargeError) Is(target error) bool { return target == ErrTooLarge }

type NotRegularError struct {
	Path string
}

func (e *NotRegularError) Error() string {
	return fmt.Sprintf("path is not a file: %s", e.Path)
}

func (e *NotRegularError) Is(target error) bool { return target == ErrNotRegular }
