package executor

import (
	"context"
	"os"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses POSIX shell")
	}
}

func TestRun_SimpleCommand(t *testing.T) {
	skipOnWindows(t)
	exec := NewOSCommandExecutor(Options{})

	res, err := exec.Run(context.Background(), []string{"echo", "hello"}, time.Second)

	require.NoError(t, err)
	assert.Equal(t, "hello", strings.TrimSpace(res.Stdout))
	assert.Equal(t, 0, res.ExitCode)
}

func TestRun_OutputIsNeverLost(t *testing.T) {
	skipOnWindows(t)
	exec := NewOSCommandExecutor(Options{})

	for i := range 100 {
		res, err := exec.Run(context.Background(), []string{"sh", "-c", "echo hello; echo oops >&2"}, 0)

		require.NoError(t, err, "run %d", i)
		require.Equal(t, "hello", strings.TrimSpace(res.Stdout), "run %d", i)
		require.Equal(t, "oops", strings.TrimSpace(res.Stderr), "run %d", i)
	}
}

func TestRun_EmptyCommand(t *testing.T) {
	_, err := NewOSCommandExecutor(Options{}).Run(context.Background(), nil, time.Second)

	assert.ErrorIs(t, err, os.ErrInvalid)
}

func TestRun_NonZeroExit(t *testing.T) {
	skipOnWindows(t)

	res, err := NewOSCommandExecutor(Options{}).Run(context.Background(), []string{"sh", "-c", "echo oops >&2; exit 3"}, time.Second)

	require.Error(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "oops", strings.TrimSpace(res.Stderr))
}

func TestRun_MissingBinary(t *testing.T) {
	_, err := NewOSCommandExecutor(Options{}).Run(context.Background(), []string{"anu-definitely-not-a-binary"}, time.Second)

	var cmdErr *CommandError
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, "start", cmdErr.Stage)
}

func TestRun_Timeout(t *testing.T) {
	skipOnWindows(t)
	exec := NewOSCommandExecutor(Options{GracePeriod: 100 * time.Millisecond})

	start := time.Now()
	res, err := exec.Run(context.Background(), []string{"sleep", "5"}, 100*time.Millisecond)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, -1, res.ExitCode)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRun_OutputTruncated(t *testing.T) {
	skipOnWindows(t)
	exec := NewOSCommandExecutor(Options{MaxOutputSize: 10})

	res, err := exec.Run(context.Background(), []string{"sh", "-c", "printf 'abcdefghijklmnopqrstuvwxyz'"}, time.Second)

	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Equal(t, "abcdefghij", res.Stdout)
}

func TestStart_Detached(t *testing.T) {
	skipOnWindows(t)

	assert.NoError(t, NewOSCommandExecutor(Options{}).Start([]string{"true"}))
	assert.ErrorIs(t, NewOSCommandExecutor(Options{}).Start(nil), os.ErrInvalid)
}

func TestCapture_BinaryPlaceholder(t *testing.T) {
	c := newCapture(100)

	n, err := c.Write([]byte{'a', 0, 'b'})

	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, binaryPlaceholder, c.String())
	assert.True(t, c.Truncated())
}

func TestCapture_KeepsHead(t *testing.T) {
	c := newCapture(4)

	_, _ = c.Write([]byte("ab"))
	_, _ = c.Write([]byte("cdef"))
	_, _ = c.Write([]byte("gh"))

	assert.Equal(t, "abcd", c.String())
	assert.True(t, c.Truncated())
}
