package clipboard

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/Cyclone1070/anu/internal/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memBoard struct {
	text string
	err  error
}

func (m *memBoard) ReadAll() (string, error) { return m.text, m.err }

func (m *memBoard) WriteAll(text string) error {
	if m.err != nil {
		return m.err
	}
	m.text = text
	return nil
}

func message(t *testing.T, out string) string {
	t.Helper()
	var res tool.Result
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	return res.Message
}

func TestClipboard_CopyThenGet(t *testing.T) {
	board := &memBoard{}
	s, err := New(board)
	require.NoError(t, err)

	out, err := s.Dispatch(context.Background(), "copy_to_clipboard", map[string]any{"text": "hello"})
	require.NoError(t, err)
	assert.Equal(t, "Copied to clipboard: hello", message(t, out))
	assert.Equal(t, "hello", board.text)

	out, err = s.Dispatch(context.Background(), "get_clipboard", nil)
	require.NoError(t, err)
	assert.Equal(t, "Clipboard content: hello", message(t, out))
}

func TestClipboard_PreviewTruncated(t *testing.T) {
	board := &memBoard{text: strings.Repeat("z", 150)}
	s, err := New(board)
	require.NoError(t, err)

	out, err := s.Dispatch(context.Background(), "get_clipboard", nil)

	require.NoError(t, err)
	assert.Equal(t, "Clipboard content: "+strings.Repeat("z", 100)+"...", message(t, out))
}

func TestClipboard_Empty(t *testing.T) {
	s, err := New(&memBoard{})
	require.NoError(t, err)

	out, err := s.Dispatch(context.Background(), "get_clipboard", nil)

	require.NoError(t, err)
	assert.Equal(t, "Clipboard is empty", message(t, out))
}

func TestClipboard_Error(t *testing.T) {
	s, err := New(&memBoard{err: errors.New("no display")})
	require.NoError(t, err)

	_, err = s.Dispatch(context.Background(), "copy_to_clipboard", map[string]any{"text": "x"})

	assert.ErrorContains(t, err, "clipboard error: no display")
}
