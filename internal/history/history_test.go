package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(start time.Time) func() time.Time {
	t := start
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newTestHistory(t *testing.T, maxMessages int) (*History, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conversation_history.json")
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	return New(path, maxMessages, zerolog.Nop(), WithClock(fixedClock(start))), path
}

func TestAdd_EvictsOldestBeyondCap(t *testing.T) {
	h, _ := newTestHistory(t, 3)

	for i := 1; i <= 5; i++ {
		h.Add("user", fmt.Sprintf("m%d", i))
	}

	all := h.All()
	require.Len(t, all, 3)
	assert.Equal(t, "m3", all[0].Content)
	assert.Equal(t, "m4", all[1].Content)
	assert.Equal(t, "m5", all[2].Content)
}

func TestAdd_PersistsAfterEveryMutation(t *testing.T) {
	h, path := newTestHistory(t, 10)

	h.Add("user", "hello")
	h.Add("assistant", "hi there")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var stored []Message
	require.NoError(t, json.Unmarshal(data, &stored))
	require.Len(t, stored, 2)
	assert.Equal(t, "assistant", stored[1].Role)

	reloaded := New(path, 10, zerolog.Nop())
	assert.Equal(t, h.All(), reloaded.All())
}

func TestRecent_EndsWithLastAdded(t *testing.T) {
	h, _ := newTestHistory(t, 10)

	h.Add("user", "one")
	h.Add("assistant", "two")
	h.Add("user", "three")

	recent := h.Recent(2)
	require.Len(t, recent, 2)
	assert.Equal(t, "two", recent[0].Content)
	assert.Equal(t, "three", recent[1].Content)
}

func TestRecent_FewerThanRequested(t *testing.T) {
	h, _ := newTestHistory(t, 10)

	h.Add("user", "only")

	recent := h.Recent(6)
	require.Len(t, recent, 1)
	assert.Equal(t, "only", recent[0].Content)
	assert.Empty(t, h.Recent(0))
}

func TestRecent_ReturnsCopy(t *testing.T) {
	h, _ := newTestHistory(t, 10)
	h.Add("user", "original")

	recent := h.Recent(1)
	recent[0].Content = "mutated"

	assert.Equal(t, "original", h.Recent(1)[0].Content)
}

func TestClear_PersistsEmptyBuffer(t *testing.T) {
	h, path := newTestHistory(t, 10)
	h.Add("user", "hello")

	h.Clear()

	assert.Equal(t, 0, h.Len())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestNew_LoadTruncatesToCap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	var stored []Message
	for i := 0; i < 5; i++ {
		stored = append(stored, Message{Role: "user", Content: fmt.Sprintf("m%d", i)})
	}
	data, err := json.Marshal(stored)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	h := New(path, 2, zerolog.Nop())

	all := h.All()
	require.Len(t, all, 2)
	assert.Equal(t, "m3", all[0].Content)
}

func TestNew_CorruptFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "h.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	h := New(path, 10, zerolog.Nop())

	assert.Equal(t, 0, h.Len())
}

func TestAdd_PersistFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	h := New(filepath.Join(blocker, "history.json"), 10, zerolog.Nop())
	h.Add("user", "still recorded")

	assert.Equal(t, 1, h.Len())
}

func TestSummary(t *testing.T) {
	h, _ := newTestHistory(t, 10)
	assert.Equal(t, "No conversation history", h.Summary())

	h.Add("user", "a")
	h.Add("assistant", "b")
	h.Add("user", "c")

	assert.Equal(t, "History: 2 user messages, 1 assistant messages. From 2025-03-01 09:01 to 2025-03-01 09:03", h.Summary())
}
