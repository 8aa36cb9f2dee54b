package email

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailbox struct {
	queries []Query
	msgs    []Envelope
	err     error
}

func (f *fakeMailbox) Messages(_ context.Context, q Query) ([]Envelope, error) {
	f.queries = append(f.queries, q)
	return f.msgs, f.err
}

func TestIMAPConfig_Validate(t *testing.T) {
	err := IMAPConfig{Host: "imap.example.com"}.Validate()
	require.ErrorIs(t, err, ErrNotConfigured)
	assert.Contains(t, err.Error(), "username, password")

	assert.NoError(t, IMAPConfig{Host: "h", Username: "u", Password: "p"}.Validate())
}

func TestRecent(t *testing.T) {
	box := &fakeMailbox{msgs: []Envelope{
		{UID: 2, From: "Ada <ada@example.com>", Subject: "Lunch?", Date: time.Date(2025, 5, 2, 12, 30, 0, 0, time.UTC)},
		{UID: 1, From: "bob@example.com"},
	}}
	s := New(box, "")

	out, err := s.Dispatch(context.Background(), "read_recent_emails", map[string]any{"num_emails": 50})

	require.NoError(t, err)
	assert.Equal(t, "Your 2 most recent emails:\n\n"+
		"1. Lunch?\n   From: Ada <ada@example.com>\n   Date: Fri, 02 May 2025 12:30\n\n"+
		"2. (no subject)\n   From: bob@example.com", out)
	require.Len(t, box.queries, 1)
	assert.Equal(t, Query{Folder: "INBOX", Limit: 20}, box.queries[0])
}

func TestRecent_Empty(t *testing.T) {
	s := New(&fakeMailbox{}, "Archive")

	out, err := s.Dispatch(context.Background(), "read_recent_emails", nil)

	require.NoError(t, err)
	assert.Equal(t, "No emails found in Archive", out)
}

func TestUnread(t *testing.T) {
	box := &fakeMailbox{}
	s := New(box, "")

	out, err := s.Dispatch(context.Background(), "check_unread_emails", nil)

	require.NoError(t, err)
	assert.Equal(t, "No unread emails. Inbox is clear!", out)
	assert.True(t, box.queries[0].Unseen)
}

func TestSearch(t *testing.T) {
	box := &fakeMailbox{msgs: []Envelope{{UID: 9, From: "x@y.z", Subject: "Invoice"}}}
	s := New(box, "")

	out, err := s.Dispatch(context.Background(), "search_emails", map[string]any{"query": " invoice "})

	require.NoError(t, err)
	assert.Contains(t, out, "Found 1 email(s) matching 'invoice':")
	assert.Equal(t, Query{Folder: "INBOX", Limit: 10, Text: "invoice"}, box.queries[0])

	_, err = s.Dispatch(context.Background(), "search_emails", map[string]any{"query": ""})
	assert.Error(t, err)
}

func TestMailboxError(t *testing.T) {
	s := New(&fakeMailbox{err: errors.New("login failed")}, "")

	_, err := s.Dispatch(context.Background(), "read_recent_emails", nil)

	assert.ErrorContains(t, err, "error reading emails: login failed")
}
