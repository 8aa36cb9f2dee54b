// Package email reads a mailbox over IMAP.
package email

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Cyclone1070/anu/internal/tool"
)

const SkillName = "email"

// ErrNotConfigured is returned when the account settings are incomplete.
var ErrNotConfigured = errors.New("email account not configured")

// Mailbox is the read side of an IMAP account.
type Mailbox interface {
	Messages(ctx context.Context, q Query) ([]Envelope, error)
}

// Validate reports whether cfg names a usable account.
func (cfg IMAPConfig) Validate() error {
	var missing []string
	if cfg.Host == "" {
		missing = append(missing, "host")
	}
	if cfg.Username == "" {
		missing = append(missing, "username")
	}
	if cfg.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
	}
	return nil
}

type skill struct {
	box    Mailbox
	folder string
}

// New builds the email skill on top of box, reading folder by default.
func New(box Mailbox, folder string) *tool.Set {
	if folder == "" {
		folder = "INBOX"
	}
	s := &skill{box: box, folder: folder}

	return tool.NewSet(SkillName,
		tool.Typed(tool.Declaration{
			Name:        "read_recent_emails",
			Description: "Read the most recent emails",
			Parameters: tool.Object(map[string]*tool.Schema{
				"num_emails": tool.Integer("Number of recent emails to read (1-20, default 5)"),
				"folder":     tool.String("Mail folder to read from (default: INBOX)"),
			}),
		}, s.recent),
		tool.Typed(tool.Declaration{
			Name:        "check_unread_emails",
			Description: "Count unread emails and list the newest ones",
			Parameters:  tool.Object(nil),
		}, s.unread),
		tool.Typed(tool.Declaration{
			Name:        "search_emails",
			Description: "Search emails by keyword in subject and body",
			Parameters: tool.Object(map[string]*tool.Schema{
				"query":       tool.String("Search keyword"),
				"num_results": tool.Integer("Number of results to return (1-20, default 10)"),
			}, "query"),
		}, s.search),
	)
}

type recentRequest struct {
	NumEmails int    `json:"num_emails"`
	Folder    string `json:"folder"`
}

func (s *skill) recent(ctx context.Context, req recentRequest) (string, error) {
	folder := req.Folder
	if folder == "" {
		folder = s.folder
	}
	msgs, err := s.box.Messages(ctx, Query{Folder: folder, Limit: clamp(req.NumEmails, 5)})
	if err != nil {
		return "", fmt.Errorf("error reading emails: %w", err)
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("No emails found in %s", folder), nil
	}
	return render(fmt.Sprintf("Your %d most recent emails:", len(msgs)), msgs), nil
}

func (s *skill) unread(ctx context.Context, _ struct{}) (string, error) {
	msgs, err := s.box.Messages(ctx, Query{Folder: s.folder, Limit: 5, Unseen: true})
	if err != nil {
		return "", fmt.Errorf("error checking unread emails: %w", err)
	}
	if len(msgs) == 0 {
		return "No unread emails. Inbox is clear!", nil
	}
	return render(fmt.Sprintf("You have unread emails. Newest %d:", len(msgs)), msgs), nil
}

type searchRequest struct {
	Query      string `json:"query"`
	NumResults int    `json:"num_results"`
}

func (r *searchRequest) Validate() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return errors.New("query is required")
	}
	return nil
}

func (s *skill) search(ctx context.Context, req searchRequest) (string, error) {
	msgs, err := s.box.Messages(ctx, Query{Folder: s.folder, Limit: clamp(req.NumResults, 10), Text: req.Query})
	if err != nil {
		return "", fmt.Errorf("error searching emails: %w", err)
	}
	if len(msgs) == 0 {
		return fmt.Sprintf("No emails found matching '%s'", req.Query), nil
	}
	return render(fmt.Sprintf("Found %d email(s) matching '%s':", len(msgs), req.Query), msgs), nil
}

func render(header string, msgs []Envelope) string {
	var b strings.Builder
	b.WriteString(header)
	for i, m := range msgs {
		subject := m.Subject
		if subject == "" {
			subject = "(no subject)"
		}
		fmt.Fprintf(&b, "\n\n%d. %s\n   From: %s", i+1, subject, m.From)
		if !m.Date.IsZero() {
			fmt.Fprintf(&b, "\n   Date: %s", m.Date.Format("Mon, 02 Jan 2006 15:04"))
		}
	}
	return b.String()
}

func clamp(n, def int) int {
	if n <= 0 {
		return def
	}
	return min(n, 20)
}
