package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/emersion/go-imap/v2"
	"github.com/emersion/go-imap/v2/imapclient"
	"github.com/rs/zerolog"
)

// IMAPConfig describes one mail account.
type IMAPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	TLS      bool
}

// Envelope is the summary metadata of one message.
type Envelope struct {
	UID     uint32    `json:"uid"`
	From    string    `json:"from"`
	Subject string    `json:"subject"`
	Date    time.Time `json:"date"`
	Seen    bool      `json:"seen"`
}

// Query selects messages in a folder. Zero Limit means 20.
type Query struct {
	Folder string
	Limit  int
	Unseen bool
	Text   string
}

// Client is a single-account IMAP client. The connection is opened lazily,
// re-established when stale, and access is serialised by a mutex.
type Client struct {
	cfg IMAPConfig
	log zerolog.Logger

	mu     sync.Mutex
	client *imapclient.Client
}

// NewClient creates an IMAP client for cfg.
func NewClient(cfg IMAPConfig, logger zerolog.Logger) *Client {
	return &Client{
		cfg: cfg,
		log: logger.With().Str("component", "imap").Str("host", cfg.Host).Logger(),
	}
}

// connectLocked dials and authenticates. Caller must hold c.mu.
func (c *Client) connectLocked() error {
	if c.client != nil {
		_ = c.client.Close()
		c.client = nil
	}

	addr := net.JoinHostPort(c.cfg.Host, strconv.Itoa(c.cfg.Port))

	var (
		client *imapclient.Client
		err    error
	)
	if c.cfg.TLS {
		client, err = imapclient.DialTLS(addr, &imapclient.Options{
			TLSConfig: &tls.Config{ServerName: c.cfg.Host},
		})
	} else {
		client, err = imapclient.DialInsecure(addr, nil)
	}
	if err != nil {
		return fmt.Errorf("dial IMAP %s: %w", addr, err)
	}

	if err := client.Login(c.cfg.Username, c.cfg.Password).Wait(); err != nil {
		_ = client.Close()
		return fmt.Errorf("login as %s: %w", c.cfg.Username, err)
	}

	c.client = client
	c.log.Debug().Str("user", c.cfg.Username).Msg("IMAP connected")
	return nil
}

// ensureConnected reuses a live connection or reconnects. Caller must hold c.mu.
func (c *Client) ensureConnected() error {
	if c.client != nil {
		if err := c.client.Noop().Wait(); err == nil {
			return nil
		}
		c.log.Debug().Msg("IMAP connection stale, reconnecting")
	}
	return c.connectLocked()
}

// Close logs out and closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	_ = c.client.Logout().Wait()
	err := c.client.Close()
	c.client = nil
	return err
}

// Messages returns the newest messages matching q, newest first.
func (c *Client) Messages(ctx context.Context, q Query) ([]Envelope, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.ensureConnected(); err != nil {
		return nil, err
	}

	folder := q.Folder
	if folder == "" {
		folder = "INBOX"
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}

	if _, err := c.client.Select(folder, &imap.SelectOptions{ReadOnly: true}).Wait(); err != nil {
		return nil, fmt.Errorf("select %s: %w", folder, err)
	}

	criteria := &imap.SearchCriteria{}
	if q.Unseen {
		criteria.NotFlag = append(criteria.NotFlag, imap.FlagSeen)
	}
	if q.Text != "" {
		criteria.Text = append(criteria.Text, q.Text)
	}

	searchData, err := c.client.UIDSearch(criteria, nil).Wait()
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", folder, err)
	}

	uids := searchData.AllUIDs()
	if len(uids) == 0 {
		return nil, nil
	}
	if len(uids) > limit {
		uids = uids[len(uids)-limit:]
	}

	uidSet := imap.UIDSet{}
	for _, uid := range uids {
		uidSet.AddNum(uid)
	}
	return c.fetchEnvelopes(uidSet)
}

// fetchEnvelopes fetches envelope data newest-first. Caller must hold c.mu
// and have a folder selected.
func (c *Client) fetchEnvelopes(uidSet imap.UIDSet) ([]Envelope, error) {
	fetchCmd := c.client.Fetch(uidSet, &imap.FetchOptions{
		UID:      true,
		Envelope: true,
		Flags:    true,
	})

	var envelopes []Envelope
	for {
		msg := fetchCmd.Next()
		if msg == nil {
			break
		}
		buf, err := msg.Collect()
		if err != nil {
			c.log.Debug().Err(err).Msg("skipping message")
			continue
		}
		envelopes = append(envelopes, toEnvelope(buf))
	}
	if err := fetchCmd.Close(); err != nil {
		return nil, fmt.Errorf("fetch envelopes: %w", err)
	}

	for i, j := 0, len(envelopes)-1; i < j; i, j = i+1, j-1 {
		envelopes[i], envelopes[j] = envelopes[j], envelopes[i]
	}
	return envelopes, nil
}

func toEnvelope(buf *imapclient.FetchMessageBuffer) Envelope {
	env := Envelope{UID: uint32(buf.UID)}
	for _, f := range buf.Flags {
		if f == imap.FlagSeen {
			env.Seen = true
		}
	}
	if buf.Envelope != nil {
		env.Date = buf.Envelope.Date
		env.Subject = buf.Envelope.Subject
		if len(buf.Envelope.From) > 0 {
			env.From = formatAddress(buf.Envelope.From[0])
		}
	}
	return env
}

// formatAddress renders "Name <user@host>" or just "user@host".
func formatAddress(addr imap.Address) string {
	if addr.Name != "" {
		return fmt.Sprintf("%s <%s>", addr.Name, addr.Addr())
	}
	return addr.Addr()
}
