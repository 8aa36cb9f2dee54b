package reminders

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Reminder is a single scheduled reminder.
type Reminder struct {
	ID       int64
	Task     string
	Due      time.Time
	Created  time.Time
	Notified bool
}

// Store persists reminders in SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the reminder database at path.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create reminder dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open reminder db: %w", err)
	}
	// One writer; the watcher and the loop share the handle.
	db.SetMaxOpenConns(1)

	s, err := NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps db, running migrations on first use.
func NewStore(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("migrate reminders: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			task       TEXT    NOT NULL,
			due_at     INTEGER NOT NULL,
			created_at INTEGER NOT NULL,
			notified   INTEGER NOT NULL DEFAULT 0
		)
	`)
	return err
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Add stores a new reminder and returns it with its ID set.
func (s *Store) Add(ctx context.Context, task string, due, created time.Time) (Reminder, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO reminders (task, due_at, created_at) VALUES (?, ?, ?)`,
		task, due.UnixMilli(), created.UnixMilli(),
	)
	if err != nil {
		return Reminder{}, fmt.Errorf("insert reminder: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Reminder{}, fmt.Errorf("insert reminder: %w", err)
	}
	return Reminder{ID: id, Task: task, Due: due, Created: created}, nil
}

// Upcoming returns reminders due after now, soonest first.
func (s *Store) Upcoming(ctx context.Context, now time.Time) ([]Reminder, error) {
	return s.query(ctx,
		`SELECT id, task, due_at, created_at, notified FROM reminders
		 WHERE due_at > ? ORDER BY due_at ASC, id ASC`,
		now.UnixMilli(),
	)
}

// Due returns reminders whose time has come and that were not yet surfaced.
func (s *Store) Due(ctx context.Context, now time.Time) ([]Reminder, error) {
	return s.query(ctx,
		`SELECT id, task, due_at, created_at, notified FROM reminders
		 WHERE due_at <= ? AND notified = 0 ORDER BY due_at ASC, id ASC`,
		now.UnixMilli(),
	)
}

// MarkNotified records that a reminder was surfaced.
func (s *Store) MarkNotified(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(ctx, `UPDATE reminders SET notified = 1 WHERE id = ?`, id)
	return err
}

// Clear deletes every reminder and returns how many were removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminders`)
	if err != nil {
		return 0, fmt.Errorf("clear reminders: %w", err)
	}
	return res.RowsAffected()
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]Reminder, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reminders: %w", err)
	}
	defer rows.Close()

	var out []Reminder
	for rows.Next() {
		var (
			r                Reminder
			dueMs, createdMs int64
		)
		if err := rows.Scan(&r.ID, &r.Task, &dueMs, &createdMs, &r.Notified); err != nil {
			return nil, err
		}
		r.Due = time.UnixMilli(dueMs)
		r.Created = time.UnixMilli(createdMs)
		out = append(out, r)
	}
	return out, rows.Err()
}
