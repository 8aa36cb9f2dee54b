// Package reminders schedules reminders in SQLite and surfaces them when due.
package reminders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Cyclone1070/anu/internal/tool"
)

const SkillName = "reminders"

// Options configures the reminder tools.
type Options struct {
	DefaultDelay time.Duration // used when time_minutes is omitted
	Now          func() time.Time
}

type skill struct {
	store *Store
	opts  Options
}

// New builds the reminder skill backed by store.
func New(store *Store, opts Options) *tool.Set {
	if opts.DefaultDelay <= 0 {
		opts.DefaultDelay = time.Hour
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	s := &skill{store: store, opts: opts}

	return tool.NewSet(SkillName,
		tool.Typed(tool.Declaration{
			Name:        "set_reminder",
			Description: "Set a reminder for a task some minutes from now",
			Parameters: tool.Object(map[string]*tool.Schema{
				"task":         tool.String("What to be reminded about"),
				"time_minutes": tool.Integer("Time in minutes from now (default: 60)"),
			}, "task"),
		}, s.set),
		tool.Typed(tool.Declaration{
			Name:        "list_reminders",
			Description: "List all upcoming reminders",
			Parameters:  tool.Object(nil),
		}, s.list),
		tool.Typed(tool.Declaration{
			Name:        "clear_reminders",
			Description: "Delete all reminders",
			Parameters:  tool.Object(nil),
		}, s.clear),
	)
}

type setRequest struct {
	Task        string `json:"task"`
	TimeMinutes *int   `json:"time_minutes"`
}

func (r *setRequest) Validate() error {
	r.Task = strings.TrimSpace(r.Task)
	if r.Task == "" {
		return errors.New("task is required")
	}
	if r.TimeMinutes != nil && *r.TimeMinutes < 0 {
		return errors.New("time_minutes must not be negative")
	}
	return nil
}

func (s *skill) set(ctx context.Context, req setRequest) (tool.Result, error) {
	delay := s.opts.DefaultDelay
	if req.TimeMinutes != nil {
		delay = time.Duration(*req.TimeMinutes) * time.Minute
	}
	now := s.opts.Now()
	r, err := s.store.Add(ctx, req.Task, now.Add(delay), now)
	if err != nil {
		return tool.Result{}, fmt.Errorf("failed to set reminder: %w", err)
	}
	return tool.OK("I'll remind you to '%s' at %s", r.Task, r.Due.Format("03:04 PM")), nil
}

func (s *skill) list(ctx context.Context, _ struct{}) (tool.Result, error) {
	upcoming, err := s.store.Upcoming(ctx, s.opts.Now())
	if err != nil {
		return tool.Result{}, fmt.Errorf("failed to list reminders: %w", err)
	}
	if len(upcoming) == 0 {
		return tool.OK("You have no active reminders."), nil
	}

	lines := make([]string, 0, len(upcoming))
	for _, r := range upcoming {
		lines = append(lines, fmt.Sprintf("• %s - %s", r.Task, r.Due.Format("03:04 PM on January 02")))
	}
	return tool.OK("Your reminders:\n%s", strings.Join(lines, "\n")), nil
}

func (s *skill) clear(ctx context.Context, _ struct{}) (tool.Result, error) {
	n, err := s.store.Clear(ctx)
	if err != nil {
		return tool.Result{}, err
	}
	return tool.OK("All reminders cleared (%d removed)", n), nil
}
