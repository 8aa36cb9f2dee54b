// Package catalog maps skill identifiers to their constructors.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/Cyclone1070/anu/internal/config"
	"github.com/Cyclone1070/anu/internal/history"
	"github.com/Cyclone1070/anu/internal/tool"
	"github.com/Cyclone1070/anu/internal/tool/calculator"
	"github.com/Cyclone1070/anu/internal/tool/clipboard"
	"github.com/Cyclone1070/anu/internal/tool/conversation"
	"github.com/Cyclone1070/anu/internal/tool/email"
	"github.com/Cyclone1070/anu/internal/tool/fun"
	"github.com/Cyclone1070/anu/internal/tool/reminders"
	"github.com/Cyclone1070/anu/internal/tool/service/fs"
	"github.com/Cyclone1070/anu/internal/tool/service/git"
	"github.com/Cyclone1070/anu/internal/tool/system"
	"github.com/Cyclone1070/anu/internal/tool/text"
	"github.com/Cyclone1070/anu/internal/tool/weather"
	"github.com/Cyclone1070/anu/internal/workflow/toolmanager"
	"github.com/rs/zerolog"
)

var (
	ErrUnknownSkill = errors.New("unknown skill")
	ErrUnavailable  = errors.New("skill dependency unavailable")
)

// Deps carries what skill constructors may need.
type Deps struct {
	Config    *config.Config
	Logger    zerolog.Logger
	History   *history.History
	Runner    system.CommandRunner
	Reminders *reminders.Store

	// Getenv defaults to os.Getenv.
	Getenv func(string) string
	// Track receives resources that must be closed on shutdown.
	Track func(io.Closer)
}

// Constructor builds one skill.
type Constructor func(d Deps) (tool.Skill, error)

var builtins = map[string]Constructor{
	calculator.SkillName: func(Deps) (tool.Skill, error) {
		return calculator.New(), nil
	},
	fun.SkillName: func(Deps) (tool.Skill, error) {
		return fun.New(nil), nil
	},
	system.SkillName: func(d Deps) (tool.Skill, error) {
		if d.Runner == nil {
			return nil, fmt.Errorf("%w: command runner", ErrUnavailable)
		}
		cfg := d.Config.Skills.System
		return system.New(d.Runner, system.Options{
			CommandTimeout: time.Duration(cfg.CommandTimeoutSeconds) * time.Second,
		}), nil
	},
	reminders.SkillName: func(d Deps) (tool.Skill, error) {
		if d.Reminders == nil {
			return nil, fmt.Errorf("%w: reminder store", ErrUnavailable)
		}
		cfg := d.Config.Skills.Reminders
		return reminders.New(d.Reminders, reminders.Options{
			DefaultDelay: time.Duration(cfg.DefaultDelay) * time.Minute,
		}), nil
	},
	text.SkillName: func(d Deps) (tool.Skill, error) {
		cfg := d.Config.Skills.Text
		osFS := fs.NewOSFileSystem()
		deny, err := git.LoadIgnoreMatcher(cfg.IgnoreFile, cfg.Deny, osFS)
		if err != nil {
			return nil, err
		}
		return text.New(osFS, text.Options{MaxFileSize: cfg.MaxFileSize, MaxChars: cfg.MaxChars, Deny: deny}), nil
	},
	clipboard.SkillName: func(Deps) (tool.Skill, error) {
		return clipboard.New(nil)
	},
	weather.SkillName: func(d Deps) (tool.Skill, error) {
		cfg := d.Config.Skills.Weather
		return weather.New(weather.Options{
			APIKey:      d.getenv(cfg.APIKeyEnv),
			DefaultCity: cfg.DefaultCity,
			Units:       cfg.Units,
			BaseURL:     cfg.BaseURL,
			LocationURL: cfg.LocationURL,
		}), nil
	},
	email.SkillName: func(d Deps) (tool.Skill, error) {
		cfg := d.Config.Skills.Email
		account := email.IMAPConfig{
			Host:     cfg.Host,
			Port:     cfg.Port,
			Username: cfg.Username,
			Password: d.getenv(cfg.PasswordEnv),
			TLS:      !cfg.Insecure,
		}
		if err := account.Validate(); err != nil {
			return nil, err
		}
		client := email.NewClient(account, d.Logger)
		if d.Track != nil {
			d.Track(client)
		}
		return email.New(client, cfg.Mailbox), nil
	},
	conversation.SkillName: func(d Deps) (tool.Skill, error) {
		if d.History == nil {
			return nil, fmt.Errorf("%w: history", ErrUnavailable)
		}
		return conversation.New(d.History), nil
	},
}

func (d Deps) getenv(key string) string {
	if key == "" {
		return ""
	}
	if d.Getenv != nil {
		return d.Getenv(key)
	}
	return os.Getenv(key)
}

// Identifiers returns every known skill identifier, sorted.
func Identifiers() []string {
	ids := make([]string, 0, len(builtins))
	for id := range builtins {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Entries resolves ids to registry entries in the given order. Unknown
// identifiers produce an entry whose constructor fails, so the registry
// logs and skips them like any other broken skill.
func Entries(ids []string, d Deps) []toolmanager.Entry {
	entries := make([]toolmanager.Entry, 0, len(ids))
	for _, id := range ids {
		ctor, ok := builtins[id]
		if !ok {
			entries = append(entries, toolmanager.Entry{
				ID: id,
				New: func() (tool.Skill, error) {
					return nil, fmt.Errorf("%w %q", ErrUnknownSkill, id)
				},
			})
			continue
		}
		entries = append(entries, toolmanager.Entry{
			ID:  id,
			New: func() (tool.Skill, error) { return ctor(d) },
		})
	}
	return entries
}
