package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is wrapped by every validation failure.
var ErrInvalidConfig = errors.New("config validation failed")

// Validate checks config values for correctness.
// Returns an error if any values are invalid.
func (c *Config) Validate() error {
	var errs []string

	// Agent
	if strings.TrimSpace(c.Agent.Name) == "" {
		errs = append(errs, "agent.name must not be empty")
	}
	if c.Agent.MaxIterations < 1 {
		errs = append(errs, "agent.max_iterations must be >= 1")
	}
	if c.Agent.ContextMessages < 1 {
		errs = append(errs, "agent.context_messages must be >= 1")
	}
	if c.Agent.MaxOutputTokens < 1 {
		errs = append(errs, "agent.max_output_tokens must be >= 1")
	}
	if c.Agent.Temperature < 0 || c.Agent.Temperature > 2 {
		errs = append(errs, "agent.temperature must be between 0 and 2")
	}

	// Provider
	switch c.Provider.Name {
	case ProviderGemini, ProviderGroq:
	default:
		errs = append(errs, fmt.Sprintf("provider.name must be %q or %q", ProviderGemini, ProviderGroq))
	}
	if c.Provider.TimeoutSeconds < 1 {
		errs = append(errs, "provider.timeout_seconds must be >= 1")
	}

	// History
	if c.History.MaxMessages < 1 {
		errs = append(errs, "history.max_messages must be >= 1")
	}
	if c.Agent.ContextMessages > c.History.MaxMessages {
		errs = append(errs, "agent.context_messages must be <= history.max_messages")
	}

	// Skills
	if c.Skills.Reminders.PollSeconds < 1 {
		errs = append(errs, "skills.reminders.poll_seconds must be >= 1")
	}
	if c.Skills.Reminders.DefaultDelay < 1 {
		errs = append(errs, "skills.reminders.default_delay must be >= 1")
	}
	if c.Skills.Text.MaxFileSize < 1 {
		errs = append(errs, "skills.text.max_file_size must be >= 1")
	}
	if c.Skills.Text.MaxChars < 1 {
		errs = append(errs, "skills.text.max_chars must be >= 1")
	}
	if c.Skills.System.CommandTimeoutSeconds < 1 {
		errs = append(errs, "skills.system.command_timeout_seconds must be >= 1")
	}
	if c.Skills.System.MaxOutputSize < 1 {
		errs = append(errs, "skills.system.max_output_size must be >= 1")
	}
	if c.Skills.Email.Port < 1 || c.Skills.Email.Port > 65535 {
		errs = append(errs, "skills.email.port must be between 1 and 65535")
	}

	// UI
	if c.UI.TickIntervalMs < 1 {
		errs = append(errs, "ui.tick_interval_ms must be >= 1")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errs)
	}

	return nil
}
