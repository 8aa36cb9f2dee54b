package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/Cyclone1070/anu/internal/config"
	"github.com/Cyclone1070/anu/internal/history"
	"github.com/Cyclone1070/anu/internal/logging"
	"github.com/Cyclone1070/anu/internal/provider"
	"github.com/Cyclone1070/anu/internal/provider/gemini"
	"github.com/Cyclone1070/anu/internal/provider/groq"
	"github.com/Cyclone1070/anu/internal/session"
	"github.com/Cyclone1070/anu/internal/tool/catalog"
	"github.com/Cyclone1070/anu/internal/tool/reminders"
	"github.com/Cyclone1070/anu/internal/tool/service/executor"
	"github.com/Cyclone1070/anu/internal/workflow"
	"github.com/Cyclone1070/anu/internal/workflow/loop"
	"github.com/Cyclone1070/anu/internal/workflow/toolmanager"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

var errMissingAPIKey = errors.New("API key not found")

// chatModel is what the app needs from a provider adapter.
type chatModel interface {
	Generate(ctx context.Context, req *provider.Request) (*provider.Message, error)
	Model() string
	SetModel(model string)
}

// modelLister is implemented by providers that can enumerate their models.
type modelLister interface {
	ListModels(ctx context.Context) ([]gemini.ModelInfo, error)
}

// requireAPIKey returns the selected provider's key from the environment.
func requireAPIKey(cfg *config.Config, getenv func(string) string) (string, error) {
	env := cfg.Provider.APIKeyEnv()
	key := getenv(env)
	if key == "" {
		return "", fmt.Errorf("%w: set %s in the environment or in a .env file", errMissingAPIKey, env)
	}
	return key, nil
}

func newChatModel(ctx context.Context, cfg *config.Config, apiKey string) (chatModel, error) {
	switch cfg.Provider.Name {
	case config.ProviderGroq:
		client, err := groq.New(ctx, groq.Options{
			APIKey:  apiKey,
			BaseURL: cfg.Provider.BaseURL,
			Model:   cfg.Provider.Model,
			Timeout: time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Groq client: %w", err)
		}
		return client, nil
	default:
		client, err := gemini.NewClientFromAPIKey(ctx, apiKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini client: %w", err)
		}
		return gemini.New(client, cfg.Provider.Model), nil
	}
}

func listModels(ctx context.Context, m chatModel) ([]string, error) {
	lister, ok := m.(modelLister)
	if !ok {
		return nil, errors.New("this provider cannot list models")
	}
	infos, err := lister.ListModels(ctx)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names, nil
}

func loopConfig(cfg *config.Config) loop.Config {
	return loop.Config{
		SystemInstruction: cfg.Agent.SystemInstruction,
		MaxIterations:     cfg.Agent.MaxIterations,
		ContextMessages:   cfg.Agent.ContextMessages,
		MaxOutputTokens:   int32(cfg.Agent.MaxOutputTokens),
		Temperature:       cfg.Agent.Temperature,
	}
}

// app holds the wired components of one assistant process.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	state   *session.State
	history *history.History
	store   *reminders.Store
	tools   *toolmanager.ToolManager
	model   chatModel
	loop    *loop.Loop
	events  chan workflow.Event
	closers []io.Closer
}

// newApp builds the history, reminder store and skill registry. The model
// and turn loop are attached by attachModel.
func newApp(cfg *config.Config, log zerolog.Logger, events chan workflow.Event) *app {
	a := &app{
		cfg:    cfg,
		log:    log,
		state:  &session.State{},
		events: events,
	}

	a.history = history.New(cfg.History.Path, cfg.History.MaxMessages, log)

	store, err := reminders.Open(cfg.Skills.Reminders.DBPath)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.Skills.Reminders.DBPath).Msg("reminder store unavailable")
	} else {
		a.store = store
		a.track(store)
	}

	runner := executor.NewOSCommandExecutor(executor.Options{
		MaxOutputSize: cfg.Skills.System.MaxOutputSize,
	})

	a.tools = toolmanager.NewToolManager(log)
	loaded := a.tools.Load(catalog.Entries(cfg.Skills.Enabled, catalog.Deps{
		Config:    cfg,
		Logger:    log,
		History:   a.history,
		Runner:    runner,
		Reminders: a.store,
		Track:     a.track,
	}))
	log.Info().Strs("skills", loaded).Int("tools", len(a.tools.Declarations())).Msg("skills loaded")

	return a
}

func (a *app) attachModel(m chatModel) {
	a.model = m
	a.loop = loop.NewLoop(m, a.tools, a.history, a.events, loopConfig(a.cfg), a.log)
}

func (a *app) track(c io.Closer) {
	a.closers = append(a.closers, c)
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// watcher returns the reminder watcher, or nil without a store.
func (a *app) watcher() *reminders.Watcher {
	if a.store == nil {
		return nil
	}
	interval := time.Duration(a.cfg.Skills.Reminders.PollSeconds) * time.Second
	return reminders.NewWatcher(a.store, a.state, a.events, interval, a.log)
}

// runAssistant is the root command action.
func runAssistant(ctx context.Context, cmd *cli.Command) error {
	opts := optionsFrom(cmd)

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	apiKey, err := requireAPIKey(cfg, os.Getenv)
	if err != nil {
		return err
	}

	log, closeLog, err := logging.New(logging.Options{
		Level:   cfg.Logging.Level,
		File:    cfg.Logging.File,
		Console: opts.Debug && opts.Text,
	})
	if err != nil {
		return err
	}
	defer closeLog()

	model, err := newChatModel(ctx, cfg, apiKey)
	if err != nil {
		return err
	}
	log.Info().Str("provider", cfg.Provider.Name).Str("model", model.Model()).Msg("starting")

	if opts.Text {
		return runText(ctx, cfg, log, model, cmd.Root().Reader, cmd.Root().Writer)
	}
	return runTUI(ctx, cfg, log, model)
}
