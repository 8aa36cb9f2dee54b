package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Cyclone1070/anu/internal/config"
	"github.com/Cyclone1070/anu/internal/ui"
	uiservices "github.com/Cyclone1070/anu/internal/ui/services"
	"github.com/Cyclone1070/anu/internal/ui/views"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

func createUI(cfg *config.Config, a *app, channels *ui.Channels) *ui.UI {
	spinnerFactory := func() spinner.Model {
		return spinner.New(spinner.WithSpinner(spinner.Dot))
	}
	return ui.New(channels, a.state, uiservices.NewGlamourRenderer(), spinnerFactory, ui.Options{
		AssistantName: cfg.Agent.Name,
		Model:         a.model.Model(),
		Tick:          time.Duration(cfg.UI.TickIntervalMs) * time.Millisecond,
		Theme: views.Theme{
			Primary:   cfg.UI.ColorPrimary,
			Secondary: cfg.UI.ColorSecondary,
			Muted:     cfg.UI.ColorMuted,
			Alert:     cfg.UI.ColorAlert,
		},
	})
}

// runTUI runs the HUD on the calling goroutine and the turn loop, the
// command handler and the reminder watcher in the background.
func runTUI(ctx context.Context, cfg *config.Config, log zerolog.Logger, model chatModel) error {
	channels := ui.NewChannels()
	a := newApp(cfg, log, channels.Events)
	defer a.Close()
	a.attachModel(model)

	userInterface := createUI(cfg, a, channels)

	appCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg conc.WaitGroup

	// Turn loop
	wg.Go(func() {
		select {
		case <-userInterface.Ready():
		case <-appCtx.Done():
			return
		}
		userInterface.WriteMessage(fmt.Sprintf("Hello! I'm %s, your AI assistant. How can I help you today?", cfg.Agent.Name))

		for {
			utterance, err := userInterface.ReadUtterance(appCtx)
			if err != nil {
				return
			}
			reply := a.loop.RunConversation(appCtx, utterance)
			if a.state.Paused() {
				log.Info().Msg("paused; reply withheld")
				continue
			}
			a.state.SetSpeaking(true)
			userInterface.WriteMessage(reply)
			a.state.SetSpeaking(false)
		}
	})

	// Command handler
	wg.Go(func() {
		for {
			select {
			case <-appCtx.Done():
				return
			case cmd := <-userInterface.Commands():
				handleCommand(appCtx, a, userInterface, cmd)
			}
		}
	})

	if w := a.watcher(); w != nil {
		wg.Go(func() {
			if err := w.Run(appCtx); err != nil {
				log.Warn().Err(err).Msg("reminder watcher stopped")
			}
		})
	}

	// Run UI in main thread (blocks until exit)
	runErr := userInterface.Start()

	// UI exited, trigger shutdown. A turn still in flight may emit events
	// nobody reads any more.
	cancel()
	stopDrain := make(chan struct{})
	go func() {
		for {
			select {
			case <-channels.Events:
			case <-stopDrain:
				return
			}
		}
	}()
	wg.Wait()
	close(stopDrain)

	if runErr != nil {
		return fmt.Errorf("run UI: %w", runErr)
	}
	return nil
}

// uiWriter is the subset of the UI the command handler talks to.
type uiWriter interface {
	WriteMessage(content string)
	WriteModelList(models []string)
	SetModel(model string)
}

func handleCommand(ctx context.Context, a *app, out uiWriter, cmd ui.Command) {
	switch cmd.Type {
	case ui.CommandListModels:
		models, err := listModels(ctx, a.model)
		if err != nil {
			out.WriteMessage(fmt.Sprintf("Error listing models: %v", err))
			return
		}
		out.WriteModelList(models)
	case ui.CommandSwitchModel:
		model := cmd.Args["model"]
		if model == "" {
			return
		}
		a.model.SetModel(model)
		out.SetModel(model)
		out.WriteMessage(fmt.Sprintf("Switched to model: %s", model))
		a.log.Info().Str("model", model).Msg("model switched")
	case ui.CommandClearHistory:
		a.history.Clear()
		out.WriteMessage("Conversation history cleared.")
	}
}
