// Package main is the ANU personal assistant. By default it runs the
// terminal HUD; --text switches to a plain line-mode conversation.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/Cyclone1070/anu/internal/config"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCommand().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "anu",
		Usage: "A personal assistant that talks to you and uses tools on your computer",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "text",
				Usage: "Run in text mode (plain line input and output)",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default ~/.config/anu/config.json)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file with API keys",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "provider",
				Usage: fmt.Sprintf("Model provider (%s or %s)", config.ProviderGemini, config.ProviderGroq),
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Model name",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Action: runAssistant,
		Commands: []*cli.Command{
			newHistoryCommand(),
			newSkillsCommand(),
		},
	}
}

// options are the root flags shared by every command.
type options struct {
	Text       bool
	ConfigPath string
	EnvFile    string
	Provider   string
	Model      string
	Debug      bool
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		Text:       cmd.Bool("text"),
		ConfigPath: cmd.String("config"),
		EnvFile:    cmd.String("env-file"),
		Provider:   cmd.String("provider"),
		Model:      cmd.String("model"),
		Debug:      cmd.Bool("debug"),
	}
}

// loadConfig reads the .env file and the config file, then applies flag
// overrides.
func loadConfig(opts options) (*config.Config, error) {
	if opts.EnvFile != "" {
		if err := config.LoadDotenv(opts.EnvFile); err != nil {
			return nil, fmt.Errorf("load %s: %w", opts.EnvFile, err)
		}
	}

	loader := config.NewLoader()
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigPath != "" {
		cfg, err = loader.LoadFile(opts.ConfigPath)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, err
	}

	if err := applyOverrides(cfg, opts); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyOverrides(cfg *config.Config, opts options) error {
	if opts.Provider != "" && opts.Provider != cfg.Provider.Name {
		cfg.Provider.Name = opts.Provider
		// the configured model belongs to the other provider
		cfg.Provider.Model = ""
	}
	if opts.Model != "" {
		cfg.Provider.Model = opts.Model
	}
	if opts.Debug {
		cfg.Logging.Level = "debug"
	}
	return cfg.Validate()
}
