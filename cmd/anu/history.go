package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/Cyclone1070/anu/internal/history"
	"github.com/Cyclone1070/anu/internal/tool"
	"github.com/Cyclone1070/anu/internal/tool/catalog"
	"github.com/Cyclone1070/anu/internal/workflow"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"
)

func newHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Inspect or clear the saved conversation",
		Commands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print every saved message",
				Action: runHistoryShow,
			},
			{
				Name:   "summary",
				Usage:  "Print message counts and the time span",
				Action: runHistorySummary,
			},
			{
				Name:   "clear",
				Usage:  "Delete every saved message",
				Action: runHistoryClear,
			},
		},
		DefaultCommand: "summary",
	}
}

func openHistory(cmd *cli.Command) (*history.History, error) {
	cfg, err := loadConfig(optionsFrom(cmd))
	if err != nil {
		return nil, err
	}
	return history.New(cfg.History.Path, cfg.History.MaxMessages, zerolog.Nop()), nil
}

func runHistoryShow(_ context.Context, cmd *cli.Command) error {
	h, err := openHistory(cmd)
	if err != nil {
		return err
	}
	return printHistory(cmd.Root().Writer, h.All())
}

func printHistory(w io.Writer, messages []history.Message) error {
	if len(messages) == 0 {
		_, err := fmt.Fprintln(w, "No conversation history")
		return err
	}
	for _, m := range messages {
		if _, err := fmt.Fprintf(w, "[%s] %s: %s\n", m.Timestamp.Format("2006-01-02 15:04"), m.Role, m.Content); err != nil {
			return err
		}
	}
	return nil
}

func runHistorySummary(_ context.Context, cmd *cli.Command) error {
	h, err := openHistory(cmd)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.Root().Writer, h.Summary())
	return err
}

func runHistoryClear(_ context.Context, cmd *cli.Command) error {
	h, err := openHistory(cmd)
	if err != nil {
		return err
	}
	n := h.Len()
	h.Clear()
	_, err = fmt.Fprintf(cmd.Root().Writer, "Cleared %d messages.\n", n)
	return err
}

func newSkillsCommand() *cli.Command {
	return &cli.Command{
		Name:   "skills",
		Usage:  "List known skills and the tools each one exposes",
		Action: runSkills,
	}
}

func runSkills(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(optionsFrom(cmd))
	if err != nil {
		return err
	}

	a := newApp(cfg, zerolog.Nop(), make(chan workflow.Event, 1))
	defer a.Close()

	return printSkills(cmd.Root().Writer, cfg.Skills.Enabled, a.tools.Skills(), a.tools.Declarations())
}

// printSkills lists every known skill with its load status, then the tools
// the loaded skills expose.
func printSkills(w io.Writer, enabled, loaded []string, decls []tool.Declaration) error {
	status := make(map[string]string, len(enabled))
	for _, id := range enabled {
		status[id] = "failed"
	}
	for _, id := range loaded {
		status[id] = "loaded"
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SKILL\tSTATUS")
	for _, id := range catalog.Identifiers() {
		s, ok := status[id]
		if !ok {
			s = "disabled"
		}
		fmt.Fprintf(tw, "%s\t%s\n", id, s)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(decls) == 0 {
		return nil
	}
	fmt.Fprintln(w)
	tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TOOL\tDESCRIPTION")
	for _, d := range decls {
		fmt.Fprintf(tw, "%s\t%s\n", d.Name, d.Description)
	}
	return tw.Flush()
}
