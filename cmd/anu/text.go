package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/Cyclone1070/anu/internal/config"
	"github.com/Cyclone1070/anu/internal/session"
	"github.com/Cyclone1070/anu/internal/workflow"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"
)

// wakeFilter decides whether an utterance is addressed to the assistant:
// it must mention the assistant's name or contain a direct-command word.
type wakeFilter struct {
	name  string
	words map[string]struct{}
}

func newWakeFilter(name string, words []string) wakeFilter {
	f := wakeFilter{
		name:  strings.ToLower(strings.TrimSpace(name)),
		words: make(map[string]struct{}, len(words)),
	}
	for _, w := range words {
		f.words[strings.ToLower(w)] = struct{}{}
	}
	return f
}

// Accept returns the utterance without the assistant's name and whether it
// should be handled at all.
func (f wakeFilter) Accept(utterance string) (string, bool) {
	var kept []string
	addressed := false
	for _, field := range strings.Fields(utterance) {
		word := strings.ToLower(strings.Trim(field, ",.!?;:'\""))
		if f.name != "" && word == f.name {
			addressed = true
			continue
		}
		if _, ok := f.words[word]; ok {
			addressed = true
		}
		kept = append(kept, field)
	}
	if !addressed {
		return "", false
	}
	clean := strings.TrimSpace(strings.Join(kept, " "))
	return clean, clean != ""
}

// syncWriter serialises writes from the REPL and the notice printer.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Printf(format string, a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, a...)
}

// conversation runs one turn and always returns a reply.
type conversation interface {
	RunConversation(ctx context.Context, utterance string) string
}

// repl is the line-mode front end used with --text.
type repl struct {
	conv   conversation
	state  *session.State
	filter wakeFilter
	name   string
	in     io.Reader
	out    *syncWriter
}

// Run reads lines until EOF, "quit" or cancellation.
func (r *repl) Run(ctx context.Context) error {
	r.out.Printf("%s: Hello! I'm %s, your AI assistant. How can I help you today? (Text Mode)\n", r.name, r.name)

	lines := make(chan string)
	errs := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(r.in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		errs <- scanner.Err()
	}()

	for {
		r.out.Printf("YOU: ")
		var line string
		select {
		case <-ctx.Done():
			r.out.Printf("\n")
			return nil
		case err := <-errs:
			r.out.Printf("\n")
			return err
		case line = <-lines:
		}

		query := strings.ToLower(strings.TrimSpace(line))
		if query == "" {
			continue
		}

		switch query {
		case "/pause":
			r.state.Pause()
			r.out.Printf("Paused. Type /resume to continue.\n")
			continue
		case "/resume":
			r.state.Resume()
			r.out.Printf("Resumed.\n")
			continue
		}
		if r.state.Paused() {
			r.out.Printf("Paused. Type /resume to continue.\n")
			continue
		}

		if containsWord(query, "quit") {
			r.out.Printf("Shutting down %s...\n%s: Goodbye! Have a wonderful day!\n", r.name, r.name)
			return nil
		}

		clean, ok := r.filter.Accept(query)
		if !ok {
			r.out.Printf("Ignored: %s\n", query)
			continue
		}

		reply := r.conv.RunConversation(ctx, clean)
		if r.state.Paused() {
			continue
		}
		r.state.SetSpeaking(true)
		r.out.Printf("%s: %s\n", r.name, reply)
		r.state.SetSpeaking(false)
	}
}

func containsWord(s, word string) bool {
	for _, f := range strings.Fields(s) {
		if strings.Trim(f, ",.!?;:'\"") == word {
			return true
		}
	}
	return false
}

// printNotices writes reminder notices and drains every other event.
func printNotices(ctx context.Context, events <-chan workflow.Event, out *syncWriter, log zerolog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			switch e := ev.(type) {
			case workflow.NoticeEvent:
				out.Printf("\n%s\n", e.Text)
			case workflow.ToolStartEvent:
				log.Debug().Str("tool", e.ToolName).Str("args", e.Args).Msg("tool start")
			}
		}
	}
}

// runText runs the line-mode conversation on in and out.
func runText(ctx context.Context, cfg *config.Config, log zerolog.Logger, model chatModel, in io.Reader, w io.Writer) error {
	events := make(chan workflow.Event, 32)
	a := newApp(cfg, log, events)
	defer a.Close()
	a.attachModel(model)

	appCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := &syncWriter{w: w}

	var wg conc.WaitGroup
	wg.Go(func() { printNotices(appCtx, events, out, log) })
	if watcher := a.watcher(); watcher != nil {
		wg.Go(func() {
			if err := watcher.Run(appCtx); err != nil {
				log.Warn().Err(err).Msg("reminder watcher stopped")
			}
		})
	}

	r := &repl{
		conv:   a.loop,
		state:  a.state,
		filter: newWakeFilter(cfg.Agent.Name, cfg.Agent.WakeWords),
		name:   cfg.Agent.Name,
		in:     in,
		out:    out,
	}
	err := r.Run(appCtx)

	cancel()
	wg.Wait()
	return err
}
