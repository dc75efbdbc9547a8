package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/teapotsmashers/calcd/internal/calc"
	"github.com/teapotsmashers/calcd/internal/calculator"
	"github.com/teapotsmashers/calcd/internal/history"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive calculator session",
	RunE:  runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

const replHelp = `Type an expression and press enter to evaluate it.

  :mode [deg|rad|grad]  cycle the angle mode, or set it
  :ans                  insert the last answer
  :history              list saved calculations, newest first
  :recall <id>          edit a saved expression (the short id is enough)
  :delete <id>          remove a saved calculation
  :clear-history        remove all saved calculations
  :help                 show this help
  :quit                 leave`

func runREPL(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	logger, err := newLogger(verbose)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	session, store, err := openSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt(session.AngleMode()),
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
	})
	if err != nil {
		return err
	}
	defer func() { _ = rl.Close() }()

	r := &repl{
		session: session,
		out:     rl.Stdout(),
		prefill: func(text string) { _, _ = rl.WriteStdin([]byte(text)) },
	}

	fmt.Fprintln(r.out, color.CyanString("calc (%s, %d saved). Type :help for commands.",
		session.AngleMode(), session.HistoryLen()))

	for {
		line, err := rl.Readline()
		switch {
		case errors.Is(err, readline.ErrInterrupt):
			if line == "" {
				return nil
			}
			continue
		case errors.Is(err, io.EOF):
			return nil
		case err != nil:
			return err
		}

		if r.handle(ctx, line) {
			return nil
		}
		rl.SetPrompt(prompt(session.AngleMode()))
	}
}

func prompt(mode calc.AngleMode) string {
	return color.New(color.Bold).Sprintf("%s> ", mode)
}

// repl interprets one line at a time against a session.
type repl struct {
	session *calculator.Session
	out     io.Writer
	// prefill places text on the next input line for editing.
	prefill func(string)
}

// handle runs one line and reports whether the user asked to quit.
func (r *repl) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !strings.HasPrefix(line, ":") {
		r.evaluate(ctx, line)
		return false
	}

	name, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "q", "quit", "exit":
		return true
	case "help":
		fmt.Fprintln(r.out, replHelp)
	case "mode":
		r.mode(arg)
	case "ans":
		text := calc.NumberText(r.session.State().LastAnswer)
		r.prefill(text)
	case "history":
		r.history()
	case "recall":
		id, ok := r.resolve(arg)
		if !ok {
			return false
		}
		st, err := r.session.RecallEntry(id)
		if err != nil {
			r.fail(err)
			return false
		}
		r.prefill(st.Expression)
	case "delete":
		id, ok := r.resolve(arg)
		if !ok {
			return false
		}
		if err := r.session.DeleteEntry(ctx, id); err != nil {
			r.fail(err)
			return false
		}
		fmt.Fprintln(r.out, color.YellowString("deleted %s", shortID(id)))
	case "clear-history":
		r.session.ClearHistory(ctx)
		fmt.Fprintln(r.out, color.YellowString("history cleared"))
	default:
		r.fail(fmt.Errorf("unknown command :%s, try :help", name))
	}
	return false
}

func (r *repl) evaluate(ctx context.Context, line string) {
	r.session.Enter(line)
	out := r.session.Evaluate(ctx)

	if !out.Result.OK() {
		fmt.Fprintln(r.out, color.RedString("%s", out.Formatted))
		return
	}
	fmt.Fprintf(r.out, "%s %s\n", color.HiBlackString(out.State.Previous), color.GreenString(out.Formatted))
}

func (r *repl) mode(arg string) {
	var st calculator.State
	if arg == "" {
		st = r.session.ToggleAngleMode()
	} else {
		m, err := calc.ParseAngleMode(arg)
		if err != nil {
			r.fail(err)
			return
		}
		st = r.session.SetAngleMode(m)
	}
	fmt.Fprintln(r.out, color.CyanString("angle mode %s", st.AngleMode))
}

func (r *repl) history() {
	entries := r.session.History()
	if len(entries) == 0 {
		fmt.Fprintln(r.out, color.HiBlackString("no saved calculations"))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(r.out, "%s  %s  %s = %s\n",
			color.CyanString(shortID(e.ID)), color.HiBlackString(e.Timestamp), e.Expression, color.GreenString(e.Result))
	}
}

// resolve maps an id, or the unique tail of one as printed by :history, to a
// history entry id.
func (r *repl) resolve(short string) (string, bool) {
	if short == "" {
		r.fail(errors.New("an entry id is required"))
		return "", false
	}

	var matches []history.Entry
	for _, e := range r.session.History() {
		if e.ID == short {
			return e.ID, true
		}
		if strings.HasSuffix(e.ID, short) {
			matches = append(matches, e)
		}
	}

	switch len(matches) {
	case 0:
		r.fail(fmt.Errorf("%w: %s", history.ErrNotFound, short))
		return "", false
	case 1:
		return matches[0].ID, true
	}
	r.fail(fmt.Errorf("id %q matches %d entries", short, len(matches)))
	return "", false
}

func (r *repl) fail(err error) {
	fmt.Fprintln(r.out, color.RedString("%s", err))
}

// shortID is the tail of a UUIDv7, which varies between entries created in
// the same millisecond.
func shortID(id string) string {
	if len(id) <= 12 {
		return id
	}
	return id[len(id)-12:]
}
