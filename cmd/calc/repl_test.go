package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/teapotsmashers/calcd/internal/calc"
	"github.com/teapotsmashers/calcd/internal/calculator"
	"github.com/teapotsmashers/calcd/internal/history"
)

func newTestREPL(t *testing.T) (*repl, *bytes.Buffer, *string) {
	t.Helper()
	color.NoColor = true

	var out bytes.Buffer
	var prefilled string
	r := &repl{
		session: calculator.NewSession(context.Background(), history.NewMemoryStore()),
		out:     &out,
		prefill: func(s string) { prefilled = s },
	}
	return r, &out, &prefilled
}

func TestREPLEvaluatesLines(t *testing.T) {
	r, out, _ := newTestREPL(t)

	if r.handle(context.Background(), "2+3×4") {
		t.Fatal("did not expect an expression to quit")
	}
	if got := out.String(); got != "2+3×4 = 14\n" {
		t.Fatalf("unexpected output %q", got)
	}

	out.Reset()
	r.handle(context.Background(), "1/0")
	if got := out.String(); got != "Infinity\n" {
		t.Fatalf("unexpected output %q", got)
	}

	if n := r.session.HistoryLen(); n != 1 {
		t.Fatalf("expected 1 saved calculation, got %d", n)
	}
}

func TestREPLCommands(t *testing.T) {
	r, out, prefilled := newTestREPL(t)
	ctx := context.Background()

	r.handle(ctx, "6×7")

	r.handle(ctx, ":ans")
	if *prefilled != "42" {
		t.Fatalf("expected :ans to prefill %q, got %q", "42", *prefilled)
	}

	r.handle(ctx, ":mode")
	if r.session.AngleMode() != calc.Radians {
		t.Fatalf("expected :mode to cycle to radians, got %s", r.session.AngleMode())
	}
	r.handle(ctx, ":mode grad")
	if r.session.AngleMode() != calc.Gradians {
		t.Fatalf("expected :mode grad to set gradians, got %s", r.session.AngleMode())
	}

	out.Reset()
	r.handle(ctx, ":history")
	entry := r.session.History()[0]
	if !strings.Contains(out.String(), shortID(entry.ID)) || !strings.Contains(out.String(), "6×7 = 42") {
		t.Fatalf("unexpected history listing %q", out.String())
	}

	*prefilled = ""
	r.handle(ctx, ":recall "+shortID(entry.ID))
	if *prefilled != "6×7" {
		t.Fatalf("expected :recall to prefill %q, got %q", "6×7", *prefilled)
	}

	r.handle(ctx, ":delete "+shortID(entry.ID))
	if r.session.HistoryLen() != 0 {
		t.Fatalf("expected :delete to remove the entry, got %d", r.session.HistoryLen())
	}

	r.handle(ctx, "1+1")
	r.handle(ctx, ":clear-history")
	if r.session.HistoryLen() != 0 {
		t.Fatalf("expected :clear-history to empty the log, got %d", r.session.HistoryLen())
	}

	if !r.handle(ctx, ":quit") {
		t.Fatal("expected :quit to end the session")
	}
}

func TestREPLReportsBadCommands(t *testing.T) {
	r, out, _ := newTestREPL(t)
	ctx := context.Background()

	for _, line := range []string{":recall", ":recall abc", ":delete abc", ":mode turns", ":launch"} {
		out.Reset()
		if r.handle(ctx, line) {
			t.Fatalf("%q: did not expect to quit", line)
		}
		if out.Len() == 0 {
			t.Fatalf("%q: expected an error message", line)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := shortID("0190a5b4-7c2e-7d3f-8a1b-2c3d4e5f6a7b"); got != "2c3d4e5f6a7b" {
		t.Fatalf("unexpected short id %q", got)
	}
	if got := shortID("abc"); got != "abc" {
		t.Fatalf("expected short ids to pass through, got %q", got)
	}
}

func TestEvalCommand(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		args    []string
		want    string
		wantErr bool
	}{
		{args: []string{"eval", "--angle", "deg", "sin(90)"}, want: "1\n"},
		{args: []string{"eval", "--angle", "rad", "sin(90)"}, want: "0.8939966636\n"},
		{args: []string{"eval", "--angle", "deg", "2", "^", "10"}, want: "1024\n"},
		{args: []string{"eval", "--angle", "deg", "2+"}, want: "Error\n", wantErr: true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetArgs(tt.args)

		err := rootCmd.ExecuteContext(context.Background())
		if (err != nil) != tt.wantErr {
			t.Fatalf("%v: unexpected error state %v", tt.args, err)
		}
		if out.String() != tt.want {
			t.Fatalf("%v: expected %q, got %q", tt.args, tt.want, out.String())
		}
	}
}
