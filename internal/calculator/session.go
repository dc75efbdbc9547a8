package calculator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/teapotsmashers/calcd/internal/calc"
	"github.com/teapotsmashers/calcd/internal/history"
)

// ErrInvalidInput is returned when an input literal is not one the keypad
// offers.
var ErrInvalidInput = errors.New("invalid input")

const initialExpression = "0"

var (
	operators = map[string]bool{"+": true, "-": true, "×": true, "÷": true, "^": true, "%": true, "*": true, "/": true}
	functions = map[string]bool{"sin": true, "cos": true, "tan": true, "sqrt": true, "ln": true, "lg": true, "reciprocal": true}
	constants = map[string]string{"π": "PI", "pi": "PI", "PI": "PI", "e": "E", "E": "E"}
	inputs    = map[string]bool{".": true, "(": true, ")": true}
)

// State is a snapshot of what the calculator shows.
type State struct {
	Expression string         `json:"expression"`
	Previous   string         `json:"previous"`
	Display    string         `json:"display"`
	AngleMode  calc.AngleMode `json:"angle_mode"`
	LastAnswer float64        `json:"last_answer"`
}

// Outcome is what one evaluation produced.
type Outcome struct {
	Result    calc.Result
	Formatted string
	Entry     *history.Entry
	State     State
}

// Session owns the expression being typed, the angle mode, the last answer
// and the history log. Every method takes the session lock, so each action
// (including a full evaluation with its history write) is atomic.
type Session struct {
	mu sync.Mutex

	expression string
	previous   string
	sentinel   string
	mode       calc.AngleMode
	lastAnswer float64

	log    *history.Log
	store  history.Store
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Session.
type Option func(*Session)

func WithAngleMode(m calc.AngleMode) Option {
	return func(s *Session) { s.mode = m }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.logger = l }
}

func WithHistoryLimit(n int) Option {
	return func(s *Session) { s.log = history.NewLog(n, nil) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// NewSession builds a session and loads saved history from store. A load
// failure is logged and the session starts with an empty history.
func NewSession(ctx context.Context, store history.Store, opts ...Option) *Session {
	s := &Session{
		expression: initialExpression,
		store:      store,
		logger:     zap.NewNop(),
		now:        time.Now,
		log:        history.NewLog(history.DefaultLimit, nil),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.store == nil {
		s.store = history.NewMemoryStore()
	}

	entries, err := s.store.Load(ctx)
	if err != nil {
		s.logger.Warn("loading history failed, starting empty", zap.Error(err))
		entries = nil
	}
	s.log = history.NewLog(s.log.Limit(), entries)

	return s
}

// AppendDigit adds one of 0-9.
func (s *Session) AppendDigit(d string) (State, error) {
	if len(d) != 1 || d[0] < '0' || d[0] > '9' {
		return s.State(), fmt.Errorf("%w: digit %q", ErrInvalidInput, d)
	}
	return s.replaceOrAppend(d), nil
}

// AppendOperator adds a binary or postfix operator. A lone "0" only gives way
// to a leading minus sign.
func (s *Session) AppendOperator(op string) (State, error) {
	if !operators[op] {
		return s.State(), fmt.Errorf("%w: operator %q", ErrInvalidInput, op)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sentinel = ""
	switch {
	case s.expression == initialExpression && op == "-":
		s.expression = op
	case s.expression != "":
		s.expression += op
	}
	return s.stateLocked(), nil
}

// AppendFunction opens a call such as "sin(".
func (s *Session) AppendFunction(name string) (State, error) {
	if !functions[name] {
		return s.State(), fmt.Errorf("%w: function %q", ErrInvalidInput, name)
	}
	return s.replaceOrAppend(name + "("), nil
}

// AppendConstant adds π or e in their expression spelling.
func (s *Session) AppendConstant(c string) (State, error) {
	token, ok := constants[c]
	if !ok {
		return s.State(), fmt.Errorf("%w: constant %q", ErrInvalidInput, c)
	}
	return s.replaceOrAppend(token), nil
}

// AppendInput adds a decimal point or a parenthesis.
func (s *Session) AppendInput(in string) (State, error) {
	if !inputs[in] {
		return s.State(), fmt.Errorf("%w: input %q", ErrInvalidInput, in)
	}
	return s.replaceOrAppend(in), nil
}

// Enter replaces the whole expression with a typed line. A blank line
// leaves "0".
func (s *Session) Enter(expression string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sentinel = ""
	s.expression = strings.TrimSpace(expression)
	if s.expression == "" {
		s.expression = initialExpression
	}
	return s.stateLocked()
}

func (s *Session) Clear() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.expression = initialExpression
	s.previous = ""
	s.sentinel = ""
	return s.stateLocked()
}

// Backspace drops the last character; removing the last one leaves "0".
func (s *Session) Backspace() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sentinel = ""
	if utf8.RuneCountInString(s.expression) > 1 {
		_, size := utf8.DecodeLastRuneInString(s.expression)
		s.expression = s.expression[:len(s.expression)-size]
	} else {
		s.expression = initialExpression
	}
	return s.stateLocked()
}

func (s *Session) ToggleAngleMode() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = s.mode.Next()
	return s.stateLocked()
}

func (s *Session) SetAngleMode(m calc.AngleMode) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mode = m
	return s.stateLocked()
}

// RecallAnswer inserts the raw value of the last successful result.
func (s *Session) RecallAnswer() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaceOrAppendLocked(calc.NumberText(s.lastAnswer))
	return s.stateLocked()
}

// Evaluate runs the current expression through the pipeline. On success the
// formatted result becomes the new expression and a history entry is saved;
// on failure the expression is kept and the display shows the sentinel.
func (s *Session) Evaluate(ctx context.Context) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	expression := s.expression
	result := calc.Calculate(expression, s.mode)
	formatted := calc.Format(result)

	if !result.OK() {
		s.sentinel = formatted
		s.logger.Debug("evaluation failed",
			zap.String("expression", expression),
			zap.String("canonical", result.Canonical),
			zap.Stringer("kind", result.Kind),
			zap.Error(result.Err),
		)
		return Outcome{Result: result, Formatted: formatted, State: s.stateLocked()}
	}

	s.previous = expression + " ="
	s.expression = formatted
	s.sentinel = ""
	s.lastAnswer = result.Value

	out := Outcome{Result: result, Formatted: formatted}

	entry, err := history.NewEntry(expression, formatted, s.now())
	if err != nil {
		s.logger.Warn("creating history entry failed", zap.Error(err))
	} else {
		s.log.Add(entry)
		s.persistLocked(ctx)
		out.Entry = &entry
	}

	out.State = s.stateLocked()
	return out
}

// History returns the saved calculations, newest first.
func (s *Session) History() []history.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Len()
}

func (s *Session) HistoryLimit() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Limit()
}

// RecallEntry replaces the expression with the one stored under id.
func (s *Session) RecallEntry(id string) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.log.Get(id)
	if !ok {
		return s.stateLocked(), fmt.Errorf("%w: %s", history.ErrNotFound, id)
	}
	s.expression = e.Expression
	s.sentinel = ""
	return s.stateLocked(), nil
}

func (s *Session) DeleteEntry(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.log.Delete(id) {
		return fmt.Errorf("%w: %s", history.ErrNotFound, id)
	}
	s.persistLocked(ctx)
	return nil
}

func (s *Session) ClearHistory(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.log.Clear()
	s.persistLocked(ctx)
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stateLocked()
}

func (s *Session) AngleMode() calc.AngleMode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// replaceOrAppend applies the keypad rule shared by digits, functions,
// constants and inputs: a lone "0" is replaced, anything else is extended.
func (s *Session) replaceOrAppend(text string) State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.replaceOrAppendLocked(text)
	return s.stateLocked()
}

func (s *Session) replaceOrAppendLocked(text string) {
	s.sentinel = ""
	if s.expression == initialExpression {
		s.expression = text
	} else {
		s.expression += text
	}
}

// persistLocked saves the log. Failures are logged and otherwise ignored.
func (s *Session) persistLocked(ctx context.Context) {
	if err := s.store.Save(ctx, s.log.Entries()); err != nil {
		s.logger.Warn("saving history failed", zap.Error(err), zap.Int("entries", s.log.Len()))
	}
}

func (s *Session) stateLocked() State {
	display := s.expression
	if s.sentinel != "" {
		display = s.sentinel
	}
	return State{
		Expression: s.expression,
		Previous:   s.previous,
		Display:    display,
		AngleMode:  s.mode,
		LastAnswer: s.lastAnswer,
	}
}

// Input dispatches an input by kind ("digit", "operator", "function",
// "constant" or "input").
func (s *Session) Input(kind, value string) (State, error) {
	switch strings.ToLower(kind) {
	case "digit", "number":
		return s.AppendDigit(value)
	case "operator":
		return s.AppendOperator(value)
	case "function":
		return s.AppendFunction(value)
	case "constant":
		return s.AppendConstant(value)
	case "input":
		return s.AppendInput(value)
	}
	return s.State(), fmt.Errorf("%w: kind %q", ErrInvalidInput, kind)
}
