package calculator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/teapotsmashers/calcd/internal/calc"
	"github.com/teapotsmashers/calcd/internal/handlers"
	"github.com/teapotsmashers/calcd/internal/history"
	"github.com/teapotsmashers/calcd/internal/observability"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// Handler serves the calculator API for one session.
type Handler struct {
	session *Session
}

func NewHandler(s *Session) *Handler {
	return &Handler{session: s}
}

// startSpan opens the per-request child span and returns it with a
// trace-correlated logger.
func startSpan(r *http.Request, opName string, attrs ...attribute.KeyValue) (context.Context, trace.Span, *zap.Logger) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)

	attrs = append(attrs,
		attribute.String("calculator.operation", opName),
		attribute.String("request.id", observability.RequestIDFromContext(ctx)),
	)
	ctx, span := tracer.Start(ctx, fmt.Sprintf("calculator.%s", opName), trace.WithAttributes(attrs...))
	return ctx, span, logger
}

// ---------------------------------------------------------------------------
// Session state and input
// ---------------------------------------------------------------------------

// State handles GET /calculator/state
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, ActionResponse{State: h.session.State()})
}

// Input handles POST /calculator/input
func (h *Handler) Input(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "input")
	defer span.End()

	var req InputRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "input", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	span.SetAttributes(
		attribute.String("calculator.input.kind", req.Kind),
		attribute.String("calculator.input.value", req.Value),
	)

	state, err := h.session.Input(req.Kind, req.Value)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "input", err.Error(), err, http.StatusBadRequest, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, ActionResponse{State: state})
}

// Action handles POST /calculator/actions/{action}
func (h *Handler) Action(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	ctx, span, logger := startSpan(r, "action", attribute.String("calculator.action", action))
	defer span.End()

	var state State
	switch action {
	case "clear":
		state = h.session.Clear()
	case "backspace":
		state = h.session.Backspace()
	case "angle-mode":
		state = h.session.ToggleAngleMode()
		logger.Info("angle mode changed", zap.Stringer("angle_mode", state.AngleMode))
	case "ans":
		state = h.session.RecallAnswer()
	case "equals":
		h.equals(ctx, span, logger, w)
		return
	default:
		err := fmt.Errorf("%w: action %q", ErrInvalidInput, action)
		observability.RecordError(ctx, span, logger, errorCounter, "action", err.Error(), err, http.StatusNotFound, w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, ActionResponse{State: state})
}

// equals evaluates the session expression. A failed calculation is still a
// successful request: the response carries the sentinel and the failure kind.
func (h *Handler) equals(ctx context.Context, span trace.Span, logger *zap.Logger, w http.ResponseWriter) {
	start := time.Now()
	out := h.session.Evaluate(ctx)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	expression := out.State.Expression
	if out.Entry != nil {
		expression = out.Entry.Expression
	}
	recordEvaluation(ctx, span, logger, expression, out.Result, elapsed)

	handlers.WriteJSON(w, http.StatusOK, ActionResponse{
		State:  out.State,
		Result: newResultResponse(expression, out.Result),
		Entry:  out.Entry,
	})
}

// Evaluate handles POST /calculator/evaluate: a one-shot evaluation that
// leaves the session and its history untouched.
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "evaluate")
	defer span.End()

	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "evaluate", "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	mode := h.session.AngleMode()
	if req.AngleMode != nil {
		mode = *req.AngleMode
	}

	start := time.Now()
	result := calc.Calculate(req.Expression, mode)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	span.SetAttributes(attribute.String("calculator.angle_mode", mode.String()))
	recordEvaluation(ctx, span, logger, req.Expression, result, elapsed)

	handlers.WriteJSON(w, http.StatusOK, newResultResponse(req.Expression, result))
}

// recordEvaluation emits the metrics, span data and log line for one
// calculation.
func recordEvaluation(ctx context.Context, span trace.Span, logger *zap.Logger, expression string, result calc.Result, elapsedMS float64) {
	attrs := metric.WithAttributes(attribute.String("kind", result.Kind.String()))
	evalCounter.Add(ctx, 1, attrs)
	evalHistogram.Record(ctx, elapsedMS, attrs)

	span.SetAttributes(
		attribute.String("calculator.expression", expression),
		attribute.String("calculator.canonical", result.Canonical),
		attribute.String("calculator.kind", result.Kind.String()),
	)

	if !result.OK() {
		if result.Err != nil {
			span.RecordError(result.Err)
		}
		span.SetStatus(codes.Error, result.Kind.String())
		logger.Info("calculation failed",
			zap.String("expression", expression),
			zap.String("canonical", result.Canonical),
			zap.Stringer("kind", result.Kind),
			zap.Error(result.Err),
			zap.Float64("duration_ms", elapsedMS),
		)
		return
	}

	resultGauge.Record(ctx, result.Value)
	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", result.Value),
		attribute.Float64("duration_ms", elapsedMS),
	))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculation completed",
		zap.String("expression", expression),
		zap.Float64("result", result.Value),
		zap.Float64("duration_ms", elapsedMS),
	)
}

// ---------------------------------------------------------------------------
// History
// ---------------------------------------------------------------------------

// History handles GET /calculator/history
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	handlers.WriteJSON(w, http.StatusOK, HistoryResponse{
		Entries: h.session.History(),
		Limit:   h.session.HistoryLimit(),
	})
}

// DeleteEntry handles DELETE /calculator/history/{id}
func (h *Handler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span, logger := startSpan(r, "history.delete", attribute.String("history.id", id))
	defer span.End()

	if err := h.session.DeleteEntry(ctx, id); err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "history.delete", "history entry not found", err, statusFor(err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// ClearHistory handles DELETE /calculator/history
func (h *Handler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span, logger := startSpan(r, "history.clear")
	defer span.End()

	h.session.ClearHistory(ctx)
	logger.Info("history cleared")

	span.SetStatus(codes.Ok, "")
	w.WriteHeader(http.StatusNoContent)
}

// RecallEntry handles POST /calculator/history/{id}/recall
func (h *Handler) RecallEntry(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	ctx, span, logger := startSpan(r, "history.recall", attribute.String("history.id", id))
	defer span.End()

	state, err := h.session.RecallEntry(id)
	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, "history.recall", "history entry not found", err, statusFor(err), w)
		return
	}

	span.SetStatus(codes.Ok, "")
	handlers.WriteJSON(w, http.StatusOK, ActionResponse{State: state})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, history.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
