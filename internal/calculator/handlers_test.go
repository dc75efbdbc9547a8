package calculator

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/teapotsmashers/calcd/internal/calc"
	"github.com/teapotsmashers/calcd/internal/history"
	"github.com/teapotsmashers/calcd/internal/observability"
	"github.com/teapotsmashers/calcd/internal/testutil"
)

func newTestAPI(t *testing.T) (http.Handler, *Session) {
	t.Helper()

	observability.Logger = zap.NewNop()
	if err := InitMetrics(); err != nil {
		t.Fatalf("initializing calculator metrics: %v", err)
	}

	s := NewSession(context.Background(), history.NewMemoryStore())
	r := chi.NewRouter()
	RegisterRoutes(r, NewHandler(s))
	return r, s
}

func sendInput(t *testing.T, api http.Handler, kind, value string) ActionResponse {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/input", InputRequest{Kind: kind, Value: value})
	w := testutil.ExecuteRequest(req, api)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp ActionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	return resp
}

func postAction(t *testing.T, api http.Handler, action string) ActionResponse {
	t.Helper()
	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/actions/"+action, nil), api)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp ActionResponse
	testutil.DecodeJSONBody(t, w.Body, &resp)
	return resp
}

func TestStateHandler(t *testing.T) {
	api, _ := newTestAPI(t)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/state", nil), api)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var resp map[string]map[string]any
	testutil.DecodeJSONBody(t, w.Body, &resp)

	state := resp["state"]
	if state["expression"] != "0" || state["display"] != "0" {
		t.Fatalf("expected initial expression and display %q, got %v", "0", state)
	}
	if state["angle_mode"] != "deg" {
		t.Fatalf("expected angle_mode %q, got %#v", "deg", state["angle_mode"])
	}
}

func TestInputThenEquals(t *testing.T) {
	api, s := newTestAPI(t)

	sendInput(t, api, "digit", "7")
	sendInput(t, api, "operator", "×")
	if resp := sendInput(t, api, "digit", "6"); resp.State.Expression != "7×6" {
		t.Fatalf("expected expression %q, got %q", "7×6", resp.State.Expression)
	}

	resp := postAction(t, api, "equals")
	if resp.Result == nil || resp.Result.Formatted != "42" {
		t.Fatalf("expected formatted result 42, got %+v", resp.Result)
	}
	if resp.Result.Kind != calc.KindNumber || resp.Result.Value == nil || *resp.Result.Value != 42 {
		t.Fatalf("expected numeric value 42, got %+v", resp.Result)
	}
	if resp.Entry == nil || resp.Entry.Expression != "7×6" {
		t.Fatalf("expected history entry for %q, got %+v", "7×6", resp.Entry)
	}
	if resp.State.Previous != "7×6 =" || resp.State.Expression != "42" {
		t.Fatalf("unexpected state after equals: %+v", resp.State)
	}
	if s.HistoryLen() != 1 {
		t.Fatalf("expected 1 history entry, got %d", s.HistoryLen())
	}
}

func TestEqualsFailureReturnsSentinel(t *testing.T) {
	api, s := newTestAPI(t)

	sendInput(t, api, "digit", "1")
	sendInput(t, api, "operator", "÷")
	sendInput(t, api, "digit", "0")

	resp := postAction(t, api, "equals")
	if resp.State.Display != "Infinity" || resp.State.Expression != "1÷0" {
		t.Fatalf("expected Infinity sentinel over kept expression, got %+v", resp.State)
	}
	if resp.Result == nil || resp.Result.Kind != calc.KindInfinite || resp.Result.Value != nil {
		t.Fatalf("expected infinite result without a value, got %+v", resp.Result)
	}
	if resp.Entry != nil || s.HistoryLen() != 0 {
		t.Fatal("expected failed calculation to stay out of history")
	}
}

func TestActions(t *testing.T) {
	api, _ := newTestAPI(t)

	sendInput(t, api, "digit", "1")
	sendInput(t, api, "digit", "2")

	if resp := postAction(t, api, "backspace"); resp.State.Expression != "1" {
		t.Fatalf("expected backspace to leave %q, got %q", "1", resp.State.Expression)
	}
	if resp := postAction(t, api, "angle-mode"); resp.State.AngleMode != calc.Radians {
		t.Fatalf("expected radians, got %s", resp.State.AngleMode)
	}
	postAction(t, api, "equals")
	if resp := postAction(t, api, "clear"); resp.State.Expression != "0" || resp.State.Previous != "" {
		t.Fatalf("expected cleared state, got %+v", resp.State)
	}
	if resp := postAction(t, api, "ans"); resp.State.Expression != "1" {
		t.Fatalf("expected ans to insert %q, got %q", "1", resp.State.Expression)
	}
}

func TestUnknownActionAndBadInput(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	api, _ := newTestAPI(t)
	observability.Logger = zap.New(core)

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/actions/launch", nil), api)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/input", InputRequest{Kind: "operator", Value: "&"})
	w = testutil.ExecuteRequest(req, api)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

	var body map[string]string
	testutil.DecodeJSONBody(t, w.Body, &body)
	if body["error"] == "" {
		t.Fatal("expected error message in body")
	}

	req = httptest.NewRequest(http.MethodPost, "/calculator/input", nil)
	w = testutil.ExecuteRequest(req, api)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)

	if logs.Len() != 3 {
		t.Fatalf("expected 3 error logs, got %d", logs.Len())
	}
	if got := logs.All()[2].ContextMap()["operation"]; got != "input" {
		t.Fatalf("expected operation field %q, got %#v", "input", got)
	}
}

func TestEvaluateHandler(t *testing.T) {
	api, s := newTestAPI(t)

	rad := calc.Radians
	tests := []struct {
		name      string
		req       EvaluateRequest
		formatted string
		kind      calc.Kind
	}{
		{name: "session mode", req: EvaluateRequest{Expression: "sin(90)"}, formatted: "1", kind: calc.KindNumber},
		{name: "explicit mode", req: EvaluateRequest{Expression: "sin(90)", AngleMode: &rad}, formatted: "0.8939966636", kind: calc.KindNumber},
		{name: "display operators", req: EvaluateRequest{Expression: "2^10÷4"}, formatted: "256", kind: calc.KindNumber},
		{name: "syntax error", req: EvaluateRequest{Expression: "2**"}, formatted: "Error", kind: calc.KindSyntaxError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", tt.req)
			w := testutil.ExecuteRequest(req, api)
			testutil.CheckResponseCode(t, http.StatusOK, w.Code)

			var resp ResultResponse
			testutil.DecodeJSONBody(t, w.Body, &resp)
			if resp.Formatted != tt.formatted || resp.Kind != tt.kind {
				t.Fatalf("expected %q (%s), got %q (%s)", tt.formatted, tt.kind, resp.Formatted, resp.Kind)
			}
			if tt.kind == calc.KindSyntaxError && resp.Error == "" {
				t.Fatal("expected syntax error detail")
			}
		})
	}

	if s.HistoryLen() != 0 {
		t.Fatalf("expected evaluate to leave history untouched, got %d", s.HistoryLen())
	}
	if st := s.State(); st.Expression != "0" {
		t.Fatalf("expected evaluate to leave the expression untouched, got %q", st.Expression)
	}
}

func TestEvaluateHandlerRejectsUnknownAngleMode(t *testing.T) {
	api, _ := newTestAPI(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/calculator/evaluate", map[string]string{
		"expression": "1",
		"angle_mode": "turns",
	})
	w := testutil.ExecuteRequest(req, api)
	testutil.CheckResponseCode(t, http.StatusBadRequest, w.Code)
}

func TestHistoryEndpoints(t *testing.T) {
	api, s := newTestAPI(t)

	sendInput(t, api, "digit", "8")
	first := postAction(t, api, "equals").Entry
	postAction(t, api, "clear")
	sendInput(t, api, "digit", "9")
	postAction(t, api, "equals")

	w := testutil.ExecuteRequest(httptest.NewRequest(http.MethodGet, "/calculator/history", nil), api)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)

	var list HistoryResponse
	testutil.DecodeJSONBody(t, w.Body, &list)
	if list.Limit != history.DefaultLimit || len(list.Entries) != 2 {
		t.Fatalf("expected 2 entries with limit %d, got %+v", history.DefaultLimit, list)
	}
	if list.Entries[1].ID != first.ID {
		t.Fatalf("expected oldest entry last, got %+v", list.Entries)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/history/"+first.ID+"/recall", nil), api)
	testutil.CheckResponseCode(t, http.StatusOK, w.Code)
	var recalled ActionResponse
	testutil.DecodeJSONBody(t, w.Body, &recalled)
	if recalled.State.Expression != "8" {
		t.Fatalf("expected recalled expression %q, got %q", "8", recalled.State.Expression)
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodPost, "/calculator/history/nope/recall", nil), api)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/history/"+first.ID, nil), api)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)
	if s.HistoryLen() != 1 {
		t.Fatalf("expected 1 entry after delete, got %d", s.HistoryLen())
	}

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/history/"+first.ID, nil), api)
	testutil.CheckResponseCode(t, http.StatusNotFound, w.Code)

	w = testutil.ExecuteRequest(httptest.NewRequest(http.MethodDelete, "/calculator/history", nil), api)
	testutil.CheckResponseCode(t, http.StatusNoContent, w.Code)
	if s.HistoryLen() != 0 {
		t.Fatalf("expected empty history, got %d", s.HistoryLen())
	}
}
