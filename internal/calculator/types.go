package calculator

import (
	"github.com/teapotsmashers/calcd/internal/calc"
	"github.com/teapotsmashers/calcd/internal/history"
)

// InputRequest is the JSON body for POST /calculator/input.
type InputRequest struct {
	Kind  string `json:"kind"`  // "digit", "operator", "function", "constant", "input"
	Value string `json:"value"` // the keypad literal, e.g. "7", "×", "sin", "π", "("
}

// EvaluateRequest is the JSON body for POST /calculator/evaluate.
type EvaluateRequest struct {
	Expression string          `json:"expression"`
	AngleMode  *calc.AngleMode `json:"angle_mode,omitempty"` // defaults to the session's mode
}

// ResultResponse describes one evaluation.
type ResultResponse struct {
	Expression string    `json:"expression"`
	Canonical  string    `json:"canonical"`
	Kind       calc.Kind `json:"kind"`
	Value      *float64  `json:"value,omitempty"` // only for finite results
	Formatted  string    `json:"formatted"`
	Error      string    `json:"error,omitempty"`
}

// ActionResponse is returned by the state-changing endpoints.
type ActionResponse struct {
	State  State           `json:"state"`
	Result *ResultResponse `json:"result,omitempty"`
	Entry  *history.Entry  `json:"entry,omitempty"`
}

// HistoryResponse is the JSON body for GET /calculator/history.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
	Limit   int             `json:"limit"`
}

func newResultResponse(expression string, r calc.Result) *ResultResponse {
	resp := &ResultResponse{
		Expression: expression,
		Canonical:  r.Canonical,
		Kind:       r.Kind,
		Formatted:  calc.Format(r),
	}
	if r.OK() {
		v := r.Value
		resp.Value = &v
	}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}
