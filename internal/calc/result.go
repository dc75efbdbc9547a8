package calc

import (
	"fmt"
	"math"
)

// Kind classifies the outcome of one calculation.
type Kind int

const (
	KindNumber Kind = iota
	KindNotANumber
	KindInfinite
	KindSyntaxError
)

var kindLabels = [...]string{
	KindNumber:      "number",
	KindNotANumber:  "not_a_number",
	KindInfinite:    "infinite",
	KindSyntaxError: "syntax_error",
}

func (k Kind) String() string {
	if k < KindNumber || k > KindSyntaxError {
		return "unknown"
	}
	return kindLabels[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	for i, label := range kindLabels {
		if label == string(text) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown result kind %q", text)
}

// Result is the immutable outcome of evaluating one expression.
type Result struct {
	Kind      Kind
	Value     float64
	Canonical string
	Err       error
}

// NewResult classifies v following IEEE-754: NaN and ±Inf are failures.
func NewResult(canonical string, v float64) Result {
	r := Result{Kind: KindNumber, Value: v, Canonical: canonical}
	switch {
	case math.IsNaN(v):
		r.Kind = KindNotANumber
	case math.IsInf(v, 0):
		r.Kind = KindInfinite
	}
	return r
}

// Failed builds a SyntaxError result.
func Failed(canonical string, err error) Result {
	return Result{Kind: KindSyntaxError, Value: math.NaN(), Canonical: canonical, Err: err}
}

// OK reports whether the result is a finite number.
func (r Result) OK() bool {
	return r.Kind == KindNumber
}
