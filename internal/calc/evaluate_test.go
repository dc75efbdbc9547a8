package calc

import (
	"errors"
	"math"
	"testing"
)

func TestEvaluatePrecedence(t *testing.T) {
	tests := []struct {
		expr string
		want float64
	}{
		{expr: "1+2*3", want: 7},
		{expr: "(1+2)*3", want: 9},
		{expr: "2^10", want: 1024},
		{expr: "2**10", want: 1024},
		{expr: "2**3**2", want: 512},
		{expr: "-2**2", want: -4},
		{expr: "(-2)**2", want: 4},
		{expr: "2**-1", want: 0.5},
		{expr: "10-4-3", want: 3},
		{expr: "100/10/5", want: 2},
		{expr: "2*-3", want: -6},
		{expr: "2--1", want: 3},
		{expr: "+5", want: 5},
		{expr: " 1 + 2 ", want: 3},
		{expr: "1.5e3", want: 1500},
		{expr: "1.2246467991473532e-16*0", want: 0},
		{expr: ".5+1.", want: 1.5},
		{expr: "((((7))))", want: 7},
		{expr: "50/100", want: 0.5},
	}

	for _, tc := range tests {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := Evaluate(tc.expr)
			if err != nil {
				t.Fatalf("Evaluate(%q): unexpected error: %v", tc.expr, err)
			}
			if got != tc.want {
				t.Fatalf("Evaluate(%q) = %v, want %v", tc.expr, got, tc.want)
			}
		})
	}
}

func TestEvaluateIEEESpecialValues(t *testing.T) {
	inf, err := Evaluate("5/0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsInf(inf, 1) {
		t.Fatalf("expected +Inf, got %v", inf)
	}

	negInf, err := Evaluate("-5/0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsInf(negInf, -1) {
		t.Fatalf("expected -Inf, got %v", negInf)
	}

	nan, err := Evaluate("0/0")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsNaN(nan) {
		t.Fatalf("expected NaN, got %v", nan)
	}

	huge, err := Evaluate("1e999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !math.IsInf(huge, 1) {
		t.Fatalf("expected overflowing literal to be +Inf, got %v", huge)
	}
}

func TestEvaluateSyntaxErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"1+",
		"(1+2",
		"1+2)",
		"*3",
		"2(3)",
		"()",
		"1..2",
		".",
		"1e",
		"1e+",
		"sin(30)",
		"Math.sqrt(4)",
		"2×3",
		"NaN",
		"alert(1)",
		"1 2",
	}

	for _, expr := range tests {
		t.Run(expr, func(t *testing.T) {
			v, err := Evaluate(expr)
			if err == nil {
				t.Fatalf("Evaluate(%q) = %v, expected a syntax error", expr, v)
			}
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("Evaluate(%q): expected ErrSyntax, got %v", expr, err)
			}

			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("Evaluate(%q): expected *SyntaxError, got %T", expr, err)
			}
		})
	}
}
