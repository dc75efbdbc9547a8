package calc

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// Function arguments run up to the first ')' after the opening one, so an
// argument that itself contains parentheses is cut short and ends up as a
// syntax error. Nested calls are not supported.
var (
	trigCall       = regexp.MustCompile(`(sin|cos|tan)\(([^)]+)\)`)
	sqrtCall       = regexp.MustCompile(`sqrt\(([^)]+)\)`)
	lnCall         = regexp.MustCompile(`ln\(([^)]+)\)`)
	lgCall         = regexp.MustCompile(`lg\(([^)]+)\)`)
	reciprocalCall = regexp.MustCompile(`reciprocal\(([^)]+)\)`)
)

var (
	piLiteral = strconv.FormatFloat(math.Pi, 'f', -1, 64)
	eLiteral  = strconv.FormatFloat(math.E, 'f', -1, 64)

	constants = strings.NewReplacer("PI", piLiteral, "E", eLiteral)

	displayOperators = strings.NewReplacer(
		"×", "*",
		"÷", "/",
		"^", "**",
		"%", "/100",
	)
)

var trigFuncs = map[string]func(float64) float64{
	"sin": math.Sin,
	"cos": math.Cos,
	"tan": math.Tan,
}

// Normalize rewrites calculator notation into canonical arithmetic that
// Evaluate accepts. It never fails: text it cannot make sense of is left in
// place for Evaluate to reject.
func Normalize(expression string, mode AngleMode) string {
	expr := constants.Replace(expression)

	expr = replaceCalls(trigCall, expr, func(groups []string) (string, bool) {
		angle, ok := evaluateArgument(groups[2])
		if !ok {
			return "", false
		}
		return canonicalLiteral(trigFuncs[groups[1]](mode.ToRadians(angle))), true
	})

	expr = replaceCalls(sqrtCall, expr, func(groups []string) (string, bool) {
		return "((" + groups[1] + ")**0.5)", true
	})
	expr = replaceCalls(lnCall, expr, resolveWith(math.Log))
	expr = replaceCalls(lgCall, expr, resolveWith(math.Log10))
	expr = replaceCalls(reciprocalCall, expr, func(groups []string) (string, bool) {
		return "(1/(" + groups[1] + "))", true
	})

	return displayOperators.Replace(expr)
}

// replaceCalls substitutes every match of re. When rewrite declines a match
// the original text is kept.
func replaceCalls(re *regexp.Regexp, expr string, rewrite func(groups []string) (string, bool)) string {
	return re.ReplaceAllStringFunc(expr, func(match string) string {
		out, ok := rewrite(re.FindStringSubmatch(match))
		if !ok {
			return match
		}
		return out
	})
}

func resolveWith(fn func(float64) float64) func([]string) (string, bool) {
	return func(groups []string) (string, bool) {
		x, ok := evaluateArgument(groups[1])
		if !ok {
			return "", false
		}
		return canonicalLiteral(fn(x)), true
	}
}

// evaluateArgument runs a function argument through the display-operator
// mapping and the evaluator.
func evaluateArgument(arg string) (float64, bool) {
	v, err := Evaluate(displayOperators.Replace(arg))
	if err != nil {
		return 0, false
	}
	return v, true
}

// canonicalLiteral prints v so it can be spliced back into an expression.
// Negative values are parenthesised to keep 2^sin(-90) and sin(-90)^2
// meaning what they say; non-finite values become the divisions that
// produce them.
func canonicalLiteral(v float64) string {
	switch {
	case math.IsNaN(v):
		return "(0/0)"
	case math.IsInf(v, 1):
		return "(1/0)"
	case math.IsInf(v, -1):
		return "(-1/0)"
	}

	s := strconv.FormatFloat(v, 'g', -1, 64)
	if v < 0 {
		return "(" + s + ")"
	}
	return s
}
