// Package calc turns typed calculator expressions into display strings.
//
// The pipeline has three pure stages: Normalize rewrites calculator notation
// (×, ÷, ^, %, PI, E, sin(, sqrt(, …) into canonical arithmetic, Evaluate
// parses and computes that arithmetic, and Format renders the outcome.
package calc

// Calculate runs the whole pipeline for one expression.
func Calculate(expression string, mode AngleMode) Result {
	canonical := Normalize(expression, mode)

	v, err := Evaluate(canonical)
	if err != nil {
		return Failed(canonical, err)
	}
	return NewResult(canonical, v)
}
