package calc

import (
	"errors"
	"fmt"
	"strconv"
)

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenNumber
	tokenPlus
	tokenMinus
	tokenStar
	tokenSlash
	tokenPower
	tokenLParen
	tokenRParen
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "end of expression"
	case tokenNumber:
		return "number"
	case tokenPlus:
		return "'+'"
	case tokenMinus:
		return "'-'"
	case tokenStar:
		return "'*'"
	case tokenSlash:
		return "'/'"
	case tokenPower:
		return "'**'"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	}
	return "token"
}

type token struct {
	typ tokenType
	pos int
	num float64
}

// tokenize splits a canonical expression into tokens. Anything outside the
// arithmetic alphabet is rejected here, before parsing starts.
func tokenize(input string) ([]token, error) {
	var tokens []token

	for i := 0; i < len(input); {
		c := input[i]

		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
			continue
		case c == '+':
			tokens = append(tokens, token{typ: tokenPlus, pos: i})
		case c == '-':
			tokens = append(tokens, token{typ: tokenMinus, pos: i})
		case c == '*':
			if i+1 < len(input) && input[i+1] == '*' {
				tokens = append(tokens, token{typ: tokenPower, pos: i})
				i += 2
				continue
			}
			tokens = append(tokens, token{typ: tokenStar, pos: i})
		case c == '^':
			tokens = append(tokens, token{typ: tokenPower, pos: i})
		case c == '/':
			tokens = append(tokens, token{typ: tokenSlash, pos: i})
		case c == '(':
			tokens = append(tokens, token{typ: tokenLParen, pos: i})
		case c == ')':
			tokens = append(tokens, token{typ: tokenRParen, pos: i})
		case isDigit(c) || c == '.':
			end, err := scanNumber(input, i)
			if err != nil {
				return nil, err
			}
			v, err := parseNumber(input[i:end])
			if err != nil {
				return nil, syntaxErrorf(i, "invalid number %q", input[i:end])
			}
			tokens = append(tokens, token{typ: tokenNumber, pos: i, num: v})
			i = end
			continue
		default:
			r := []rune(input[i:])[0]
			return nil, syntaxErrorf(i, "unexpected character %q", r)
		}
		i++
	}

	return append(tokens, token{typ: tokenEOF, pos: len(input)}), nil
}

// scanNumber returns the end offset of the literal starting at start:
// digits, an optional fraction and an optional exponent.
func scanNumber(input string, start int) (int, error) {
	i := start
	digits := 0
	for i < len(input) && isDigit(input[i]) {
		i++
		digits++
	}
	if i < len(input) && input[i] == '.' {
		i++
		for i < len(input) && isDigit(input[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return 0, syntaxErrorf(start, "invalid number %q", input[start:i])
	}

	if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
		j := i + 1
		if j < len(input) && (input[j] == '+' || input[j] == '-') {
			j++
		}
		expStart := j
		for j < len(input) && isDigit(input[j]) {
			j++
		}
		if j == expStart {
			return 0, syntaxErrorf(i, "malformed exponent in %q", input[start:j])
		}
		i = j
	}

	return i, nil
}

// parseNumber keeps overflowing literals as ±Inf rather than rejecting them.
func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return v, nil
		}
		return 0, fmt.Errorf("parse %q: %w", s, err)
	}
	return v, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
