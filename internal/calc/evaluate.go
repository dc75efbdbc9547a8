package calc

import (
	"errors"
	"fmt"
	"math"
)

// ErrSyntax is matched by every error Evaluate returns.
var ErrSyntax = errors.New("syntax error")

// SyntaxError describes why a canonical expression could not be parsed.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Offset, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrSyntax
}

func syntaxErrorf(offset int, format string, args ...any) error {
	return &SyntaxError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

// Evaluate computes a canonical arithmetic expression.
//
// Grammar, loosest binding first:
//
//	expr    = term { ("+" | "-") term }
//	term    = unary { ("*" | "/") unary }
//	unary   = ("-" | "+") unary | power
//	power   = primary [ ("**" | "^") unary ]
//	primary = number | "(" expr ")"
//
// Division by zero and similar cases yield IEEE-754 Inf or NaN values and
// are not errors.
func Evaluate(canonical string) (float64, error) {
	tokens, err := tokenize(canonical)
	if err != nil {
		return math.NaN(), err
	}
	if tokens[0].typ == tokenEOF {
		return math.NaN(), syntaxErrorf(0, "empty expression")
	}

	p := &parser{tokens: tokens}
	v, err := p.expr()
	if err != nil {
		return math.NaN(), err
	}
	if tok := p.peek(); tok.typ != tokenEOF {
		return math.NaN(), syntaxErrorf(tok.pos, "unexpected %s", tok.typ)
	}
	return v, nil
}

type parser struct {
	tokens []token
	pos    int
}

func (p *parser) peek() token {
	return p.tokens[p.pos]
}

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.typ != tokenEOF {
		p.pos++
	}
	return tok
}

func (p *parser) expr() (float64, error) {
	left, err := p.term()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek().typ
		if op != tokenPlus && op != tokenMinus {
			return left, nil
		}
		p.next()
		right, err := p.term()
		if err != nil {
			return 0, err
		}
		if op == tokenPlus {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) term() (float64, error) {
	left, err := p.unary()
	if err != nil {
		return 0, err
	}
	for {
		op := p.peek().typ
		if op != tokenStar && op != tokenSlash {
			return left, nil
		}
		p.next()
		right, err := p.unary()
		if err != nil {
			return 0, err
		}
		if op == tokenStar {
			left *= right
		} else {
			left /= right
		}
	}
}

func (p *parser) unary() (float64, error) {
	switch p.peek().typ {
	case tokenMinus:
		p.next()
		v, err := p.unary()
		return -v, err
	case tokenPlus:
		p.next()
		return p.unary()
	}
	return p.power()
}

// power binds tighter than unary minus on its left, so -2**2 is -4, while
// its exponent is a unary so that 2**-1 and 2**3**2 (right-associative) work.
func (p *parser) power() (float64, error) {
	base, err := p.primary()
	if err != nil {
		return 0, err
	}
	if p.peek().typ != tokenPower {
		return base, nil
	}
	p.next()
	exp, err := p.unary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) primary() (float64, error) {
	tok := p.next()
	switch tok.typ {
	case tokenNumber:
		return tok.num, nil
	case tokenLParen:
		v, err := p.expr()
		if err != nil {
			return 0, err
		}
		if closing := p.next(); closing.typ != tokenRParen {
			return 0, syntaxErrorf(closing.pos, "expected ')' but found %s", closing.typ)
		}
		return v, nil
	}
	return 0, syntaxErrorf(tok.pos, "expected a number or '(' but found %s", tok.typ)
}
