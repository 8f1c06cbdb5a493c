// Package formula evaluates the restricted arithmetic expressions users type
// into monthly entries. The grammar is numeric literals, parentheses and the
// binary operators + - * / % ^. Identifiers, functions, comparisons and every
// other operator are rejected at parse time, so a formula can never resolve
// against an ambient scope.
package formula

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNotFinite is returned when a formula parses but its numeric result is
// not a finite number (e.g. "1/0").
var ErrNotFinite = errors.New("result is not a finite number")

// Evaluate parses and evaluates input. Empty or whitespace-only input is
// valid and evaluates to 0. Evaluate is total: it never panics, and every
// fault comes back as an error.
func Evaluate(input string) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, nil
	}
	p := &parser{input: s}
	v, err := p.parseSum()
	if err != nil {
		return 0, err
	}
	p.skipSpaces()
	if p.pos < len(p.input) {
		return 0, fmt.Errorf("unexpected %q at position %d", rune(p.input[p.pos]), p.pos)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrNotFinite
	}
	return v, nil
}

// parser is a recursive-descent parser over a byte offset. Precedence, low
// to high: sum (+ -), product (* / %), unary sign, power (^, right
// associative), atom. Unary minus binds looser than power, so -2^2 == -4.
type parser struct {
	input string
	pos   int
}

func (p *parser) skipSpaces() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t' || p.input[p.pos] == '\n' || p.input[p.pos] == '\r') {
		p.pos++
	}
}

func (p *parser) peek() (byte, bool) {
	p.skipSpaces()
	if p.pos >= len(p.input) {
		return 0, false
	}
	return p.input[p.pos], true
}

func (p *parser) parseSum() (float64, error) {
	left, err := p.parseProduct()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '+' && op != '-') {
			return left, nil
		}
		p.pos++
		right, err := p.parseProduct()
		if err != nil {
			return 0, err
		}
		if op == '+' {
			left += right
		} else {
			left -= right
		}
	}
}

func (p *parser) parseProduct() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peek()
		if !ok || (op != '*' && op != '/' && op != '%') {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case '*':
			left *= right
		case '/':
			left /= right
		case '%':
			left = math.Mod(left, right)
		}
	}
}

func (p *parser) parseUnary() (float64, error) {
	op, ok := p.peek()
	if !ok {
		return 0, errors.New("unexpected end of formula")
	}
	if op == '-' || op == '+' {
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == '-' {
			return -v, nil
		}
		return v, nil
	}
	return p.parsePower()
}

func (p *parser) parsePower() (float64, error) {
	base, err := p.parseAtom()
	if err != nil {
		return 0, err
	}
	op, ok := p.peek()
	if !ok || op != '^' {
		return base, nil
	}
	p.pos++
	// The exponent may carry its own sign, e.g. 2^-3.
	exp, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	return math.Pow(base, exp), nil
}

func (p *parser) parseAtom() (float64, error) {
	c, ok := p.peek()
	if !ok {
		return 0, errors.New("unexpected end of formula")
	}
	if c == '(' {
		p.pos++
		v, err := p.parseSum()
		if err != nil {
			return 0, err
		}
		next, ok := p.peek()
		if !ok || next != ')' {
			return 0, errors.New("missing closing parenthesis")
		}
		p.pos++
		return v, nil
	}
	if isDigit(c) || c == '.' {
		return p.parseNumber()
	}
	if isLetter(c) || c == '_' {
		start := p.pos
		for p.pos < len(p.input) && (isLetter(p.input[p.pos]) || isDigit(p.input[p.pos]) || p.input[p.pos] == '_') {
			p.pos++
		}
		return 0, fmt.Errorf("unknown identifier %q", p.input[start:p.pos])
	}
	return 0, fmt.Errorf("unexpected %q at position %d", rune(c), p.pos)
}

func (p *parser) parseNumber() (float64, error) {
	start := p.pos
	seenDot := false
	for p.pos < len(p.input) {
		c := p.input[p.pos]
		if isDigit(c) {
			p.pos++
			continue
		}
		if c == '.' && !seenDot {
			seenDot = true
			p.pos++
			continue
		}
		break
	}
	lit := p.input[start:p.pos]
	if lit == "." {
		return 0, fmt.Errorf("invalid number %q", lit)
	}
	v, err := strconv.ParseFloat(lit, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", lit)
	}
	return v, nil
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
