package calculator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

const (
	maxExpressionLen = 1024
	maxNestingDepth  = 64
)

var (
	ErrEmptyExpression   = errors.New("empty expression")
	ErrDivisionByZero    = errors.New("division by zero")
	ErrExpressionTooLong = errors.New("expression too long")
	ErrNestingTooDeep    = errors.New("expression nested too deeply")
)

// spoken maps phrases to operators. Order matters: longer phrases first.
var spoken = strings.NewReplacer(
	" multiplied by ", "*",
	" to the power of ", "^",
	" divided by ", "/",
	" plus ", "+",
	" minus ", "-",
	" times ", "*",
	" over ", "/",
	" squared", "^2",
	" cubed", "^3",
	"**", "^",
	"×", "*",
	"÷", "/",
)

var constants = map[string]float64{
	"pi": math.Pi,
	"e":  math.E,
}

var functions = map[string]struct {
	arity int
	fn    func(args []float64) (float64, error)
}{
	"sqrt": {1, func(a []float64) (float64, error) {
		if a[0] < 0 {
			return 0, fmt.Errorf("sqrt of negative number")
		}
		return math.Sqrt(a[0]), nil
	}},
	"sin": {1, func(a []float64) (float64, error) { return math.Sin(a[0]), nil }},
	"cos": {1, func(a []float64) (float64, error) { return math.Cos(a[0]), nil }},
	"tan": {1, func(a []float64) (float64, error) { return math.Tan(a[0]), nil }},
	"log": {1, func(a []float64) (float64, error) {
		if a[0] <= 0 {
			return 0, fmt.Errorf("log of non-positive number")
		}
		return math.Log(a[0]), nil
	}},
	"log10": {1, func(a []float64) (float64, error) {
		if a[0] <= 0 {
			return 0, fmt.Errorf("log10 of non-positive number")
		}
		return math.Log10(a[0]), nil
	}},
	"exp":   {1, func(a []float64) (float64, error) { return math.Exp(a[0]), nil }},
	"abs":   {1, func(a []float64) (float64, error) { return math.Abs(a[0]), nil }},
	"round": {1, func(a []float64) (float64, error) { return math.Round(a[0]), nil }},
	"pow":   {2, func(a []float64) (float64, error) { return math.Pow(a[0], a[1]), nil }},
}

// Normalize rewrites spoken arithmetic into operator form.
func Normalize(expr string) string {
	expr = " " + strings.ToLower(strings.TrimSpace(expr)) + " "
	return strings.TrimSpace(spoken.Replace(expr))
}

// Evaluate parses and evaluates an arithmetic expression.
// Supported: + - * / % ^, parentheses, unary signs, decimal numbers,
// the constants pi and e, and the functions in the functions table.
func Evaluate(expr string) (float64, error) {
	if len(expr) > maxExpressionLen {
		return 0, ErrExpressionTooLong
	}
	tokens, err := tokenize(expr)
	if err != nil {
		return 0, err
	}
	if len(tokens) == 0 {
		return 0, ErrEmptyExpression
	}
	p := &parser{tokens: tokens}
	result, err := p.parseExpr()
	if err != nil {
		return 0, err
	}
	if p.pos < len(p.tokens) {
		return 0, fmt.Errorf("unexpected %q at position %d", p.tokens[p.pos].text, p.pos)
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		return 0, fmt.Errorf("result is not a finite number")
	}
	return result, nil
}

type tokenType int

const (
	tokenNumber tokenType = iota
	tokenIdent
	tokenOp
	tokenLParen
	tokenRParen
	tokenComma
)

type token struct {
	typ  tokenType
	val  float64
	text string
}

func tokenize(expr string) ([]token, error) {
	var tokens []token
	runes := []rune(expr)
	i := 0
	for i < len(runes) {
		ch := runes[i]
		switch {
		case unicode.IsSpace(ch):
			i++
		case strings.ContainsRune("+-*/%^", ch):
			tokens = append(tokens, token{typ: tokenOp, text: string(ch)})
			i++
		case ch == '(':
			tokens = append(tokens, token{typ: tokenLParen, text: "("})
			i++
		case ch == ')':
			tokens = append(tokens, token{typ: tokenRParen, text: ")"})
			i++
		case ch == ',':
			tokens = append(tokens, token{typ: tokenComma, text: ","})
			i++
		case unicode.IsDigit(ch) || ch == '.':
			j := i
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '.') {
				j++
			}
			text := string(runes[i:j])
			val, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid number: %s", text)
			}
			tokens = append(tokens, token{typ: tokenNumber, val: val, text: text})
			i = j
		case unicode.IsLetter(ch):
			j := i
			for j < len(runes) && (unicode.IsLetter(runes[j]) || unicode.IsDigit(runes[j])) {
				j++
			}
			tokens = append(tokens, token{typ: tokenIdent, text: string(runes[i:j])})
			i = j
		default:
			return nil, fmt.Errorf("unexpected character: %c", ch)
		}
	}
	return tokens, nil
}

type parser struct {
	tokens []token
	pos    int
	depth  int
}

func (p *parser) peekOp(ops string) (string, bool) {
	if p.pos >= len(p.tokens) {
		return "", false
	}
	t := p.tokens[p.pos]
	if t.typ != tokenOp || !strings.Contains(ops, t.text) {
		return "", false
	}
	return t.text, true
}

// expr := term (('+' | '-') term)*
func (p *parser) parseExpr() (float64, error) {
	left, err := p.parseTerm()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOp("+-")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseTerm()
		if err != nil {
			return 0, err
		}
		if op == "+" {
			left += right
		} else {
			left -= right
		}
	}
}

// term := unary (('*' | '/' | '%') unary)*
func (p *parser) parseTerm() (float64, error) {
	left, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		op, ok := p.peekOp("*/%")
		if !ok {
			return left, nil
		}
		p.pos++
		right, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		switch op {
		case "*":
			left *= right
		case "/":
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			left /= right
		case "%":
			if right == 0 {
				return 0, ErrDivisionByZero
			}
			left = math.Mod(left, right)
		}
	}
}

// unary := ('-' | '+') unary | power
// Every recursive production passes through here, so depth is counted once.
func (p *parser) parseUnary() (float64, error) {
	p.depth++
	defer func() { p.depth-- }()
	if p.depth > maxNestingDepth {
		return 0, ErrNestingTooDeep
	}

	if op, ok := p.peekOp("+-"); ok {
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		if op == "-" {
			return -v, nil
		}
		return v, nil
	}
	return p.parsePower()
}

// power := primary ('^' unary)?, right associative
func (p *parser) parsePower() (float64, error) {
	base, err := p.parsePrimary()
	if err != nil {
		return 0, err
	}
	if _, ok := p.peekOp("^"); ok {
		p.pos++
		exp, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return math.Pow(base, exp), nil
	}
	return base, nil
}

func (p *parser) parsePrimary() (float64, error) {
	if p.pos >= len(p.tokens) {
		return 0, fmt.Errorf("unexpected end of expression")
	}
	t := p.tokens[p.pos]
	p.pos++

	switch t.typ {
	case tokenNumber:
		return t.val, nil
	case tokenLParen:
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		if err := p.expect(tokenRParen); err != nil {
			return 0, err
		}
		return v, nil
	case tokenIdent:
		name := strings.ToLower(t.text)
		if fn, ok := functions[name]; ok {
			return p.parseCall(name, fn.arity, fn.fn)
		}
		if c, ok := constants[name]; ok {
			return c, nil
		}
		return 0, fmt.Errorf("unknown identifier: %s", t.text)
	default:
		return 0, fmt.Errorf("unexpected %q", t.text)
	}
}

func (p *parser) parseCall(name string, arity int, fn func([]float64) (float64, error)) (float64, error) {
	if err := p.expect(tokenLParen); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	var args []float64
	for {
		v, err := p.parseExpr()
		if err != nil {
			return 0, err
		}
		args = append(args, v)
		if p.pos < len(p.tokens) && p.tokens[p.pos].typ == tokenComma {
			p.pos++
			continue
		}
		break
	}
	if err := p.expect(tokenRParen); err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if len(args) != arity {
		return 0, fmt.Errorf("%s expects %d argument(s), got %d", name, arity, len(args))
	}
	return fn(args)
}

func (p *parser) expect(typ tokenType) error {
	if p.pos >= len(p.tokens) || p.tokens[p.pos].typ != typ {
		want := map[tokenType]string{tokenLParen: "(", tokenRParen: ")"}[typ]
		return fmt.Errorf("expected %q", want)
	}
	p.pos++
	return nil
}
