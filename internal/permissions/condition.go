package permissions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// Rule conditions are written in a small attribute-comparison language rather
// than a general-purpose expression evaluator; nothing in a condition can call
// out of the sandbox. Grammar:
//
//	expr    = and { "||" and }
//	and     = term { "&&" term }
//	term    = "(" expr ")" | ident op literal | ident "in" "[" literal { "," literal } "]"
//	op      = "==" | "!=" | "<" | "<=" | ">" | ">="
//	literal = string | number | "true" | "false"
//
// Identifiers name contextual attributes supplied with the access question.
// A comparison against a missing attribute is false, never an error: rules
// must not match on data the caller did not provide.

// Condition is a parsed, reusable rule predicate.
type Condition struct {
	raw  string
	expr condNode
}

// ErrEmptyCondition indicates a blank condition expression.
var ErrEmptyCondition = errors.New("condition: expression is empty")

// ParseCondition compiles a condition expression.
func ParseCondition(input string) (*Condition, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, ErrEmptyCondition
	}

	p := &condParser{input: trimmed}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.input) {
		return nil, fmt.Errorf("condition: unexpected input at offset %d", p.pos)
	}

	return &Condition{raw: trimmed, expr: expr}, nil
}

// ValidateCondition reports whether the expression parses. Used by rule
// writes so malformed conditions are rejected before they are persisted.
func ValidateCondition(input string) error {
	_, err := ParseCondition(input)
	return err
}

// Evaluate applies the condition to the supplied attributes.
func (c *Condition) Evaluate(attrs map[string]any) bool {
	if c == nil || c.expr == nil {
		return false
	}
	return c.expr.eval(attrs)
}

// String returns the original expression text.
func (c *Condition) String() string {
	if c == nil {
		return ""
	}
	return c.raw
}

type condNode interface {
	eval(attrs map[string]any) bool
}

type binaryNode struct {
	or    bool
	left  condNode
	right condNode
}

func (n *binaryNode) eval(attrs map[string]any) bool {
	if n.or {
		return n.left.eval(attrs) || n.right.eval(attrs)
	}
	return n.left.eval(attrs) && n.right.eval(attrs)
}

type compareNode struct {
	attr  string
	op    string
	value literal
}

func (n *compareNode) eval(attrs map[string]any) bool {
	actual, ok := attrs[n.attr]
	if !ok {
		return false
	}

	switch n.op {
	case "==":
		return literalEquals(actual, n.value)
	case "!=":
		return !literalEquals(actual, n.value)
	}

	// Ordering comparisons are numeric only.
	lhs, lok := toFloat(actual)
	rhs, rok := n.value.number, n.value.kind == literalNumber
	if !lok || !rok {
		return false
	}
	switch n.op {
	case "<":
		return lhs < rhs
	case "<=":
		return lhs <= rhs
	case ">":
		return lhs > rhs
	case ">=":
		return lhs >= rhs
	}
	return false
}

type inNode struct {
	attr   string
	values []literal
}

func (n *inNode) eval(attrs map[string]any) bool {
	actual, ok := attrs[n.attr]
	if !ok {
		return false
	}
	for _, v := range n.values {
		if literalEquals(actual, v) {
			return true
		}
	}
	return false
}

type literalKind int

const (
	literalString literalKind = iota
	literalNumber
	literalBool
)

type literal struct {
	kind    literalKind
	str     string
	number  float64
	boolean bool
}

func literalEquals(actual any, lit literal) bool {
	switch lit.kind {
	case literalString:
		s, ok := actual.(string)
		return ok && s == lit.str
	case literalNumber:
		f, ok := toFloat(actual)
		return ok && f == lit.number
	case literalBool:
		b, ok := actual.(bool)
		return ok && b == lit.boolean
	}
	return false
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

type condParser struct {
	input string
	pos   int
}

func (p *condParser) parseOr() (condNode, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.consume("||") {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{or: true, left: left, right: right}
	}
	return left, nil
}

func (p *condParser) parseAnd() (condNode, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.consume("&&") {
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &binaryNode{left: left, right: right}
	}
	return left, nil
}

func (p *condParser) parseTerm() (condNode, error) {
	p.skipSpace()

	if p.consume("(") {
		expr, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.consume(")") {
			return nil, fmt.Errorf("condition: missing closing parenthesis at offset %d", p.pos)
		}
		return expr, nil
	}

	attr, err := p.parseIdent()
	if err != nil {
		return nil, err
	}

	p.skipSpace()
	if p.consumeWord("in") {
		values, err := p.parseList()
		if err != nil {
			return nil, err
		}
		return &inNode{attr: attr, values: values}, nil
	}

	op, err := p.parseOperator()
	if err != nil {
		return nil, err
	}
	value, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	if op != "==" && op != "!=" && value.kind != literalNumber {
		return nil, fmt.Errorf("condition: operator %q requires a numeric literal", op)
	}
	return &compareNode{attr: attr, op: op, value: value}, nil
}

func (p *condParser) parseIdent() (string, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.input) {
		r := rune(p.input[p.pos])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' {
			p.pos++
			continue
		}
		break
	}
	if p.pos == start {
		return "", fmt.Errorf("condition: expected attribute name at offset %d", start)
	}
	return p.input[start:p.pos], nil
}

func (p *condParser) parseOperator() (string, error) {
	p.skipSpace()
	for _, op := range []string{"==", "!=", "<=", ">=", "<", ">"} {
		if p.consume(op) {
			return op, nil
		}
	}
	return "", fmt.Errorf("condition: expected comparison operator at offset %d", p.pos)
}

func (p *condParser) parseList() ([]literal, error) {
	p.skipSpace()
	if !p.consume("[") {
		return nil, fmt.Errorf("condition: expected list after 'in' at offset %d", p.pos)
	}

	var values []literal
	for {
		value, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		p.skipSpace()
		if p.consume(",") {
			continue
		}
		if p.consume("]") {
			return values, nil
		}
		return nil, fmt.Errorf("condition: expected ',' or ']' at offset %d", p.pos)
	}
}

func (p *condParser) parseLiteral() (literal, error) {
	p.skipSpace()
	if p.pos >= len(p.input) {
		return literal{}, errors.New("condition: unexpected end of expression")
	}

	switch c := p.input[p.pos]; {
	case c == '\'' || c == '"':
		quote := c
		p.pos++
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] != quote {
			p.pos++
		}
		if p.pos >= len(p.input) {
			return literal{}, errors.New("condition: unterminated string literal")
		}
		value := p.input[start:p.pos]
		p.pos++
		return literal{kind: literalString, str: value}, nil

	case c == '-' || (c >= '0' && c <= '9'):
		start := p.pos
		p.pos++
		for p.pos < len(p.input) {
			d := p.input[p.pos]
			if (d >= '0' && d <= '9') || d == '.' {
				p.pos++
				continue
			}
			break
		}
		num, err := strconv.ParseFloat(p.input[start:p.pos], 64)
		if err != nil {
			return literal{}, fmt.Errorf("condition: invalid number at offset %d", start)
		}
		return literal{kind: literalNumber, number: num}, nil

	default:
		if p.consumeWord("true") {
			return literal{kind: literalBool, boolean: true}, nil
		}
		if p.consumeWord("false") {
			return literal{kind: literalBool, boolean: false}, nil
		}
		return literal{}, fmt.Errorf("condition: expected literal at offset %d", p.pos)
	}
}

func (p *condParser) consume(token string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.input[p.pos:], token) {
		p.pos += len(token)
		return true
	}
	return false
}

// consumeWord matches a keyword only when it is not a prefix of a longer
// identifier (so an attribute named "inpatient" is not misread as 'in').
func (p *condParser) consumeWord(word string) bool {
	p.skipSpace()
	if !strings.HasPrefix(p.input[p.pos:], word) {
		return false
	}
	next := p.pos + len(word)
	if next < len(p.input) {
		r := rune(p.input[next])
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' {
			return false
		}
	}
	p.pos = next
	return true
}

func (p *condParser) skipSpace() {
	for p.pos < len(p.input) && (p.input[p.pos] == ' ' || p.input[p.pos] == '\t') {
		p.pos++
	}
}
