package odata

import (
	"strconv"
	"strings"
)

// Expr is a node of a parsed $filter expression.
type Expr interface {
	expr()
}

// LogicalExpr joins two expressions with "and" / "or".
type LogicalExpr struct {
	Op          string
	Left, Right Expr
}

type NotExpr struct {
	X Expr
}

// CompareExpr always keeps the field on the left side.
type CompareExpr struct {
	Field Field
	Op    string
	Value Literal
}

// FuncExpr is contains/startswith/endswith over a string field.
type FuncExpr struct {
	Name  string
	Field Field
	Arg   string
}

// BoolFieldExpr is a bare boolean property used as a predicate.
type BoolFieldExpr struct {
	Field Field
}

func (LogicalExpr) expr()   {}
func (NotExpr) expr()       {}
func (CompareExpr) expr()   {}
func (FuncExpr) expr()      {}
func (BoolFieldExpr) expr() {}

type Literal struct {
	Null  bool
	Value any
}

var compareOps = map[string]string{
	"eq": "=",
	"ne": "<>",
	"gt": ">",
	"ge": ">=",
	"lt": "<",
	"le": "<=",
}

var flippedOps = map[string]string{
	"eq": "eq",
	"ne": "ne",
	"gt": "lt",
	"ge": "le",
	"lt": "gt",
	"le": "ge",
}

var stringFuncs = map[string]bool{
	"contains":   true,
	"startswith": true,
	"endswith":   true,
}

const filterOption = "$filter"

type filterParser struct {
	schema *Schema
	tokens []token
	pos    int
}

// ParseFilter parses a $filter expression against the schema.
func ParseFilter(schema *Schema, src string) (Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, nil
	}
	tokens, err := tokenize(filterOption, src)
	if err != nil {
		return nil, err
	}
	p := &filterParser{schema: schema, tokens: tokens}
	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, errorf(filterOption, "unexpected %s at position %d", tok, tok.pos)
	}
	return e, nil
}

func (p *filterParser) peek() token {
	return p.tokens[p.pos]
}

func (p *filterParser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *filterParser) isKeyword(word string) bool {
	tok := p.peek()
	return tok.kind == tokIdent && strings.EqualFold(tok.text, word)
}

func (p *filterParser) expect(kind tokenKind, what string) (token, error) {
	tok := p.next()
	if tok.kind != kind {
		return tok, errorf(filterOption, "expected %s, got %s at position %d", what, tok, tok.pos)
	}
	return tok, nil
}

func (p *filterParser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("or") {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = LogicalExpr{Op: "or", Left: left, Right: right}
	}
	return left, nil
}

func (p *filterParser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.isKeyword("and") {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = LogicalExpr{Op: "and", Left: left, Right: right}
	}
	return left, nil
}

func (p *filterParser) parseUnary() (Expr, error) {
	if p.isKeyword("not") {
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return NotExpr{X: x}, nil
	}
	return p.parsePrimary()
}

func (p *filterParser) parsePrimary() (Expr, error) {
	tok := p.peek()

	switch tok.kind {
	case tokLParen:
		p.next()
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(tokRParen, "')'"); err != nil {
			return nil, err
		}
		return e, nil

	case tokString, tokNumber, tokDateTime:
		return p.parseLiteralFirst()

	case tokIdent:
		lower := strings.ToLower(tok.text)
		if lower == "true" || lower == "false" || lower == "null" {
			return p.parseLiteralFirst()
		}
		if stringFuncs[lower] && p.tokens[p.pos+1].kind == tokLParen {
			return p.parseFuncCompare()
		}
		return p.parseFieldFirst()
	}

	return nil, errorf(filterOption, "unexpected %s at position %d", tok, tok.pos)
}

func (p *filterParser) field(tok token) (Field, error) {
	f, ok := p.schema.Lookup(tok.text)
	if !ok {
		return Field{}, errorf(filterOption, "unknown property %q", tok.text)
	}
	return f, nil
}

func (p *filterParser) op() (string, bool) {
	tok := p.peek()
	if tok.kind != tokIdent {
		return "", false
	}
	op := strings.ToLower(tok.text)
	if _, ok := compareOps[op]; !ok {
		return "", false
	}
	p.next()
	return op, true
}

func (p *filterParser) parseFieldFirst() (Expr, error) {
	f, err := p.field(p.next())
	if err != nil {
		return nil, err
	}

	op, ok := p.op()
	if !ok {
		if f.Kind == KindBool {
			return BoolFieldExpr{Field: f}, nil
		}
		tok := p.peek()
		return nil, errorf(filterOption, "expected comparison operator after %s, got %s", f.Name, tok)
	}

	lit, err := p.literal(f)
	if err != nil {
		return nil, err
	}
	return newCompare(f, op, lit)
}

func (p *filterParser) parseLiteralFirst() (Expr, error) {
	litTok := p.next()

	op, ok := p.op()
	if !ok {
		return nil, errorf(filterOption, "expected comparison operator after %s", litTok)
	}

	fieldTok, err := p.expect(tokIdent, "property name")
	if err != nil {
		return nil, err
	}
	f, err := p.field(fieldTok)
	if err != nil {
		return nil, err
	}

	lit, err := convertLiteral(f, litTok)
	if err != nil {
		return nil, err
	}
	return newCompare(f, flippedOps[op], lit)
}

func (p *filterParser) parseFunc() (Expr, error) {
	name := strings.ToLower(p.next().text)
	if _, err := p.expect(tokLParen, "'('"); err != nil {
		return nil, err
	}
	fieldTok, err := p.expect(tokIdent, "property name")
	if err != nil {
		return nil, err
	}
	f, err := p.field(fieldTok)
	if err != nil {
		return nil, err
	}
	if f.Kind != KindString {
		return nil, errorf(filterOption, "%s requires a string property, %s is %s", name, f.Name, f.Kind)
	}
	if _, err := p.expect(tokComma, "','"); err != nil {
		return nil, err
	}
	arg, err := p.expect(tokString, "string literal")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(tokRParen, "')'"); err != nil {
		return nil, err
	}
	return FuncExpr{Name: name, Field: f, Arg: arg.text}, nil
}

// parseFuncCompare разбирает функцию и необязательное сравнение с true/false:
// contains(Title,'a') eq true
func (p *filterParser) parseFuncCompare() (Expr, error) {
	fn, err := p.parseFunc()
	if err != nil {
		return nil, err
	}

	opTok := p.peek()
	op, ok := p.op()
	if !ok {
		return fn, nil
	}
	if op != "eq" && op != "ne" {
		return nil, errorf(filterOption, "operator %s is not allowed for a function result at position %d", op, opTok.pos)
	}

	valTok, err := p.expect(tokIdent, "true or false")
	if err != nil {
		return nil, err
	}
	var want bool
	switch strings.ToLower(valTok.text) {
	case "true":
		want = true
	case "false":
		want = false
	default:
		return nil, errorf(filterOption, "expected true or false after %s, got %s", op, valTok)
	}

	if (op == "eq") != want {
		return NotExpr{X: fn}, nil
	}
	return fn, nil
}

func (p *filterParser) literal(f Field) (Literal, error) {
	return convertLiteral(f, p.next())
}

func newCompare(f Field, op string, lit Literal) (Expr, error) {
	if lit.Null {
		if !f.Nullable {
			return nil, errorf(filterOption, "property %s is not nullable", f.Name)
		}
		if op != "eq" && op != "ne" {
			return nil, errorf(filterOption, "null can only be compared with eq or ne")
		}
	}
	if f.Kind == KindBool && op != "eq" && op != "ne" {
		return nil, errorf(filterOption, "boolean property %s supports only eq and ne", f.Name)
	}
	return CompareExpr{Field: f, Op: op, Value: lit}, nil
}

// convertLiteral checks the literal token against the property type.
func convertLiteral(f Field, tok token) (Literal, error) {
	if tok.kind == tokIdent && strings.EqualFold(tok.text, "null") {
		return Literal{Null: true}, nil
	}

	mismatch := func() (Literal, error) {
		return Literal{}, errorf(filterOption, "literal %s is not compatible with %s (%s)", tok, f.Name, f.Kind)
	}

	switch f.Kind {
	case KindInt:
		if tok.kind != tokNumber {
			return mismatch()
		}
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return mismatch()
		}
		return Literal{Value: n}, nil

	case KindString:
		if tok.kind != tokString {
			return mismatch()
		}
		return Literal{Value: tok.text}, nil

	case KindDateTime:
		if tok.kind != tokDateTime && tok.kind != tokString {
			return mismatch()
		}
		t, err := ParseDateTime(tok.text)
		if err != nil {
			return mismatch()
		}
		return Literal{Value: t}, nil

	case KindBool:
		if tok.kind != tokIdent {
			return mismatch()
		}
		switch strings.ToLower(tok.text) {
		case "true":
			return Literal{Value: true}, nil
		case "false":
			return Literal{Value: false}, nil
		}
		return mismatch()
	}

	return mismatch()
}
