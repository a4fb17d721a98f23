package odata

import (
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokString
	tokNumber
	tokDateTime
	tokLParen
	tokRParen
	tokComma
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

func (t token) String() string {
	switch t.kind {
	case tokEOF:
		return "end of input"
	case tokString:
		return "'" + t.text + "'"
	default:
		return t.text
	}
}

// tokenize splits a $filter / $orderby / $select expression into tokens.
func tokenize(option, src string) ([]token, error) {
	var (
		tokens []token
		runes  = []rune(src)
		i      = 0
	)

	for i < len(runes) {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			tokens = append(tokens, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			tokens = append(tokens, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == ',':
			tokens = append(tokens, token{kind: tokComma, text: ",", pos: i})
			i++
		case r == '\'':
			start := i
			var sb strings.Builder
			i++
			closed := false
			for i < len(runes) {
				if runes[i] == '\'' {
					// '' внутри строки - экранированная кавычка
					if i+1 < len(runes) && runes[i+1] == '\'' {
						sb.WriteRune('\'')
						i += 2
						continue
					}
					closed = true
					i++
					break
				}
				sb.WriteRune(runes[i])
				i++
			}
			if !closed {
				return nil, errorf(option, "unterminated string literal at position %d", start)
			}
			tokens = append(tokens, token{kind: tokString, text: sb.String(), pos: start})
		case unicode.IsDigit(r) || (r == '-' && i+1 < len(runes) && unicode.IsDigit(runes[i+1])):
			start := i
			i++
			for i < len(runes) && isLiteralRune(runes[i]) {
				i++
			}
			text := string(runes[start:i])
			kind := tokNumber
			if strings.ContainsAny(text[1:], "-:T") {
				kind = tokDateTime
			}
			tokens = append(tokens, token{kind: kind, text: text, pos: start})
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(runes) && (unicode.IsLetter(runes[i]) || unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, token{kind: tokIdent, text: string(runes[start:i]), pos: start})
		default:
			return nil, errorf(option, "unexpected character %q at position %d", r, i)
		}
	}

	tokens = append(tokens, token{kind: tokEOF, pos: len(runes)})
	return tokens, nil
}

func isLiteralRune(r rune) bool {
	return unicode.IsDigit(r) || unicode.IsLetter(r) || r == '.' || r == ':' || r == '-' || r == '+'
}
