package condition

import (
	"strings"

	apperr "github.com/vensus137/coreness-go/pkg/errors"
)

const opLex = "condition.lex"

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokLParen
	tokRParen
	tokLBracket
	tokRBracket
	tokComma
	tokAnd
	tokOr
	tokNot
	tokIn
	tokIsNull
	tokRegexKw
	tokEq
	tokNeq
	tokGe
	tokLe
	tokGt
	tokLt
	tokContains
	tokNotContains
	tokPath
	tokString
	tokNumber
	tokTrue
	tokFalse
	tokNone
	tokBareword
)

type token struct {
	kind tokenKind
	text string
}

// structuralKeywords are case-sensitive: only the exact lowercase spelling
// acts as grammar, so a scenario field literally named "And" or "In" still
// lexes as a bareword string rather than colliding with the operator.
var structuralKeywords = map[string]tokenKind{
	"and":     tokAnd,
	"or":      tokOr,
	"not":     tokNot,
	"in":      tokIn,
	"is_null": tokIsNull,
	"regex":   tokRegexKw,
}

type lexer struct {
	src []rune
	pos int
}

func newLexer(src string) *lexer {
	return &lexer{src: []rune(src)}
}

func (l *lexer) peekRune() rune {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *lexer) tokens() ([]token, error) {
	var out []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.kind == tokEOF {
			return out, nil
		}
	}
}

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && (l.src[l.pos] == ' ' || l.src[l.pos] == '\t' || l.src[l.pos] == '\n' || l.src[l.pos] == '\r') {
		l.pos++
	}
}

func (l *lexer) next() (token, error) {
	l.skipSpace()
	if l.pos >= len(l.src) {
		return token{kind: tokEOF}, nil
	}

	c := l.src[l.pos]
	switch c {
	case '(':
		l.pos++
		return token{kind: tokLParen}, nil
	case ')':
		l.pos++
		return token{kind: tokRParen}, nil
	case '[':
		l.pos++
		return token{kind: tokLBracket}, nil
	case ']':
		l.pos++
		return token{kind: tokRBracket}, nil
	case ',':
		l.pos++
		return token{kind: tokComma}, nil
	case '=':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return token{kind: tokEq}, nil
		}
		return token{}, apperr.WithCode(opLex, apperr.CodeParse, "unexpected '='; did you mean '=='?")
	case '!':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return token{kind: tokNeq}, nil
		}
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '~' {
			l.pos += 2
			return token{kind: tokNotContains}, nil
		}
		return token{}, apperr.WithCode(opLex, apperr.CodeParse, "unexpected '!'")
	case '~':
		l.pos++
		return token{kind: tokContains}, nil
	case '>':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return token{kind: tokGe}, nil
		}
		l.pos++
		return token{kind: tokGt}, nil
	case '<':
		if l.pos+1 < len(l.src) && l.src[l.pos+1] == '=' {
			l.pos += 2
			return token{kind: tokLe}, nil
		}
		l.pos++
		return token{kind: tokLt}, nil
	case '$':
		return l.scanPath()
	case '\'', '"':
		return l.scanString(c)
	}

	if isDigit(c) || (c == '-' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])) {
		return l.scanNumber()
	}
	if isIdentStart(c) {
		return l.scanWord()
	}

	return token{}, apperr.WithCode(opLex, apperr.CodeParse, "unexpected character "+string(c))
}

func (l *lexer) scanPath() (token, error) {
	start := l.pos
	l.pos++ // skip '$'
	for l.pos < len(l.src) && isPathChar(l.src[l.pos]) {
		l.pos++
	}
	return token{kind: tokPath, text: string(l.src[start+1 : l.pos])}, nil
}

func (l *lexer) scanString(quote rune) (token, error) {
	l.pos++ // skip opening quote
	var sb strings.Builder
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == '\'' || l.src[l.pos+1] == '"') {
			sb.WriteRune(l.src[l.pos+1])
			l.pos += 2
			continue
		}
		if c == quote {
			l.pos++
			return token{kind: tokString, text: sb.String()}, nil
		}
		sb.WriteRune(c)
		l.pos++
	}
	return token{}, apperr.WithCode(opLex, apperr.CodeParse, "unterminated string literal")
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.src) && (isDigit(l.src[l.pos]) || l.src[l.pos] == '.') {
		l.pos++
	}
	return token{kind: tokNumber, text: string(l.src[start:l.pos])}, nil
}

// scanWord tokenizes an unquoted word. Only exact-case "None", and
// case-insensitive "true"/"false", are literal keywords; every other
// bareword -- including lowercase "null"/"none" -- is a plain string whose
// value is its own text. Placeholder expansion hands the condition
// evaluator raw, already-substituted text, so an unquoted field value looks
// identical to an identifier; only None/true/false get special treatment
// because build_condition and scenario authors rely on them to express
// absence and booleans without quoting.
func (l *lexer) scanWord() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isIdentChar(l.src[l.pos]) {
		l.pos++
	}
	word := string(l.src[start:l.pos])
	if kind, ok := structuralKeywords[word]; ok {
		return token{kind: kind, text: word}, nil
	}
	switch {
	case word == "None":
		return token{kind: tokNone, text: word}, nil
	case strings.EqualFold(word, "true"):
		return token{kind: tokTrue, text: word}, nil
	case strings.EqualFold(word, "false"):
		return token{kind: tokFalse, text: word}, nil
	}
	return token{kind: tokBareword, text: word}, nil
}

func isDigit(c rune) bool      { return c >= '0' && c <= '9' }
func isIdentStart(c rune) bool { return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
func isIdentChar(c rune) bool  { return isIdentStart(c) || isDigit(c) || c == '.' }
func isPathChar(c rune) bool {
	return isIdentStart(c) || isDigit(c) || c == '.' || c == '_' || c == '[' || c == ']' || c == '-'
}
