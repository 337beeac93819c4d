// pkg/manifest/psd1.go - a reader for PowerShell data files (.psd1).
//
// Covers the declarative subset such files are supposed to contain: a
// top-level @{...} hashtable of identifier = value pairs, where values
// are quoted strings, numbers, $true/$false/$null, @(...) arrays, or
// nested hashtables. Expressions and cmdlet calls are rejected.

package manifest

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokHashOpen   // @{
	tokArrayOpen  // @(
	tokBraceClose // }
	tokParenClose // )
	tokEquals     // =
	tokComma      // ,
	tokSeparator  // ; or newline
	tokIdent      // bare word
	tokString     // quoted string (value already unquoted)
	tokNumber     // numeric literal
	tokVariable   // $true, $false, $null
)

type token struct {
	kind tokenKind
	text string
	line int
}

type lexer struct {
	input string
	pos   int
	line  int
}

func (l *lexer) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("line %d: %s", l.line, fmt.Sprintf(format, args...))
}

func (l *lexer) next() (token, error) {
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch {
		case c == '\n':
			l.pos++
			l.line++
			return token{kind: tokSeparator, text: "\n", line: l.line - 1}, nil
		case c == ' ' || c == '\t' || c == '\r':
			l.pos++
		case c == '#':
			for l.pos < len(l.input) && l.input[l.pos] != '\n' {
				l.pos++
			}
		case c == '<' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '#':
			end := strings.Index(l.input[l.pos:], "#>")
			if end < 0 {
				return token{}, l.errorf("unterminated block comment")
			}
			l.line += strings.Count(l.input[l.pos:l.pos+end], "\n")
			l.pos += end + 2
		default:
			return l.scanToken()
		}
	}
	return token{kind: tokEOF, line: l.line}, nil
}

func (l *lexer) scanToken() (token, error) {
	c := l.input[l.pos]
	switch {
	case c == '@' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '{':
		l.pos += 2
		return token{kind: tokHashOpen, text: "@{", line: l.line}, nil
	case c == '@' && l.pos+1 < len(l.input) && l.input[l.pos+1] == '(':
		l.pos += 2
		return token{kind: tokArrayOpen, text: "@(", line: l.line}, nil
	case c == '}':
		l.pos++
		return token{kind: tokBraceClose, text: "}", line: l.line}, nil
	case c == ')':
		l.pos++
		return token{kind: tokParenClose, text: ")", line: l.line}, nil
	case c == '=':
		l.pos++
		return token{kind: tokEquals, text: "=", line: l.line}, nil
	case c == ',':
		l.pos++
		return token{kind: tokComma, text: ",", line: l.line}, nil
	case c == ';':
		l.pos++
		return token{kind: tokSeparator, text: ";", line: l.line}, nil
	case c == '\'':
		return l.scanSingleQuoted()
	case c == '"':
		return l.scanDoubleQuoted()
	case c == '$':
		return l.scanVariable()
	case c == '-' || c == '+' || unicode.IsDigit(rune(c)):
		return l.scanNumber()
	case unicode.IsLetter(rune(c)) || c == '_':
		return l.scanIdent()
	default:
		return token{}, l.errorf("unexpected character %q", c)
	}
}

func (l *lexer) scanSingleQuoted() (token, error) {
	start := l.line
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		if c == '\'' {
			// '' is an escaped quote inside a single-quoted string
			if l.pos+1 < len(l.input) && l.input[l.pos+1] == '\'' {
				sb.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			return token{kind: tokString, text: sb.String(), line: start}, nil
		}
		if c == '\n' {
			l.line++
		}
		sb.WriteByte(c)
		l.pos++
	}
	return token{}, l.errorf("unterminated string")
}

func (l *lexer) scanDoubleQuoted() (token, error) {
	start := l.line
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.input) {
		c := l.input[l.pos]
		switch c {
		case '"':
			l.pos++
			return token{kind: tokString, text: sb.String(), line: start}, nil
		case '`':
			// backtick escapes the next character
			if l.pos+1 >= len(l.input) {
				return token{}, l.errorf("unterminated string")
			}
			l.pos++
			sb.WriteByte(l.input[l.pos])
			l.pos++
		default:
			if c == '\n' {
				l.line++
			}
			sb.WriteByte(c)
			l.pos++
		}
	}
	return token{}, l.errorf("unterminated string")
}

func (l *lexer) scanVariable() (token, error) {
	start := l.pos
	l.pos++ // $
	for l.pos < len(l.input) && (unicode.IsLetter(rune(l.input[l.pos])) || unicode.IsDigit(rune(l.input[l.pos]))) {
		l.pos++
	}
	name := strings.ToLower(l.input[start:l.pos])
	switch name {
	case "$true", "$false", "$null":
		return token{kind: tokVariable, text: name, line: l.line}, nil
	default:
		return token{}, l.errorf("unsupported variable %s in data file", l.input[start:l.pos])
	}
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	if l.input[l.pos] == '-' || l.input[l.pos] == '+' {
		l.pos++
	}
	for l.pos < len(l.input) && (unicode.IsDigit(rune(l.input[l.pos])) || l.input[l.pos] == '.') {
		l.pos++
	}
	text := l.input[start:l.pos]
	if text == "-" || text == "+" {
		return token{}, l.errorf("unexpected character %q", text)
	}
	return token{kind: tokNumber, text: text, line: l.line}, nil
}

func (l *lexer) scanIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && (unicode.IsLetter(rune(l.input[l.pos])) || unicode.IsDigit(rune(l.input[l.pos])) || l.input[l.pos] == '_') {
		l.pos++
	}
	return token{kind: tokIdent, text: l.input[start:l.pos], line: l.line}, nil
}

type parser struct {
	lex *lexer
	tok token
}

func (p *parser) advance() error {
	t, err := p.lex.next()
	if err != nil {
		return err
	}
	p.tok = t
	return nil
}

// skipSeparators advances past newline/semicolon runs.
func (p *parser) skipSeparators() error {
	for p.tok.kind == tokSeparator {
		if err := p.advance(); err != nil {
			return err
		}
	}
	return nil
}

func (p *parser) errorf(format string, args ...interface{}) error {
	return fmt.Errorf("line %d: %s", p.tok.line, fmt.Sprintf(format, args...))
}

// parseDataFile reads a .psd1 document into a generic map.
func parseDataFile(input string) (map[string]interface{}, error) {
	p := &parser{lex: &lexer{input: input, line: 1}}
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.skipSeparators(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokHashOpen {
		return nil, p.errorf("data file must start with @{")
	}
	doc, err := p.parseHashtable()
	if err != nil {
		return nil, err
	}
	if err := p.skipSeparators(); err != nil {
		return nil, err
	}
	if p.tok.kind != tokEOF {
		return nil, p.errorf("unexpected trailing content %q", p.tok.text)
	}
	return doc, nil
}

// parseHashtable consumes from the token after @{ through the closing }.
func (p *parser) parseHashtable() (map[string]interface{}, error) {
	if err := p.advance(); err != nil { // past @{
		return nil, err
	}
	result := make(map[string]interface{})
	for {
		if err := p.skipSeparators(); err != nil {
			return nil, err
		}
		if p.tok.kind == tokBraceClose {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return result, nil
		}
		if p.tok.kind != tokIdent && p.tok.kind != tokString {
			return nil, p.errorf("expected key, got %q", p.tok.text)
		}
		key := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if p.tok.kind != tokEquals {
			return nil, p.errorf("expected '=' after key %q", key)
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		if _, dup := result[key]; dup {
			return nil, p.errorf("duplicate key %q", key)
		}
		result[key] = value
	}
}

// parseArray consumes from the token after @( through the closing ).
// Items may be separated by commas, newlines, or both.
func (p *parser) parseArray() ([]interface{}, error) {
	if err := p.advance(); err != nil { // past @(
		return nil, err
	}
	items := []interface{}{}
	for {
		if err := p.skipSeparators(); err != nil {
			return nil, err
		}
		for p.tok.kind == tokComma {
			if err := p.advance(); err != nil {
				return nil, err
			}
			if err := p.skipSeparators(); err != nil {
				return nil, err
			}
		}
		if p.tok.kind == tokParenClose {
			if err := p.advance(); err != nil {
				return nil, err
			}
			return items, nil
		}
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		items = append(items, value)
	}
}

func (p *parser) parseValue() (interface{}, error) {
	switch p.tok.kind {
	case tokHashOpen:
		return p.parseHashtable()
	case tokArrayOpen:
		return p.parseArray()
	case tokString:
		v := p.tok.text
		return v, p.advance()
	case tokNumber:
		text := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		if strings.Contains(text, ".") {
			f, err := strconv.ParseFloat(text, 64)
			if err != nil {
				return nil, p.errorf("invalid number %q", text)
			}
			return f, nil
		}
		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, p.errorf("invalid number %q", text)
		}
		return n, nil
	case tokVariable:
		name := p.tok.text
		if err := p.advance(); err != nil {
			return nil, err
		}
		switch name {
		case "$true":
			return true, nil
		case "$false":
			return false, nil
		default:
			return nil, nil // $null
		}
	default:
		return nil, p.errorf("unexpected token %q", p.tok.text)
	}
}
