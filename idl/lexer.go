package idl

import (
	"fmt"
	"strings"
)

// Position is a source location, used for error reporting and doc-comment
// attachment.
type Position struct {
	Line   int
	Column int
	Offset int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// TokenType enumerates every token category the lexer can emit.
type TokenType uint8

const (
	TokEOF TokenType = iota
	TokChar          // any single-char punctuation from "{}()[],:;=."
	TokReserved      // table, struct, enum, union, namespace, root_type
	TokPrimitive     // a primitive type keyword (bool, byte, int, string, ...)
	TokIdent
	TokIntConstant
	TokFloatConstant
	TokStringConstant
)

func (t TokenType) String() string {
	switch t {
	case TokEOF:
		return "eof"
	case TokChar:
		return "char"
	case TokReserved:
		return "reserved word"
	case TokPrimitive:
		return "primitive type"
	case TokIdent:
		return "identifier"
	case TokIntConstant:
		return "integer constant"
	case TokFloatConstant:
		return "float constant"
	case TokStringConstant:
		return "string constant"
	default:
		return "unknown"
	}
}

var reservedWords = map[string]bool{
	"table":     true,
	"struct":    true,
	"enum":      true,
	"union":     true,
	"namespace": true,
	"root_type": true,
}

// Lexer is a single-character-lookahead tokenizer over an IDL+object source
// string. Callers drive it with Advance and read the current token off
// Token/Attribute/DocComment; there is no token buffering.
type Lexer struct {
	source string
	cursor int
	line   int

	Token       TokenType
	Attribute   string // char code, identifier text, or literal text of the current token
	DocComment  string // accumulated /// text attached to the *next* token fetch
	Pos         Position

	atLineStart bool // true if no non-whitespace token has been seen since the last newline
	err         *ParseError
}

// NewLexer creates a lexer over source and primes the first token.
func NewLexer(source string) *Lexer {
	l := &Lexer{source: source, line: 1, atLineStart: true}
	l.Advance()
	return l
}

// Err returns the first lexical error encountered, if any.
func (l *Lexer) Err() *ParseError { return l.err }

func (l *Lexer) peekByte() byte {
	if l.cursor >= len(l.source) {
		return 0
	}
	return l.source[l.cursor]
}

func (l *Lexer) peekAt(off int) byte {
	if l.cursor+off >= len(l.source) {
		return 0
	}
	return l.source[l.cursor+off]
}

func (l *Lexer) curPos() Position {
	return Position{Line: l.line, Column: 1, Offset: l.cursor}
}

func (l *Lexer) fail(format string, args ...interface{}) {
	if l.err == nil {
		l.err = errAt(l.curPos(), format, args...)
	}
	l.Token = TokEOF
}

// Advance fetches the next token into Token/Attribute, clearing DocComment
// first (it is repopulated only if a /// comment immediately precedes this
// token).
func (l *Lexer) Advance() {
	if l.err != nil {
		l.Token = TokEOF
		return
	}
	l.DocComment = ""

	for {
		l.skipWhitespace()
		if l.cursor >= len(l.source) {
			l.Token = TokEOF
			l.Pos = l.curPos()
			return
		}
		if l.peekByte() == '/' && l.peekAt(1) == '/' {
			isDoc := l.peekAt(2) == '/'
			if isDoc && !l.atLineStart {
				l.fail("documentation comment (///) must begin on its own line")
				return
			}
			start := l.cursor
			for l.cursor < len(l.source) && l.source[l.cursor] != '\n' {
				l.cursor++
			}
			if isDoc {
				text := l.source[start+3 : l.cursor]
				if l.DocComment != "" {
					l.DocComment += "\n"
				}
				l.DocComment += strings.TrimPrefix(text, " ")
			}
			continue
		}
		break
	}

	l.Pos = l.curPos()
	l.atLineStart = false
	ch := l.peekByte()

	switch {
	case ch == '.' && isDigit(l.peekAt(1)):
		l.scanNumber() // rejects the leading '.'
		return
	case strings.IndexByte("{}()[],:;=.", ch) >= 0:
		l.cursor++
		l.Token = TokChar
		l.Attribute = string(ch)
		return
	case ch == '"':
		l.scanString()
		return
	case ch == '-' || isDigit(ch):
		l.scanNumber()
		return
	case isIdentStart(ch):
		l.scanIdentOrKeyword()
		return
	default:
		if ch < 0x20 {
			l.fail("illegal character code: %d", ch)
		} else {
			l.fail("illegal character %q", ch)
		}
	}
}

func (l *Lexer) skipWhitespace() {
	for l.cursor < len(l.source) {
		switch l.source[l.cursor] {
		case ' ', '\t', '\r':
			l.cursor++
		case '\n':
			l.cursor++
			l.line++
			l.atLineStart = true
		default:
			return
		}
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isIdentContinue(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func (l *Lexer) scanIdentOrKeyword() {
	start := l.cursor
	for l.cursor < len(l.source) && isIdentContinue(l.source[l.cursor]) {
		l.cursor++
	}
	word := l.source[start:l.cursor]

	switch word {
	case "true":
		l.Token = TokIntConstant
		l.Attribute = "1"
		return
	case "false":
		l.Token = TokIntConstant
		l.Attribute = "0"
		return
	}

	if reservedWords[word] {
		l.Token = TokReserved
		l.Attribute = word
		return
	}
	if _, ok := primitiveKeywords[word]; ok {
		l.Token = TokPrimitive
		l.Attribute = word
		return
	}
	l.Token = TokIdent
	l.Attribute = word
}

func (l *Lexer) scanNumber() {
	start := l.cursor
	if l.peekByte() == '.' && isDigit(l.peekAt(1)) {
		l.fail("float may not start with '.'")
		return
	}
	if l.peekByte() == '-' {
		l.cursor++
	}
	for l.cursor < len(l.source) && isDigit(l.source[l.cursor]) {
		l.cursor++
	}

	isFloat := false
	if l.peekByte() == '.' {
		if !isDigit(l.peekAt(1)) {
			l.fail("expecting digit after '.' in float constant")
			return
		}
		isFloat = true
		l.cursor++
		for l.cursor < len(l.source) && isDigit(l.source[l.cursor]) {
			l.cursor++
		}
	}
	if l.peekByte() == 'e' || l.peekByte() == 'E' {
		isFloat = true
		l.cursor++
		if l.peekByte() == '+' || l.peekByte() == '-' {
			l.cursor++
		}
		for l.cursor < len(l.source) && isDigit(l.source[l.cursor]) {
			l.cursor++
		}
	}

	l.Attribute = l.source[start:l.cursor]
	if isFloat {
		l.Token = TokFloatConstant
	} else {
		l.Token = TokIntConstant
	}
}

func (l *Lexer) scanString() {
	l.cursor++ // consume opening quote
	var sb strings.Builder
	for {
		if l.cursor >= len(l.source) {
			l.fail("unterminated string constant")
			return
		}
		ch := l.source[l.cursor]
		if ch == '"' {
			l.cursor++
			break
		}
		if ch == '\\' {
			l.cursor++
			if l.cursor >= len(l.source) {
				l.fail("unterminated escape sequence")
				return
			}
			switch l.source[l.cursor] {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case 'r':
				sb.WriteByte('\r')
			case '"':
				sb.WriteByte('"')
			case '\\':
				sb.WriteByte('\\')
			default:
				l.fail("illegal escape sequence \\%c", l.source[l.cursor])
				return
			}
			l.cursor++
			continue
		}
		if ch < 0x20 {
			l.fail("illegal character in string constant: code: %d", ch)
			return
		}
		sb.WriteByte(ch)
		l.cursor++
	}
	l.Token = TokStringConstant
	l.Attribute = sb.String()
}

// IsNext peeks at the current token; if it matches, consumes it (advances)
// and reports true.
func (l *Lexer) IsNext(t TokenType) bool {
	if l.Token == t {
		l.Advance()
		return true
	}
	return false
}

// IsNextChar is IsNext specialized for single-char tokens.
func (l *Lexer) IsNextChar(ch byte) bool {
	if l.Token == TokChar && l.Attribute == string(ch) {
		l.Advance()
		return true
	}
	return false
}

// Expect consumes the current token if it matches t, otherwise raises a
// ParseError describing the mismatch.
func (l *Lexer) Expect(t TokenType) error {
	if l.Token != t {
		return errAt(l.Pos, "expecting %s instead got %s", t, l.describeCurrent())
	}
	l.Advance()
	return nil
}

// ExpectChar consumes the current token if it is the single-char token ch.
func (l *Lexer) ExpectChar(ch byte) error {
	if l.Token != TokChar || l.Attribute != string(ch) {
		return errAt(l.Pos, "expecting %q instead got %s", ch, l.describeCurrent())
	}
	l.Advance()
	return nil
}

func (l *Lexer) describeCurrent() string {
	if l.Token == TokEOF {
		return "end of file"
	}
	if l.Attribute != "" {
		return fmt.Sprintf("%s %q", l.Token, l.Attribute)
	}
	return l.Token.String()
}
