// Package lexer splits JSON text into tokens, one per call to Next.
package lexer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/styrainc/jsondoc/pkg/json"
)

// ErrOpen is wrapped by the error NewFromFile returns when the file cannot be
// opened.
var ErrOpen = errors.New("lexer: cannot open file")

const eof = -1

// Position locates a byte in the input. Line is 1-based; Column counts the
// characters consumed on the line, so the first character of a line is at
// column 1.
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Lexer is a cursor over a private copy of the input text. It is not safe
// for concurrent use.
type Lexer struct {
	input   *json.String
	literal *json.String
	src     []byte
	scratch []byte

	offset int
	line   int
	column int
	last   int // lookahead character, eof at end of input
	start  Position

	scanStrings     bool
	extendedNumbers bool
	closed          bool
	badString       bool
}

// Option configures a Lexer.
type Option func(*Lexer)

// ScanStrings enables scanning of double quoted string literals, including
// escape sequences, into String tokens. Without it a double quote is returned
// as a DQuote token and the text between quotes is scanned like any other.
func ScanStrings() Option {
	return func(l *Lexer) {
		l.scanStrings = true
	}
}

// ExtendedNumbers accepts a leading minus sign and an exponent part in number
// literals.
func ExtendedNumbers() Option {
	return func(l *Lexer) {
		l.extendedNumbers = true
	}
}

// New returns a lexer over a copy of the content of s, which must not be
// empty.
func New(s *json.String, opts ...Option) *Lexer {
	if s == nil || s.Len() == 0 {
		panic("lexer: empty input")
	}
	return newLexer(json.NewStringBytes(s.Bytes(), s.Len()), opts)
}

// NewFromString returns a lexer over a copy of str, which must not be empty.
func NewFromString(str string, opts ...Option) *Lexer {
	if str == "" {
		panic("lexer: empty input")
	}
	return newLexer(json.NewString(str), opts)
}

// NewFromBytes returns a lexer over a copy of b, which must not be empty.
func NewFromBytes(b []byte, opts ...Option) *Lexer {
	return NewFromBytesLength(b, len(b), opts...)
}

// NewFromBytesLength returns a lexer over a copy of the first n bytes of b.
func NewFromBytesLength(b []byte, n int, opts ...Option) *Lexer {
	if b == nil || n <= 0 {
		panic("lexer: empty input")
	}
	if n > len(b) {
		panic("lexer: length out of range")
	}
	return newLexer(json.NewStringBytes(b, n), opts)
}

// NewFromReader reads r to the end and returns a lexer over its content.
func NewFromReader(r io.Reader, opts ...Option) (*Lexer, error) {
	input := json.NewString("")
	if _, err := io.Copy(input, r); err != nil {
		json.Unref(input)
		return nil, err
	}
	return newLexer(input, opts), nil
}

// NewFromFile reads the named file and returns a lexer over its content. The
// error wraps ErrOpen when the file cannot be opened.
func NewFromFile(name string, opts ...Option) (*Lexer, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	defer f.Close()

	return NewFromReader(f, opts...)
}

func newLexer(input *json.String, opts []Option) *Lexer {
	l := &Lexer{
		input:   input,
		literal: json.NewString(""),
		src:     input.Bytes(),
		line:    1,
		last:    ' ',
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Close releases the input copy and the literal buffer. The lexer must not be
// used afterwards.
func (l *Lexer) Close() {
	if l.closed {
		return
	}
	l.closed = true
	json.UnrefMany(l.input, l.literal)
	l.input, l.literal, l.src = nil, nil, nil
}

func (l *Lexer) check() {
	if l.closed {
		panic("lexer: use of closed lexer")
	}
}

// Offset returns the number of input bytes consumed so far.
func (l *Lexer) Offset() int { return l.offset }

// Line returns the current line number.
func (l *Lexer) Line() int { return l.line }

// Column returns the number of characters consumed on the current line.
func (l *Lexer) Column() int { return l.column }

// Position returns where the token last returned by Next starts.
func (l *Lexer) Position() Position { return l.start }

// BadString reports whether the last token is an Error token produced by a
// malformed or unterminated string literal.
func (l *Lexer) BadString() bool { return l.badString }

// EOF reports whether the end of the input has been reached.
func (l *Lexer) EOF() bool { return l.last == eof }

// Literal returns the text of the last Number, String or identifier token.
// For an Error token produced by an unknown identifier this is the
// identifier.
func (l *Lexer) Literal() string {
	l.check()
	return l.literal.Value()
}

// LiteralValue returns the literal buffer itself. The reference is borrowed
// and its content is replaced by the next literal token.
func (l *Lexer) LiteralValue() *json.String {
	l.check()
	return l.literal
}

func (l *Lexer) peekchar() int {
	if l.offset >= len(l.src) {
		return eof
	}
	return int(l.src[l.offset])
}

func (l *Lexer) getchar() int {
	if l.offset >= len(l.src) {
		l.last = eof
	} else {
		l.last = int(l.src[l.offset])
		l.offset++
	}

	switch {
	case l.last == '\r' && l.peekchar() != '\n':
		l.line++
		l.column = 0
	case l.last == '\n':
		l.line++
		l.column = 0
	case l.last != eof:
		l.column++
	}

	return l.last
}

// Next scans and returns the next token.
func (l *Lexer) Next() Token {
	l.check()
	l.badString = false

	for isSpace(l.last) {
		l.getchar()
	}

	l.start = Position{Offset: l.offset - 1, Line: l.line, Column: l.column}
	if l.last == eof {
		l.start.Offset = l.offset
	}

	switch c := l.last; {
	case isAlpha(c):
		return l.scanIdent()
	case isDigit(c) || c == '.' || (l.extendedNumbers && c == '-'):
		return l.scanNumber()
	case l.scanStrings && c == '"':
		return l.scanString()
	case c == eof:
		return EOF
	}

	t := Token(l.last)
	l.getchar()
	return t
}

func (l *Lexer) finish(t Token, buf []byte) Token {
	l.literal.AssignBytes(buf, len(buf))
	l.scratch = buf[:0]
	return t
}

func (l *Lexer) scanIdent() Token {
	buf := append(l.scratch[:0], byte(l.last))
	for l.getchar(); isAlnum(l.last) || l.last == '_'; l.getchar() {
		buf = append(buf, byte(l.last))
	}

	switch string(buf) {
	case "null":
		return l.finish(Null, buf)
	case "true":
		return l.finish(True, buf)
	case "false":
		return l.finish(False, buf)
	}
	return l.finish(Error, buf)
}

func (l *Lexer) scanNumber() Token {
	buf := append(l.scratch[:0], byte(l.last))
	for l.getchar(); isDigit(l.last) || l.last == '.'; l.getchar() {
		buf = append(buf, byte(l.last))
	}

	if l.extendedNumbers {
		if len(buf) == 1 && buf[0] == '-' {
			return l.finish(Error, buf)
		}
		if l.last == 'e' || l.last == 'E' {
			buf = append(buf, byte(l.last))
			l.getchar()
			if l.last == '+' || l.last == '-' {
				buf = append(buf, byte(l.last))
				l.getchar()
			}
			for ; isDigit(l.last); l.getchar() {
				buf = append(buf, byte(l.last))
			}
		}
	}

	return l.finish(Number, buf)
}

func (l *Lexer) scanString() Token {
	buf := l.scratch[:0]
	l.getchar()

	for {
		c := l.last
		switch {
		case c == eof:
			return l.stringError(buf)

		case c == '"':
			l.getchar()
			return l.finish(String, buf)

		case c == '\\':
			l.getchar()
			switch l.last {
			case '"', '\\', '/':
				buf = append(buf, byte(l.last))
			case 'b':
				buf = append(buf, '\b')
			case 'f':
				buf = append(buf, '\f')
			case 'n':
				buf = append(buf, '\n')
			case 'r':
				buf = append(buf, '\r')
			case 't':
				buf = append(buf, '\t')
			case 'u':
				r, ok := l.hex4()
				if !ok {
					return l.stringError(buf)
				}
				if utf16.IsSurrogate(r) {
					r, buf, ok = l.surrogate(r, buf)
					if !ok {
						return l.stringError(buf)
					}
				}
				buf = utf8.AppendRune(buf, r)
			default:
				return l.stringError(buf)
			}
			l.getchar()

		case c < 0x20:
			return l.stringError(buf)

		default:
			buf = append(buf, byte(c))
			l.getchar()
		}
	}
}

func (l *Lexer) stringError(buf []byte) Token {
	l.badString = true
	return l.finish(Error, buf)
}

// surrogate combines the high surrogate hi with a following \u escape. A lone
// surrogate decodes to U+FFFD.
func (l *Lexer) surrogate(hi rune, buf []byte) (rune, []byte, bool) {
	if hi >= 0xdc00 || !bytes.HasPrefix(l.src[l.offset:], []byte(`\u`)) {
		return unicode.ReplacementChar, buf, true
	}

	l.getchar()
	l.getchar()
	lo, ok := l.hex4()
	if !ok {
		return 0, buf, false
	}
	if r := utf16.DecodeRune(hi, lo); r != unicode.ReplacementChar {
		return r, buf, true
	}
	return lo, utf8.AppendRune(buf, unicode.ReplacementChar), true
}

// hex4 consumes four hex digits, leaving the last one as the lookahead.
func (l *Lexer) hex4() (rune, bool) {
	var r rune
	for i := 0; i < 4; i++ {
		l.getchar()
		var d int
		switch c := l.last; {
		case c >= '0' && c <= '9':
			d = c - '0'
		case c >= 'a' && c <= 'f':
			d = c - 'a' + 10
		case c >= 'A' && c <= 'F':
			d = c - 'A' + 10
		default:
			return 0, false
		}
		r = r<<4 | rune(d)
	}
	return r, true
}

func isSpace(c int) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n'
}

func isAlpha(c int) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isDigit(c int) bool {
	return c >= '0' && c <= '9'
}

func isAlnum(c int) bool {
	return isAlpha(c) || isDigit(c)
}
